package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/jobs"
)

type reportRepoStub struct {
	jobs     map[string]*models.ReportJob
	finished []models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Status = models.ReportStatusQueued
	r.jobs[job.ID] = job
	return nil
}

func (r *reportRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (r *reportRepoStub) move(id string, from []models.ReportStatus, apply func(job *models.ReportJob)) error {
	job, ok := r.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	for _, st := range from {
		if job.Status == st {
			apply(job)
			return nil
		}
	}
	return repository.ErrJobSettled
}

func (r *reportRepoStub) Claim(ctx context.Context, id string, progress int) error {
	return r.move(id, []models.ReportStatus{models.ReportStatusQueued, models.ReportStatusProcessing}, func(job *models.ReportJob) {
		job.Status = models.ReportStatusProcessing
		job.Progress = progress
		job.ErrorMessage = nil
	})
}

func (r *reportRepoStub) Complete(ctx context.Context, id, resultURL string, at time.Time) error {
	return r.move(id, []models.ReportStatus{models.ReportStatusProcessing}, func(job *models.ReportJob) {
		job.Status = models.ReportStatusFinished
		job.Progress = 100
		job.ResultURL = &resultURL
		job.FinishedAt = &at
	})
}

func (r *reportRepoStub) Requeue(ctx context.Context, id, reason string) error {
	return r.move(id, []models.ReportStatus{models.ReportStatusProcessing}, func(job *models.ReportJob) {
		job.Status = models.ReportStatusQueued
		job.Progress = 0
		job.ErrorMessage = &reason
	})
}

func (r *reportRepoStub) Fail(ctx context.Context, id, reason string, at time.Time) error {
	return r.move(id, []models.ReportStatus{models.ReportStatusQueued, models.ReportStatusProcessing}, func(job *models.ReportJob) {
		job.Status = models.ReportStatusFailed
		job.Progress = 100
		job.ErrorMessage = &reason
		job.FinishedAt = &at
	})
}

func (r *reportRepoStub) ListByCreator(ctx context.Context, userID string, limit int) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range r.jobs {
		if job.CreatedBy == userID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *reportRepoStub) ListUnsettled(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range r.jobs {
		if !job.Status.Settled() {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *reportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return r.finished, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(ctx context.Context, job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

var adminActor = models.Actor{ID: "admin-1", Role: models.RoleAdmin}

func newReportServiceForTest(t *testing.T) (*ReportService, *reportRepoStub, *queueStub, *ExportService) {
	t.Helper()
	repo := newReportRepoStub()
	queue := &queueStub{}
	exportSvc, _ := newExportServiceForTest(t)
	svc := NewReportService(repo, queue, exportSvc, nil, zap.NewNop(), ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
	})
	return svc, repo, queue, exportSvc
}

func TestReportServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	floor := 1
	job, err := svc.CreateJob(context.Background(), ReportRequest{
		Type:   models.ReportTypeOccupancy,
		Format: models.ReportFormatXLSX,
		Floor:  &floor,
	}, staffActor)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, job.ID, queue.jobs[0].ID)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.Equal(t, staffActor.ID, job.CreatedBy)
	assert.Equal(t, &floor, repo.jobs[job.ID].Params.Floor)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc, _, _, _ := newReportServiceForTest(t)

	_, err := svc.CreateJob(context.Background(), ReportRequest{Type: "grades", Format: models.ReportFormatCSV}, staffActor)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateJob(context.Background(), ReportRequest{Type: models.ReportTypeRequests, Format: "docx"}, staffActor)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCreateJobEnqueueFailure(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	queue.err = errors.New("queue stopped")

	_, err := svc.CreateJob(context.Background(), ReportRequest{Type: models.ReportTypeRequests, Format: models.ReportFormatCSV}, staffActor)
	require.Error(t, err)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestReportServiceGetStatusOwnership(t *testing.T) {
	svc, repo, _, _ := newReportServiceForTest(t)
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Status: models.ReportStatusFinished, Progress: 100, CreatedBy: staffActor.ID}

	job, err := svc.GetStatus(context.Background(), "job-1", staffActor)
	require.NoError(t, err)
	assert.Equal(t, 100, job.Progress)

	_, err = svc.GetStatus(context.Background(), "job-1", adminActor)
	require.NoError(t, err)

	_, err = svc.GetStatus(context.Background(), "job-1", models.Actor{ID: "staff-2", Role: models.RoleStaff})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.GetStatus(context.Background(), "missing", adminActor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceResolveDownload(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-download",
		Type:      models.ReportTypeOccupancy,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
		Status:    models.ReportStatusProcessing,
		CreatedBy: staffActor.ID,
	}
	repo.jobs[job.ID] = job
	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL

	_, err = svc.ResolveDownload(context.Background(), result.Token)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	job.Status = models.ReportStatusFinished
	download, err := svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	assert.Equal(t, models.ReportFormatCSV, download.Format)

	_, err = svc.ResolveDownload(context.Background(), "bogus")
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	repo.jobs["q1"] = &models.ReportJob{ID: "q1", Type: models.ReportTypeRequests, Status: models.ReportStatusQueued}
	repo.jobs["p1"] = &models.ReportJob{ID: "p1", Type: models.ReportTypeOccupancy, Status: models.ReportStatusProcessing}
	repo.jobs["f1"] = &models.ReportJob{ID: "f1", Status: models.ReportStatusFinished}

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.jobs, 2)
	ids := []string{queue.jobs[0].ID, queue.jobs[1].ID}
	assert.ElementsMatch(t, []string{"q1", "p1"}, ids)
}

func TestReportServiceCleanupRemovesExpiredFiles(t *testing.T) {
	svc, repo, _, exportSvc := newReportServiceForTest(t)
	job := &models.ReportJob{ID: "old", Type: models.ReportTypeOccupancy, Params: models.ReportJobParams{Format: models.ReportFormatCSV}}
	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL
	repo.finished = []models.ReportJob{*job}

	svc.cleanupExpired(context.Background())
	_, err = exportSvc.Open(result.RelativePath)
	assert.Error(t, err)
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func queuedJobRepo() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{
		"job-1": {
			ID:        "job-1",
			Type:      models.ReportTypeOccupancy,
			Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
			Status:    models.ReportStatusQueued,
			CreatedBy: staffActor.ID,
		},
	}}
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	repo := queuedJobRepo()
	worker := NewReportWorker(repo, exportStub{result: &ExportResult{URL: "/api/v1/export/token"}}, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1"}))
	job := repo.jobs["job-1"]
	assert.Equal(t, models.ReportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/export/token", *job.ResultURL)
	require.NotNil(t, job.FinishedAt)
}

func TestReportWorkerHandleFailureRequeuesThenFails(t *testing.T) {
	repo := queuedJobRepo()
	worker := NewReportWorker(repo, exportStub{err: errors.New("boom")}, 2, zap.NewNop())

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1}))
	assert.Equal(t, models.ReportStatusQueued, repo.jobs["job-1"].Status)
	assert.Nil(t, repo.jobs["job-1"].FinishedAt)

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2}))
	assert.Equal(t, models.ReportStatusFailed, repo.jobs["job-1"].Status)
	require.NotNil(t, repo.jobs["job-1"].ErrorMessage)
	assert.Equal(t, "boom", *repo.jobs["job-1"].ErrorMessage)
}

func TestReportWorkerSkipsSettledJob(t *testing.T) {
	repo := queuedJobRepo()
	repo.jobs["job-1"].Status = models.ReportStatusFailed
	worker := NewReportWorker(repo, exportStub{err: errors.New("must not run")}, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "job-1"}))
	assert.Equal(t, models.ReportStatusFailed, repo.jobs["job-1"].Status)
}
