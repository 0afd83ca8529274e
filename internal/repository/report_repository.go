package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-api/internal/models"
)

// ErrJobSettled is returned when a transition targets a job that is already
// FINISHED or FAILED, or is not in the state the transition starts from.
var ErrJobSettled = errors.New("report job already settled")

const reportJobColumns = `id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message`

// ReportRepository stores export jobs. Status changes go through the
// transition methods, each guarded by the state it starts from.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a QUEUED job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Status = models.ReportStatusQueued
	job.Progress = 0
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO report_jobs (id, type, params, status, progress, created_by, created_at)
VALUES (:id, :type, :params, :status, :progress, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	var job models.ReportJob
	err := r.db.GetContext(ctx, &job, `SELECT `+reportJobColumns+` FROM report_jobs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get report job %s: %w", id, err)
	}
	return &job, nil
}

// Claim moves a QUEUED job, or one left PROCESSING by a crashed worker, to
// PROCESSING with the given progress.
func (r *ReportRepository) Claim(ctx context.Context, id string, progress int) error {
	return r.transition(ctx, "claim",
		`UPDATE report_jobs SET status = 'PROCESSING', progress = $2, error_message = NULL
WHERE id = $1 AND status IN ('QUEUED', 'PROCESSING')`, id, progress)
}

// Complete marks a PROCESSING job FINISHED with its download link.
func (r *ReportRepository) Complete(ctx context.Context, id, resultURL string, at time.Time) error {
	return r.transition(ctx, "complete",
		`UPDATE report_jobs SET status = 'FINISHED', progress = 100, result_url = $2, finished_at = $3, error_message = NULL
WHERE id = $1 AND status = 'PROCESSING'`, id, resultURL, at)
}

// Requeue returns a PROCESSING job to QUEUED after a failed attempt.
func (r *ReportRepository) Requeue(ctx context.Context, id, reason string) error {
	return r.transition(ctx, "requeue",
		`UPDATE report_jobs SET status = 'QUEUED', progress = 0, error_message = $2
WHERE id = $1 AND status = 'PROCESSING'`, id, reason)
}

// Fail settles any unsettled job as FAILED.
func (r *ReportRepository) Fail(ctx context.Context, id, reason string, at time.Time) error {
	return r.transition(ctx, "fail",
		`UPDATE report_jobs SET status = 'FAILED', progress = 100, error_message = $2, finished_at = $3
WHERE id = $1 AND status IN ('QUEUED', 'PROCESSING')`, id, reason, at)
}

func (r *ReportRepository) transition(ctx context.Context, name, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s report job: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrJobSettled
	}
	return nil
}

// ListByCreator returns a user's newest jobs first.
func (r *ReportRepository) ListByCreator(ctx context.Context, userID string, limit int) ([]models.ReportJob, error) {
	_, limit = normalisePage(1, limit)
	jobs := []models.ReportJob{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+reportJobColumns+` FROM report_jobs WHERE created_by = $1 ORDER BY created_at DESC, id LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list report jobs of %s: %w", userID, err)
	}
	return jobs, nil
}

// ListUnsettled returns QUEUED and PROCESSING jobs oldest first, for replay
// after a restart.
func (r *ReportRepository) ListUnsettled(ctx context.Context, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	jobs := []models.ReportJob{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+reportJobColumns+` FROM report_jobs WHERE status IN ('QUEUED', 'PROCESSING') ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsettled report jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore returns FINISHED jobs whose files outlived cutoff.
func (r *ReportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 100
	}
	jobs := []models.ReportJob{}
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT `+reportJobColumns+` FROM report_jobs WHERE status = 'FINISHED' AND finished_at < $1 ORDER BY finished_at LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired report jobs: %w", err)
	}
	return jobs, nil
}
