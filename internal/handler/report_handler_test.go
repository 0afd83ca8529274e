package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type reportServiceMock struct {
	lastReq     service.ReportRequest
	lastActor   models.Actor
	lastLimit   int
	createResp  *models.ReportJob
	createErr   error
	statusResp  *models.ReportJob
	statusErr   error
	listResp    []models.ReportJob
	download    *service.ReportDownload
	downloadErr error
}

func (m *reportServiceMock) CreateJob(ctx context.Context, req service.ReportRequest, actor models.Actor) (*models.ReportJob, error) {
	m.lastReq = req
	m.lastActor = actor
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(ctx context.Context, id string, actor models.Actor) (*models.ReportJob, error) {
	m.lastActor = actor
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) ListMine(ctx context.Context, actor models.Actor, limit int) ([]models.ReportJob, error) {
	m.lastActor = actor
	m.lastLimit = limit
	return m.listResp, nil
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerCreateQueuesJob(t *testing.T) {
	mockSvc := &reportServiceMock{
		createResp: &models.ReportJob{ID: "job-1", Type: models.ReportTypeOccupancy, Status: models.ReportStatusQueued},
	}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(map[string]string{"type": "Occupancy", "format": "XLSX"})
	c, w := newGinContext(http.MethodPost, "/reports", payload)
	withUser(c, "staff-1", models.RoleStaff)

	handler.Create(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.ReportTypeOccupancy, mockSvc.lastReq.Type)
	assert.Equal(t, models.ReportFormatXLSX, mockSvc.lastReq.Format)
	assert.Equal(t, "staff-1", mockSvc.lastActor.ID)
}

func TestReportHandlerCreateRequiresUser(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{})
	c, w := newGinContext(http.MethodPost, "/reports", []byte(`{}`))

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerStatusForbidden(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{statusErr: appErrors.ErrForbidden})
	c, w := newGinContext(http.MethodGet, "/reports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	withUser(c, "staff-2", models.RoleStaff)

	handler.Status(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportHandlerListPassesLimit(t *testing.T) {
	mockSvc := &reportServiceMock{listResp: []models.ReportJob{{ID: "job-1"}}}
	handler := NewReportHandler(mockSvc)
	c, w := newGinContext(http.MethodGet, "/reports?limit=5", nil)
	withUser(c, "admin-1", models.RoleAdmin)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, mockSvc.lastLimit)
}

func TestReportHandlerDownloadStreamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupancy.csv")
	require.NoError(t, os.WriteFile(path, []byte("Room,Floor\n101,1\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	handler := NewReportHandler(&reportServiceMock{download: &service.ReportDownload{
		File:     file,
		Filename: "occupancy.csv",
		Format:   models.ReportFormatCSV,
	}})
	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "occupancy.csv")
	assert.Equal(t, "Room,Floor\n101,1\n", w.Body.String())
}

func TestReportHandlerDownloadInvalidToken(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{
		downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token"),
	})
	c, w := newGinContext(http.MethodGet, "/export/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
