package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type fakeAnnouncementSrv struct {
	filter  models.AnnouncementFilter
	created service.CreateAnnouncementRequest
	deleted string
}

func (f *fakeAnnouncementSrv) List(ctx context.Context, filter models.AnnouncementFilter, actor models.Actor) ([]models.Announcement, *models.Pagination, error) {
	f.filter = filter
	return []models.Announcement{{ID: "ann-1", Title: "Water outage", IsActive: true}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeAnnouncementSrv) Create(ctx context.Context, req service.CreateAnnouncementRequest, actor models.Actor) (*models.Announcement, error) {
	f.created = req
	return &models.Announcement{ID: "ann-2", Title: req.Title, CreatedBy: actor.ID, IsActive: true}, nil
}

func (f *fakeAnnouncementSrv) Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
}

func (f *fakeAnnouncementSrv) Delete(ctx context.Context, id string) error {
	f.deleted = id
	return nil
}

func TestAnnouncementHandlerList(t *testing.T) {
	srv := &fakeAnnouncementSrv{}
	handler := NewAnnouncementHandler(srv)
	c, w := newGinContext(http.MethodGet, "/announcements?includeInactive=true&type=Urgent", nil)
	withUser(c, "staff-1", models.RoleStaff)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, srv.filter.IncludeInactive)
	assert.Equal(t, models.AnnouncementUrgent, srv.filter.Type)
}

func TestAnnouncementHandlerCreate(t *testing.T) {
	srv := &fakeAnnouncementSrv{}
	handler := NewAnnouncementHandler(srv)
	c, w := newGinContext(http.MethodPost, "/announcements", []byte(`{"title":"Water outage","message":"No water 9-11am","type":"warning"}`))
	withUser(c, "staff-1", models.RoleStaff)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Water outage", srv.created.Title)
	assert.Equal(t, models.AnnouncementWarning, srv.created.Type)
}

func TestAnnouncementHandlerUpdateNotFound(t *testing.T) {
	handler := NewAnnouncementHandler(&fakeAnnouncementSrv{})
	c, w := newGinContext(http.MethodPut, "/announcements/missing", []byte(`{"title":"x"}`))
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Update(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnnouncementHandlerDelete(t *testing.T) {
	srv := &fakeAnnouncementSrv{}
	handler := NewAnnouncementHandler(srv)
	c, _ := newGinContext(http.MethodDelete, "/announcements/ann-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "ann-1"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "ann-1", srv.deleted)
}
