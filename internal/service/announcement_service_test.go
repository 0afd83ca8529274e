package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type fakeAnnouncementRepo struct {
	items      map[string]*models.Announcement
	lastFilter models.AnnouncementFilter
}

func (f *fakeAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	f.lastFilter = filter
	var out []models.Announcement
	for _, a := range f.items {
		if a.IsActive || filter.IncludeInactive {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeAnnouncementRepo) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, a *models.Announcement) error {
	a.ID = "ann-1"
	clone := *a
	f.items[a.ID] = &clone
	return nil
}

func (f *fakeAnnouncementRepo) Update(ctx context.Context, a *models.Announcement) error {
	clone := *a
	f.items[a.ID] = &clone
	return nil
}

func (f *fakeAnnouncementRepo) Deactivate(ctx context.Context, id string) error {
	a, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.IsActive = false
	return nil
}

func TestAnnouncementLifecycle(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	svc := NewAnnouncementService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateAnnouncementRequest{Title: " Water cut ", Message: "Tomorrow 9-11"}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, "Water cut", created.Title)
	assert.Equal(t, models.AnnouncementInfo, created.Type)
	assert.True(t, created.IsActive)
	assert.Equal(t, staffActor.ID, created.CreatedBy)

	urgent := models.AnnouncementUrgent
	updated, err := svc.Update(ctx, created.ID, UpdateAnnouncementRequest{Type: &urgent})
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementUrgent, updated.Type)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.False(t, repo.items[created.ID].IsActive)

	items, _, err := svc.List(ctx, models.AnnouncementFilter{IncludeInactive: true}, studentActor)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, repo.lastFilter.IncludeInactive)

	items, _, err = svc.List(ctx, models.AnnouncementFilter{IncludeInactive: true}, staffActor)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAnnouncementValidationAndMissing(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	svc := NewAnnouncementService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAnnouncementRequest{Title: "Hi", Message: "There", Type: "shout"}, staffActor)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, CreateAnnouncementRequest{Title: "  ", Message: "There"}, staffActor)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.Delete(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(ctx, "missing", UpdateAnnouncementRequest{})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
