package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type stubDashboardCounts struct {
	rooms     models.RoomCounts
	capacity  int
	occupancy int
	pending   int
	open      int
	active    int
	roomErr   error
	calls     int
}

func (s *stubDashboardCounts) CountByStatus(ctx context.Context) (models.RoomCounts, int, int, error) {
	s.calls++
	return s.rooms, s.capacity, s.occupancy, s.roomErr
}

type stubPendingCounter struct{ n int }

func (s stubPendingCounter) CountByStatus(ctx context.Context, status models.RegistrationStatus) (int, error) {
	return s.n, nil
}

type stubOpenCounter struct{ n int }

func (s stubOpenCounter) CountOpen(ctx context.Context) (int, error) { return s.n, nil }

type stubActiveCounter struct{ n int }

func (s stubActiveCounter) CountActive(ctx context.Context) (int, error) { return s.n, nil }

func newTestDashboard(counts *stubDashboardCounts, cache *CacheService) *DashboardService {
	svc := NewDashboardService(DashboardServiceParams{
		Rooms:         counts,
		Registrations: stubPendingCounter{n: 3},
		Requests:      stubOpenCounter{n: 4},
		Announcements: stubActiveCounter{n: 2},
		Cache:         cache,
		Logger:        zap.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardSummaryComposesCounters(t *testing.T) {
	counts := &stubDashboardCounts{
		rooms:     models.RoomCounts{Total: 3, Vacant: 1, Occupied: 1, Full: 1},
		capacity:  6,
		occupancy: 4,
	}
	svc := newTestDashboard(counts, nil)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, summary.Rooms.Total)
	assert.Equal(t, 66.67, summary.OccupancyRate)
	assert.Equal(t, 3, summary.PendingRegistrations)
	assert.Equal(t, 4, summary.OpenRequests)
	assert.Equal(t, 2, summary.ActiveAnnouncements)
}

func TestDashboardSummaryCachedUntilInvalidated(t *testing.T) {
	counts := &stubDashboardCounts{rooms: models.RoomCounts{Total: 1, Vacant: 1}, capacity: 2}
	cache := NewCacheService(newMemCache(), nil, time.Minute, zap.NewNop(), true)
	svc := newTestDashboard(counts, cache)
	ctx := context.Background()

	_, hit, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	summary, hit, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, summary.Rooms.Vacant)
	assert.Equal(t, 1, counts.calls)

	cache.InvalidateOccupancy(ctx)
	_, hit, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, counts.calls)
}

func TestDashboardSummaryEmptyHostel(t *testing.T) {
	svc := newTestDashboard(&stubDashboardCounts{}, nil)

	summary, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.OccupancyRate)
}

func TestDashboardSummaryPropagatesErrors(t *testing.T) {
	svc := newTestDashboard(&stubDashboardCounts{roomErr: errors.New("db down")}, nil)

	_, _, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
