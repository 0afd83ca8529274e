package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type roomCounter interface {
	CountByStatus(ctx context.Context) (models.RoomCounts, int, int, error)
}

type registrationCounter interface {
	CountByStatus(ctx context.Context, status models.RegistrationStatus) (int, error)
}

type openRequestCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

type activeAnnouncementCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the staff overview.
type DashboardService struct {
	rooms         roomCounter
	registrations registrationCounter
	requests      openRequestCounter
	announcements activeAnnouncementCounter
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Rooms         roomCounter
	Registrations registrationCounter
	Requests      openRequestCounter
	Announcements activeAnnouncementCounter
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		rooms:         params.Rooms,
		registrations: params.Registrations,
		requests:      params.Requests,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Summary returns hostel-wide counters and reports whether they came from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	summary, hit, err := cached(ctx, s.cache, dashboardCacheKey, s.cfg.CacheTTL, func() (*models.DashboardSummary, error) {
		return s.compose(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return summary, hit, nil
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	counts, capacity, occupancy, err := s.rooms.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}
	pending, err := s.registrations.CountByStatus(ctx, models.RegistrationPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	open, err := s.requests.CountOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count requests")
	}
	active, err := s.announcements.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count announcements")
	}

	summary := &models.DashboardSummary{
		Rooms:                counts,
		TotalCapacity:        capacity,
		TotalOccupancy:       occupancy,
		PendingRegistrations: pending,
		OpenRequests:         open,
		ActiveAnnouncements:  active,
		GeneratedAt:          s.now().UTC(),
	}
	if capacity > 0 {
		summary.OccupancyRate = math.Round(float64(occupancy)/float64(capacity)*10000) / 100
	}
	s.logger.Debug("dashboard summary composed", zap.Int("rooms", counts.Total), zap.Int("occupancy", occupancy))
	return summary, nil
}
