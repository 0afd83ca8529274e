package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Deactivate(ctx context.Context, id string) error
}

// CreateAnnouncementRequest describes create payload.
type CreateAnnouncementRequest struct {
	Title   string                  `json:"title" validate:"required,max=200"`
	Message string                  `json:"message" validate:"required,max=5000"`
	Type    models.AnnouncementType `json:"type" validate:"omitempty,oneof=info warning urgent"`
}

// UpdateAnnouncementRequest describes update payload.
type UpdateAnnouncementRequest struct {
	Title    *string                  `json:"title" validate:"omitempty,min=1,max=200"`
	Message  *string                  `json:"message" validate:"omitempty,min=1,max=5000"`
	Type     *models.AnnouncementType `json:"type" validate:"omitempty,oneof=info warning urgent"`
	IsActive *bool                    `json:"is_active"`
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns announcements. Only staff may see inactive ones.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter, actor models.Actor) ([]models.Announcement, *models.Pagination, error) {
	if !actor.Staff() {
		filter.IncludeInactive = false
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	if items == nil {
		items = []models.Announcement{}
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Create publishes an announcement.
func (s *AnnouncementService) Create(ctx context.Context, req CreateAnnouncementRequest, actor models.Actor) (*models.Announcement, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid announcement payload")
	}
	if req.Type == "" {
		req.Type = models.AnnouncementInfo
	}
	announcement := &models.Announcement{
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		IsActive:  true,
		CreatedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	return announcement, nil
}

// Update modifies an announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid announcement payload")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	if req.Title != nil {
		existing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Message != nil {
		existing.Message = strings.TrimSpace(*req.Message)
	}
	if req.Type != nil {
		existing.Type = *req.Type
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	return existing, nil
}

// Delete hides an announcement. Rows are kept.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	return nil
}
