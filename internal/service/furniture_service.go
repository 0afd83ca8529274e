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

type furnitureStore interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.FurnitureItem, error)
	FindByID(ctx context.Context, id string) (*models.FurnitureItem, error)
	Create(ctx context.Context, item *models.FurnitureItem) error
	Update(ctx context.Context, item *models.FurnitureItem) error
	Delete(ctx context.Context, id string) error
}

// FurnitureRequest creates a furniture line.
type FurnitureRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Quantity  int    `json:"quantity" validate:"min=0,max=1000"`
	Condition string `json:"condition" validate:"omitempty,room_condition"`
}

// UpdateFurnitureRequest changes a furniture line.
type UpdateFurnitureRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Quantity  *int    `json:"quantity" validate:"omitempty,min=0,max=1000"`
	Condition *string `json:"condition" validate:"omitempty,room_condition"`
}

// FurnitureService manages room inventory.
type FurnitureService struct {
	repo      furnitureStore
	rooms     roomFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFurnitureService constructs the service.
func NewFurnitureService(repo furnitureStore, rooms roomFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *FurnitureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRoomValidations(validate)
	return &FurnitureService{repo: repo, rooms: rooms, cache: cache, validator: validate, logger: logger}
}

// List returns the furniture of a room.
func (s *FurnitureService) List(ctx context.Context, roomID string) ([]models.FurnitureItem, error) {
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list furniture")
	}
	if items == nil {
		items = []models.FurnitureItem{}
	}
	return items, nil
}

// Create adds an item to a room.
func (s *FurnitureService) Create(ctx context.Context, roomID string, req FurnitureRequest) (*models.FurnitureItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid furniture payload")
	}
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return nil, err
	}
	item := &models.FurnitureItem{
		RoomID:    roomID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		Condition: models.RoomCondition(req.Condition),
	}
	if item.Condition == "" {
		item.Condition = models.ConditionGood
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create furniture")
	}
	s.cache.InvalidateOccupancy(ctx)
	return item, nil
}

// Update changes an item.
func (s *FurnitureService) Update(ctx context.Context, id string, req UpdateFurnitureRequest) (*models.FurnitureItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid furniture payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "furniture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load furniture")
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Condition != nil {
		item.Condition = models.RoomCondition(*req.Condition)
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update furniture")
	}
	s.cache.InvalidateOccupancy(ctx)
	return item, nil
}

// Delete removes an item.
func (s *FurnitureService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "furniture not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete furniture")
	}
	s.cache.InvalidateOccupancy(ctx)
	return nil
}

func (s *FurnitureService) ensureRoom(ctx context.Context, roomID string) error {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return nil
}
