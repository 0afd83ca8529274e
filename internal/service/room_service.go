package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/logger"
)

type roomStore interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByNumber(ctx context.Context, number string, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room, maintenance *bool) error
	Occupants(ctx context.Context, roomID string) ([]models.RoomOccupant, error)
}

type furnitureLister interface {
	ListByRoom(ctx context.Context, roomID string) ([]models.FurnitureItem, error)
}

// CreateRoomRequest describes a new room.
type CreateRoomRequest struct {
	RoomNumber   string `json:"room_number" validate:"required,max=20"`
	Floor        int    `json:"floor" validate:"min=0,max=200"`
	RoomType     string `json:"room_type" validate:"required,max=50"`
	Size         string `json:"size" validate:"max=50"`
	MaxOccupancy int    `json:"max_occupancy" validate:"required,min=1,max=50"`
	Condition    string `json:"condition" validate:"omitempty,room_condition"`
}

// UpdateRoomRequest changes room attributes. Maintenance toggles the manual
// maintenance status; clearing it lets the status follow occupancy again.
type UpdateRoomRequest struct {
	RoomNumber   *string `json:"room_number" validate:"omitempty,min=1,max=20"`
	Floor        *int    `json:"floor" validate:"omitempty,min=0,max=200"`
	RoomType     *string `json:"room_type" validate:"omitempty,min=1,max=50"`
	Size         *string `json:"size" validate:"omitempty,max=50"`
	MaxOccupancy *int    `json:"max_occupancy" validate:"omitempty,min=1,max=50"`
	Condition    *string `json:"condition" validate:"omitempty,room_condition"`
	Maintenance  *bool   `json:"maintenance"`
}

// RoomListResult is the cached page of rooms.
type RoomListResult struct {
	Rooms      []models.Room      `json:"rooms"`
	Pagination *models.Pagination `json:"pagination"`
}

// RoomServiceConfig tunes room caching.
type RoomServiceConfig struct {
	ListTTL time.Duration
}

// RoomService manages rooms and their read models.
type RoomService struct {
	repo      roomStore
	furniture furnitureLister
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RoomServiceConfig
}

// NewRoomService constructs the service.
func NewRoomService(repo roomStore, furniture furnitureLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg RoomServiceConfig) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerRoomValidations(validate)
	return &RoomService{repo: repo, furniture: furniture, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

func registerRoomValidations(validate *validator.Validate) {
	_ = validate.RegisterValidation("room_condition", func(fl validator.FieldLevel) bool {
		return validCondition(fl.Field().String())
	})
}

func validCondition(value string) bool {
	switch models.RoomCondition(value) {
	case models.ConditionGood, models.ConditionFair, models.ConditionPoor, models.ConditionMaintenance, models.ConditionUnderRepair:
		return true
	}
	return false
}

// List returns a page of rooms. The bool reports a cache hit.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) (*RoomListResult, bool, error) {
	if filter.Status != "" && !validRoomStatus(filter.Status) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid room status filter")
	}
	result, hit, err := cached(ctx, s.cache, roomListKey(filter), s.cfg.ListTTL, func() (*RoomListResult, error) {
		rooms, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if rooms == nil {
			rooms = []models.Room{}
		}
		return &RoomListResult{Rooms: rooms, Pagination: newPagination(filter.Page, filter.PageSize, total)}, nil
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return result, hit, nil
}

func validRoomStatus(status models.RoomStatus) bool {
	switch status {
	case models.RoomStatusVacant, models.RoomStatusOccupied, models.RoomStatusFull, models.RoomStatusMaintenance:
		return true
	}
	return false
}

func roomListKey(f models.RoomFilter) string {
	floor := "*"
	if f.Floor != nil {
		floor = strconv.Itoa(*f.Floor)
	}
	return roomsCachePrefix + fmt.Sprintf("list:%s:%s:%s:%s:%d:%d:%s:%s",
		floor, f.RoomType, f.Status, strings.ToLower(f.Search), f.Page, f.PageSize, f.SortBy, strings.ToLower(f.SortOrder))
}

// Get returns a room with its occupants and furniture.
func (s *RoomService) Get(ctx context.Context, id string) (*models.RoomDetail, error) {
	room, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	occupants, err := s.repo.Occupants(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occupants")
	}
	furniture, err := s.furniture.ListByRoom(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load furniture")
	}
	if occupants == nil {
		occupants = []models.RoomOccupant{}
	}
	if furniture == nil {
		furniture = []models.FurnitureItem{}
	}
	return &models.RoomDetail{Room: *room, Occupants: occupants, Furniture: furniture}, nil
}

// Occupancy returns the live occupancy of a room.
func (s *RoomService) Occupancy(ctx context.Context, id string) (*models.RoomOccupancy, error) {
	room, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.RoomOccupancy{
		RoomID:           room.ID,
		RoomNumber:       room.RoomNumber,
		MaxOccupancy:     room.MaxOccupancy,
		CurrentOccupancy: room.CurrentOccupancy,
		Available:        room.Available(),
		Status:           room.Status,
	}, nil
}

// Create adds a room. Room numbers are unique.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid room payload")
	}
	if err := s.ensureUniqueNumber(ctx, req.RoomNumber, ""); err != nil {
		return nil, err
	}
	condition := models.RoomCondition(req.Condition)
	if condition == "" {
		condition = models.ConditionGood
	}
	room := &models.Room{
		RoomNumber:   req.RoomNumber,
		Floor:        req.Floor,
		RoomType:     strings.TrimSpace(req.RoomType),
		Size:         strings.TrimSpace(req.Size),
		MaxOccupancy: req.MaxOccupancy,
		Status:       models.RoomStatusVacant,
		Condition:    condition,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	s.cache.InvalidateOccupancy(ctx)
	return room, nil
}

// Update changes a room. Capacity may not drop below the live occupancy.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid room payload")
	}
	room, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RoomNumber != nil {
		number := strings.TrimSpace(*req.RoomNumber)
		if number != room.RoomNumber {
			if err := s.ensureUniqueNumber(ctx, number, room.ID); err != nil {
				return nil, err
			}
		}
		room.RoomNumber = number
	}
	if req.Floor != nil {
		room.Floor = *req.Floor
	}
	if req.RoomType != nil {
		room.RoomType = strings.TrimSpace(*req.RoomType)
	}
	if req.Size != nil {
		room.Size = strings.TrimSpace(*req.Size)
	}
	if req.MaxOccupancy != nil {
		room.MaxOccupancy = *req.MaxOccupancy
	}
	if req.Condition != nil {
		room.Condition = models.RoomCondition(*req.Condition)
	}
	if err := s.repo.Update(ctx, room, req.Maintenance); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityBelowOccupancy):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "max occupancy cannot be lower than current occupancy")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	s.cache.InvalidateOccupancy(ctx)
	logger.For(ctx, s.logger).Info("room updated", zap.String("room_id", room.ID), zap.String("status", string(room.Status)))
	return room, nil
}

func (s *RoomService) find(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

func (s *RoomService) ensureUniqueNumber(ctx context.Context, number, excludeID string) error {
	exists, err := s.repo.ExistsByNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s already exists", number))
	}
	return nil
}
