package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
	UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus, note *string) (bool, error)
}

type activeAssignmentReader interface {
	ActiveForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error)
}

// CreateRequestRequest raises a service ticket.
type CreateRequestRequest struct {
	Type        models.RequestType     `json:"type" validate:"required,oneof=maintenance cleaning furniture electrical plumbing other"`
	Priority    models.RequestPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	RoomNumber  *string                `json:"room_number" validate:"omitempty,max=20"`
	Description string                 `json:"description" validate:"required,max=2000"`
}

// UpdateRequestStatusRequest moves a ticket along its lifecycle.
type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required"`
	Note   *string              `json:"note" validate:"omitempty,max=1000"`
}

// RequestService manages maintenance and service requests.
type RequestService struct {
	repo        requestStore
	assignments activeAssignmentReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(repo requestStore, assignments activeAssignmentReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, assignments: assignments, cache: cache, validator: validate, logger: logger}
}

// Create records a request for the caller. The room number defaults to the
// caller's current room.
func (s *RequestService) Create(ctx context.Context, req CreateRequestRequest, actor models.Actor) (*models.Request, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid request payload")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	roomNumber := trimmedOrNil(req.RoomNumber)
	if roomNumber == nil && s.assignments != nil {
		current, err := s.assignments.ActiveForStudent(ctx, actor.ID)
		switch {
		case err == nil:
			roomNumber = &current.RoomNumber
		case !errors.Is(err, sql.ErrNoRows):
			s.logger.Warn("failed to resolve current room for request", zap.String("user_id", actor.ID), zap.Error(err))
		}
	}

	request := &models.Request{
		UserID:      actor.ID,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      models.RequestPending,
		RoomNumber:  roomNumber,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	return request, nil
}

// List returns requests. Students only see their own.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter, actor models.Actor) ([]models.Request, *models.Pagination, error) {
	if !actor.Staff() {
		filter.UserID = actor.ID
	}
	reqs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if reqs == nil {
		reqs = []models.Request{}
	}
	return reqs, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a request the caller may see.
func (s *RequestService) Get(ctx context.Context, id string, actor models.Actor) (*models.Request, error) {
	req, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() && req.UserID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	return req, nil
}

// UpdateStatus applies a lifecycle transition. Completed and Rejected are terminal.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, req UpdateRequestStatusRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid status payload")
	}
	if !validRequestStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("cannot move request from %s to %s", current.Status, req.Status))
	}
	note := trimmedOrNil(req.Note)
	ok, err := s.repo.UpdateStatus(ctx, id, current.Status, req.Status, note)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "request status changed concurrently, reload and retry")
	}
	current.Status = req.Status
	if note != nil {
		current.ResolutionNote = note
	}
	s.cache.Invalidate(ctx, []string{dashboardCacheKey})
	return current, nil
}

func (s *RequestService) find(ctx context.Context, id string) (*models.Request, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return req, nil
}

func validRequestStatus(status models.RequestStatus) bool {
	switch status {
	case models.RequestPending, models.RequestInProgress, models.RequestCompleted, models.RequestRejected:
		return true
	}
	return false
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
