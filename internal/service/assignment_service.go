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
	"github.com/noah-isme/hostel-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/logger"
)

type assignmentStore interface {
	Assign(ctx context.Context, params models.AssignParams, check repository.AssignmentCheck) (*models.AssignmentResult, error)
	Vacate(ctx context.Context, roomID string) (*models.VacateResult, error)
	End(ctx context.Context, id string) (*models.RoomAssignment, error)
	ActiveConflicts(ctx context.Context, studentIDs []string) ([]models.AssignmentConflict, error)
	ActiveForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error)
	ListByRoom(ctx context.Context, roomID string, activeOnly bool) ([]models.AssignmentDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.AssignmentDetail, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// AssignRoomRequest places one or more students into a room.
type AssignRoomRequest struct {
	RoomID     string   `json:"-" validate:"required"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
	Force      bool     `json:"force"`
}

// ConflictCheckRequest asks which of the students already hold a room.
type ConflictCheckRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// AssignmentService coordinates room assignment, vacate and history.
type AssignmentService struct {
	store     assignmentStore
	rooms     roomFinder
	audit     auditWriter
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(store assignmentStore, rooms roomFinder, audit auditWriter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		store:     store,
		rooms:     rooms,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Assign runs the assignment transaction. Validation happens against the
// locked room state so concurrent assigners cannot overfill the room.
func (s *AssignmentService) Assign(ctx context.Context, req AssignRoomRequest, actor models.Actor) (*models.AssignmentResult, error) {
	req.StudentIDs = trimIDs(req.StudentIDs)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid assignment payload")
	}
	if dup := firstDuplicate(req.StudentIDs); dup != "" {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "duplicate student id", map[string]string{"student_id": dup})
	}

	params := models.AssignParams{RoomID: req.RoomID, StudentIDs: req.StudentIDs, Force: req.Force}
	if actor.ID != "" {
		params.AssignedBy = &actor.ID
	}

	result, err := s.store.Assign(ctx, params, func(snapshot models.AssignmentSnapshot) error {
		return validateAssignment(snapshot, req.StudentIDs, req.Force)
	})
	if err != nil {
		return nil, s.assignError(err)
	}

	s.metrics.RecordAssignment(AssignmentOutcomeAssigned, len(result.Assignments))
	s.metrics.RecordAssignment(AssignmentOutcomeForced, len(result.Displaced))
	s.cache.InvalidateOccupancy(ctx)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRoomAssign, "rooms", result.RoomID, map[string]interface{}{
		"student_ids": req.StudentIDs,
		"force":       req.Force,
		"displaced":   result.Displaced,
	})
	logger.For(ctx, s.logger).Info("room assigned",
		zap.String("room_id", result.RoomID),
		zap.Int("students", len(result.Assignments)),
		zap.Int("displaced", len(result.Displaced)),
		zap.Int("occupancy", result.Occupancy),
	)
	return result, nil
}

func (s *AssignmentService) assignError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "room not found")
	case errors.Is(err, repository.ErrActiveAssignmentExists):
		s.metrics.RecordAssignment(AssignmentOutcomeConflict, 1)
		return appErrors.Wrap(err, appErrors.ErrAssignmentConflict.Code, appErrors.ErrAssignmentConflict.Status, appErrors.ErrAssignmentConflict.Message)
	case errors.Is(err, repository.ErrLockContention):
		s.metrics.RecordAssignment(AssignmentOutcomeConflict, 1)
		return appErrors.Wrap(err, appErrors.ErrAssignmentConflict.Code, appErrors.ErrAssignmentConflict.Status, "room changed concurrently, please retry")
	case errors.Is(err, appErrors.ErrAssignmentConflict):
		s.metrics.RecordAssignment(AssignmentOutcomeConflict, 1)
		return err
	case errors.Is(err, appErrors.ErrCapacityExceeded):
		s.metrics.RecordAssignment(AssignmentOutcomeCapacityExceeded, 1)
		return err
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		s.metrics.RecordAssignment(AssignmentOutcomeRejected, 1)
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign room")
}

// validateAssignment decides whether the students may move into the room
// given the state observed under the room lock. It never writes.
func validateAssignment(snapshot models.AssignmentSnapshot, studentIDs []string, force bool) error {
	if len(studentIDs) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one student is required")
	}
	if dup := firstDuplicate(studentIDs); dup != "" {
		return appErrors.WithDetails(appErrors.ErrValidation, "duplicate student id", map[string]string{"student_id": dup})
	}

	var ineligible []string
	for _, id := range studentIDs {
		if !snapshot.EligibleID[id] {
			ineligible = append(ineligible, id)
		}
	}
	if len(ineligible) > 0 {
		return appErrors.WithDetails(appErrors.ErrPreconditionFailed,
			"students must hold an approved registration and not have passed out",
			map[string]interface{}{"student_ids": ineligible})
	}

	room := snapshot.Room
	if room.Status == models.RoomStatusMaintenance {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("room %s is under maintenance", room.RoomNumber))
	}

	if len(snapshot.Conflicts) > 0 && !force {
		return appErrors.WithDetails(appErrors.ErrAssignmentConflict, conflictMessage(snapshot.Conflicts),
			map[string]interface{}{"conflicts": snapshot.Conflicts})
	}

	freed := 0
	if force {
		for _, c := range snapshot.Conflicts {
			if c.RoomID == room.ID {
				freed++
			}
		}
	}
	if projected := snapshot.Occupancy - freed + len(studentIDs); projected > room.MaxOccupancy {
		available := room.MaxOccupancy - (snapshot.Occupancy - freed)
		if available < 0 {
			available = 0
		}
		return appErrors.WithDetails(appErrors.ErrCapacityExceeded,
			fmt.Sprintf("room %s has %d of %d places free, %d requested", room.RoomNumber, available, room.MaxOccupancy, len(studentIDs)),
			map[string]int{
				"max_occupancy":     room.MaxOccupancy,
				"current_occupancy": snapshot.Occupancy,
				"requested":         len(studentIDs),
				"available":         available,
			})
	}
	return nil
}

func conflictMessage(conflicts []models.AssignmentConflict) string {
	if len(conflicts) == 1 {
		return fmt.Sprintf("student %s is already assigned to room %s", conflicts[0].StudentID, conflicts[0].RoomNumber)
	}
	return fmt.Sprintf("%d students are already assigned to other rooms", len(conflicts))
}

// CheckConflicts lists the active assignments of the given students.
func (s *AssignmentService) CheckConflicts(ctx context.Context, req ConflictCheckRequest) ([]models.AssignmentConflict, error) {
	req.StudentIDs = trimIDs(req.StudentIDs)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid conflict check payload")
	}
	conflicts, err := s.store.ActiveConflicts(ctx, req.StudentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment conflicts")
	}
	if conflicts == nil {
		conflicts = []models.AssignmentConflict{}
	}
	return conflicts, nil
}

// VacateRoom ends every active assignment of the room. Vacating an empty room succeeds.
func (s *AssignmentService) VacateRoom(ctx context.Context, roomID string, actor models.Actor) (*models.VacateResult, error) {
	result, err := s.store.Vacate(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to vacate room")
	}
	s.metrics.RecordAssignment(AssignmentOutcomeVacated, result.Vacated)
	if result.Vacated > 0 {
		s.cache.InvalidateOccupancy(ctx)
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRoomVacate, "rooms", roomID, result)
	return result, nil
}

// EndAssignment ends one active assignment.
func (s *AssignmentService) EndAssignment(ctx context.Context, id string, actor models.Actor) (*models.RoomAssignment, error) {
	assignment, err := s.store.End(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		case errors.Is(err, repository.ErrAssignmentInactive):
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "assignment already ended")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end assignment")
	}
	s.metrics.RecordAssignment(AssignmentOutcomeEnded, 1)
	s.cache.InvalidateOccupancy(ctx)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAssignmentEnd, "room_assignments", id, assignment)
	return assignment, nil
}

// RoomHistory lists the assignments of a room, newest first.
func (s *AssignmentService) RoomHistory(ctx context.Context, roomID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	history, err := s.store.ListByRoom(ctx, roomID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room assignments")
	}
	if history == nil {
		history = []models.AssignmentDetail{}
	}
	return history, nil
}

// StudentHistory lists every assignment a student has held.
func (s *AssignmentService) StudentHistory(ctx context.Context, studentID string) ([]models.AssignmentDetail, error) {
	history, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student assignments")
	}
	if history == nil {
		history = []models.AssignmentDetail{}
	}
	return history, nil
}

// CurrentForStudent returns the student's active assignment.
func (s *AssignmentService) CurrentForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	detail, err := s.store.ActiveForStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no active room assignment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return detail, nil
}

func trimIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strings.TrimSpace(id))
	}
	return out
}

func firstDuplicate(ids []string) string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
	}
	return ""
}
