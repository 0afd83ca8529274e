package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/response"
)

type assignmentService interface {
	Assign(ctx context.Context, req service.AssignRoomRequest, actor models.Actor) (*models.AssignmentResult, error)
	CheckConflicts(ctx context.Context, req service.ConflictCheckRequest) ([]models.AssignmentConflict, error)
	VacateRoom(ctx context.Context, roomID string, actor models.Actor) (*models.VacateResult, error)
	EndAssignment(ctx context.Context, id string, actor models.Actor) (*models.RoomAssignment, error)
	RoomHistory(ctx context.Context, roomID string, activeOnly bool) ([]models.AssignmentDetail, error)
	StudentHistory(ctx context.Context, studentID string) ([]models.AssignmentDetail, error)
	CurrentForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error)
}

// AssignmentHandler exposes room assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Assign godoc
// @Summary Assign students to a room
// @Description Places every listed student in the room or none of them. With force, students active elsewhere are moved.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.AssignRoomRequest true "Students to assign"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rooms/{id}/assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid assignment payload"))
		return
	}
	req.RoomID = c.Param("id")

	result, err := h.service.Assign(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Conflicts godoc
// @Summary Check which students already hold a room
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.ConflictCheckRequest true "Students to check"
// @Success 200 {object} response.Envelope
// @Router /assignments/conflicts [post]
func (h *AssignmentHandler) Conflicts(c *gin.Context) {
	var req service.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid conflict check payload"))
		return
	}
	conflicts, err := h.service.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"has_conflicts": len(conflicts) > 0,
		"conflicts":     conflicts,
	}, nil)
}

// Vacate godoc
// @Summary Vacate a room
// @Description Ends every active assignment of the room. Vacating an empty room is a no-op.
// @Tags Assignments
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/vacate [post]
func (h *AssignmentHandler) Vacate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.VacateRoom(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// End godoc
// @Summary End a single assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) End(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	assignment, err := h.service.EndAssignment(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// RoomHistory godoc
// @Summary Assignment history of a room
// @Tags Assignments
// @Produce json
// @Param id path string true "Room ID"
// @Param active query bool false "Only active assignments"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/assignments [get]
func (h *AssignmentHandler) RoomHistory(c *gin.Context) {
	history, err := h.service.RoomHistory(c.Request.Context(), c.Param("id"), queryBool(c, "active"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// StudentCurrent godoc
// @Summary Current room of a student
// @Tags Assignments
// @Produce json
// @Param id path string true "Student profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/assignment [get]
func (h *AssignmentHandler) StudentCurrent(c *gin.Context) {
	detail, err := h.service.CurrentForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// StudentHistory godoc
// @Summary Every room a student has held
// @Tags Assignments
// @Produce json
// @Param id path string true "Student profile ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/assignments [get]
func (h *AssignmentHandler) StudentHistory(c *gin.Context) {
	history, err := h.service.StudentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}
