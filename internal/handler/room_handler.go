package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
	"github.com/noah-isme/hostel-api/pkg/response"
)

type roomService interface {
	List(ctx context.Context, filter models.RoomFilter) (*service.RoomListResult, bool, error)
	Get(ctx context.Context, id string) (*models.RoomDetail, error)
	Occupancy(ctx context.Context, id string) (*models.RoomOccupancy, error)
	Create(ctx context.Context, req service.CreateRoomRequest) (*models.Room, error)
	Update(ctx context.Context, id string, req service.UpdateRoomRequest) (*models.Room, error)
}

type furnitureService interface {
	List(ctx context.Context, roomID string) ([]models.FurnitureItem, error)
	Create(ctx context.Context, roomID string, req service.FurnitureRequest) (*models.FurnitureItem, error)
	Update(ctx context.Context, id string, req service.UpdateFurnitureRequest) (*models.FurnitureItem, error)
	Delete(ctx context.Context, id string) error
}

// RoomHandler exposes room and furniture endpoints.
type RoomHandler struct {
	rooms     roomService
	furniture furnitureService
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(rooms roomService, furniture furnitureService) *RoomHandler {
	return &RoomHandler{rooms: rooms, furniture: furniture}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Param floor query int false "Floor"
// @Param room_type query string false "Room type"
// @Param status query string false "Vacant, Occupied, Full or Maintenance"
// @Param search query string false "Room number search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	filter := models.RoomFilter{
		RoomType:  strings.TrimSpace(c.Query("room_type")),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filter.Page, filter.PageSize = pageParams(c)
	if raw := c.Query("floor"); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "floor must be a number"))
			return
		}
		filter.Floor = &floor
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := models.ParseRoomStatus(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown room status"))
			return
		}
		filter.Status = status
	}

	result, hit, err := h.rooms.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Rooms, result.Pagination, responseMeta(c, hit))
}

// Get godoc
// @Summary Room detail with current occupants and furniture
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Occupancy godoc
// @Summary Live occupancy of a room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/occupancy [get]
func (h *RoomHandler) Occupancy(c *gin.Context) {
	occupancy, err := h.rooms.Occupancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupancy, nil)
}

// Create godoc
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.CreateRoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid room payload"))
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.UpdateRoomRequest true "Room changes"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid room payload"))
		return
	}
	room, err := h.rooms.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// ListFurniture godoc
// @Summary List room furniture
// @Tags Furniture
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/furniture [get]
func (h *RoomHandler) ListFurniture(c *gin.Context) {
	items, err := h.furniture.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateFurniture godoc
// @Summary Add furniture to a room
// @Tags Furniture
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.FurnitureRequest true "Furniture payload"
// @Success 201 {object} response.Envelope
// @Router /rooms/{id}/furniture [post]
func (h *RoomHandler) CreateFurniture(c *gin.Context) {
	var req service.FurnitureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid furniture payload"))
		return
	}
	item, err := h.furniture.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateFurniture godoc
// @Summary Update furniture line
// @Tags Furniture
// @Accept json
// @Produce json
// @Param id path string true "Furniture ID"
// @Param payload body service.UpdateFurnitureRequest true "Furniture changes"
// @Success 200 {object} response.Envelope
// @Router /furniture/{id} [put]
func (h *RoomHandler) UpdateFurniture(c *gin.Context) {
	var req service.UpdateFurnitureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid furniture payload"))
		return
	}
	item, err := h.furniture.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteFurniture godoc
// @Summary Remove furniture line
// @Tags Furniture
// @Param id path string true "Furniture ID"
// @Success 204
// @Router /furniture/{id} [delete]
func (h *RoomHandler) DeleteFurniture(c *gin.Context) {
	if err := h.furniture.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
