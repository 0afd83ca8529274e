package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/service"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type fakeRoomSrv struct {
	filter    models.RoomFilter
	hit       bool
	createErr error
}

func (f *fakeRoomSrv) List(ctx context.Context, filter models.RoomFilter) (*service.RoomListResult, bool, error) {
	f.filter = filter
	return &service.RoomListResult{
		Rooms:      []models.Room{{ID: "room-1", RoomNumber: "101", MaxOccupancy: 2}},
		Pagination: &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1},
	}, f.hit, nil
}

func (f *fakeRoomSrv) Get(ctx context.Context, id string) (*models.RoomDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
}

func (f *fakeRoomSrv) Occupancy(ctx context.Context, id string) (*models.RoomOccupancy, error) {
	return &models.RoomOccupancy{RoomID: id, MaxOccupancy: 2, CurrentOccupancy: 1, Available: 1}, nil
}

func (f *fakeRoomSrv) Create(ctx context.Context, req service.CreateRoomRequest) (*models.Room, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Room{ID: "room-new", RoomNumber: req.RoomNumber}, nil
}

func (f *fakeRoomSrv) Update(ctx context.Context, id string, req service.UpdateRoomRequest) (*models.Room, error) {
	return &models.Room{ID: id}, nil
}

type fakeFurnitureSrv struct {
	deleted string
}

func (f *fakeFurnitureSrv) List(ctx context.Context, roomID string) ([]models.FurnitureItem, error) {
	return []models.FurnitureItem{}, nil
}

func (f *fakeFurnitureSrv) Create(ctx context.Context, roomID string, req service.FurnitureRequest) (*models.FurnitureItem, error) {
	return &models.FurnitureItem{RoomID: roomID, Name: req.Name}, nil
}

func (f *fakeFurnitureSrv) Update(ctx context.Context, id string, req service.UpdateFurnitureRequest) (*models.FurnitureItem, error) {
	return &models.FurnitureItem{ID: id}, nil
}

func (f *fakeFurnitureSrv) Delete(ctx context.Context, id string) error {
	f.deleted = id
	return nil
}

func TestRoomHandlerListParsesFilters(t *testing.T) {
	rooms := &fakeRoomSrv{hit: true}
	handler := NewRoomHandler(rooms, &fakeFurnitureSrv{})
	c, w := newGinContext(http.MethodGet, "/rooms?floor=2&status=full&room_type=double&page=2&page_size=10", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, rooms.filter.Floor)
	assert.Equal(t, 2, *rooms.filter.Floor)
	assert.Equal(t, models.RoomStatusFull, rooms.filter.Status)
	assert.Equal(t, "double", rooms.filter.RoomType)
	assert.Equal(t, 2, rooms.filter.Page)
	assert.Equal(t, 10, rooms.filter.PageSize)
	assert.Equal(t, true, decodeEnvelope(t, w).Meta["cache_hit"])
}

func TestRoomHandlerListRejectsUnknownStatus(t *testing.T) {
	handler := NewRoomHandler(&fakeRoomSrv{}, &fakeFurnitureSrv{})
	c, w := newGinContext(http.MethodGet, "/rooms?status=haunted", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomHandlerListRejectsBadFloor(t *testing.T) {
	handler := NewRoomHandler(&fakeRoomSrv{}, &fakeFurnitureSrv{})
	c, w := newGinContext(http.MethodGet, "/rooms?floor=ground", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomHandlerGetNotFound(t *testing.T) {
	handler := NewRoomHandler(&fakeRoomSrv{}, &fakeFurnitureSrv{})
	c, w := newGinContext(http.MethodGet, "/rooms/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandlerCreateDuplicateNumber(t *testing.T) {
	handler := NewRoomHandler(&fakeRoomSrv{createErr: appErrors.Clone(appErrors.ErrConflict, "room number already exists")}, &fakeFurnitureSrv{})
	c, w := newGinContext(http.MethodPost, "/rooms", []byte(`{"room_number":"101","room_type":"double","max_occupancy":2}`))

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRoomHandlerDeleteFurniture(t *testing.T) {
	furniture := &fakeFurnitureSrv{}
	handler := NewRoomHandler(&fakeRoomSrv{}, furniture)
	c, w := newGinContext(http.MethodDelete, "/furniture/f-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "f-1"}}

	handler.DeleteFurniture(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "f-1", furniture.deleted)
}
