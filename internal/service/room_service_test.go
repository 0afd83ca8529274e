package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

type fakeRoomStore struct {
	rooms        map[string]*models.Room
	listCalls    int
	updateErr    error
	beforeUpdate func(stored *models.Room)
}

func (f *fakeRoomStore) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	f.listCalls++
	var out []models.Room
	for _, r := range f.rooms {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeRoomStore) FindByID(ctx context.Context, id string) (*models.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	room := *r
	return &room, nil
}

func (f *fakeRoomStore) ExistsByNumber(ctx context.Context, number string, excludeID string) (bool, error) {
	for _, r := range f.rooms {
		if r.RoomNumber == number && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomStore) Create(ctx context.Context, room *models.Room) error {
	room.ID = "room-" + room.RoomNumber
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomStore) Update(ctx context.Context, room *models.Room, maintenance *bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.rooms[room.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if f.beforeUpdate != nil {
		f.beforeUpdate(stored)
	}
	if stored.CurrentOccupancy > room.MaxOccupancy {
		return repository.ErrCapacityBelowOccupancy
	}
	status := stored.Status
	if maintenance != nil {
		if *maintenance {
			status = models.RoomStatusMaintenance
		} else if status == models.RoomStatusMaintenance {
			status = ""
		}
	}
	room.CurrentOccupancy = stored.CurrentOccupancy
	room.Status = models.DeriveRoomStatus(status, room.CurrentOccupancy, room.MaxOccupancy)
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomStore) Occupants(ctx context.Context, roomID string) ([]models.RoomOccupant, error) {
	return nil, nil
}

type stubFurniture struct{}

func (stubFurniture) ListByRoom(ctx context.Context, roomID string) ([]models.FurnitureItem, error) {
	return []models.FurnitureItem{{ID: "f1", RoomID: roomID, Name: "Bed", Quantity: 2, Condition: models.ConditionGood}}, nil
}

func newTestRoomService(store *fakeRoomStore, cacheRepo CacheRepository) *RoomService {
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheRepo != nil)
	return NewRoomService(store, stubFurniture{}, cache, nil, zap.NewNop(), RoomServiceConfig{ListTTL: time.Minute})
}

func TestRoomServiceListIsCachedUntilMutation(t *testing.T) {
	store := &fakeRoomStore{rooms: map[string]*models.Room{"r1": {ID: "r1", RoomNumber: "101", MaxOccupancy: 2}}}
	svc := newTestRoomService(store, newMemCache())
	ctx := context.Background()

	first, hit, err := svc.List(ctx, models.RoomFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, first.Rooms, 1)

	_, hit, err = svc.List(ctx, models.RoomFilter{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, store.listCalls)

	_, err = svc.Create(ctx, CreateRoomRequest{RoomNumber: "102", RoomType: "double", MaxOccupancy: 2})
	require.NoError(t, err)

	second, hit, err := svc.List(ctx, models.RoomFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, second.Rooms, 2)
	assert.Equal(t, 2, store.listCalls)
}

func TestRoomServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newTestRoomService(&fakeRoomStore{rooms: map[string]*models.Room{}}, nil)
	_, _, err := svc.List(context.Background(), models.RoomFilter{Status: "Closed"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceCreateDuplicateNumber(t *testing.T) {
	store := &fakeRoomStore{rooms: map[string]*models.Room{"r1": {ID: "r1", RoomNumber: "101", MaxOccupancy: 2}}}
	svc := newTestRoomService(store, nil)

	_, err := svc.Create(context.Background(), CreateRoomRequest{RoomNumber: " 101 ", RoomType: "double", MaxOccupancy: 2})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceCreateValidatesCondition(t *testing.T) {
	svc := newTestRoomService(&fakeRoomStore{rooms: map[string]*models.Room{}}, nil)

	_, err := svc.Create(context.Background(), CreateRoomRequest{RoomNumber: "201", RoomType: "single", MaxOccupancy: 1, Condition: "Broken"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	room, err := svc.Create(context.Background(), CreateRoomRequest{RoomNumber: "201", RoomType: "single", MaxOccupancy: 1, Condition: "Under Repair"})
	require.NoError(t, err)
	assert.Equal(t, models.ConditionUnderRepair, room.Condition)
	assert.Equal(t, models.RoomStatusVacant, room.Status)
}

func TestRoomServiceUpdateCapacityBelowOccupancy(t *testing.T) {
	store := &fakeRoomStore{rooms: map[string]*models.Room{"r1": {ID: "r1", RoomNumber: "101", MaxOccupancy: 3, CurrentOccupancy: 2}}}
	svc := newTestRoomService(store, nil)

	one := 1
	_, err := svc.Update(context.Background(), "r1", UpdateRoomRequest{MaxOccupancy: &one})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceMaintenanceToggle(t *testing.T) {
	store := &fakeRoomStore{rooms: map[string]*models.Room{"r1": {ID: "r1", RoomNumber: "101", MaxOccupancy: 2, CurrentOccupancy: 2, Status: models.RoomStatusFull}}}
	svc := newTestRoomService(store, nil)
	ctx := context.Background()

	on, off := true, false
	room, err := svc.Update(ctx, "r1", UpdateRoomRequest{Maintenance: &on})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusMaintenance, room.Status)

	room, err = svc.Update(ctx, "r1", UpdateRoomRequest{Maintenance: &off})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusFull, room.Status)
}

func TestRoomServiceUpdateKeepsConcurrentMaintenance(t *testing.T) {
	store := &fakeRoomStore{rooms: map[string]*models.Room{"r1": {ID: "r1", RoomNumber: "101", Floor: 1, MaxOccupancy: 2, CurrentOccupancy: 1, Status: models.RoomStatusOccupied}}}
	store.beforeUpdate = func(stored *models.Room) { stored.Status = models.RoomStatusMaintenance }
	svc := newTestRoomService(store, nil)

	floor := 2
	room, err := svc.Update(context.Background(), "r1", UpdateRoomRequest{Floor: &floor})
	require.NoError(t, err)
	assert.Equal(t, 2, room.Floor)
	assert.Equal(t, models.RoomStatusMaintenance, room.Status)
}

func TestRoomServiceGetAndOccupancy(t *testing.T) {
	store := &fakeRoomStore{rooms: map[string]*models.Room{"r1": {ID: "r1", RoomNumber: "101", MaxOccupancy: 3, CurrentOccupancy: 1, Status: models.RoomStatusOccupied}}}
	svc := newTestRoomService(store, nil)

	detail, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.NotNil(t, detail.Occupants)
	assert.Len(t, detail.Furniture, 1)

	occ, err := svc.Occupancy(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, occ.Available)

	_, err = svc.Get(context.Background(), "nope")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
