package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	"github.com/noah-isme/hostel-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

// fakeAssignmentStore keeps assignments in memory and mimics the
// transaction: check runs before anything is written.
type fakeAssignmentStore struct {
	rooms       map[string]*models.Room
	eligible    map[string]bool
	assignments []models.RoomAssignment
	insertErr   error
	nextID      int
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{rooms: map[string]*models.Room{}, eligible: map[string]bool{}}
}

func (f *fakeAssignmentStore) addRoom(id, number string, max int) *models.Room {
	room := &models.Room{ID: id, RoomNumber: number, MaxOccupancy: max, Status: models.RoomStatusVacant}
	f.rooms[id] = room
	return room
}

func (f *fakeAssignmentStore) activeIn(roomID string) int {
	n := 0
	for _, a := range f.assignments {
		if a.IsActive && a.RoomID == roomID {
			n++
		}
	}
	return n
}

func (f *fakeAssignmentStore) activeFor(studentID string) int {
	n := 0
	for _, a := range f.assignments {
		if a.IsActive && a.StudentID == studentID {
			n++
		}
	}
	return n
}

func (f *fakeAssignmentStore) seed(roomID string, studentIDs ...string) {
	for _, id := range studentIDs {
		f.nextID++
		f.assignments = append(f.assignments, models.RoomAssignment{ID: "seed-" + id, RoomID: roomID, StudentID: id, IsActive: true})
	}
}

func (f *fakeAssignmentStore) conflicts(studentIDs []string) []models.AssignmentConflict {
	wanted := map[string]bool{}
	for _, id := range studentIDs {
		wanted[id] = true
	}
	var out []models.AssignmentConflict
	for _, a := range f.assignments {
		if a.IsActive && wanted[a.StudentID] {
			out = append(out, models.AssignmentConflict{AssignmentID: a.ID, StudentID: a.StudentID, RoomID: a.RoomID, RoomNumber: f.rooms[a.RoomID].RoomNumber})
		}
	}
	return out
}

func (f *fakeAssignmentStore) Assign(ctx context.Context, params models.AssignParams, check repository.AssignmentCheck) (*models.AssignmentResult, error) {
	room, ok := f.rooms[params.RoomID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	occupancy := f.activeIn(room.ID)
	snapshot := models.AssignmentSnapshot{Room: *room, Occupancy: occupancy, Conflicts: f.conflicts(params.StudentIDs), EligibleID: map[string]bool{}}
	for _, id := range params.StudentIDs {
		if f.eligible[id] {
			snapshot.EligibleID[id] = true
		}
	}
	if err := check(snapshot); err != nil {
		return nil, err
	}
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if params.Force {
		for i := range f.assignments {
			for _, c := range snapshot.Conflicts {
				if f.assignments[i].ID == c.AssignmentID {
					f.assignments[i].IsActive = false
				}
			}
		}
	}
	result := &models.AssignmentResult{RoomID: room.ID}
	for _, id := range params.StudentIDs {
		f.nextID++
		a := models.RoomAssignment{ID: id + "-new", RoomID: room.ID, StudentID: id, IsActive: true, AssignedBy: params.AssignedBy}
		f.assignments = append(f.assignments, a)
		result.Assignments = append(result.Assignments, a)
	}
	if params.Force {
		result.Displaced = snapshot.Conflicts
	}
	result.Occupancy = f.activeIn(room.ID)
	result.Status = models.DeriveRoomStatus(room.Status, result.Occupancy, room.MaxOccupancy)
	return result, nil
}

func (f *fakeAssignmentStore) Vacate(ctx context.Context, roomID string) (*models.VacateResult, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	n := 0
	for i := range f.assignments {
		if f.assignments[i].IsActive && f.assignments[i].RoomID == roomID {
			f.assignments[i].IsActive = false
			n++
		}
	}
	return &models.VacateResult{RoomID: roomID, Vacated: n, Status: models.DeriveRoomStatus(room.Status, 0, room.MaxOccupancy)}, nil
}

func (f *fakeAssignmentStore) End(ctx context.Context, id string) (*models.RoomAssignment, error) {
	for i := range f.assignments {
		if f.assignments[i].ID == id {
			if !f.assignments[i].IsActive {
				return nil, repository.ErrAssignmentInactive
			}
			f.assignments[i].IsActive = false
			a := f.assignments[i]
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentStore) ActiveConflicts(ctx context.Context, studentIDs []string) ([]models.AssignmentConflict, error) {
	return f.conflicts(studentIDs), nil
}

func (f *fakeAssignmentStore) ActiveForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	for _, a := range f.assignments {
		if a.IsActive && a.StudentID == studentID {
			return &models.AssignmentDetail{RoomAssignment: a, RoomNumber: f.rooms[a.RoomID].RoomNumber}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAssignmentStore) ListByRoom(ctx context.Context, roomID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	var out []models.AssignmentDetail
	for _, a := range f.assignments {
		if a.RoomID == roomID && (!activeOnly || a.IsActive) {
			out = append(out, models.AssignmentDetail{RoomAssignment: a})
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) ListByStudent(ctx context.Context, studentID string) ([]models.AssignmentDetail, error) {
	var out []models.AssignmentDetail
	for _, a := range f.assignments {
		if a.StudentID == studentID {
			out = append(out, models.AssignmentDetail{RoomAssignment: a})
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) FindByID(ctx context.Context, id string) (*models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return room, nil
}

type recordingAudit struct {
	logs []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func newTestAssignmentService(store *fakeAssignmentStore) (*AssignmentService, *recordingAudit, *MetricsService) {
	audit := &recordingAudit{}
	metrics := NewMetricsService()
	return NewAssignmentService(store, store, audit, nil, metrics, nil, zap.NewNop()), audit, metrics
}

var staffActor = models.Actor{ID: "staff-1", Role: models.RoleStaff}

func TestAssignPlacesEligibleStudents(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 2)
	store.eligible["s1"] = true
	store.eligible["s2"] = true
	svc, audit, metrics := newTestAssignmentService(store)

	res, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1", " s2 "}}, staffActor)
	require.NoError(t, err)
	assert.Len(t, res.Assignments, 2)
	assert.Equal(t, 2, res.Occupancy)
	assert.Equal(t, models.RoomStatusFull, res.Status)
	require.NotNil(t, res.Assignments[0].AssignedBy)
	assert.Equal(t, "staff-1", *res.Assignments[0].AssignedBy)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRoomAssign, audit.logs[0].Action)
	assert.Equal(t, uint64(2), metrics.Snapshot().Assignments[AssignmentOutcomeAssigned])
}

func TestAssignCapacityExceededLeavesRowsUntouched(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 2)
	store.seed("r1", "a", "b")
	store.eligible["c"] = true
	svc, audit, metrics := newTestAssignmentService(store)

	_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"c"}}, staffActor)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Len(t, store.assignments, 2)
	assert.Equal(t, 0, store.activeFor("c"))
	assert.Empty(t, audit.logs)
	assert.Equal(t, uint64(1), metrics.Snapshot().Assignments[AssignmentOutcomeCapacityExceeded])
}

func TestAssignConflictWithoutForce(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 3)
	store.addRoom("r2", "202", 3)
	store.seed("r2", "s1")
	store.eligible["s1"] = true
	svc, _, _ := newTestAssignmentService(store)

	_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1"}}, staffActor)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAssignmentConflict.Code, appErr.Code)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	conflicts := details["conflicts"].([]models.AssignmentConflict)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "202", conflicts[0].RoomNumber)
	assert.Equal(t, 1, store.activeIn("r2"))
	assert.Equal(t, 0, store.activeIn("r1"))
}

func TestAssignForceMovesStudent(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 1)
	store.addRoom("r2", "202", 3)
	store.seed("r2", "s1")
	store.eligible["s1"] = true
	svc, _, metrics := newTestAssignmentService(store)

	res, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1"}, Force: true}, staffActor)
	require.NoError(t, err)
	require.Len(t, res.Displaced, 1)
	assert.Equal(t, "r2", res.Displaced[0].RoomID)
	assert.Equal(t, 1, store.activeFor("s1"))
	assert.Equal(t, 0, store.activeIn("r2"))
	assert.Equal(t, 1, store.activeIn("r1"))
	assert.Equal(t, uint64(1), metrics.Snapshot().Assignments[AssignmentOutcomeForced])
}

func TestAssignForceWithinSameRoomFreesPlace(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 2)
	store.seed("r1", "s1", "s2")
	store.eligible["s1"] = true
	svc, _, _ := newTestAssignmentService(store)

	res, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1"}, Force: true}, staffActor)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Occupancy)
	assert.Equal(t, 1, store.activeFor("s1"))
}

func TestAssignRejectsIneligibleStudents(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 4)
	store.eligible["s1"] = true
	svc, _, _ := newTestAssignmentService(store)

	_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1", "pending"}}, staffActor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.assignments)
}

func TestAssignValidation(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 4)
	svc, _, _ := newTestAssignmentService(store)

	cases := map[string][]string{
		"empty":     {},
		"blank":     {" "},
		"duplicate": {"s1", "s1"},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: ids}, staffActor)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestAssignUnknownRoom(t *testing.T) {
	svc, _, _ := newTestAssignmentService(newFakeAssignmentStore())

	_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "missing", StudentIDs: []string{"s1"}}, staffActor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignUniqueViolationMapsToConflict(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 4)
	store.eligible["s1"] = true
	store.insertErr = repository.ErrActiveAssignmentExists
	svc, _, _ := newTestAssignmentService(store)

	_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1"}}, staffActor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAssignmentConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignLockContentionMapsToConflict(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 4)
	store.eligible["s1"] = true
	store.insertErr = repository.ErrLockContention
	svc, _, _ := newTestAssignmentService(store)

	_, err := svc.Assign(context.Background(), AssignRoomRequest{RoomID: "r1", StudentIDs: []string{"s1"}, Force: true}, staffActor)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAssignmentConflict.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestValidateAssignmentMaintenanceRoom(t *testing.T) {
	snapshot := models.AssignmentSnapshot{
		Room:       models.Room{ID: "r1", RoomNumber: "101", MaxOccupancy: 4, Status: models.RoomStatusMaintenance},
		EligibleID: map[string]bool{"s1": true},
	}
	err := validateAssignment(snapshot, []string{"s1"}, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestValidateAssignmentExactFit(t *testing.T) {
	snapshot := models.AssignmentSnapshot{
		Room:       models.Room{ID: "r1", RoomNumber: "101", MaxOccupancy: 3, Status: models.RoomStatusOccupied},
		Occupancy:  1,
		EligibleID: map[string]bool{"s1": true, "s2": true},
	}
	assert.NoError(t, validateAssignment(snapshot, []string{"s1", "s2"}, false))
	snapshot.EligibleID["s3"] = true
	err := validateAssignment(snapshot, []string{"s1", "s2", "s3"}, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErrors.FromError(err).Code)
}

func TestVacateRoomIsIdempotent(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 2)
	store.seed("r1", "s1", "s2")
	svc, audit, _ := newTestAssignmentService(store)

	res, err := svc.VacateRoom(context.Background(), "r1", staffActor)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Vacated)
	assert.Equal(t, models.RoomStatusVacant, res.Status)

	res, err = svc.VacateRoom(context.Background(), "r1", staffActor)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Vacated)
	assert.Len(t, audit.logs, 2)

	_, err = svc.VacateRoom(context.Background(), "missing", staffActor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEndAssignment(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 2)
	store.seed("r1", "s1")
	svc, _, _ := newTestAssignmentService(store)

	ended, err := svc.EndAssignment(context.Background(), "seed-s1", staffActor)
	require.NoError(t, err)
	assert.False(t, ended.IsActive)

	_, err = svc.EndAssignment(context.Background(), "seed-s1", staffActor)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.EndAssignment(context.Background(), "nope", staffActor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCheckConflictsAndHistory(t *testing.T) {
	store := newFakeAssignmentStore()
	store.addRoom("r1", "101", 2)
	store.seed("r1", "s1")
	svc, _, _ := newTestAssignmentService(store)

	conflicts, err := svc.CheckConflicts(context.Background(), ConflictCheckRequest{StudentIDs: []string{"s1", "s9"}})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "101", conflicts[0].RoomNumber)

	none, err := svc.CheckConflicts(context.Background(), ConflictCheckRequest{StudentIDs: []string{"s9"}})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	history, err := svc.RoomHistory(context.Background(), "r1", false)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = svc.RoomHistory(context.Background(), "missing", false)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	current, err := svc.CurrentForStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "101", current.RoomNumber)

	_, err = svc.CurrentForStudent(context.Background(), "s9")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
