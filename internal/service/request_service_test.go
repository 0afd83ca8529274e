package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

type fakeRequestStore struct {
	reqs       map[string]*models.Request
	lastFilter models.RequestFilter
	staleWrite bool
}

func (f *fakeRequestStore) Create(ctx context.Context, req *models.Request) error {
	req.ID = "req-1"
	clone := *req
	f.reqs[req.ID] = &clone
	return nil
}

func (f *fakeRequestStore) FindByID(ctx context.Context, id string) (*models.Request, error) {
	req, ok := f.reqs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeRequestStore) UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus, note *string) (bool, error) {
	if f.staleWrite || f.reqs[id].Status != from {
		return false, nil
	}
	f.reqs[id].Status = to
	return true, nil
}

type stubActiveAssignment struct {
	detail *models.AssignmentDetail
}

func (s stubActiveAssignment) ActiveForStudent(ctx context.Context, studentID string) (*models.AssignmentDetail, error) {
	if s.detail == nil {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

func newTestRequestService(assignment *models.AssignmentDetail) (*RequestService, *fakeRequestStore) {
	store := &fakeRequestStore{reqs: map[string]*models.Request{}}
	return NewRequestService(store, stubActiveAssignment{detail: assignment}, nil, nil, zap.NewNop()), store
}

func TestRequestCreateDefaultsRoomNumber(t *testing.T) {
	svc, _ := newTestRequestService(&models.AssignmentDetail{RoomNumber: "204"})

	req, err := svc.Create(context.Background(), CreateRequestRequest{Type: models.RequestTypePlumbing, Description: "Leaking tap"}, studentActor)
	require.NoError(t, err)
	require.NotNil(t, req.RoomNumber)
	assert.Equal(t, "204", *req.RoomNumber)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, studentActor.ID, req.UserID)
}

func TestRequestCreateWithoutRoom(t *testing.T) {
	svc, _ := newTestRequestService(nil)

	req, err := svc.Create(context.Background(), CreateRequestRequest{Type: models.RequestTypeOther, Priority: models.PriorityHigh, Description: "Wifi down"}, studentActor)
	require.NoError(t, err)
	assert.Nil(t, req.RoomNumber)

	_, err = svc.Create(context.Background(), CreateRequestRequest{Type: "teleport", Description: "x"}, studentActor)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRequestTransitions(t *testing.T) {
	svc, store := newTestRequestService(nil)
	ctx := context.Background()
	req, err := svc.Create(ctx, CreateRequestRequest{Type: models.RequestTypeCleaning, Description: "Dusty"}, studentActor)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, req.ID, UpdateRequestStatusRequest{Status: models.RequestCompleted})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	updated, err := svc.UpdateStatus(ctx, req.ID, UpdateRequestStatusRequest{Status: models.RequestInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.RequestInProgress, updated.Status)

	note := "cleaned"
	updated, err = svc.UpdateStatus(ctx, req.ID, UpdateRequestStatusRequest{Status: models.RequestCompleted, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "cleaned", *updated.ResolutionNote)

	_, err = svc.UpdateStatus(ctx, req.ID, UpdateRequestStatusRequest{Status: models.RequestRejected})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.RequestCompleted, store.reqs[req.ID].Status)

	_, err = svc.UpdateStatus(ctx, req.ID, UpdateRequestStatusRequest{Status: "Done"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRequestConcurrentUpdateDetected(t *testing.T) {
	svc, store := newTestRequestService(nil)
	ctx := context.Background()
	req, err := svc.Create(ctx, CreateRequestRequest{Type: models.RequestTypeElectrical, Description: "Socket"}, studentActor)
	require.NoError(t, err)

	store.staleWrite = true
	_, err = svc.UpdateStatus(ctx, req.ID, UpdateRequestStatusRequest{Status: models.RequestInProgress})
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRequestVisibility(t *testing.T) {
	svc, store := newTestRequestService(nil)
	ctx := context.Background()
	req, err := svc.Create(ctx, CreateRequestRequest{Type: models.RequestTypeFurniture, Description: "Chair"}, studentActor)
	require.NoError(t, err)

	_, _, err = svc.List(ctx, models.RequestFilter{UserID: "someone"}, studentActor)
	require.NoError(t, err)
	assert.Equal(t, studentActor.ID, store.lastFilter.UserID)

	_, _, err = svc.List(ctx, models.RequestFilter{}, staffActor)
	require.NoError(t, err)
	assert.Empty(t, store.lastFilter.UserID)

	_, err = svc.Get(ctx, req.ID, models.Actor{ID: "stu-2", Role: models.RoleStudent})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	_, err = svc.Get(ctx, req.ID, staffActor)
	assert.NoError(t, err)
}
