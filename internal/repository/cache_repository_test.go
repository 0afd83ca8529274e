package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-api/internal/models"
	appErrors "github.com/noah-isme/hostel-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*miniredis.Miniredis, *CacheRepository) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewCacheRepository(client, zap.NewNop())
}

func TestCacheRepositorySnapshotExpires(t *testing.T) {
	mr, repo := newCacheRepo(t)
	ctx := context.Background()

	room := models.Room{ID: "room-1", RoomNumber: "A101", MaxOccupancy: 2, CurrentOccupancy: 1, Status: models.RoomStatusOccupied}
	require.NoError(t, repo.Set(ctx, "hostel:rooms:abc", room, time.Minute))
	assert.True(t, mr.Exists("hostel:rooms:abc"))

	var got models.Room
	require.NoError(t, repo.Get(ctx, "hostel:rooms:abc", &got))
	assert.Equal(t, "A101", got.RoomNumber)
	assert.Equal(t, models.RoomStatusOccupied, got.Status)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "hostel:rooms:abc", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryCorruptSnapshotIsMiss(t *testing.T) {
	mr, repo := newCacheRepo(t)
	require.NoError(t, mr.Set("hostel:dashboard:summary", "{not json"))

	var dest map[string]int
	err := repo.Get(context.Background(), "hostel:dashboard:summary", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("hostel:dashboard:summary"))
}

func TestCacheRepositoryDeleteByPatternSpansBatches(t *testing.T) {
	mr, repo := newCacheRepo(t)
	ctx := context.Background()

	for i := 0; i < 2*scanBatch+5; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("hostel:rooms:%d", i), "[]"))
	}
	require.NoError(t, mr.Set("hostel:dashboard:summary", "{}"))

	require.NoError(t, repo.DeleteByPattern(ctx, "hostel:rooms:*"))
	assert.Equal(t, []string{"hostel:dashboard:summary"}, mr.Keys())

	require.NoError(t, repo.Delete(ctx, "hostel:dashboard:summary"))
	assert.Empty(t, mr.Keys())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	ctx := context.Background()
	for name, repo := range map[string]*CacheRepository{
		"nil interface": NewCacheRepository(nil, nil),
		"nil client":    NewCacheRepository((*redis.Client)(nil), nil),
	} {
		t.Run(name, func(t *testing.T) {
			var dest map[string]string
			assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
			assert.NoError(t, repo.Set(ctx, "k", "v", time.Second))
			assert.NoError(t, repo.Delete(ctx, "k"))
			assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
		})
	}
}
