package reaction_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/db"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/logger"
	"github.com/oggyb/cinemood/internal/service/reaction"
	"github.com/oggyb/cinemood/internal/testutil"
)

//
// Test helpers
//

// seedMinimalTestData inserts a minimal, deterministic dataset.
//
// Dataset:
//   - Users: user1, user2, user3
//   - Movies: 100, 200
//   - Reactions:
//   - user1 → 100 = like
//   - user2 → 100 = like
//   - user3 → 100 = pass
//   - user1 → 200 = like
func seedMinimalTestData(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	for _, email := range []string{"u1@test.com", "u2@test.com", "u3@test.com"} {
		testutil.CreateUser(t, gdb, testutil.WithEmail(email))
	}
	testutil.CreateMovie(t, gdb)
	testutil.CreateMovieWith(t, gdb, nil, testutil.WithMovieID(200))

	reactions := []db.Reaction{
		{UserID: 1, MovieID: 100, Liked: true},
		{UserID: 2, MovieID: 100, Liked: true},
		{UserID: 3, MovieID: 100, Liked: false},
		{UserID: 1, MovieID: 200, Liked: true},
	}
	require.NoError(t, gdb.Create(&reactions).Error)
}

// setupService spins up an isolated store, seeds test data, starts a
// miniredis, and wires everything into a reaction Service.
func setupService(t *testing.T) (*reaction.Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	store := testutil.NewStore(t)
	seedMinimalTestData(t, store.DB)

	rc, mr := testutil.NewRedis(t)
	appCtx := app.New(nil, store.DB, store, rc, testutil.NewTokenManager(t), logger.Discard())
	return reaction.NewService(appCtx), store.DB, mr
}

//
// Tests
//

func TestCountLikesCache(t *testing.T) {
	ctx := context.Background()
	svc, gdb, mr := setupService(t)

	// First call → DB
	n, err := svc.CountLikes(ctx, gdb, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("movies:likes:count:100"))

	// Second call → cache, even if the table changes underneath
	require.NoError(t, gdb.Where("movie_id = ?", 100).Delete(&db.Reaction{}).Error)
	n, err = svc.CountLikes(ctx, gdb, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPutReactionAdjustsWarmCount(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := setupService(t)

	_, err := svc.CountLikes(ctx, gdb, 100)
	require.NoError(t, err)

	// pass → like
	res, err := svc.PutReaction(ctx, gdb, 3, 100, true)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	n, err := svc.CountLikes(ctx, gdb, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// like → pass
	_, err = svc.PutReaction(ctx, gdb, 1, 100, false)
	require.NoError(t, err)
	n, _ = svc.CountLikes(ctx, gdb, 100)
	assert.Equal(t, int64(2), n)
}

func TestPutReactionColdCacheStaysCold(t *testing.T) {
	ctx := context.Background()
	svc, gdb, mr := setupService(t)

	_, err := svc.PutReaction(ctx, gdb, 3, 200, true)
	require.NoError(t, err)
	assert.False(t, mr.Exists("movies:likes:count:200"))

	n, err := svc.CountLikes(ctx, gdb, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPutReactionUnknownMovie(t *testing.T) {
	svc, gdb, _ := setupService(t)

	_, err := svc.PutReaction(context.Background(), gdb, 1, 999, true)
	var appErr *svcErr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestListLiked(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := setupService(t)

	page, err := svc.ListLiked(ctx, gdb, 1, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Nil(t, page.NextPaginationToken)

	page, err = svc.ListLiked(ctx, gdb, 3, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	bad := "%%%"
	_, err = svc.ListLiked(ctx, gdb, 1, &bad, 10)
	var appErr *svcErr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}
