package catalog_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/db"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/logger"
	"github.com/oggyb/cinemood/internal/repository"
	"github.com/oggyb/cinemood/internal/service/catalog"
	"github.com/oggyb/cinemood/internal/testutil"
)

func setupService(t *testing.T) (*catalog.Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	store := testutil.NewStore(t)
	rc, mr := testutil.NewRedis(t)
	appCtx := app.New(nil, store.DB, store, rc, testutil.NewTokenManager(t), logger.Discard())
	return catalog.NewService(appCtx), store.DB, mr
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *svcErr.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Status
}

func TestGenresAreCachedLocally(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := setupService(t)
	testutil.CreateGenre(t, gdb)

	genres, err := svc.ListGenres(ctx, gdb)
	require.NoError(t, err)
	require.Len(t, genres, 1)

	// a write behind the service's back is not seen until the cache entry is dropped
	testutil.CreateGenre(t, gdb, "Drama", "드라마")
	genres, _ = svc.ListGenres(ctx, gdb)
	assert.Len(t, genres, 1)

	_, err = svc.CreateGenre(ctx, gdb, "Comedy", "코미디")
	require.NoError(t, err)
	genres, _ = svc.ListGenres(ctx, gdb)
	assert.Len(t, genres, 3)

	_, err = svc.CreateGenre(ctx, gdb, "  ", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestGetMovieUsesRedis(t *testing.T) {
	ctx := context.Background()
	svc, gdb, mr := setupService(t)
	genre := testutil.CreateGenre(t, gdb)
	testutil.CreateMovie(t, gdb, *genre)

	movie, err := svc.GetMovie(ctx, gdb, testutil.TestMovieID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("movies:detail:100"))

	cached, err := svc.GetMovie(ctx, gdb, testutil.TestMovieID)
	require.NoError(t, err)
	assert.Equal(t, movie.Title, cached.Title)
	assert.Equal(t, movie.MBTIScores, cached.MBTIScores)
	require.Len(t, cached.Genres, 1)
	assert.Equal(t, "Action", cached.Genres[0].Name)
	require.NotNil(t, cached.ReleaseDate)
	assert.Equal(t, "2024-01-15", time.Time(*cached.ReleaseDate).UTC().Format(time.DateOnly))

	_, err = svc.GetMovie(ctx, gdb, 404)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestGetMovieConcurrentCallers(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := setupService(t)
	testutil.CreateMovie(t, gdb)

	var wg sync.WaitGroup
	results := make([]*db.Movie, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := svc.GetMovie(ctx, gdb, testutil.TestMovieID)
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	for _, m := range results {
		require.NotNil(t, m)
		assert.Equal(t, uint64(testutil.TestMovieID), m.ID)
	}
}

func TestGetMovieLoadOutlivesCaller(t *testing.T) {
	svc, gdb, mr := setupService(t)
	testutil.CreateMovie(t, gdb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := svc.GetMovie(ctx, gdb, testutil.TestMovieID)
	require.NoError(t, err)
	assert.Equal(t, uint64(testutil.TestMovieID), m.ID)
	assert.True(t, mr.Exists("movies:detail:100"), "shared load still fills the cache")
}

func TestCreateUpdateDeleteMovie(t *testing.T) {
	ctx := context.Background()
	svc, gdb, mr := setupService(t)
	genre := testutil.CreateGenre(t, gdb)

	released := time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC)
	movie, err := svc.CreateMovie(ctx, gdb, catalog.MovieInput{
		ID:          27205,
		Title:       "Inception",
		VoteAverage: 8.4,
		ReleaseDate: &released,
		GenreIDs:    []uint{genre.ID, genre.ID},
	})
	require.NoError(t, err)
	require.Len(t, movie.Genres, 1)
	assert.Empty(t, movie.MBTIScores)

	_, err = svc.CreateMovie(ctx, gdb, catalog.MovieInput{Title: "No id"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.GetMovie(ctx, gdb, 27205)
	require.NoError(t, err)
	require.True(t, mr.Exists("movies:detail:27205"))

	updated, err := svc.UpdateScores(ctx, gdb, 27205, catalog.ScoresInput{MBTIScores: db.ScoreMap{"INTP": 0.95}})
	require.NoError(t, err)
	assert.Equal(t, db.ScoreMap{"INTP": 0.95}, updated.MBTIScores)
	assert.False(t, mr.Exists("movies:detail:27205"), "detail cache dropped on update")

	_, err = svc.UpdateScores(ctx, gdb, 1, catalog.ScoresInput{})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	page, err := svc.ListMovies(ctx, gdb, repository.MovieFilter{GenreID: genre.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)

	require.NoError(t, svc.DeleteMovie(ctx, gdb, 27205))
	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.DeleteMovie(ctx, gdb, 27205)))
}

func TestDeleteGenreDropsMovieCache(t *testing.T) {
	ctx := context.Background()
	svc, gdb, mr := setupService(t)
	genre := testutil.CreateGenre(t, gdb)
	testutil.CreateMovie(t, gdb, *genre)

	_, err := svc.GetMovie(ctx, gdb, testutil.TestMovieID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGenre(ctx, gdb, genre.ID))
	assert.False(t, mr.Exists("movies:detail:100"))

	movie, err := svc.GetMovie(ctx, gdb, testutil.TestMovieID)
	require.NoError(t, err)
	assert.Empty(t, movie.Genres)

	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.DeleteGenre(ctx, gdb, genre.ID)))
}
