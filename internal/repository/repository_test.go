package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/cinemood/internal/db"
	"github.com/oggyb/cinemood/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        db.NowFunc,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedCatalog(t *testing.T, gdb *gorm.DB) (action, drama db.Genre) {
	t.Helper()
	action = db.Genre{ID: 28, Name: "Action", NameKo: "액션"}
	drama = db.Genre{ID: 18, Name: "Drama", NameKo: "드라마"}
	require.NoError(t, gdb.Create(&[]db.Genre{action, drama}).Error)

	movies := []db.Movie{
		{ID: 1, Title: "Alpha", VoteAverage: 6.1, Popularity: 10, Genres: []db.Genre{action}},
		{ID: 2, Title: "Bravo", VoteAverage: 8.4, Popularity: 30, Genres: []db.Genre{action, drama}},
		{ID: 3, Title: "Charlie", VoteAverage: 7.2, Popularity: 20},
	}
	repo := repository.NewMovieRepository(gdb)
	for i := range movies {
		require.NoError(t, repo.Create(context.Background(), &movies[i]))
	}
	return action, drama
}

func movieIDs(movies []db.Movie) []uint64 {
	ids := make([]uint64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	user := &db.User{Email: "Test@Example.com ", PasswordHash: "x", Nickname: "TestUser"}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "TEST@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	exists, err := repo.ExistsByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, &db.User{Email: "test@example.com", PasswordHash: "y", Nickname: "Dup"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// reactions go with the account
	require.NoError(t, gdb.Create(&db.Reaction{UserID: user.ID, MovieID: 9, Liked: true}).Error)
	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	var n int64
	gdb.Model(&db.Reaction{}).Count(&n)
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), gorm.ErrRecordNotFound)
}

func TestMovieRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedCatalog(t, gdb)
	repo := repository.NewMovieRepository(gdb)

	m, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, m.Genres, 2)
	assert.Equal(t, "Drama", m.Genres[0].Name)
	assert.Equal(t, "Action", m.Genres[1].Name)

	// zero genres is allowed
	m, err = repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, m.Genres)

	ok, err := repo.Exists(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.Create(ctx, &db.Movie{ID: 1, Title: "Again"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMovieRepository_List(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	action, _ := seedCatalog(t, gdb)
	repo := repository.NewMovieRepository(gdb)

	movies, total, err := repo.List(ctx, repository.MovieFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint64{2, 3, 1}, movieIDs(movies), "default sort is popularity desc")

	movies, total, err = repo.List(ctx, repository.MovieFilter{SortBy: "title", Order: "asc", PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint64{3}, movieIDs(movies))

	movies, total, err = repo.List(ctx, repository.MovieFilter{GenreID: action.ID, SortBy: "vote_average"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint64{2, 1}, movieIDs(movies))
	assert.NotEmpty(t, movies[0].Genres)
}

func TestMovieRepository_UpdateScores(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedCatalog(t, gdb)
	repo := repository.NewMovieRepository(gdb)

	m, err := repo.UpdateScores(ctx, 1, db.ScoreMap{"INTJ": 0.9}, nil, db.ScoreMap{"healing": 0.4})
	require.NoError(t, err)
	assert.Equal(t, db.ScoreMap{"INTJ": 0.9}, m.MBTIScores)
	assert.Empty(t, m.WeatherScores)
	assert.Equal(t, db.ScoreMap{"healing": 0.4}, m.EmotionTags)
	assert.Len(t, m.Genres, 1, "associations untouched")

	_, err = repo.UpdateScores(ctx, 1, db.ScoreMap{"INTJ": 1.5}, nil, nil)
	assert.ErrorIs(t, err, db.ErrOutOfBounds)

	_, err = repo.UpdateScores(ctx, 99, nil, nil, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMovieRepository_Delete(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	seedCatalog(t, gdb)
	repo := repository.NewMovieRepository(gdb)
	require.NoError(t, gdb.Create(&db.Reaction{UserID: 1, MovieID: 2, Liked: true}).Error)

	require.NoError(t, repo.Delete(ctx, 2))

	var links, reactions int64
	gdb.Table(db.MovieGenreTable).Where("movie_id = ?", 2).Count(&links)
	gdb.Model(&db.Reaction{}).Count(&reactions)
	assert.Zero(t, links)
	assert.Zero(t, reactions)

	assert.ErrorIs(t, repo.Delete(ctx, 2), gorm.ErrRecordNotFound)
}

func TestGenreRepository_DeleteDetachesMovies(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	action, _ := seedCatalog(t, gdb)
	genres := repository.NewGenreRepository(gdb)

	require.NoError(t, genres.Delete(ctx, action.ID))

	list, err := genres.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Drama", list[0].Name)

	// movies survive with the remaining genres
	m, err := repository.NewMovieRepository(gdb).GetByID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, m.Genres, 1)
	assert.Equal(t, "Drama", m.Genres[0].Name)
	m, err = repository.NewMovieRepository(gdb).GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, m.Genres)

	assert.ErrorIs(t, genres.Delete(ctx, action.ID), gorm.ErrRecordNotFound)

	found, err := genres.FindByIDs(ctx, []uint{18, 28})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestReactionRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewReactionRepository(gdb)

	// insert like
	was, err := repo.Upsert(ctx, 1, 2, true)
	require.NoError(t, err)
	assert.False(t, was)

	// overwrite with pass
	was, err = repo.Upsert(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.True(t, was)

	var r db.Reaction
	require.NoError(t, gdb.First(&r).Error)
	assert.False(t, r.Liked)

	liked, err := repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestReactionRepository_CountLikes(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewReactionRepository(gdb)

	_, _ = repo.Upsert(ctx, 1, 7, true)
	_, _ = repo.Upsert(ctx, 2, 7, true)
	_, _ = repo.Upsert(ctx, 3, 7, false)
	_, _ = repo.Upsert(ctx, 1, 8, true)

	n, err := repo.CountLikes(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestReactionRepository_ListLikedPagination(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewReactionRepository(gdb)

	// fixed timestamps so ordering does not depend on the clock
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, gdb.Create(&db.Reaction{
			UserID: 1, MovieID: i, Liked: true,
			CreatedAt: base, UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	// ties on updated_at break by movie id
	require.NoError(t, gdb.Create(&db.Reaction{UserID: 1, MovieID: 6, Liked: true, CreatedAt: base, UpdatedAt: base.Add(5 * time.Minute)}).Error)
	require.NoError(t, gdb.Create(&db.Reaction{UserID: 1, MovieID: 7, Liked: false, CreatedAt: base, UpdatedAt: base}).Error)
	require.NoError(t, gdb.Create(&db.Reaction{UserID: 2, MovieID: 1, Liked: true, CreatedAt: base, UpdatedAt: base}).Error)

	var seen []uint64
	var token *string
	for page := 0; page < 5; page++ {
		rows, next, err := repo.ListLiked(ctx, 1, token, 4)
		require.NoError(t, err)
		for _, r := range rows {
			seen = append(seen, r.MovieID)
		}
		if next == nil {
			break
		}
		token = next
	}
	assert.Equal(t, []uint64{6, 5, 4, 3, 2, 1}, seen)

	bad := "not-a-token!"
	_, _, err := repo.ListLiked(ctx, 1, &bad, 4)
	assert.Error(t, err)
}

func TestPluckHelpers(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	action, _ := seedCatalog(t, gdb)

	ids, err := repository.NewGenreRepository(gdb).MovieIDs(ctx, action.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 2}, ids)

	reactions := repository.NewReactionRepository(gdb)
	_, _ = reactions.Upsert(ctx, 5, 1, true)
	_, _ = reactions.Upsert(ctx, 5, 2, false)
	ids, err = reactions.LikedMovieIDs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)
}
