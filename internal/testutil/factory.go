package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/db"
)

// Defaults of the standard test fixtures.
const (
	TestEmail    = "test@example.com"
	TestPassword = "password123"
	TestNickname = "TestUser"
	TestMBTI     = "INTJ"
	TestMovieID  = 100
)

// UserOption customizes CreateUser.
type UserOption func(u *db.User, password *string)

func WithEmail(email string) UserOption {
	return func(u *db.User, _ *string) { u.Email = email }
}

func WithPassword(password string) UserOption {
	return func(_ *db.User, p *string) { *p = password }
}

func WithNickname(nickname string) UserOption {
	return func(u *db.User, _ *string) { u.Nickname = nickname }
}

func WithMBTI(mbti string) UserOption {
	return func(u *db.User, _ *string) { u.MBTI = &mbti }
}

// CreateUser inserts an active user (test@example.com / password123 by
// default) and returns it as stored.
func CreateUser(t testing.TB, gdb *gorm.DB, opts ...UserOption) *db.User {
	t.Helper()

	mbti := TestMBTI
	password := TestPassword
	user := &db.User{
		Email:    TestEmail,
		Nickname: TestNickname,
		MBTI:     &mbti,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(user, &password)
	}

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user.PasswordHash = hash

	require.NoError(t, gdb.Create(user).Error)

	var stored db.User
	require.NoError(t, gdb.First(&stored, user.ID).Error)
	return &stored
}

// CreateGenre inserts a genre (Action / 액션 by default).
func CreateGenre(t testing.TB, gdb *gorm.DB, names ...string) *db.Genre {
	t.Helper()

	genre := &db.Genre{Name: "Action", NameKo: "액션"}
	if len(names) > 0 {
		genre.Name = names[0]
	}
	if len(names) > 1 {
		genre.NameKo = names[1]
	}
	require.NoError(t, gdb.Create(genre).Error)

	var stored db.Genre
	require.NoError(t, gdb.First(&stored, genre.ID).Error)
	return &stored
}

// MovieOption customizes CreateMovie.
type MovieOption func(m *db.Movie)

func WithMovieID(id uint64) MovieOption {
	return func(m *db.Movie) { m.ID = id }
}

func WithTitle(title string) MovieOption {
	return func(m *db.Movie) { m.Title = title }
}

func WithPopularity(p float64) MovieOption {
	return func(m *db.Movie) { m.Popularity = p }
}

// CreateMovie inserts the standard test movie (id 100) linked to genres and
// returns it re-read with its genres.
func CreateMovie(t testing.TB, gdb *gorm.DB, genres ...db.Genre) *db.Movie {
	t.Helper()
	return CreateMovieWith(t, gdb, genres)
}

// CreateMovieWith is CreateMovie with options applied to the defaults.
func CreateMovieWith(t testing.TB, gdb *gorm.DB, genres []db.Genre, opts ...MovieOption) *db.Movie {
	t.Helper()

	released := datatypes.Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	movie := &db.Movie{
		ID:            TestMovieID,
		Title:         "Test Movie",
		TitleKo:       "테스트 영화",
		VoteAverage:   7.5,
		VoteCount:     100,
		Popularity:    50.0,
		Runtime:       120,
		Overview:      "A test movie overview",
		OverviewKo:    "테스트 영화 개요",
		ReleaseDate:   &released,
		PosterPath:    "/test.jpg",
		MBTIScores:    db.ScoreMap{"INTJ": 0.8, "ENFP": 0.6},
		WeatherScores: db.ScoreMap{"sunny": 0.7, "rainy": 0.3},
		EmotionTags:   db.ScoreMap{"healing": 0.8, "tension": 0.2},
		Genres:        genres,
	}
	for _, opt := range opts {
		opt(movie)
	}

	require.NoError(t, gdb.Omit("Genres.*").Create(movie).Error)

	var stored db.Movie
	require.NoError(t, gdb.Preload("Genres").First(&stored, movie.ID).Error)
	return &stored
}

// AuthHeader returns an Authorization header carrying a fresh token for user.
func AuthHeader(t testing.TB, tokens *auth.TokenManager, user *db.User) http.Header {
	t.Helper()
	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)
	return http.Header{"Authorization": {auth.BearerHeader(token)}}
}
