package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/cache"
	"github.com/oggyb/cinemood/internal/db"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/repository"
)

const (
	genreListKey   = "genres:all"
	genreCacheSize = 16
	genreCacheTTL  = 10 * time.Minute
)

// Service exposes the genre and movie catalogue.
//
// Caching:
//   - the genre list lives in a small in-process LRU, dropped on writes.
//   - movie details live in Redis; concurrent misses for one id share a
//     single database load.
type Service struct {
	appCtx *app.AppContext
	genres *cache.LocalCache[[]db.Genre]
	sf     singleflight.Group
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		genres: cache.NewLocalCache[[]db.Genre](genreCacheSize, genreCacheTTL),
	}
}

// MovieInput carries the writable attributes of a movie.
type MovieInput struct {
	ID            uint64
	Title         string
	TitleKo       string
	VoteAverage   float64
	VoteCount     int
	Popularity    float64
	IsAdult       bool
	Runtime       int
	Overview      string
	OverviewKo    string
	ReleaseDate   *time.Time
	PosterPath    string
	MBTIScores    db.ScoreMap
	WeatherScores db.ScoreMap
	EmotionTags   db.ScoreMap
	GenreIDs      []uint
}

// ScoresInput replaces the given score maps; nil maps are left as stored.
type ScoresInput struct {
	MBTIScores    db.ScoreMap
	WeatherScores db.ScoreMap
	EmotionTags   db.ScoreMap
}

// MoviePage is one page of the movie listing.
type MoviePage struct {
	Items    []db.Movie `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// ListGenres returns every genre, served from the local cache when warm.
func (s *Service) ListGenres(ctx context.Context, sess *gorm.DB) ([]db.Genre, error) {
	if genres, ok := s.genres.Get(genreListKey); ok {
		return genres, nil
	}
	genres, err := repository.NewGenreRepository(sess).List(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if genres == nil {
		genres = []db.Genre{}
	}
	s.genres.Set(genreListKey, genres)
	return genres, nil
}

func (s *Service) CreateGenre(ctx context.Context, sess *gorm.DB, name, nameKo string) (*db.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, svcErr.InvalidArgument("name must not be empty")
	}
	genre := &db.Genre{Name: name, NameKo: strings.TrimSpace(nameKo)}
	if err := repository.NewGenreRepository(sess).Create(ctx, genre); err != nil {
		return nil, svcErr.Map(err)
	}
	s.genres.Delete(genreListKey)
	return genre, nil
}

// DeleteGenre detaches the genre from its movies and removes it.
func (s *Service) DeleteGenre(ctx context.Context, sess *gorm.DB, id uint) error {
	repo := repository.NewGenreRepository(sess)
	movieIDs, err := repo.MovieIDs(ctx, id)
	if err != nil {
		return svcErr.Map(err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("genre not found")
		}
		return svcErr.Map(err)
	}
	s.genres.Delete(genreListKey)
	for _, movieID := range movieIDs {
		s.dropMovie(ctx, movieID)
	}
	s.appCtx.Logger.Info("genre deleted", "genre_id", id, "detached_movies", len(movieIDs))
	return nil
}

// ListMovies returns one page of the catalogue.
func (s *Service) ListMovies(ctx context.Context, sess *gorm.DB, filter repository.MovieFilter) (*MoviePage, error) {
	movies, total, err := repository.NewMovieRepository(sess).List(ctx, filter)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if movies == nil {
		movies = []db.Movie{}
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	} else if size > 100 {
		size = 100
	}
	return &MoviePage{Items: movies, Total: total, Page: page, PageSize: size}, nil
}

// GetMovie returns a movie with its genres.
// Cache-first strategy:
//  1. Attempts to read the detail payload from Redis.
//  2. On miss, loads from DB (coalesced per id) and caches it.
func (s *Service) GetMovie(ctx context.Context, sess *gorm.DB, id uint64) (*db.Movie, error) {
	rc := s.appCtx.RedisCache
	if rc != nil {
		var cached db.Movie
		err := rc.GetJSON(ctx, rc.KeyForMovie(id), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.appCtx.Logger.Warn("movie cache read failed", "movie_id", id, "err", err)
		}
	}

	// shared load; outlives any single caller
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(strconv.FormatUint(id, 10), func() (interface{}, error) {
		movie, err := repository.NewMovieRepository(sess).GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		if rc != nil {
			if err := rc.SetJSON(loadCtx, rc.KeyForMovie(id), movie, cache.MovieDetailTTL); err != nil {
				s.appCtx.Logger.Warn("movie cache write failed", "movie_id", id, "err", err)
			}
		}
		return movie, nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("movie not found")
	} else if err != nil {
		return nil, svcErr.Map(err)
	}

	// callers sharing a load must not share one struct
	movie := *v.(*db.Movie)
	movie.Genres = append([]db.Genre(nil), movie.Genres...)
	return &movie, nil
}

// CreateMovie inserts a movie linked to existing genres.
func (s *Service) CreateMovie(ctx context.Context, sess *gorm.DB, in MovieInput) (*db.Movie, error) {
	if in.ID == 0 {
		return nil, svcErr.InvalidArgument("id is required")
	}
	movies := repository.NewMovieRepository(sess)
	exists, err := movies.Exists(ctx, in.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if exists {
		return nil, svcErr.AlreadyExists("movie already exists")
	}

	genreIDs := uniqueIDs(in.GenreIDs)
	genres, err := repository.NewGenreRepository(sess).FindByIDs(ctx, genreIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if len(genres) != len(genreIDs) {
		return nil, svcErr.InvalidArgument("unknown genre id")
	}

	movie := &db.Movie{
		ID:            in.ID,
		Title:         strings.TrimSpace(in.Title),
		TitleKo:       in.TitleKo,
		VoteAverage:   in.VoteAverage,
		VoteCount:     in.VoteCount,
		Popularity:    in.Popularity,
		IsAdult:       in.IsAdult,
		Runtime:       in.Runtime,
		Overview:      in.Overview,
		OverviewKo:    in.OverviewKo,
		PosterPath:    in.PosterPath,
		MBTIScores:    in.MBTIScores,
		WeatherScores: in.WeatherScores,
		EmotionTags:   in.EmotionTags,
		Genres:        genres,
	}
	if in.ReleaseDate != nil {
		d := datatypes.Date(*in.ReleaseDate)
		movie.ReleaseDate = &d
	}
	if err := movies.Create(ctx, movie); err != nil {
		return nil, svcErr.Map(err)
	}

	created, err := movies.GetByID(ctx, movie.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return created, nil
}

// UpdateScores replaces score maps computed by the offline scorer.
func (s *Service) UpdateScores(ctx context.Context, sess *gorm.DB, id uint64, in ScoresInput) (*db.Movie, error) {
	movie, err := repository.NewMovieRepository(sess).UpdateScores(ctx, id, in.MBTIScores, in.WeatherScores, in.EmotionTags)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("movie not found")
	} else if err != nil {
		return nil, svcErr.Map(err)
	}
	s.dropMovie(ctx, id)
	return movie, nil
}

// DeleteMovie removes a movie with its genre links and reactions.
func (s *Service) DeleteMovie(ctx context.Context, sess *gorm.DB, id uint64) error {
	err := repository.NewMovieRepository(sess).Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("movie not found")
	} else if err != nil {
		return svcErr.Map(err)
	}
	s.dropMovie(ctx, id)
	s.appCtx.Logger.Info("movie deleted", "movie_id", id)
	return nil
}

func (s *Service) dropMovie(ctx context.Context, id uint64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateMovie(ctx, id); err != nil {
		s.appCtx.Logger.Warn("movie cache invalidation failed", "movie_id", id, "err", err)
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
