package reaction

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/db"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/repository"
	"github.com/oggyb/cinemood/internal/utils/pagination"
)

// Service implements like/pass reactions on movies.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx *app.AppContext
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// Result is returned by PutReaction.
type Result struct {
	MovieID uint64 `json:"movie_id"`
	Liked   bool   `json:"liked"`
}

// LikedMovie pairs a movie with the time it was liked.
type LikedMovie struct {
	Movie   db.Movie  `json:"movie"`
	LikedAt time.Time `json:"liked_at"`
}

// LikedPage is one page of a user's liked movies.
type LikedPage struct {
	Items               []LikedMovie `json:"items"`
	NextPaginationToken *string      `json:"next_pagination_token"`
}

// PutReaction inserts or updates the user's reaction on a movie.
//
// Behavior:
//   - The movie must exist.
//   - Re-sending the same reaction is a no-op for the like count.
//   - A warm cached like count is adjusted by the change (+1 / -1).
func (s *Service) PutReaction(ctx context.Context, sess *gorm.DB, userID, movieID uint64, liked bool) (*Result, error) {
	s.appCtx.Logger.Debug("PutReaction called", "user", userID, "movie", movieID, "liked", liked)

	exists, err := repository.NewMovieRepository(sess).Exists(ctx, movieID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !exists {
		return nil, svcErr.NotFound("movie not found")
	}

	wasLiked, err := repository.NewReactionRepository(sess).Upsert(ctx, userID, movieID, liked)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	if liked != wasLiked && s.appCtx.RedisCache != nil {
		if err := s.appCtx.RedisCache.AdjustLikeCount(ctx, movieID, liked); err != nil {
			s.appCtx.Logger.Warn("like count update failed", "movie", movieID, "err", err)
		}
	}

	return &Result{MovieID: movieID, Liked: liked}, nil
}

// ListLiked returns the movies the user liked, most recent first, with
// cursor-based pagination.
func (s *Service) ListLiked(ctx context.Context, sess *gorm.DB, userID uint64, paginationToken *string, limit int) (*LikedPage, error) {
	reactions, nextToken, err := repository.NewReactionRepository(sess).ListLiked(ctx, userID, paginationToken, limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidToken) {
			return nil, svcErr.InvalidArgument("invalid pagination token")
		}
		return nil, svcErr.Map(err)
	}

	ids := make([]uint64, 0, len(reactions))
	for _, r := range reactions {
		ids = append(ids, r.MovieID)
	}
	movies, err := repository.NewMovieRepository(sess).FindByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	byID := make(map[uint64]db.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	page := &LikedPage{Items: make([]LikedMovie, 0, len(reactions)), NextPaginationToken: nextToken}
	for _, r := range reactions {
		if m, ok := byID[r.MovieID]; ok {
			page.Items = append(page.Items, LikedMovie{Movie: m, LikedAt: r.UpdatedAt})
		}
	}

	s.appCtx.Logger.Debug("ListLiked result", "user", userID, "count", len(page.Items))
	return page, nil
}

// CountLikes returns how many users liked the movie.
// Cache-first strategy:
//  1. Attempts to read from Redis.
//  2. If cache miss, falls back to DB via repository.CountLikes.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikes(ctx context.Context, sess *gorm.DB, movieID uint64) (int64, error) {
	rc := s.appCtx.RedisCache
	if rc != nil {
		if n, ok, err := rc.GetLikeCount(ctx, movieID); err == nil && ok {
			return n, nil
		} else if err != nil {
			s.appCtx.Logger.Warn("like count cache read failed", "movie", movieID, "err", err)
		}
	}

	exists, err := repository.NewMovieRepository(sess).Exists(ctx, movieID)
	if err != nil {
		return 0, svcErr.Map(err)
	}
	if !exists {
		return 0, svcErr.NotFound("movie not found")
	}

	// fallback: DB
	count, err := repository.NewReactionRepository(sess).CountLikes(ctx, movieID)
	if err != nil {
		return 0, svcErr.Map(err)
	}
	if rc != nil {
		_ = rc.UpdateLikeCount(ctx, movieID, count)
	}
	return count, nil
}
