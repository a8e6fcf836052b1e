package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cinemood/internal/db"
	"github.com/oggyb/cinemood/internal/utils/pagination"
)

// ReactionRepository provides data access methods for the Reaction model.
// It encapsulates all queries related to likes/passes of users on movies.
type ReactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new repository bound to the given session.
func NewReactionRepository(database *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: database}
}

// Upsert inserts or updates the reaction of user on movie and reports
// whether the movie counted as liked by this user before the write.
//
// Behavior:
//   - If (user_id, movie_id) pair exists → the row is updated with the new "liked" value.
//   - If it doesn't exist → a new row is inserted.
//   - Composite PK ensures overwrite guarantee.
//
// Example:
//
//	repo.Upsert(ctx, 1, 550, true) // user 1 liked movie 550
func (r *ReactionRepository) Upsert(ctx context.Context, userID, movieID uint64, liked bool) (wasLiked bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev db.Reaction
		err := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).Take(&prev).Error
		switch {
		case err == nil:
			wasLiked = prev.Liked
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		reaction := db.Reaction{UserID: userID, MovieID: movieID, Liked: liked}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).Create(&reaction).Error
	})
	return wasLiked, err
}

// ListLiked returns the movies a user liked, most recent first.
//
// Behavior:
//   - Only reactions where user_id = X and liked = true are returned.
//   - Ordered by updated_at DESC, movie_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListLiked(ctx, 42, nil, 20) // first 20 movies liked by user 42
func (r *ReactionRepository) ListLiked(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Reaction, *string, error) {
	var reactions []db.Reaction
	limit = pagination.ClampLimit(limit)

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("user_id = ? AND liked = ?", userID, true).
		Order("updated_at DESC, movie_id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.UpdatedAt()
		query = query.Where(
			"(updated_at < ? OR (updated_at = ? AND movie_id < ?))",
			ts, ts, cursor.MovieID,
		)
	}

	if err := query.Find(&reactions).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(reactions) > limit {
		last := reactions[limit-1]
		token, err := pagination.Encode(pagination.Cursor{
			MovieID:     last.MovieID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		if err != nil {
			return nil, nil, err
		}
		nextToken = &token
		reactions = reactions[:limit]
	}

	return reactions, nextToken, nil
}

// CountLikes returns how many users liked the given movie.
// Used in conjunction with Redis cache (DB is fallback).
func (r *ReactionRepository) CountLikes(ctx context.Context, movieID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("movie_id = ? AND liked = ?", movieID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiked checks whether a user has liked a movie.
func (r *ReactionRepository) HasLiked(ctx context.Context, userID, movieID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("user_id = ? AND movie_id = ? AND liked = ?", userID, movieID, true).
		Count(&count).Error
	return count > 0, err
}

// LikedMovieIDs returns every movie the user currently likes.
func (r *ReactionRepository) LikedMovieIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("user_id = ? AND liked = ?", userID, true).
		Pluck("movie_id", &ids).Error
	return ids, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
