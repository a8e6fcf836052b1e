package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cinemood/internal/db"
)

// Sortable movie columns, keyed by the query value that selects them.
var movieSortColumns = map[string]string{
	"popularity":   "popularity",
	"vote_average": "vote_average",
	"release_date": "release_date",
	"title":        "title",
	"id":           "id",
}

// MovieFilter describes one page of the movie listing.
type MovieFilter struct {
	Page     int
	PageSize int
	GenreID  uint
	SortBy   string
	Order    string
}

// normalize fills defaults and clamps paging values.
func (f MovieFilter) normalize() MovieFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	if _, ok := movieSortColumns[f.SortBy]; !ok {
		f.SortBy = "popularity"
	}
	if strings.ToLower(f.Order) == "asc" {
		f.Order = "ASC"
	} else {
		f.Order = "DESC"
	}
	return f
}

// MovieRepository provides data access methods for the Movie model and its
// genre association.
type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(database *gorm.DB) *MovieRepository {
	return &MovieRepository{db: database}
}

// List returns one page of movies with their genres, plus the total number
// of movies matching the filter.
//
// Behavior:
//   - GenreID > 0 keeps only movies associated with that genre.
//   - Unknown SortBy values fall back to popularity; ties break on id.
func (r *MovieRepository) List(ctx context.Context, filter MovieFilter) ([]db.Movie, int64, error) {
	f := filter.normalize()

	query := r.db.WithContext(ctx).Model(&db.Movie{})
	if f.GenreID > 0 {
		sub := r.db.Table(db.MovieGenreTable).Select("movie_id").Where("genre_id = ?", f.GenreID)
		query = query.Where("id IN (?)", sub)
	}
	// shared by Count and Find below
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movies []db.Movie
	err := query.
		Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Order(clause.OrderByColumn{Column: clause.Column{Name: movieSortColumns[f.SortBy]}, Desc: f.Order == "DESC"}).
		Order("id ASC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&movies).Error
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// GetByID loads a movie with its genres.
func (r *MovieRepository) GetByID(ctx context.Context, id uint64) (*db.Movie, error) {
	var movie db.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(&movie, id).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByIDs loads movies (with genres) and returns them in the order of ids.
// Missing ids are skipped.
func (r *MovieRepository) FindByIDs(ctx context.Context, ids []uint64) ([]db.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var movies []db.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("id IN ?", ids).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]db.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	ordered := make([]db.Movie, 0, len(movies))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

func (r *MovieRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Movie{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts a movie and links it to movie.Genres, which must already
// exist. Genre rows themselves are never modified.
func (r *MovieRepository) Create(ctx context.Context, movie *db.Movie) error {
	// "Genres.*" writes the join rows but skips upserting the genres
	return r.db.WithContext(ctx).Omit("Genres.*").Create(movie).Error
}

// UpdateScores replaces the score maps of a movie. A nil argument keeps
// the stored map.
func (r *MovieRepository) UpdateScores(ctx context.Context, id uint64, mbti, weather, emotion db.ScoreMap) (*db.Movie, error) {
	var movie db.Movie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&movie, id).Error; err != nil {
			return err
		}
		if mbti != nil {
			movie.MBTIScores = mbti
		}
		if weather != nil {
			movie.WeatherScores = weather
		}
		if emotion != nil {
			movie.EmotionTags = emotion
		}
		return tx.Omit(clause.Associations).Save(&movie).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a movie along with its genre links and reactions.
func (r *MovieRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+db.MovieGenreTable+" WHERE movie_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&db.Reaction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&db.Movie{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
