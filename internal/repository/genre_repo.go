package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/db"
)

// GenreRepository provides data access methods for the Genre model.
type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(database *gorm.DB) *GenreRepository {
	return &GenreRepository{db: database}
}

// List returns every genre ordered by id.
func (r *GenreRepository) List(ctx context.Context) ([]db.Genre, error) {
	var genres []db.Genre
	err := r.db.WithContext(ctx).Order("id ASC").Find(&genres).Error
	return genres, err
}

func (r *GenreRepository) GetByID(ctx context.Context, id uint) (*db.Genre, error) {
	var genre db.Genre
	if err := r.db.WithContext(ctx).First(&genre, id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// FindByIDs returns the genres matching ids. Unknown ids are skipped, so
// callers compare lengths to detect them.
func (r *GenreRepository) FindByIDs(ctx context.Context, ids []uint) ([]db.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var genres []db.Genre
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&genres).Error
	return genres, err
}

// MovieIDs returns the movies currently tagged with the genre.
func (r *GenreRepository) MovieIDs(ctx context.Context, id uint) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Table(db.MovieGenreTable).
		Where("genre_id = ?", id).
		Pluck("movie_id", &ids).Error
	return ids, err
}

func (r *GenreRepository) Create(ctx context.Context, genre *db.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

// Delete removes a genre after detaching it from every movie. Both steps
// run in one transaction; the movies themselves are left untouched.
func (r *GenreRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+db.MovieGenreTable+" WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&db.Genre{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
