package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrOutOfBounds is returned when a numeric attribute leaves its declared range.
	ErrOutOfBounds = errors.New("value out of bounds")
	// ErrInvalidMBTI is returned for personality codes outside the 16 known types.
	ErrInvalidMBTI = errors.New("invalid mbti type")
)

// MBTITypes lists the 16 personality codes accepted for User.MBTI and as
// keys of Movie.MBTIScores.
var MBTITypes = []string{
	"ISTJ", "ISFJ", "INFJ", "INTJ",
	"ISTP", "ISFP", "INFP", "INTP",
	"ESTP", "ESFP", "ENFP", "ENTP",
	"ESTJ", "ESFJ", "ENFJ", "ENTJ",
}

// IsValidMBTI reports whether code is one of MBTITypes (case-insensitive).
func IsValidMBTI(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, t := range MBTITypes {
		if t == code {
			return true
		}
	}
	return false
}

const (
	MaxVoteAverage = 10.0
	MaxScore       = 1.0
)

// User table
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Nickname     string    `gorm:"size:50;not null" json:"nickname"`
	MBTI         *string   `gorm:"column:mbti;size:4" json:"mbti"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeSave keeps email lower-case and MBTI upper-case and valid.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.MBTI != nil {
		code := strings.ToUpper(strings.TrimSpace(*u.MBTI))
		if code == "" {
			u.MBTI = nil
			return nil
		}
		if !IsValidMBTI(code) {
			return fmt.Errorf("%w: %q", ErrInvalidMBTI, code)
		}
		u.MBTI = &code
	}
	return nil
}

// Genre table
type Genre struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	NameKo string `gorm:"size:50" json:"name_ko"`
}

// Movie table. IDs are assigned by the catalogue source (TMDB), not the store.
//
// The three score maps are independent dimensions recomputed by an external
// process; they are stored in a JSON column whose physical type depends on
// the engine (see ScoreMap).
type Movie struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title         string          `gorm:"size:500;not null;index" json:"title"`
	TitleKo       string          `gorm:"size:500" json:"title_ko"`
	VoteAverage   float64         `gorm:"not null;index" json:"vote_average"`
	VoteCount     int             `gorm:"not null" json:"vote_count"`
	Popularity    float64         `gorm:"not null;index" json:"popularity"`
	IsAdult       bool            `gorm:"not null" json:"is_adult"`
	Runtime       int             `json:"runtime"`
	Overview      string          `gorm:"type:text" json:"overview"`
	OverviewKo    string          `gorm:"type:text" json:"overview_ko"`
	ReleaseDate   *datatypes.Date `gorm:"index" json:"release_date"`
	PosterPath    string          `gorm:"size:255" json:"poster_path"`
	MBTIScores    ScoreMap        `gorm:"column:mbti_scores" json:"mbti_scores"`
	WeatherScores ScoreMap        `gorm:"column:weather_scores" json:"weather_scores"`
	EmotionTags   ScoreMap        `gorm:"column:emotion_tags" json:"emotion_tags"`
	Genres        []Genre         `gorm:"many2many:movie_genres;" json:"genres"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// MovieGenreTable is the association table created for Movie.Genres.
const MovieGenreTable = "movie_genres"

// Validate checks the declared bounds of the numeric attributes.
func (m *Movie) Validate() error {
	if m.VoteAverage < 0 || m.VoteAverage > MaxVoteAverage {
		return fmt.Errorf("%w: vote_average %v not in [0, %v]", ErrOutOfBounds, m.VoteAverage, MaxVoteAverage)
	}
	if m.VoteCount < 0 {
		return fmt.Errorf("%w: vote_count %d", ErrOutOfBounds, m.VoteCount)
	}
	if m.Popularity < 0 {
		return fmt.Errorf("%w: popularity %v", ErrOutOfBounds, m.Popularity)
	}
	if m.Runtime < 0 {
		return fmt.Errorf("%w: runtime %d", ErrOutOfBounds, m.Runtime)
	}
	if err := m.MBTIScores.Validate("mbti_scores"); err != nil {
		return err
	}
	for k := range m.MBTIScores {
		if !IsValidMBTI(k) {
			return fmt.Errorf("%w: mbti_scores key %q", ErrInvalidMBTI, k)
		}
	}
	if err := m.WeatherScores.Validate("weather_scores"); err != nil {
		return err
	}
	return m.EmotionTags.Validate("emotion_tags")
}

// BeforeSave rejects rows that violate the declared bounds.
func (m *Movie) BeforeSave(tx *gorm.DB) error {
	return m.Validate()
}

// Reaction represents a user's like/pass decision on a movie.
//
// Composite PK: (UserID, MovieID)
//   - Ensures a single row per pair (overwrite guarantee).
//
// Indexes:
//   - idx_user_liked_updated(user_id, liked, updated_at DESC)
//     Optimizes "movies I liked" lists with cursor pagination.
//   - idx_movie_liked(movie_id, liked)
//     Optimizes like counts per movie.
type Reaction struct {
	UserID    uint64    `gorm:"primaryKey;index:idx_user_liked_updated,priority:1"`
	MovieID   uint64    `gorm:"primaryKey;index:idx_movie_liked,priority:1"`
	Liked     bool      `gorm:"not null;index:idx_user_liked_updated,priority:2;index:idx_movie_liked,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_user_liked_updated,priority:3,sort:desc"`
}

// Models returns every table model in migration order.
func Models() []any {
	return []any{&User{}, &Genre{}, &Movie{}, &Reaction{}}
}
