package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/cinemood/internal/auth"
)

// DemoPassword is the plaintext password of every seeded user.
const DemoPassword = "password123"

// demoGenres mirrors TMDB's genre ids so seeded movies can reference them.
var demoGenres = []Genre{
	{ID: 28, Name: "Action", NameKo: "액션"},
	{ID: 12, Name: "Adventure", NameKo: "모험"},
	{ID: 16, Name: "Animation", NameKo: "애니메이션"},
	{ID: 35, Name: "Comedy", NameKo: "코미디"},
	{ID: 18, Name: "Drama", NameKo: "드라마"},
	{ID: 14, Name: "Fantasy", NameKo: "판타지"},
	{ID: 27, Name: "Horror", NameKo: "공포"},
	{ID: 10749, Name: "Romance", NameKo: "로맨스"},
	{ID: 878, Name: "Science Fiction", NameKo: "SF"},
	{ID: 53, Name: "Thriller", NameKo: "스릴러"},
}

type demoMovie struct {
	movie    Movie
	released string
	genreIDs []uint
}

var demoMovies = []demoMovie{
	{
		movie: Movie{
			ID: 27205, Title: "Inception", TitleKo: "인셉션",
			VoteAverage: 8.4, VoteCount: 36000, Popularity: 95.2, Runtime: 148,
			Overview:      "A thief who steals corporate secrets through dream-sharing technology.",
			OverviewKo:    "꿈을 공유하는 기술로 기업 비밀을 훔치는 도둑의 이야기.",
			PosterPath:    "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg",
			MBTIScores:    ScoreMap{"INTJ": 0.95, "INTP": 0.9, "ENTP": 0.85, "ISFJ": 0.4},
			WeatherScores: ScoreMap{"rainy": 0.8, "cloudy": 0.7, "sunny": 0.4},
			EmotionTags:   ScoreMap{"tension": 0.9, "wonder": 0.8, "healing": 0.2},
		},
		released: "2010-07-15",
		genreIDs: []uint{28, 878, 12},
	},
	{
		movie: Movie{
			ID: 129, Title: "Spirited Away", TitleKo: "센과 치히로의 행방불명",
			VoteAverage: 8.5, VoteCount: 16000, Popularity: 80.1, Runtime: 125,
			Overview:      "A young girl wanders into a world ruled by gods and witches.",
			OverviewKo:    "신과 마녀가 지배하는 세계에 들어선 소녀의 이야기.",
			PosterPath:    "/39wmItIWsg5sZMyRUHLkWBcuVCM.jpg",
			MBTIScores:    ScoreMap{"INFP": 0.95, "ENFP": 0.9, "ISFP": 0.85, "ESTJ": 0.35},
			WeatherScores: ScoreMap{"rainy": 0.75, "snowy": 0.8, "sunny": 0.6},
			EmotionTags:   ScoreMap{"healing": 0.9, "wonder": 0.95, "tension": 0.3},
		},
		released: "2001-07-20",
		genreIDs: []uint{16, 14},
	},
	{
		movie: Movie{
			ID: 496243, Title: "Parasite", TitleKo: "기생충",
			VoteAverage: 8.5, VoteCount: 18000, Popularity: 70.4, Runtime: 133,
			Overview:      "Greed and class discrimination threaten a newly formed symbiotic relationship.",
			OverviewKo:    "탐욕과 계급 차별이 새로 형성된 공생 관계를 위협한다.",
			PosterPath:    "/7IiTTgloJzvGI1TAYymCfbfl3vT.jpg",
			MBTIScores:    ScoreMap{"INTJ": 0.85, "ENTJ": 0.8, "ISTP": 0.75, "ESFJ": 0.4},
			WeatherScores: ScoreMap{"rainy": 0.9, "cloudy": 0.6},
			EmotionTags:   ScoreMap{"tension": 0.95, "sadness": 0.6},
		},
		released: "2019-05-30",
		genreIDs: []uint{35, 53, 18},
	},
	{
		movie: Movie{
			ID: 313369, Title: "La La Land", TitleKo: "라라랜드",
			VoteAverage: 7.9, VoteCount: 16500, Popularity: 55.3, Runtime: 128,
			Overview:      "A jazz pianist falls for an aspiring actress in Los Angeles.",
			OverviewKo:    "LA에서 재즈 피아니스트와 배우 지망생이 사랑에 빠진다.",
			PosterPath:    "/uDO8zWDhfWwoFdKS4fzkUJt0Rf0.jpg",
			MBTIScores:    ScoreMap{"ENFP": 0.9, "ESFP": 0.85, "INFJ": 0.8, "ISTJ": 0.4},
			WeatherScores: ScoreMap{"sunny": 0.85, "clear_night": 0.9},
			EmotionTags:   ScoreMap{"romance": 0.95, "sadness": 0.5, "healing": 0.7},
		},
		released: "2016-12-07",
		genreIDs: []uint{35, 18, 10749},
	},
}

// SeedDemoData resets the database and populates it with demo genres,
// movies and users.
//
// Behavior:
//  1. Clears reactions, associations, movies, genres and users.
//  2. Creates the TMDB genre list with Korean names.
//  3. Creates a handful of movies with score maps and genre links.
//  4. Creates demo users (password DemoPassword), one per sample MBTI.
//
// Compatible with MySQL, PostgreSQL and SQLite.
func SeedDemoData(db *gorm.DB) error {
	// --- Fresh start ---
	for _, table := range []string{"reactions", MovieGenreTable, "movies", "genres", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "postgres":
		db.Exec("ALTER SEQUENCE IF EXISTS users_id_seq RESTART WITH 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	slog.Info("cleared existing data")

	// --- Genres ---
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&demoGenres).Error; err != nil {
		return fmt.Errorf("failed to seed genres: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		// explicit ids bypass the sequence
		db.Exec("SELECT setval('genres_id_seq', (SELECT MAX(id) FROM genres))")
	}
	byID := make(map[uint]Genre, len(demoGenres))
	for _, g := range demoGenres {
		byID[g.ID] = g
	}

	// --- Movies ---
	for _, dm := range demoMovies {
		m := dm.movie
		released, err := time.Parse(time.DateOnly, dm.released)
		if err != nil {
			return fmt.Errorf("bad release date %q: %w", dm.released, err)
		}
		d := datatypes.Date(released)
		m.ReleaseDate = &d
		for _, id := range dm.genreIDs {
			m.Genres = append(m.Genres, byID[id])
		}
		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to seed movie %d: %w", m.ID, err)
		}
	}
	slog.Info("seeded movies", "count", len(demoMovies))

	// --- Users ---
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for i, code := range []string{"INTJ", "ENFP", "ISFJ", "ESTP"} {
		mbti := code
		user := User{
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			PasswordHash: hash,
			Nickname:     fmt.Sprintf("user%d", i+1),
			MBTI:         &mbti,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	slog.Info("seeded users", "count", 4)

	return nil
}
