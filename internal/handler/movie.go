package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/db"
	"github.com/oggyb/cinemood/internal/middleware"
	"github.com/oggyb/cinemood/internal/repository"
	"github.com/oggyb/cinemood/internal/service/catalog"
	"github.com/oggyb/cinemood/internal/utils/response"
)

type listMoviesQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	GenreID  uint   `form:"genre_id"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=popularity vote_average release_date title id"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
}

type createMovieRequest struct {
	ID            uint64      `json:"id" binding:"required"`
	Title         string      `json:"title" binding:"required,max=500"`
	TitleKo       string      `json:"title_ko" binding:"max=500"`
	VoteAverage   float64     `json:"vote_average" binding:"min=0,max=10"`
	VoteCount     int         `json:"vote_count" binding:"min=0"`
	Popularity    float64     `json:"popularity" binding:"min=0"`
	IsAdult       bool        `json:"is_adult"`
	Runtime       int         `json:"runtime" binding:"min=0"`
	Overview      string      `json:"overview"`
	OverviewKo    string      `json:"overview_ko"`
	ReleaseDate   string      `json:"release_date" binding:"omitempty,datetime=2006-01-02"`
	PosterPath    string      `json:"poster_path" binding:"max=255"`
	MBTIScores    db.ScoreMap `json:"mbti_scores"`
	WeatherScores db.ScoreMap `json:"weather_scores"`
	EmotionTags   db.ScoreMap `json:"emotion_tags"`
	GenreIDs      []uint      `json:"genre_ids"`
}

type updateScoresRequest struct {
	MBTIScores    db.ScoreMap `json:"mbti_scores"`
	WeatherScores db.ScoreMap `json:"weather_scores"`
	EmotionTags   db.ScoreMap `json:"emotion_tags"`
}

// ListMovies handles GET /api/movies.
func (h *Handler) ListMovies(c *gin.Context) {
	var q listMoviesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	page, err := h.Catalog.ListMovies(c.Request.Context(), middleware.Session(c), repository.MovieFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		GenreID:  q.GenreID,
		SortBy:   q.SortBy,
		Order:    q.Order,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, page)
}

// GetMovie handles GET /api/movies/:id.
func (h *Handler) GetMovie(c *gin.Context) {
	id, err := movieIDParam(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	movie, err := h.Catalog.GetMovie(c.Request.Context(), middleware.Session(c), id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, movie)
}

// CreateMovie handles POST /api/movies.
func (h *Handler) CreateMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	in := catalog.MovieInput{
		ID:            req.ID,
		Title:         req.Title,
		TitleKo:       req.TitleKo,
		VoteAverage:   req.VoteAverage,
		VoteCount:     req.VoteCount,
		Popularity:    req.Popularity,
		IsAdult:       req.IsAdult,
		Runtime:       req.Runtime,
		Overview:      req.Overview,
		OverviewKo:    req.OverviewKo,
		PosterPath:    req.PosterPath,
		MBTIScores:    req.MBTIScores,
		WeatherScores: req.WeatherScores,
		EmotionTags:   req.EmotionTags,
		GenreIDs:      req.GenreIDs,
	}
	if req.ReleaseDate != "" {
		// format already checked by the binding
		d, _ := time.Parse(time.DateOnly, req.ReleaseDate)
		in.ReleaseDate = &d
	}

	movie, err := h.Catalog.CreateMovie(c.Request.Context(), middleware.Session(c), in)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, movie)
}

// UpdateScores handles PUT /api/movies/:id/scores.
func (h *Handler) UpdateScores(c *gin.Context) {
	id, err := movieIDParam(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	var req updateScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	movie, err := h.Catalog.UpdateScores(c.Request.Context(), middleware.Session(c), id, catalog.ScoresInput{
		MBTIScores:    req.MBTIScores,
		WeatherScores: req.WeatherScores,
		EmotionTags:   req.EmotionTags,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, movie)
}

// DeleteMovie handles DELETE /api/movies/:id.
func (h *Handler) DeleteMovie(c *gin.Context) {
	id, err := movieIDParam(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.Catalog.DeleteMovie(c.Request.Context(), middleware.Session(c), id); err != nil {
		response.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
