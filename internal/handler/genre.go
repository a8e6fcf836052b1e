package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/middleware"
	"github.com/oggyb/cinemood/internal/utils/response"
)

type createGenreRequest struct {
	Name   string `json:"name" binding:"required,max=50"`
	NameKo string `json:"name_ko" binding:"max=50"`
}

// ListGenres handles GET /api/genres.
func (h *Handler) ListGenres(c *gin.Context) {
	genres, err := h.Catalog.ListGenres(c.Request.Context(), middleware.Session(c))
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, genres)
}

// CreateGenre handles POST /api/genres.
func (h *Handler) CreateGenre(c *gin.Context) {
	var req createGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	genre, err := h.Catalog.CreateGenre(c.Request.Context(), middleware.Session(c), req.Name, req.NameKo)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, genre)
}

// DeleteGenre handles DELETE /api/genres/:id.
func (h *Handler) DeleteGenre(c *gin.Context) {
	id, err := genreIDParam(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.Catalog.DeleteGenre(c.Request.Context(), middleware.Session(c), id); err != nil {
		response.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
