package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/middleware"
	"github.com/oggyb/cinemood/internal/utils/response"
)

type putReactionRequest struct {
	Liked *bool `json:"liked" binding:"required"`
}

// PutReaction handles PUT /api/movies/:id/reaction.
func (h *Handler) PutReaction(c *gin.Context) {
	id, err := movieIDParam(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	var req putReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	res, err := h.Reactions.PutReaction(c.Request.Context(), middleware.Session(c), middleware.CurrentUser(c).ID, id, *req.Liked)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, res)
}

// CountLikes handles GET /api/movies/:id/likes/count.
func (h *Handler) CountLikes(c *gin.Context) {
	id, err := movieIDParam(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	count, err := h.Reactions.CountLikes(c.Request.Context(), middleware.Session(c), id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, gin.H{"movie_id": id, "count": count})
}
