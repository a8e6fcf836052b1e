package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/middleware"
	"github.com/oggyb/cinemood/internal/service/account"
	"github.com/oggyb/cinemood/internal/utils/response"
)

type updateUserRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,min=1,max=50"`
	MBTI     *string `json:"mbti" binding:"omitempty,mbti"`
}

type myLikesQuery struct {
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=100"`
	PaginationToken string `form:"pagination_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// Me handles GET /api/users/me.
func (h *Handler) Me(c *gin.Context) {
	response.Success(c, middleware.CurrentUser(c))
}

// UpdateMe handles PATCH /api/users/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.Session(c), middleware.CurrentUser(c), account.UpdateInput{
		Nickname: req.Nickname,
		MBTI:     req.MBTI,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, user)
}

// ChangePassword handles PUT /api/users/me/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	err := h.Accounts.ChangePassword(c.Request.Context(), middleware.Session(c), middleware.CurrentUser(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteMe handles DELETE /api/users/me.
func (h *Handler) DeleteMe(c *gin.Context) {
	if err := h.Accounts.Delete(c.Request.Context(), middleware.Session(c), middleware.CurrentUser(c).ID); err != nil {
		response.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyLikes handles GET /api/users/me/likes?pagination_token=&limit=.
func (h *Handler) MyLikes(c *gin.Context) {
	var q myLikesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}
	var token *string
	if q.PaginationToken != "" {
		token = &q.PaginationToken
	}

	page, err := h.Reactions.ListLiked(c.Request.Context(), middleware.Session(c), middleware.CurrentUser(c).ID, token, q.Limit)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, page)
}
