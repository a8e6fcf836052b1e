package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/middleware"
	"github.com/oggyb/cinemood/internal/service/account"
	"github.com/oggyb/cinemood/internal/utils/response"
)

type registerRequest struct {
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Nickname string  `json:"nickname" binding:"required,min=1,max=50"`
	MBTI     *string `json:"mbti" binding:"omitempty,mbti"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := h.Accounts.Register(c.Request.Context(), middleware.Session(c), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		MBTI:     req.MBTI,
	})
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Created(c, user)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	token, err := h.Accounts.Login(c.Request.Context(), middleware.Session(c), req.Email, req.Password)
	if err != nil {
		response.Abort(c, err)
		return
	}
	response.Success(c, token)
}
