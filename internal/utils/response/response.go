package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/logger"
)

// Response is the envelope of every API reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}

// Success writes a 200 reply.
func Success(c *gin.Context, data any) {
	JSON(c, http.StatusOK, "success", data)
}

// Created writes a 201 reply.
func Created(c *gin.Context, data any) {
	JSON(c, http.StatusCreated, "created", data)
}

func JSON(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Data:    data,
		Success: status < http.StatusBadRequest,
	})
}

// Error writes an error reply with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Success: false,
	})
}

// Abort writes err as an error reply and stops the handler chain.
// Errors that do not map to a known status are logged and reported as 500.
func Abort(c *gin.Context, err error) {
	appErr := svcErr.Map(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(),
			"err", err,
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.Status, Response{
		Code:    appErr.Status,
		Message: appErr.Message,
		Success: false,
	})
}

// BadRequest reports a malformed request body or query.
func BadRequest(c *gin.Context, err error) {
	msg := "invalid request"
	var appErr *svcErr.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	} else if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: msg,
		Success: false,
	})
}
