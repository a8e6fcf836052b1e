package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/app"
	svcErr "github.com/oggyb/cinemood/internal/errors"
	"github.com/oggyb/cinemood/internal/service/account"
	"github.com/oggyb/cinemood/internal/service/catalog"
	"github.com/oggyb/cinemood/internal/service/reaction"
)

// Handler serves the REST API.
type Handler struct {
	App       *app.AppContext
	Accounts  *account.Service
	Catalog   *catalog.Service
	Reactions *reaction.Service
}

// New wires the services of appCtx into a Handler.
func New(appCtx *app.AppContext) *Handler {
	return &Handler{
		App:       appCtx,
		Accounts:  account.NewService(appCtx),
		Catalog:   catalog.NewService(appCtx),
		Reactions: reaction.NewService(appCtx),
	}
}

func movieIDParam(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument("id must be a positive integer")
	}
	return id, nil
}

func genreIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument("id must be a positive integer")
	}
	return uint(id), nil
}
