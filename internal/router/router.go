package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/oggyb/cinemood/internal/app"
	"github.com/oggyb/cinemood/internal/handler"
	"github.com/oggyb/cinemood/internal/middleware"
	"github.com/oggyb/cinemood/internal/utils/response"
)

// New builds the HTTP engine. Every /api request runs on a session taken
// from appCtx.Sessions.
func New(appCtx *app.AppContext) (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(appCtx.Logger),
		middleware.Logger(),
		gin.Recovery(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	h := handler.New(appCtx)
	RegisterRoutes(r, appCtx, h)
	return r, nil
}

// RegisterRoutes registers all routes.
func RegisterRoutes(r *gin.Engine, appCtx *app.AppContext, h *handler.Handler) {
	r.GET("/health", health(appCtx))
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "route not found")
	})

	api := r.Group("/api")
	api.Use(middleware.DBSession(appCtx.Sessions))
	requireAuth := middleware.RequireAuth(h.Accounts)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	users := api.Group("/users/me", requireAuth)
	{
		users.GET("", h.Me)
		users.PATCH("", h.UpdateMe)
		users.DELETE("", h.DeleteMe)
		users.PUT("/password", h.ChangePassword)
		users.GET("/likes", h.MyLikes)
	}

	genres := api.Group("/genres")
	{
		genres.GET("", h.ListGenres)
		genres.POST("", requireAuth, h.CreateGenre)
		genres.DELETE("/:id", requireAuth, h.DeleteGenre)
	}

	movies := api.Group("/movies")
	{
		movies.GET("", h.ListMovies)
		movies.GET("/:id", h.GetMovie)
		movies.GET("/:id/likes/count", h.CountLikes)
		movies.POST("", requireAuth, h.CreateMovie)
		movies.PUT("/:id/scores", requireAuth, h.UpdateScores)
		movies.PUT("/:id/reaction", requireAuth, h.PutReaction)
		movies.DELETE("/:id", requireAuth, h.DeleteMovie)
	}
}

// health reports liveness and whether the database answers.
func health(appCtx *app.AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK
		if err := pingDB(ctx, appCtx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}

func pingDB(ctx context.Context, appCtx *app.AppContext) error {
	if appCtx.DB == nil {
		return nil
	}
	sqlDB, err := appCtx.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
