package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shortener/cmd/middleware"
	"shortener/internal/service"
)

type Routers struct {
	Service service.Service
	Log     *zerolog.Logger
}

func NewRouters(r *Routers) *gin.Engine {
	app := gin.New()
	// "/abc/" is not a link id
	app.RedirectTrailingSlash = false

	app.Use(gin.Recovery())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware())

	h := &handlers{svc: r.Service, log: r.Log}

	app.GET("/health", h.Health)
	app.GET("/:id", h.Redirect)

	links := app.Group("/links")
	links.POST("", h.CreateLink)
	links.PUT("/:id", h.UpdateLink)
	links.PATCH("/:id", h.UpdateLink)
	links.GET("/:id/statistics", h.LinkStatistics)

	return app
}
