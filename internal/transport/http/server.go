package http

import (
	"github.com/gin-gonic/gin"

	"answerbridge/internal/bootstrap"
	"answerbridge/internal/transport/http/handler"
	"answerbridge/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Logger), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/", healthHandler.Live)
	router.GET("/healthz", healthHandler.Check)

	var statsReader handler.StatsReader
	if app.Stats != nil {
		statsReader = app.Stats
	}
	statsHandler := handler.NewStatsHandler(statsReader)
	askHandler := handler.NewAskHandler(app.AskService, app.Config.Upload.MaxBytes, app.Logger)

	api := router.Group("/api")
	api.POST("", askHandler.Ask)
	api.POST("/", askHandler.Ask)
	api.GET("/stats", statsHandler.Get)

	return router
}
