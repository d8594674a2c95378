package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a fresh engine.
func NewRouter(site *StaticSite) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), Metrics())

	// Any origin, with credentials: the caller's origin is echoed back since
	// browsers reject "*" on credentialed requests.
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
	}))

	r.GET("/", site.Index)
	r.StaticFS("/static", site.FS())
	r.GET("/debug", site.Debug)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/execute", ExecuteTask)

		api.POST("/feedback", StoreFeedback)
		api.GET("/feedback", ListFeedback)

		api.GET("/history", GetHistory)

		api.POST("/knowledge/crawl", CrawlKnowledge)

		api.POST("/finetune", TriggerFineTune)
		api.GET("/finetune/runs", ListFineTuneRuns)

		api.GET("/error-logs", GetErrorLogs)
		api.DELETE("/error-logs", ClearErrorLogs)

		api.GET("/health", HealthCheck)
		api.GET("/metrics", GetMetrics)
	}

	v2 := r.Group("/api/v2")
	{
		v2.POST("/execute", ExecuteTaskV2)
		v2.POST("/feedback", StoreFeedbackV2)
		v2.GET("/history", GetHistoryV2)
		v2.POST("/finetune", TriggerFineTuneV2)
	}

	return r
}
