// Package router wires controllers and middleware into the gin engine.
package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parquet-dataset/internal/controller"
	"parquet-dataset/internal/metrics"
	"parquet-dataset/internal/middleware"
	"parquet-dataset/pkg/response"
)

type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Health      *controller.HealthController
	Dataset     *controller.DatasetController
}

func New(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	if d.Logger != nil {
		router.Use(middleware.RequestLogger(d.Logger))
	}
	router.Use(middleware.PrometheusMiddleware(d.Metrics))
	if d.RateLimiter != nil {
		router.Use(d.RateLimiter.RateLimit())
	}

	router.GET("/health", d.Health.HealthCheck)
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/health", d.Health.HealthCheck)
		api.POST("/paths/analyse", d.Dataset.AnalysePaths)
		api.POST("/values/infer", d.Dataset.InferValues)

		datasets := api.Group("/datasets")
		{
			datasets.POST("/inspect", d.Dataset.InspectDataset)
			datasets.GET("/metadata", d.Dataset.GetMetadata)
			datasets.PATCH("/metadata", d.Dataset.UpdateMetadata)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.NotFoundResponse("No route for "+c.Request.Method+" "+c.Request.URL.Path, middleware.GetCorrelationID(c)))
	})

	return router
}
