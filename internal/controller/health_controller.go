package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parquet-dataset/internal/model"
)

const (
	ServiceName    = "parquet-dataset"
	ServiceVersion = "1.0.0"
)

type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Storage   StorageStatus `json:"storage"`
}

type StorageStatus struct {
	Backend  model.StorageBackend `json:"backend"`
	Category string               `json:"category"`
}

type HealthController struct {
	backend model.StorageBackend
}

func NewHealthController(backend model.StorageBackend) *HealthController {
	return &HealthController{backend: backend}
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   ServiceName,
		Version:   ServiceVersion,
		Storage: StorageStatus{
			Backend:  hc.backend,
			Category: model.GetStorageCategory(hc.backend),
		},
	})
}
