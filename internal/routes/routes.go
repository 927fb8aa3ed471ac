package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"leasing-import-backend/internal/config"
	handler "leasing-import-backend/internal/handlers"
)

func RegisterRoutes(r *gin.Engine, svc handler.ImportService, cfg *config.Config, log *logrus.Logger) {
	importHandler := handler.NewImportHandler(svc, log, cfg.MaxUploadSize)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	imports := api.Group("/imports")
	imports.POST("/preview", importHandler.Preview)
	imports.POST("", importHandler.Upload)
	imports.GET("/:batchId", importHandler.GetBatch)
	imports.GET("/:batchId/audit", importHandler.GetBatchAudit)

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
}
