package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/config"
	"github.com/fm-dev-mx/real-estate-insights/internal/database"
	"github.com/fm-dev-mx/real-estate-insights/internal/fixes"
	"github.com/fm-dev-mx/real-estate-insights/internal/ingest"
)

func SetupRoutes(router *gin.Engine, db *database.Database, workflow *fixes.Workflow, pipeline *ingest.Pipeline, cfg *config.Config, logger *logrus.Logger) {
	handler := NewHandler(db, workflow, pipeline, cfg, logger)

	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetProperties)
		api.GET("/properties/geojson", handler.GetPropertiesGeoJSON)
		api.GET("/properties/:id", handler.GetProperty)
		api.GET("/properties/:id/audit", handler.GetAuditTrail)
		api.POST("/properties/:id/autofill", handler.Autofill)
		api.POST("/properties/:id/fixes", handler.ApplyFixes)
		api.GET("/gaps", handler.GetGaps)
		api.GET("/filters/defaults", handler.GetDefaultFilters)
		api.POST("/ingest", handler.TriggerIngest)
	}
}
