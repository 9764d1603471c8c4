package api

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/config"
	"github.com/fm-dev-mx/real-estate-insights/internal/database"
	"github.com/fm-dev-mx/real-estate-insights/internal/fixes"
	"github.com/fm-dev-mx/real-estate-insights/internal/ingest"
	"github.com/fm-dev-mx/real-estate-insights/internal/models"
)

type Handler struct {
	db       *database.Database
	workflow *fixes.Workflow
	pipeline *ingest.Pipeline
	config   *config.Config
	logger   *logrus.Logger
}

// FixBatchRequest carries the dashboard's per-property fix submissions.
type FixBatchRequest struct {
	Fixes []models.FixRequest `json:"fixes" binding:"required"`
}

func NewHandler(db *database.Database, workflow *fixes.Workflow, pipeline *ingest.Pipeline, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:       db,
		workflow: workflow,
		pipeline: pipeline,
		config:   cfg,
		logger:   logger,
	}
}

// GetProperties returns records matching the query filters. Filter queries
// never fail the request: a broken filter or store error comes back as an
// empty result set.
func (h *Handler) GetProperties(c *gin.Context) {
	var filter models.PropertyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.WithError(err).Error("Failed to parse property filters")
		c.JSON(http.StatusOK, []models.Property{})
		return
	}

	properties := h.db.GetProperties(filter)
	c.JSON(http.StatusOK, properties)
}

// GetPropertiesGeoJSON returns the filtered records as a GeoJSON feature
// collection for the map view. Records without coordinates are left out.
func (h *Handler) GetPropertiesGeoJSON(c *gin.Context) {
	var filter models.PropertyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.logger.WithError(err).Error("Failed to parse property filters")
		c.JSON(http.StatusOK, geojson.NewFeatureCollection())
		return
	}

	properties := h.db.GetProperties(filter)
	collection := geojson.NewFeatureCollection()
	now := time.Now()

	for i := range properties {
		p := &properties[i]
		if p.Latitud == nil || p.Longitud == nil {
			continue
		}
		feature := geojson.NewFeature(orb.Point{*p.Longitud, *p.Latitud})
		feature.ID = p.ID
		feature.Properties = geojson.Properties{
			"id":                p.ID,
			"status":            p.Status,
			"tipo_operacion":    p.TipoOperacion,
			"colonia":           p.Colonia,
			"municipio":         p.Municipio,
			"has_critical_gaps": p.HasCriticalGaps,
		}
		if p.Precio != nil {
			feature.Properties["precio"] = *p.Precio
		}
		if days := p.DaysOnMarket(now); days != nil {
			feature.Properties["days_on_market"] = *days
		}
		collection.Append(feature)
	}

	c.JSON(http.StatusOK, collection)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id := c.Param("id")
	property, err := h.db.GetProperty(id)
	if err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property":       property,
		"days_on_market": property.DaysOnMarket(time.Now()),
	})
}

// GetAuditTrail returns a property's correction history, newest first.
func (h *Handler) GetAuditTrail(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.db.GetProperty(id); err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	entries, err := h.db.GetAuditTrail(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get audit trail")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit trail"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetGaps summarizes the records still flagged with critical gaps.
func (h *Handler) GetGaps(c *gin.Context) {
	count, err := h.db.CountCriticalGaps()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count critical gaps")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count critical gaps"})
		return
	}

	flagged := h.db.GetProperties(models.PropertyFilter{CriticalGapsOnly: true})
	ids := make([]string, 0, len(flagged))
	for _, p := range flagged {
		ids = append(ids, p.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"critical_count": count,
		"property_ids":   ids,
	})
}

// GetDefaultFilters returns the configured dashboard filter defaults.
func (h *Handler) GetDefaultFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.config.DefaultFilters)
}

// TriggerIngest runs an inventory pass on demand. An empty inventory
// directory is reported, not treated as a failure.
func (h *Handler) TriggerIngest(c *gin.Context) {
	report, err := h.pipeline.Run()
	if err != nil {
		if errors.Is(err, ingest.ErrNoInventoryFile) {
			c.JSON(http.StatusOK, gin.H{"ran": false, "reason": "no inventory file"})
			return
		}
		h.logger.WithError(err).Error("Ingestion run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ingestion run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ran": true, "report": report})
}

// Autofill fills a property's missing critical fields from its supporting
// document, when one exists.
func (h *Handler) Autofill(c *gin.Context) {
	id := c.Param("id")
	results, err := h.workflow.Autofill(id)
	if err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Autofill failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Autofill failed"})
		return
	}

	if results == nil {
		results = []models.FixResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ApplyFixes applies a batch of manual field corrections to one property.
func (h *Handler) ApplyFixes(c *gin.Context) {
	id := c.Param("id")
	var req FixBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fix request"})
		return
	}

	if _, err := h.db.GetProperty(id); err != nil {
		if errors.Is(err, database.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	for i := range req.Fixes {
		req.Fixes[i].PropertyID = id
	}
	results := h.workflow.ApplyAll(req.Fixes)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
