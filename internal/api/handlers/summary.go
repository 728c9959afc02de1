package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/hauldesk/hauldesk/internal/api/middleware"
	"github.com/hauldesk/hauldesk/internal/core/summary"
	"github.com/hauldesk/hauldesk/internal/registry"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// SummaryHandler serves the aggregate figures shown above list views. The
// metric name resolves against the collection's configured summaries; the
// field and date key that reach the query never come from the client.
type SummaryHandler struct {
	registry *registry.Registry
	service  *summary.Service
}

func NewSummaryHandler(reg *registry.Registry, service *summary.Service) *SummaryHandler {
	return &SummaryHandler{registry: reg, service: service}
}

func (h *SummaryHandler) Totals(c *gin.Context) {
	cfg, ok := h.registry.Get(c.Param("collection"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	metric := c.Query("metric")
	spec, ok := cfg.Summaries[metric]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such summary metric"})
		return
	}

	month := c.Query("month")
	if month != "" && !monthPattern.MatchString(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	totals, err := h.service.Totals(c.Request.Context(), summary.Request{
		Collection: cfg.Name,
		Field:      spec.Field,
		DateKey:    spec.DateKey,
		Month:      month,
		Owner:      userID,
		Scoped:     true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"metric": metric, "totals": totals})
}
