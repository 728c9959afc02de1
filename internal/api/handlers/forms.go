package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hauldesk/hauldesk/internal/registry"
)

// FormHandler serves the declarative collection metadata clients render
// list views and forms from.
type FormHandler struct {
	registry *registry.Registry
}

func NewFormHandler(reg *registry.Registry) *FormHandler {
	return &FormHandler{registry: reg}
}

// ListCollections returns the name and title of every registered collection.
func (h *FormHandler) ListCollections(c *gin.Context) {
	type item struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	items := make([]item, 0)
	for _, col := range h.registry.All() {
		items = append(items, item{Name: col.Name, Title: col.Title})
	}
	c.JSON(http.StatusOK, gin.H{"collections": items})
}

// Describe returns the render plan for a collection's create form along with
// its list-view configuration.
func (h *FormHandler) Describe(c *gin.Context) {
	cfg, ok := h.registry.Get(c.Param("collection"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        cfg.Name,
		"title":       cfg.Title,
		"form":        cfg.Form.Describe(nil, nil),
		"list_fields": cfg.ListFields,
		"filters":     cfg.Filters,
		"search_keys": cfg.SearchKeys,
	})
}
