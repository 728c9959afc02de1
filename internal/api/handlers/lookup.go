package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hauldesk/hauldesk/internal/api/middleware"
	"github.com/hauldesk/hauldesk/internal/core/crud"
	"github.com/hauldesk/hauldesk/internal/core/form"
	"github.com/hauldesk/hauldesk/internal/core/lookup"
	"github.com/hauldesk/hauldesk/internal/registry"
)

// LookupHandler serves reference-picker options. Sources are never taken
// from the request; the field name is resolved against the collection's
// form config so clients can only query configured lookups.
type LookupHandler struct {
	registry *registry.Registry
	fetcher  *lookup.Fetcher
}

func NewLookupHandler(reg *registry.Registry, fetcher *lookup.Fetcher) *LookupHandler {
	return &LookupHandler{registry: reg, fetcher: fetcher}
}

func (h *LookupHandler) Lookup(c *gin.Context) {
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

	src, ok := findSource(cfg, c.Query("field"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such lookup field"})
		return
	}

	// ?value= resolves the label for an already-selected row, for edit forms.
	if value := c.Query("value"); value != "" {
		opt, err := h.fetcher.ResolveLabel(c.Request.Context(), *src, userID, value)
		if err != nil {
			// An unresolvable default is not fatal; the picker just starts empty.
			if errors.Is(err, crud.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"selected": nil})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not resolve value"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"selected": opt})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := h.fetcher.Fetch(c.Request.Context(), *src, userID, c.Query("q"), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func findSource(cfg *registry.Collection, fieldName string) (*lookup.Source, bool) {
	for _, f := range cfg.Form.Fields() {
		if f.Name == fieldName && f.Kind == form.KindRemoteSelect && f.Source != nil {
			return f.Source, true
		}
	}
	return nil, false
}
