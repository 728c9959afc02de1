package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hauldesk/hauldesk/internal/api/middleware"
	"github.com/hauldesk/hauldesk/internal/core/coerce"
	"github.com/hauldesk/hauldesk/internal/core/crud"
	"github.com/hauldesk/hauldesk/internal/core/form"
	"github.com/hauldesk/hauldesk/internal/core/list"
	"github.com/hauldesk/hauldesk/internal/registry"
)

// RecordHandler serves the generic record CRUD surface. One form engine is
// built per collection at startup so submits share coercion hints and
// compiled schemas.
type RecordHandler struct {
	registry *registry.Registry
	engines  map[string]*form.Engine
}

func NewRecordHandler(reg *registry.Registry) *RecordHandler {
	engines := make(map[string]*form.Engine)
	for _, c := range reg.All() {
		engines[c.Name] = form.NewEngine(c.Form, c.Schema, "/"+c.Name)
	}
	return &RecordHandler{registry: reg, engines: engines}
}

func (h *RecordHandler) resolve(c *gin.Context) (*registry.Collection, *crud.Store, uuid.UUID, bool) {
	name := c.Param("collection")
	cfg, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return nil, nil, uuid.Nil, false
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, nil, uuid.Nil, false
	}

	store, _ := h.registry.Store(name)
	return cfg, store, userID, true
}

func (h *RecordHandler) List(c *gin.Context) {
	cfg, store, userID, ok := h.resolve(c)
	if !ok {
		return
	}

	query, err := list.ParseQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := query.Params(cfg.FilterNames(), cfg.SearchKeys)
	if params.Order != nil && !cfg.Orderable(params.Order.Key) {
		params.Order = nil
	}

	res, err := store.List(c.Request.Context(), userID, params)
	if err != nil {
		h.writeError(c, err)
		return
	}

	totalPages := list.TotalPages(res.Total, query.PerPage)
	c.JSON(http.StatusOK, gin.H{
		"data":        res.Records,
		"total":       res.Total,
		"page":        list.ClampPage(query.Page, totalPages),
		"total_pages": totalPages,
	})
}

func (h *RecordHandler) Get(c *gin.Context) {
	_, store, userID, ok := h.resolve(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	rec, err := store.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *RecordHandler) Create(c *gin.Context) {
	cfg, store, userID, ok := h.resolve(c)
	if !ok {
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	var created *crud.Record
	res := h.engines[cfg.Name].Submit(c.Request.Context(), c.Request.PostForm, func(ctx context.Context, values map[string]any) error {
		rec, err := store.Create(ctx, userID, values)
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if !res.OK {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":      res.Message,
			"field_errors": res.FieldErrors,
		})
		return
	}

	log.Printf("records: created %s/%s by %s from %s", cfg.Name, created.ID, userID, middleware.GetIPAddress(c))
	c.JSON(http.StatusCreated, gin.H{
		"data":        created,
		"message":     res.Message,
		"redirect_to": res.RedirectTo,
	})
}

func (h *RecordHandler) Update(c *gin.Context) {
	cfg, store, userID, ok := h.resolve(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	existing, err := store.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	updated := existing
	res := h.engines[cfg.Name].SubmitPartial(c.Request.Context(), c.Request.PostForm, func(ctx context.Context, values map[string]any) error {
		// Only touched fields hit the database; an unchanged submit is a no-op.
		patch := coerce.Diff(existing.Data, values)
		if len(patch) == 0 {
			return nil
		}
		rec, err := store.Update(ctx, userID, id, patch)
		if err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if !res.OK {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":      res.Message,
			"field_errors": res.FieldErrors,
		})
		return
	}

	log.Printf("records: updated %s/%s by %s from %s", cfg.Name, id, userID, middleware.GetIPAddress(c))
	c.JSON(http.StatusOK, gin.H{
		"data":        updated,
		"message":     res.Message,
		"redirect_to": res.RedirectTo,
	})
}

func (h *RecordHandler) Delete(c *gin.Context) {
	cfg, store, userID, ok := h.resolve(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	if err := store.Remove(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}

	log.Printf("records: deleted %s/%s by %s from %s", cfg.Name, id, userID, middleware.GetIPAddress(c))
	c.Status(http.StatusNoContent)
}

func (h *RecordHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, crud.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, crud.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}
