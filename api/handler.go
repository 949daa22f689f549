package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"menu-service/models"
)

// MenuStore is what the HTTP layer needs from the catalog store.
type MenuStore interface {
	Load(ctx context.Context) (models.Catalog, error)
	Replace(ctx context.Context, items models.Catalog) (bool, error)
}

type Handler struct {
	store MenuStore
	log   zerolog.Logger
}

func NewHandler(store MenuStore, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// GetMenu returns the current catalog as a JSON array.
func (h *Handler) GetMenu(c *gin.Context) {
	items, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.storeError(c, "load", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// PutMenu replaces the whole catalog with the JSON array in the body.
// Item contents are stored as sent. A replace still applies if the client
// stops waiting for it.
func (h *Handler) PutMenu(c *gin.Context) {
	var items models.Catalog
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON body"})
		return
	}

	ok, err := h.store.Replace(c.Request.Context(), items)
	if err != nil {
		h.storeError(c, "replace", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok, "items": len(items)})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) storeError(c *gin.Context, op string, err error) {
	h.log.Warn().Err(err).Str("op", op).Str("request_id", requestID(c)).Msg("store call abandoned")
	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}
