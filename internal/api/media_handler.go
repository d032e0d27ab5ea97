package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Presigner issues temporary download URLs.
type Presigner interface {
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}

// MediaHandler redirects stable media links to short-lived presigned URLs, so
// stored record URLs keep working against a private bucket.
type MediaHandler struct {
	storage Presigner
	expiry  time.Duration
	logger  *zap.Logger
}

func NewMediaHandler(storage Presigner, expiry time.Duration, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{storage: storage, expiry: expiry, logger: logger}
}

// Get godoc
// @Summary Fetch an uploaded file
// @Tags Media
// @Param key path string true "Object key"
// @Success 307 "Redirect to a presigned URL"
// @Router /media/{key} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		abortWithError(c, http.StatusBadRequest, "Invalid media key")
		return
	}
	url, err := h.storage.GeneratePresignedDownloadURL(c.Request.Context(), key, h.expiry)
	if err != nil {
		h.logger.Error("presign failed", zap.String("key", key), zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "Could not generate download link")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
