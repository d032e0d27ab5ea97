package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/form"
	"github.com/akm12109/SDM-Admin/internal/repository"
	"github.com/akm12109/SDM-Admin/internal/service"
	"github.com/akm12109/SDM-Admin/internal/upload"
)

// abortWithError returns a JSON error response and aborts the request.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// respondError maps workflow errors onto HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *form.ValidationError
	var uploadErr *upload.UploadError
	var writeErr *form.WriteError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, form.ErrBusy):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrInvalidID):
		abortWithError(c, http.StatusBadRequest, "Invalid record id")
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Record not found")
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, "A record with the same unique value already exists")
	case errors.As(err, &uploadErr):
		logger.Warn("upload failed", zap.String("key", uploadErr.Key), zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "Could not store the uploaded file")
	case errors.As(err, &writeErr):
		logger.Error("record write failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Could not save the record")
	default:
		logger.Error("request failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
