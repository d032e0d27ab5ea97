package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/form"
	"github.com/akm12109/SDM-Admin/internal/repository"
)

// Binder reads a record and its optional file from the request.
type Binder[T domain.Record] func(c *gin.Context) (T, *domain.File, error)

// RecordHandler serves the CRUD surface of one console form.
type RecordHandler[T domain.Record] struct {
	forms  *form.Registry[T]
	bind   Binder[T]
	logger *zap.Logger
}

func NewRecordHandler[T domain.Record](forms *form.Registry[T], bind Binder[T], logger *zap.Logger) *RecordHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler[T]{forms: forms, bind: bind, logger: logger}
}

func (h *RecordHandler[T]) controller(c *gin.Context) (*form.Controller[T], bool) {
	owner, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return nil, false
	}
	return h.forms.For(owner), true
}

// Create godoc
// @Summary Submit a console form
// @Description Validates the fields, streams the optional file to object storage, then stores the record.
// @Tags Records
// @Accept multipart/form-data,json
// @Produce json
// @Success 201 {object} form.Result "Created record and refreshed listing"
// @Failure 400 {object} gin.H "Validation error"
// @Failure 409 {object} gin.H "A submission is already in progress"
// @Failure 502 {object} gin.H "Upload failed"
// @Failure 500 {object} gin.H "Write failed"
// @Security BearerAuth
func (h *RecordHandler[T]) Create(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	// Bind form fields and the optional file
	rec, file, err := h.bind(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	res, err := ctrl.Submit(c.Request.Context(), rec, file)
	if err != nil {
		// Handle workflow errors (validation, upload, write)
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// List godoc
// @Summary List a collection
// @Tags Records
// @Produce json
// @Security BearerAuth
func (h *RecordHandler[T]) List(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	items, err := ctrl.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Prefill loads a record into the caller's form for editing.
func (h *RecordHandler[T]) Prefill(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	// Parse record ID from URL path
	id, err := repository.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rec, err := ctrl.Prefill(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update godoc
// @Summary Replace a record
// @Description Without a new file the stored attachment URL is kept.
// @Tags Records
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Record ID"
// @Failure 404 {object} gin.H "Record not found"
// @Security BearerAuth
func (h *RecordHandler[T]) Update(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	// Parse record ID from URL path
	id, err := repository.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rec, file, err := h.bind(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	// No file means the stored attachment is kept
	res, err := ctrl.SubmitEdit(c.Request.Context(), id, rec, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete godoc
// @Summary Delete a record
// @Tags Records
// @Param id path string true "Record ID"
// @Success 200 {array} object "Refreshed listing"
// @Failure 404 {object} gin.H "Record not found"
// @Security BearerAuth
func (h *RecordHandler[T]) Delete(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	// Parse record ID from URL path
	id, err := repository.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	items, err := ctrl.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
