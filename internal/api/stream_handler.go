package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/form"
	"github.com/akm12109/SDM-Admin/internal/listing"
)

// FormLookup resolves the caller's instance of a form.
type FormLookup interface {
	Observable(owner string) form.Observable
}

// StreamHandler serves server-sent event streams: form progress and the live
// student roster.
type StreamHandler struct {
	forms    map[string]FormLookup
	students *listing.Feed[*domain.User]
	logger   *zap.Logger
}

func NewStreamHandler(forms map[string]FormLookup, students *listing.Feed[*domain.User], logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{forms: forms, students: students, logger: logger}
}

func (h *StreamHandler) observable(c *gin.Context) (form.Observable, bool) {
	lookup, ok := h.forms[c.Param("form")]
	if !ok {
		abortWithError(c, http.StatusNotFound, "Unknown form")
		return nil, false
	}
	owner, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return nil, false
	}
	return lookup.Observable(owner), true
}

// FormState returns the caller's current form state, including blank defaults.
func (h *StreamHandler) FormState(c *gin.Context) {
	obs, ok := h.observable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, obs.State())
}

// FormEvents godoc
// @Summary Stream form progress
// @Description Server-sent "state" events with phase and upload percentage.
// @Tags Forms
// @Produce text/event-stream
// @Param form path string true "Form name"
// @Security BearerAuth
// @Router /forms/{form}/events [get]
func (h *StreamHandler) FormEvents(c *gin.Context) {
	obs, ok := h.observable(c)
	if !ok {
		return
	}
	states, stop := obs.Observe()
	defer stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", st)
			return true
		}
	})
}

// WatchStudents godoc
// @Summary Live student roster
// @Description Sends the full roster on connect and again after every change.
// @Tags Students
// @Produce text/event-stream
// @Security BearerAuth
// @Router /students/watch [get]
func (h *StreamHandler) WatchStudents(c *gin.Context) {
	ctx := c.Request.Context()
	snapshots := make(chan []*domain.User, 1)
	sub, err := h.students.Subscribe(ctx, func(items []*domain.User) {
		// Keep only the newest roster when the client is slow.
		select {
		case <-snapshots:
		default:
		}
		snapshots <- items
	})
	if err != nil {
		h.logger.Error("student subscription failed", zap.Error(err))
		abortWithError(c, http.StatusServiceUnavailable, "Live updates are unavailable")
		return
	}
	defer sub.Unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-sub.Done():
			return false
		case items := <-snapshots:
			c.SSEvent("students", items)
			return true
		}
	})
}
