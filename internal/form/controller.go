package form

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/listing"
	"github.com/akm12109/SDM-Admin/internal/repository"
	"github.com/akm12109/SDM-Admin/internal/upload"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseUploading  Phase = "uploading"
	PhaseWriting    Phase = "writing"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
	PhasePrefilled  Phase = "prefilled"
)

// Spec describes one console form.
type Spec[T domain.Record] struct {
	Name       string
	Collection string
	// Namespace is the blob key prefix. Empty means the form has no file field.
	Namespace    string
	FileField    string
	FileRequired bool
	// Accept is a content type prefix such as "image/".
	Accept string
	// Blank returns the values shown after a reset.
	Blank func() T
}

// State is what the form currently displays.
type State struct {
	Form      string  `json:"form"`
	Phase     Phase   `json:"phase"`
	Percent   float64 `json:"percent"`
	Error     string  `json:"error,omitempty"`
	EditingID string  `json:"editingId,omitempty"`
	Values    any     `json:"values,omitempty"`
}

// Result is returned by a successful submission.
type Result[T domain.Record] struct {
	Record  T   `json:"record"`
	Listing []T `json:"listing"`
}

// Metrics receives submission outcomes. A nil Metrics is ignored.
type Metrics interface {
	ObserveSubmission(form string, phase Phase)
}

// Controller drives one form instance through validation, upload, write and reset.
// At most one submission runs at a time.
type Controller[T domain.Record] struct {
	spec     Spec[T]
	uploader Starter
	repo     repository.RecordRepository[T]
	view     *listing.View[T]
	validate *validator.Validate
	metrics  Metrics
	logger   *zap.Logger

	inflight sync.Mutex

	mu        sync.Mutex
	state     State
	observers map[int]chan State
	nextObs   int
}

type Option[T domain.Record] func(*Controller[T])

func WithValidator[T domain.Record](v *validator.Validate) Option[T] {
	return func(c *Controller[T]) { c.validate = v }
}

func WithMetrics[T domain.Record](m Metrics) Option[T] {
	return func(c *Controller[T]) { c.metrics = m }
}

func WithLogger[T domain.Record](l *zap.Logger) Option[T] {
	return func(c *Controller[T]) { c.logger = l }
}

func NewController[T domain.Record](spec Spec[T], uploader Starter, repo repository.RecordRepository[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		spec:      spec,
		uploader:  uploader,
		repo:      repo,
		view:      listing.NewView(repo.List),
		observers: map[int]chan State{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validate == nil {
		c.validate = NewValidator()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("form", spec.Name))
	c.state = c.blankState()
	return c
}

func (c *Controller[T]) Name() string { return c.spec.Name }

func (c *Controller[T]) blankState() State {
	st := State{Form: c.spec.Name, Phase: PhaseIdle}
	if c.spec.Blank != nil {
		st.Values = c.spec.Blank()
	}
	return st
}

// Submit validates rec, uploads file when present and appends rec.
// The controller owns file from here on.
func (c *Controller[T]) Submit(ctx context.Context, rec T, file *domain.File) (*Result[T], error) {
	if !c.inflight.TryLock() {
		closeFile(file)
		return nil, ErrBusy
	}
	defer c.inflight.Unlock()

	c.transition(func(st *State) {
		st.Phase = PhaseValidating
		st.Error = ""
		st.Percent = 0
		st.EditingID = ""
		st.Values = nil
	})

	if err := c.check(rec, file, false); err != nil {
		closeFile(file)
		return nil, c.fail(err)
	}

	c.beginUpload(file)
	id, err := UploadAndRecord[T](ctx, c.uploader, c.repo, rec, file, c.spec.Namespace, c.onProgress)
	if err != nil {
		c.logFailure(err)
		return nil, c.fail(err)
	}
	c.logger.Info("record created", zap.String("id", id.Hex()))
	return c.succeed(ctx, rec), nil
}

// Prefill loads the record at id for editing. The next SubmitEdit updates it.
func (c *Controller[T]) Prefill(ctx context.Context, id primitive.ObjectID) (T, error) {
	if !c.inflight.TryLock() {
		var zero T
		return zero, ErrBusy
	}
	defer c.inflight.Unlock()

	rec, err := c.repo.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	c.transition(func(st *State) {
		st.Phase = PhasePrefilled
		st.Error = ""
		st.Percent = 0
		st.EditingID = id.Hex()
		st.Values = rec
	})
	return rec, nil
}

// SubmitEdit replaces the record at id. Without a new file the stored attachment
// URL is carried over.
func (c *Controller[T]) SubmitEdit(ctx context.Context, id primitive.ObjectID, rec T, file *domain.File) (*Result[T], error) {
	if !c.inflight.TryLock() {
		closeFile(file)
		return nil, ErrBusy
	}
	defer c.inflight.Unlock()

	c.transition(func(st *State) {
		st.Phase = PhaseValidating
		st.Error = ""
		st.Percent = 0
		st.EditingID = id.Hex()
		st.Values = nil
	})

	// Field rules first so a bad edit never touches the store.
	if err := validateRecord(c.validate, rec); err != nil {
		closeFile(file)
		return nil, c.fail(err)
	}

	existing, err := c.repo.GetByID(ctx, id)
	if err != nil {
		closeFile(file)
		return nil, c.fail(&WriteError{Err: err})
	}
	existingURL := ""
	if a, ok := any(existing).(domain.Attachable); ok {
		existingURL = a.AttachmentURL()
	}
	if a, ok := any(rec).(domain.Attachable); ok && file.Empty() {
		a.SetAttachmentURL(existingURL)
	}

	if err := validateFile(c.spec, file, existingURL != ""); err != nil {
		closeFile(file)
		return nil, c.fail(err)
	}

	c.beginUpload(file)
	if err := UploadAndReplace[T](ctx, c.uploader, c.repo, id, rec, file, c.spec.Namespace, c.onProgress); err != nil {
		c.logFailure(err)
		return nil, c.fail(err)
	}
	c.logger.Info("record updated", zap.String("id", id.Hex()))
	return c.succeed(ctx, rec), nil
}

// Delete removes the record at id and refreshes the listing.
func (c *Controller[T]) Delete(ctx context.Context, id primitive.ObjectID) ([]T, error) {
	if err := c.repo.Delete(ctx, id); err != nil {
		return nil, &WriteError{Err: err}
	}
	c.logger.Info("record deleted", zap.String("id", id.Hex()))
	return c.refresh(ctx), nil
}

// List re-fetches the whole collection.
func (c *Controller[T]) List(ctx context.Context) ([]T, error) {
	return c.view.Refresh(ctx)
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Observe streams state changes, starting with the current state. Slow readers
// lose intermediate states but always see the latest. Call the returned func to detach.
func (c *Controller[T]) Observe() (<-chan State, func()) {
	ch := make(chan State, 16)
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = ch
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Controller[T]) check(rec T, file *domain.File, hasExisting bool) error {
	if err := validateRecord(c.validate, rec); err != nil {
		return err
	}
	return validateFile(c.spec, file, hasExisting)
}

func (c *Controller[T]) beginUpload(file *domain.File) {
	phase := PhaseWriting
	if !file.Empty() {
		phase = PhaseUploading
	}
	c.transition(func(st *State) { st.Phase = phase })
}

func (c *Controller[T]) onProgress(p upload.Progress) {
	c.transition(func(st *State) {
		st.Percent = p.Percent()
		if p.Transferred >= p.Total {
			st.Phase = PhaseWriting
		}
	})
}

func (c *Controller[T]) succeed(ctx context.Context, rec T) *Result[T] {
	c.transition(func(st *State) {
		st.Phase = PhaseSucceeded
		st.Error = ""
	})
	c.observe(PhaseSucceeded)
	items := c.refresh(ctx)

	blank := c.blankState()
	c.transition(func(st *State) { *st = blank })
	return &Result[T]{Record: rec, Listing: items}
}

func (c *Controller[T]) refresh(ctx context.Context) []T {
	items, err := c.view.Refresh(ctx)
	if err != nil {
		c.logger.Warn("listing refresh failed", zap.Error(err))
		return c.view.Snapshot()
	}
	return items
}

// fail publishes the failure, then settles the form back to idle. The error
// message stays on the state until the next submission.
func (c *Controller[T]) fail(err error) error {
	c.transition(func(st *State) {
		st.Phase = PhaseFailed
		st.Error = err.Error()
	})
	c.observe(PhaseFailed)
	c.transition(func(st *State) {
		st.Phase = PhaseIdle
		st.Percent = 0
	})
	return err
}

func (c *Controller[T]) logFailure(err error) {
	var uploadErr *upload.UploadError
	var writeErr *WriteError
	switch {
	case errors.As(err, &uploadErr):
		c.logger.Warn("upload failed, record not written", zap.String("key", uploadErr.Key), zap.Error(err))
	case errors.As(err, &writeErr) && writeErr.Key != "":
		c.logger.Error("record write failed, uploaded blob left in place",
			zap.String("key", writeErr.Key), zap.Error(err))
	case errors.As(err, &writeErr):
		c.logger.Error("record write failed", zap.Error(err))
	default:
		c.logger.Error("submission failed", zap.Error(err))
	}
}

func (c *Controller[T]) observe(phase Phase) {
	if c.metrics != nil {
		c.metrics.ObserveSubmission(c.spec.Name, phase)
	}
}

func (c *Controller[T]) transition(apply func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply(&c.state)
	for _, ch := range c.observers {
		select {
		case ch <- c.state:
			continue
		default:
		}
		// Drop the oldest queued state so the newest is never lost.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c.state:
		default:
		}
	}
}

func closeFile(file *domain.File) {
	if file != nil && file.Body != nil {
		_ = file.Body.Close()
	}
}
