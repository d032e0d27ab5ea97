package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/domain"
)

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrEmptyKey  = errors.New("object key is empty")
)

// UploadError reports a failed transfer. Nothing is retried.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ObjectStore is the blob store the uploader writes to.
type ObjectStore interface {
	PutObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error
	ObjectURL(objectKey string) string
}

// Metrics receives upload outcomes. A nil Metrics is ignored.
type Metrics interface {
	ObserveUpload(namespace string, bytes int64, err error)
}

// ObjectKey derives a destination key that will not collide in practice:
// <namespace>/<uuid>-<base name>.
func ObjectKey(namespace, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return path.Join(namespace, uuid.NewString()+"-"+name)
}

type Uploader struct {
	store   ObjectStore
	metrics Metrics
	logger  *zap.Logger
}

func NewUploader(store ObjectStore, metrics Metrics, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{store: store, metrics: metrics, logger: logger}
}

// Task is one in-flight upload. It owns the file body and closes it when done.
type Task struct {
	Key   string
	Total int64

	rep  *reporter
	done chan struct{}

	mu  sync.Mutex
	url string
	err error
}

// Start validates the file and begins streaming it to key in the background.
// onProgress may be nil. It is called from the upload goroutine.
func (u *Uploader) Start(ctx context.Context, file *domain.File, key string, onProgress func(Progress)) (*Task, error) {
	if file.Empty() {
		if file != nil && file.Body != nil {
			_ = file.Body.Close()
		}
		return nil, ErrEmptyFile
	}
	if key == "" {
		_ = file.Body.Close()
		return nil, ErrEmptyKey
	}

	task := &Task{
		Key:   key,
		Total: file.Size,
		rep:   &reporter{fn: onProgress},
		done:  make(chan struct{}),
	}
	go u.run(ctx, task, file)
	return task, nil
}

func (u *Uploader) run(ctx context.Context, task *Task, file *domain.File) {
	defer close(task.done)
	defer file.Body.Close()

	body := &countingReader{r: file.Body, total: task.Total, rep: task.rep}
	err := u.store.PutObject(ctx, task.Key, body, task.Total, file.ContentType)
	if u.metrics != nil {
		u.metrics.ObserveUpload(namespaceOf(task.Key), body.n.Load(), err)
	}

	task.mu.Lock()
	defer task.mu.Unlock()
	if err != nil {
		task.err = &UploadError{Key: task.Key, Err: err}
		u.logger.Warn("upload failed", zap.String("key", task.Key), zap.Error(err))
		return
	}

	if task.rep.lastTransferred() < task.Total {
		task.rep.report(Progress{Transferred: task.Total, Total: task.Total})
	}
	task.url = u.store.ObjectURL(task.Key)
	u.logger.Debug("upload stored", zap.String("key", task.Key), zap.Int64("bytes", task.Total))
}

// Wait blocks until the upload is terminal and returns its URL or *UploadError.
func (t *Task) Wait(ctx context.Context) (string, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return "", &UploadError{Key: t.Key, Err: ctx.Err()}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url, t.err
}

func namespaceOf(key string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return ""
}

type countingReader struct {
	r     io.Reader
	n     atomic.Int64
	total int64
	rep   *reporter
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		sent := c.n.Add(int64(n))
		c.rep.report(Progress{Transferred: sent, Total: c.total})
	}
	return n, err
}
