package form

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/upload"
)

// Starter begins a blob upload.
type Starter interface {
	Start(ctx context.Context, file *domain.File, key string, onProgress func(upload.Progress)) (*upload.Task, error)
}

// RecordWriter is the subset of a record repository the workflow needs.
type RecordWriter[T domain.Record] interface {
	Create(ctx context.Context, rec T) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, rec T) error
}

// UploadAndRecord streams file under namespace, stores the resulting URL on rec
// and appends rec. When file is empty the record is written as is.
// Upload failures return *upload.UploadError and nothing is written. Write failures
// return *WriteError and the uploaded blob is left in place.
func UploadAndRecord[T domain.Record](ctx context.Context, uploader Starter, writer RecordWriter[T], rec T, file *domain.File, namespace string, onProgress func(upload.Progress)) (primitive.ObjectID, error) {
	key, err := attach(ctx, uploader, rec, file, namespace, onProgress)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := writer.Create(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, &WriteError{Key: key, Err: err}
	}
	return id, nil
}

// UploadAndReplace is the edit counterpart of UploadAndRecord. The caller sets
// rec's attachment to the existing URL when no new file is supplied.
func UploadAndReplace[T domain.Record](ctx context.Context, uploader Starter, writer RecordWriter[T], id primitive.ObjectID, rec T, file *domain.File, namespace string, onProgress func(upload.Progress)) error {
	key, err := attach(ctx, uploader, rec, file, namespace, onProgress)
	if err != nil {
		return err
	}
	if err := writer.Update(ctx, id, rec); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// attach uploads file and stores its URL on rec. It returns the object key, or ""
// when there was nothing to upload.
func attach[T domain.Record](ctx context.Context, uploader Starter, rec T, file *domain.File, namespace string, onProgress func(upload.Progress)) (string, error) {
	if file.Empty() {
		return "", nil
	}
	target, ok := any(rec).(domain.Attachable)
	if !ok {
		_ = file.Body.Close()
		return "", fmt.Errorf("%T does not accept attachments", rec)
	}

	key := upload.ObjectKey(namespace, file.Name)
	task, err := uploader.Start(ctx, file, key, onProgress)
	if err != nil {
		return "", &upload.UploadError{Key: key, Err: err}
	}
	url, err := task.Wait(ctx)
	if err != nil {
		return "", err
	}
	target.SetAttachmentURL(url)
	return key, nil
}
