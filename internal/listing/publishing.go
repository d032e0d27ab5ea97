package listing

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/repository"
)

// Publisher announces that a collection changed.
type Publisher interface {
	Publish(ctx context.Context, collection string) error
}

// publishingRepository announces every successful mutation. A failed publish is
// logged and does not fail the write.
type publishingRepository[T domain.Record] struct {
	repository.RecordRepository[T]
	publisher  Publisher
	collection string
	logger     *zap.Logger
}

// Publishing wraps repo so subscribers on other instances see its writes.
func Publishing[T domain.Record](repo repository.RecordRepository[T], publisher Publisher, collection string, logger *zap.Logger) repository.RecordRepository[T] {
	if publisher == nil {
		return repo
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &publishingRepository[T]{RecordRepository: repo, publisher: publisher, collection: collection, logger: logger}
}

func (r *publishingRepository[T]) Create(ctx context.Context, rec T) (primitive.ObjectID, error) {
	id, err := r.RecordRepository.Create(ctx, rec)
	if err == nil {
		r.publish(ctx)
	}
	return id, err
}

func (r *publishingRepository[T]) Update(ctx context.Context, id primitive.ObjectID, rec T) error {
	err := r.RecordRepository.Update(ctx, id, rec)
	if err == nil {
		r.publish(ctx)
	}
	return err
}

func (r *publishingRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := r.RecordRepository.Delete(ctx, id)
	if err == nil {
		r.publish(ctx)
	}
	return err
}

func (r *publishingRepository[T]) publish(ctx context.Context) {
	if err := r.publisher.Publish(ctx, r.collection); err != nil {
		r.logger.Warn("change publish failed", zap.String("collection", r.collection), zap.Error(err))
	}
}
