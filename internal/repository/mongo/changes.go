package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ChangeStreamNotifier signals collection changes from MongoDB change streams.
// Requires a replica set or sharded cluster.
type ChangeStreamNotifier struct {
	db     *mongo.Database
	logger *zap.Logger
}

func NewChangeStreamNotifier(db *mongo.Database, logger *zap.Logger) *ChangeStreamNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeStreamNotifier{db: db, logger: logger}
}

// Watch opens a change stream on collection. Bursts of changes are coalesced into a
// single pending signal. The channel is closed when ctx ends or the stream fails.
func (n *ChangeStreamNotifier) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	opts := options.ChangeStream().SetFullDocument(options.Default)
	stream, err := n.db.Collection(collection).Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			select {
			case changes <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			n.logger.Warn("change stream closed", zap.String("collection", collection), zap.Error(err))
		}
	}()
	return changes, nil
}
