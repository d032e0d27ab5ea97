package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akm12109/SDM-Admin/internal/domain"
)

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "_id", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// EnsureRecordIndexes creates the secondary indexes used by console listings.
func EnsureRecordIndexes(ctx context.Context, db *mongo.Database) error {
	secondary := map[string]bson.D{
		domain.CollectionTeachers: {{Key: "name", Value: 1}},
		domain.CollectionEvents:   {{Key: "date", Value: -1}},
		domain.CollectionNotices:  {{Key: "createdAt", Value: -1}},
		domain.CollectionClasses:  {{Key: "startTime", Value: 1}},
		domain.CollectionVideos:   {{Key: "createdAt", Value: -1}},
		domain.CollectionHomework: {{Key: "dueDate", Value: 1}},
	}
	for name, keys := range secondary {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return fmt.Errorf("create index on %s: %w", name, err)
		}
	}
	return nil
}
