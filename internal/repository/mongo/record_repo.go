package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/repository"
)

// recordPtr lets the generic repository allocate E and hand out *E as a domain.Record.
type recordPtr[E any] interface {
	*E
	domain.Record
}

// mongoRecordRepository implements repository.RecordRepository for one collection.
type mongoRecordRepository[E any, T recordPtr[E]] struct {
	collection *mongo.Collection
}

// NewMongoRecordRepository creates a repository over the named collection.
//
//	teachers := mongo.NewMongoRecordRepository[domain.Teacher](db, domain.CollectionTeachers)
func NewMongoRecordRepository[E any, T recordPtr[E]](db *mongo.Database, collection string) repository.RecordRepository[T] {
	return &mongoRecordRepository[E, T]{
		collection: db.Collection(collection),
	}
}

// Create inserts rec with a fresh ObjectID. Stamped records get createdAt set here.
func (r *mongoRecordRepository[E, T]) Create(ctx context.Context, rec T) (primitive.ObjectID, error) {
	rec.SetID(primitive.NewObjectID())
	if s, ok := any(rec).(domain.Stamped); ok {
		s.SetCreatedAt(utcNow())
	}

	result, err := r.collection.InsertOne(ctx, rec)
	if err != nil {
		// Unique index violations (teacher email, for example)
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// List returns all records sorted by _id, which follows insertion order.
func (r *mongoRecordRepository[E, T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]T, 0)
	for cursor.Next(ctx) {
		var e E // fresh value per document, records must not share memory
		if err := cursor.Decode(&e); err != nil {
			return nil, err
		}
		records = append(records, T(&e))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *mongoRecordRepository[E, T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	var e E
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return T(&e), nil
}

// Update replaces the document at id. Repeating the same update is a no-op.
func (r *mongoRecordRepository[E, T]) Update(ctx context.Context, id primitive.ObjectID, rec T) error {
	rec.SetID(id)
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	// Check if a document was actually matched
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRecordRepository[E, T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	// Check if a document was actually deleted
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
