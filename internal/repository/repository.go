package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akm12109/SDM-Admin/internal/domain"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	ErrInvalidID = RepositoryError("invalid id")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// RecordRepository persists one collection of records.
// Update and Delete return ErrNotFound when id does not exist at call time.
type RecordRepository[T domain.Record] interface {
	Create(ctx context.Context, rec T) (primitive.ObjectID, error)
	// List returns every record in insertion order.
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (T, error)
	// Update replaces the stored document with exactly rec.
	Update(ctx context.Context, id primitive.ObjectID, rec T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository stores console admins and registered students.
// List returns students only.
type UserRepository interface {
	RecordRepository[*domain.User]
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ParseID converts a hex string from a URL into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
