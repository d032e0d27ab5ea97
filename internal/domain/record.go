package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names in the document store.
const (
	CollectionUsers    = "users"
	CollectionTeachers = "teachers"
	CollectionEvents   = "events"
	CollectionSlides   = "slides"
	CollectionNotices  = "notices"
	CollectionClasses  = "classes"
	CollectionVideos   = "videos"
	CollectionHomework = "homework"
)

// Record is implemented by every document persisted through a RecordRepository.
type Record interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
}

// Stamped records get a server-assigned creation time on insert.
type Stamped interface {
	SetCreatedAt(t time.Time)
}

// Attachable records reference one uploaded blob by URL.
type Attachable interface {
	AttachmentURL() string
	SetAttachmentURL(url string)
}

// Base carries the store-assigned identifier.
type Base struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
}

func (b *Base) GetID() primitive.ObjectID    { return b.ID }
func (b *Base) SetID(id primitive.ObjectID) { b.ID = id }
