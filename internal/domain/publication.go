package domain

import "time"

// Event is a dated announcement with a mandatory image.
type Event struct {
	Base     `bson:",inline"`
	Title    string `bson:"title" json:"title" validate:"required"`
	Date     string `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	ImageURL string `bson:"imageURL" json:"imageURL"`
}

func (e *Event) AttachmentURL() string        { return e.ImageURL }
func (e *Event) SetAttachmentURL(url string) { e.ImageURL = url }

// Slide is a home page carousel photo.
type Slide struct {
	Base        `bson:",inline"`
	Title       string `bson:"title" json:"title" validate:"required"`
	Description string `bson:"description" json:"description" validate:"required"`
	ImageURL    string `bson:"imageURL" json:"imageURL"`
}

func (s *Slide) AttachmentURL() string        { return s.ImageURL }
func (s *Slide) SetAttachmentURL(url string) { s.ImageURL = url }

type Notice struct {
	Base      `bson:",inline"`
	Message   string    `bson:"message" json:"message" validate:"required"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (n *Notice) SetCreatedAt(t time.Time) { n.CreatedAt = t }
