package domain

import "time"

// DefaultJitsiLink prefills the class form and is restored after each submission.
const DefaultJitsiLink = "https://meet.jitsi.com/VideoXClass"

// Class is a scheduled online lesson.
type Class struct {
	Base      `bson:",inline"`
	Subject   string    `bson:"subject" json:"subject" validate:"required"`
	StartTime time.Time `bson:"startTime" json:"startTime" validate:"required"`
	JitsiLink string    `bson:"jitsiLink" json:"jitsiLink" validate:"required,url"`
}

// Video is a recorded lesson listing. Description and link are optional.
type Video struct {
	Base        `bson:",inline"`
	Title       string    `bson:"title" json:"title" validate:"required"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Link        string    `bson:"link,omitempty" json:"link,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

func (v *Video) SetCreatedAt(t time.Time) { v.CreatedAt = t }

// Homework is an assignment with a due date and a mandatory photo.
type Homework struct {
	Base      `bson:",inline"`
	Title     string    `bson:"title" json:"title" validate:"required"`
	DueDate   time.Time `bson:"dueDate" json:"dueDate" validate:"required"`
	PhotoURL  string    `bson:"photoURL" json:"photoURL"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (h *Homework) SetCreatedAt(t time.Time)    { h.CreatedAt = t }
func (h *Homework) AttachmentURL() string        { return h.PhotoURL }
func (h *Homework) SetAttachmentURL(url string) { h.PhotoURL = url }
