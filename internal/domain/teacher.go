package domain

// Teacher is a staff profile shown on the public site.
type Teacher struct {
	Base          `bson:",inline"`
	Name          string `bson:"name" json:"name" validate:"required"`
	Subject       string `bson:"subject" json:"subject" validate:"required"`
	ClassTeacher  string `bson:"classTeacher" json:"classTeacher"`
	PhotoURL      string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	ContactNumber string `bson:"contactNumber" json:"contactNumber"`
	Email         string `bson:"email" json:"email" validate:"omitempty,email"`
	Telegram      string `bson:"telegram" json:"telegram"`
	WhatsApp      string `bson:"whatsapp" json:"whatsapp"`
}

func (t *Teacher) AttachmentURL() string        { return t.PhotoURL }
func (t *Teacher) SetAttachmentURL(url string) { t.PhotoURL = url }
