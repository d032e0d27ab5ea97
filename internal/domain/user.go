package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// User is an account in the users collection: console admins and registered students.
type User struct {
	Base            `bson:",inline"`
	Name            string    `bson:"name" json:"name" validate:"required"`
	Class           string    `bson:"class,omitempty" json:"class,omitempty" validate:"required_if=Role student"`
	Age             int       `bson:"age,omitempty" json:"age,omitempty" validate:"required_if=Role student,gte=0,lt=150"`
	Email           string    `bson:"email" json:"email" validate:"required,email"`
	ProfilePhotoURL string    `bson:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`
	PasswordHash    string    `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role            Role      `bson:"role" json:"role" validate:"required,oneof=admin student"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) AttachmentURL() string        { return u.ProfilePhotoURL }
func (u *User) SetAttachmentURL(url string) { u.ProfilePhotoURL = url }
