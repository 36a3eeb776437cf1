package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocalAccount holds the password-based identity. Email is stored lowercased.
type LocalAccount struct {
	Email        string `bson:"email"         json:"email"`
	PasswordHash string `bson:"password_hash" json:"-"`
}

// GoogleAccount holds the OAuth-linked identity. ID is the Google "sub" claim.
type GoogleAccount struct {
	ID    string `bson:"id"    json:"id"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name"  json:"name"`
}

// User has at least one of Local/Google populated.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"    json:"id"`
	Local     *LocalAccount      `bson:"local,omitempty"  json:"local,omitempty"`
	Google    *GoogleAccount     `bson:"google,omitempty" json:"google,omitempty"`
	CreatedAt time.Time          `bson:"created_at"       json:"created_at"`
}

// Email returns the address the user is reachable at, local first.
func (u *User) Email() string {
	if u.Local != nil {
		return u.Local.Email
	}
	if u.Google != nil {
		return u.Google.Email
	}
	return ""
}
