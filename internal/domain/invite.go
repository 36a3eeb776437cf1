package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite allow-lists an email for Google signup. It is a gate, not a
// one-time token: the record stays after a successful registration.
type Invite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email"         json:"email"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
}
