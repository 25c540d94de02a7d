// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can authenticate and participate in projects.
//
// NOTE:
//   - Project membership is not embedded on User. Roles live on the
//     project documents (Project.Members) so that a user's standing is
//     always evaluated against a fresh project snapshot.
//   - RefreshTokenHash holds the SHA-256 digest of the single active
//     refresh token; issuing a new token pair overwrites it and logout
//     clears it.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	RefreshTokenHash string `bson:"refresh_token_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserRef is the denormalized user snapshot embedded in project
// membership lists and task assignments.
type UserRef struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email" json:"email"`
}

// Ref returns the embeddable snapshot of u.
func (u User) Ref() UserRef {
	return UserRef{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
