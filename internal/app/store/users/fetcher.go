// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fetcher implements auth.UserFetcher so the bearer middleware resolves
// a fresh Principal on every request. Credential rotations and profile
// edits take effect immediately.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by ID. Returns nil if the user is not
// found or any error occurs; the middleware maps nil to 401.
func (f *Fetcher) FetchUser(ctx context.Context, userID primitive.ObjectID) *models.User {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	if err := f.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		return nil
	}
	return &u
}
