// internal/app/store/audit/auditstore.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Event categories.
const (
	CategoryAuth       = "auth"
	CategoryMembership = "membership"
	CategoryProject    = "project"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Category  string              `bson:"category"`
	EventType string              `bson:"event_type"`
	ActorID   *primitive.ObjectID `bson:"actor_id,omitempty"`
	TargetID  *primitive.ObjectID `bson:"target_id,omitempty"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty"`
	Success   bool                `bson:"success"`
	IP        string              `bson:"ip,omitempty"`
	Details   map[string]string   `bson:"details,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`
}

// Store persists audit events.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log inserts the event, stamping created_at.
func (s *Store) Log(ctx context.Context, e Event) error {
	e.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, e)
	return err
}
