// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("task not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts a task in the NOT_STARTED state with a snapshot of
// the parent project reference. The snapshot's id is immutable for the
// life of the task.
func (s *Store) Create(ctx context.Context, project models.Project, title, description, priority string, deadline time.Time) (models.Task, error) {
	now := time.Now().UTC()
	if deadline.IsZero() {
		deadline = now
	}
	t := models.Task{
		ID:          primitive.NewObjectID(),
		Project:     project.Ref(),
		Title:       title,
		Description: description,
		AssignedTo:  nil,
		State:       models.StateNotStarted,
		Priority:    priority,
		Deadline:    deadline.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetInProject fetches a task constrained to its parent project.
func (s *Store) GetInProject(ctx context.Context, taskID, projectID primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{"_id": taskID, "project._id": projectID}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

// ListByProject returns every task in the project.
func (s *Store) ListByProject(ctx context.Context, projectID, after primitive.ObjectID, limit int64) ([]models.Task, error) {
	filter := bson.M{"project._id": projectID}
	if !after.IsZero() {
		filter["_id"] = bson.M{"$gt": after}
	}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyChangeSet commits a policy-approved change-set as one
// conditional find-and-update keyed by task id and parent project id,
// returning the post-image. No reader or writer ever observes a
// partially applied change-set.
func (s *Store) ApplyChangeSet(ctx context.Context, taskID, projectID primitive.ObjectID, set bson.M) (models.Task, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "project._id": projectID},
		bson.M{"$set": set},
		after,
	).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

// Delete removes a task constrained to its parent project.
func (s *Store) Delete(ctx context.Context, taskID, projectID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": taskID, "project._id": projectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject removes every task in the project (cascade delete).
// Returns the number of documents deleted.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project._id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClearAssignee unassigns every task in the project currently assigned
// to the given user. Runs as part of removing a member so the project
// holds no assignments pointing at a non-member.
func (s *Store) ClearAssignee(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"project._id": projectID, "assigned_to._id": userID},
		bson.M{"$set": bson.M{"assigned_to": nil, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountForAssigneeByState counts the user's assigned tasks in one state
// across all projects.
func (s *Store) CountForAssigneeByState(ctx context.Context, userID primitive.ObjectID, state string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"assigned_to._id": userID, "state": state})
}
