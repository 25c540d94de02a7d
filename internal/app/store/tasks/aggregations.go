// internal/app/store/tasks/aggregations.go
package taskstore

import (
	"context"
	"time"

	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StateCount is one row of a per-state breakdown.
type StateCount struct {
	State string `bson:"_id" json:"state"`
	Count int64  `bson:"count" json:"count"`
}

// CountByState groups the project's tasks by state.
func (s *Store) CountByState(ctx context.Context, projectID primitive.ObjectID) ([]StateCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"project._id": projectID}},
		{"$group": bson.M{"_id": "$state", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"_id": 1}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []StateCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MatrixCell is one (state, priority) bucket.
type MatrixCell struct {
	Key struct {
		State    string `bson:"state" json:"state"`
		Priority string `bson:"priority" json:"priority"`
	} `bson:"_id" json:"key"`
	Count int64 `bson:"count" json:"count"`
}

// StatePriorityMatrix breaks the project's tasks down by state and
// priority together.
func (s *Store) StatePriorityMatrix(ctx context.Context, projectID primitive.ObjectID) ([]MatrixCell, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"project._id": projectID}},
		{"$group": bson.M{
			"_id":   bson.M{"state": "$state", "priority": "$priority"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id.state": 1, "_id.priority": 1}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []MatrixCell
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Completer is a user ranked by how many of the project's tasks they
// have completed.
type Completer struct {
	User  models.UserRef `bson:"user" json:"user"`
	Count int64          `bson:"count" json:"count"`
}

// TopCompleters returns the top limit assignees of COMPLETED tasks in
// the project, most completions first.
func (s *Store) TopCompleters(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]Completer, error) {
	if limit <= 0 {
		limit = 5
	}
	pipeline := []bson.M{
		{"$match": bson.M{
			"project._id": projectID,
			"state":       models.StateCompleted,
			"assigned_to": bson.M{"$ne": nil},
		}},
		{"$group": bson.M{
			"_id":   "$assigned_to._id",
			"user":  bson.M{"$first": "$assigned_to"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": limit},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Completer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StateShare is a state's share of the project's tasks in percent.
type StateShare struct {
	State   string  `json:"state"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// StateDistribution returns per-state percentages over the project's
// tasks. Percentages are computed from the grouped counts; an empty
// project yields an empty slice.
func (s *Store) StateDistribution(ctx context.Context, projectID primitive.ObjectID) ([]StateShare, error) {
	counts, err := s.CountByState(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil, nil
	}
	out := make([]StateShare, 0, len(counts))
	for _, c := range counts {
		out = append(out, StateShare{
			State:   c.State,
			Count:   c.Count,
			Percent: float64(c.Count) * 100 / float64(total),
		})
	}
	return out, nil
}

// UpcomingDeadlines lists the project's unfinished tasks whose deadline
// falls within the given window, soonest first.
func (s *Store) UpcomingDeadlines(ctx context.Context, projectID primitive.ObjectID, within time.Duration, limit int64) ([]models.Task, error) {
	if limit <= 0 {
		limit = 20
	}
	now := time.Now().UTC()
	filter := bson.M{
		"project._id": projectID,
		"state":       bson.M{"$ne": models.StateCompleted},
		"deadline":    bson.M{"$gte": now, "$lte": now.Add(within)},
	}
	opts := options.Find().SetSort(bson.M{"deadline": 1}).SetLimit(limit)
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
