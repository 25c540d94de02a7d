// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("%s: %w", coll.Name(), err)
	}
	return nil
}

// users: email is the uniqueness identity for signup.
func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	})
}

// projects: membership lookups filter on the embedded members array,
// both "is a member" and "is a manager".
func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("projects"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "members._id", Value: 1}},
			Options: options.Index().SetName("members_id"),
		},
		{
			Keys:    bson.D{{Key: "members._id", Value: 1}, {Key: "members.role", Value: 1}},
			Options: options.Index().SetName("members_id_role"),
		},
	})
}

// tasks: project-scoped listings, the state/priority aggregations, and
// per-assignee state counts.
func ensureTasks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("tasks"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project._id", Value: 1}},
			Options: options.Index().SetName("project_id"),
		},
		{
			Keys:    bson.D{{Key: "project._id", Value: 1}, {Key: "state", Value: 1}, {Key: "priority", Value: 1}},
			Options: options.Index().SetName("project_id_state_priority"),
		},
		{
			Keys:    bson.D{{Key: "assigned_to._id", Value: 1}, {Key: "state", Value: 1}},
			Options: options.Index().SetName("assigned_to_state"),
		},
	})
}
