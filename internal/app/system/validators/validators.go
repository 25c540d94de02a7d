// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/taskdeck/taskdeck/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach
// JSON-Schema validators. On servers that don't support collMod
// validators (e.g. some DocumentDB versions), we log and skip
// gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("projects", projectsSchema())
	ensure("tasks", tasksSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ensureCollection idempotently makes sure <name> exists.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "password_hash"},
			"properties": bson.M{
				"email":         bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"first_name":    bson.M{"bsonType": "string"},
				"last_name":     bson.M{"bsonType": "string"},
				"password_hash": bson.M{"bsonType": "string", "minLength": 1},
				"refresh_token_hash": bson.M{"bsonType": bson.A{"string", "null"}},
				"created_at":         bson.M{"bsonType": "date"},
				"updated_at":         bson.M{"bsonType": "date"},
			},
		},
	}
}

func projectsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "members"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "string"},
				"members": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"_id", "email", "role"},
						"properties": bson.M{
							"_id":        bson.M{"bsonType": "objectId"},
							"first_name": bson.M{"bsonType": "string"},
							"last_name":  bson.M{"bsonType": "string"},
							"email":      bson.M{"bsonType": "string", "minLength": 1},
							"role":       bson.M{"enum": bson.A{models.RoleMember, models.RoleManager}},
						},
					},
				},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func tasksSchema() bson.M {
	stateEnum := bson.A{}
	for _, s := range models.TaskStates {
		stateEnum = append(stateEnum, s)
	}
	priorityEnum := bson.A{}
	for _, p := range models.TaskPriorities {
		priorityEnum = append(priorityEnum, p)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"project", "title", "state", "priority"},
			"properties": bson.M{
				"project": bson.M{
					"bsonType": "object",
					"required": bson.A{"_id"},
					"properties": bson.M{
						"_id":           bson.M{"bsonType": "objectId"},
						"project_title": bson.M{"bsonType": "string"},
					},
				},
				"title":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "string"},
				"assigned_to": bson.M{"bsonType": bson.A{"object", "null"}},
				"state":       bson.M{"enum": stateEnum},
				"priority":    bson.M{"enum": priorityEnum},
				"deadline":    bson.M{"bsonType": "date"},
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}
