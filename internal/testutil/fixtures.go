package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject creates a test project with the given manager and any
// additional plain members.
func (f *Fixtures) CreateProject(ctx context.Context, title string, manager models.User, members ...models.User) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:    primitive.NewObjectID(),
		Title: title,
		Members: []models.ProjectMember{{
			ID:        manager.ID,
			FirstName: manager.FirstName,
			LastName:  manager.LastName,
			Email:     manager.Email,
			Role:      models.RoleManager,
		}},
		CreatedAt: now,
	}
	for _, m := range members {
		project.Members = append(project.Members, models.ProjectMember{
			ID:        m.ID,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Email:     m.Email,
			Role:      models.RoleMember,
		})
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTask creates a test task in the given project.
func (f *Fixtures) CreateTask(ctx context.Context, project models.Project, title, state, priority string, assignee *models.User) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Project:   project.Ref(),
		Title:     title,
		State:     state,
		Priority:  priority,
		Deadline:  now.Add(72 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if assignee != nil {
		ref := assignee.Ref()
		task.AssignedTo = &ref
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}
