// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles. A single members array with a role tag is the
// authoritative shape; promote/demote flip the tag in place.
const (
	RoleMember  = "member"
	RoleManager = "manager"
)

// ProjectMember is a user snapshot embedded in a project's members
// array together with that user's role in the project. A user appears
// at most once per project.
type ProjectMember struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"` // member | manager
}

// Project groups tasks and carries the membership list that all task
// and project authorization decisions are evaluated against.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Members     []ProjectMember    `bson:"members" json:"members"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ProjectRef is the denormalized project snapshot embedded in tasks.
type ProjectRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"project_title" json:"project_title"`
}

// Ref returns the embeddable snapshot of p.
func (p Project) Ref() ProjectRef {
	return ProjectRef{ID: p.ID, Title: p.Title}
}
