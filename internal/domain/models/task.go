// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task states. Managers may set any state from any state; the only
// transition restricted by role is into StateCompleted.
const (
	StateNotStarted             = "NOT_STARTED"
	StateInProgress             = "IN_PROGRESS"
	StateSubmittedForValidation = "SUBMITTED_FOR_VALIDATION"
	StateCompleted              = "COMPLETED"
)

// Task priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// TaskStates lists all task states in lifecycle order.
var TaskStates = []string{StateNotStarted, StateInProgress, StateSubmittedForValidation, StateCompleted}

// TaskPriorities lists all task priorities.
var TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidState reports whether s is one of the known task states.
func ValidState(s string) bool {
	switch s {
	case StateNotStarted, StateInProgress, StateSubmittedForValidation, StateCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task belongs to exactly one project (Project.ID is immutable after
// creation) and is deleted when that project is deleted.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Project     ProjectRef         `bson:"project" json:"project"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	AssignedTo  *UserRef           `bson:"assigned_to" json:"assigned_to"`
	State       string             `bson:"state" json:"state"`
	Priority    string             `bson:"priority" json:"priority"`
	Deadline    time.Time          `bson:"deadline" json:"deadline"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
