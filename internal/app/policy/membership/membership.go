// internal/app/policy/membership/membership.go
package membership

import (
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Index is an in-memory view of a project's membership list, built from
// a fetched project snapshot. It performs no I/O: answers reflect the
// snapshot it was built from, so callers should rebuild it per request
// from a fresh read.
type Index struct {
	roles map[primitive.ObjectID]string
}

// Build constructs an Index from the project's members array.
func Build(p models.Project) Index {
	roles := make(map[primitive.ObjectID]string, len(p.Members))
	for _, m := range p.Members {
		roles[m.ID] = m.Role
	}
	return Index{roles: roles}
}

// IsMember reports whether userID appears in the membership set,
// regardless of role.
func (ix Index) IsMember(userID primitive.ObjectID) bool {
	_, ok := ix.roles[userID]
	return ok
}

// IsManager reports whether userID holds the manager role.
func (ix Index) IsManager(userID primitive.ObjectID) bool {
	return ix.roles[userID] == models.RoleManager
}

// Role returns the role tag for userID and whether the user is present.
func (ix Index) Role(userID primitive.ObjectID) (string, bool) {
	role, ok := ix.roles[userID]
	return role, ok
}
