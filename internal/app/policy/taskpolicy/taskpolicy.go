// internal/app/policy/taskpolicy/taskpolicy.go
package taskpolicy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/app/policy/membership"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role captures the requester's standing for one task: manager of the
// task's parent project, and/or the task's current assignee. A caller
// who is neither gets every field denied.
type Role struct {
	Manager  bool
	Assignee bool
}

// EvaluateRole derives the requester's role flags from the parent
// project's membership index and the task's current assignee. The
// assignee flag only counts when the requester is not a manager;
// managers already hold full authority.
func EvaluateRole(ix membership.Index, task models.Task, userID primitive.ObjectID) Role {
	r := Role{Manager: ix.IsManager(userID)}
	if !r.Manager && task.AssignedTo != nil && task.AssignedTo.ID == userID {
		r.Assignee = true
	}
	return r
}

// mutableFields is the evaluation order for requested fields. A fixed
// order keeps the fail-fast denial deterministic when several fields
// are present. Keys outside this list are silently dropped.
var mutableFields = []string{"title", "description", "priority", "assigned_to", "deadline", "state"}

// Reduce applies the field authorization policy to a raw partial-update
// payload and returns the approved change-set as a $set document.
//
// The payload maps field names to raw JSON values; only explicitly-set
// fields are present, so "absent" and "null" are distinguishable
// (assigned_to: null unassigns the task). The whole operation fails on
// the first denied field; unrecognized fields never cause denial and
// never reach the change-set. An empty payload is a BadRequest, an
// empty approved set is Forbidden. updated_at is stamped with now
// unconditionally.
//
// Reduce performs no I/O. The returned document must be applied as a
// single atomic update so no writer observes a partial application.
func Reduce(payload map[string]json.RawMessage, task models.Task, role Role, now time.Time) (bson.M, error) {
	normalized := normalize(payload)
	if len(normalized) == 0 {
		return nil, apperr.New(apperr.BadRequest, "request body cannot be empty")
	}

	set := bson.M{}
	for _, field := range mutableFields {
		raw, ok := normalized[field]
		if !ok {
			continue
		}
		value, err := decide(field, raw, role, task)
		if err != nil {
			return nil, err
		}
		set[field] = value
	}

	if len(set) == 0 {
		return nil, apperr.New(apperr.Forbidden, "no permission to modify any of the requested fields")
	}
	set["updated_at"] = now.UTC()
	return set, nil
}

// decide is the per-field permission matrix. It returns the value to
// store on ALLOW and an apperr on DENY.
func decide(field string, raw json.RawMessage, role Role, task models.Task) (interface{}, error) {
	if field == "state" {
		// Denial comes before value validation: a caller with no
		// standing learns nothing about which values are recognized.
		if !role.Manager && !role.Assignee {
			return nil, apperr.New(apperr.Forbidden, "you are not authorized to change this task's state")
		}
		var state string
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, apperr.New(apperr.BadRequest, "state must be a string")
		}
		if !models.ValidState(state) {
			return nil, apperr.New(apperr.BadRequest, fmt.Sprintf("unknown task state %q", state))
		}
		if !role.Manager && state == models.StateCompleted {
			return nil, apperr.New(apperr.Forbidden, "only a project manager can complete a task")
		}
		return state, nil
	}

	// Everything except state is manager-only.
	if !role.Manager {
		return nil, apperr.New(apperr.Forbidden, fmt.Sprintf("only a project manager can update the task's %s", field))
	}

	switch field {
	case "title", "description":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.New(apperr.BadRequest, field+" must be a string")
		}
		return s, nil
	case "priority":
		var p string
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, apperr.New(apperr.BadRequest, "priority must be a string")
		}
		if !models.ValidPriority(p) {
			return nil, apperr.New(apperr.BadRequest, fmt.Sprintf("unknown task priority %q", p))
		}
		return p, nil
	case "deadline":
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, apperr.New(apperr.BadRequest, "deadline must be an RFC 3339 timestamp")
		}
		return t.UTC(), nil
	case "assigned_to":
		return decodeAssignee(raw)
	}
	// Unreachable while decide is only called for mutableFields.
	return nil, apperr.New(apperr.BadRequest, "unknown field "+field)
}

// assigneePayload accepts both the canonical reference shape and a
// bare identifier under "id"; normalize rewrites the latter before
// policy evaluation.
type assigneePayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// decodeAssignee turns an assigned_to value into the stored reference.
// JSON null clears the assignment.
func decodeAssignee(raw json.RawMessage) (interface{}, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	var p assigneePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperr.New(apperr.BadRequest, "assigned_to must be null or a user reference")
	}
	if p.ID == "" {
		return nil, apperr.New(apperr.BadRequest, "assigned_to requires an id")
	}
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, apperr.New(apperr.BadRequest, "assigned_to id is not a valid object id")
	}
	return models.UserRef{
		ID:        oid,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}, nil
}

// normalize rewrites reference-shaped fields to their canonical key
// form. Clients may send assigned_to as {"_id": "..."}; that key is
// rewritten to "id" so decodeAssignee sees one shape. Malformed values
// pass through untouched so the role check in decide always runs
// before any value is rejected.
func normalize(payload map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	raw, ok := out["assigned_to"]
	if !ok || isJSONNull(raw) {
		return out
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}
	if id, ok := fields["_id"]; ok {
		if _, hasID := fields["id"]; !hasID {
			fields["id"] = id
		}
		delete(fields, "_id")
		if rewritten, err := json.Marshal(fields); err == nil {
			out["assigned_to"] = rewritten
		}
	}
	return out
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
