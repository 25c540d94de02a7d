// internal/app/features/tasks/update.go
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/app/policy/membership"
	"github.com/taskdeck/taskdeck/internal/app/policy/taskpolicy"
	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeUpdate handles PATCH /projects/{projectID}/tasks/{taskID}, the
// authorization-aware partial update:
//
//	fetch task → fetch parent project → build membership index →
//	reduce the payload through the field policy → apply the approved
//	change-set atomically → return the post-image.
//
// Nothing is written unless the whole payload clears the policy.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	pid, tid, err := ids(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var payload map[string]json.RawMessage
	if err := httpjson.Decode(r, &payload); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.GetInProject(ctx, tid, pid)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "task not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	// Roles are evaluated against the task's parent project, never the
	// task alone. A task pointing at a vanished project is an internal
	// inconsistency, not a 404.
	project, err := h.Projects.GetByID(ctx, task.Project.ID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Inconsistent, "task references a project that no longer exists"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	role := taskpolicy.EvaluateRole(membership.Build(project), task, user.ID)
	set, err := taskpolicy.Reduce(payload, task, role, time.Now())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	updated, err := h.Tasks.ApplyChangeSet(ctx, tid, pid, set)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "task not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("task updated",
		zap.String("task_id", tid.Hex()),
		zap.String("project_id", pid.Hex()),
		zap.Int("fields", len(set)-1)) // minus the updated_at stamp
	httpjson.Write(w, http.StatusOK, updated)
}
