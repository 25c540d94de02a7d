// internal/app/features/tasks/crud.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/paging"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.uber.org/zap"
)

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
}

// ServeCreate handles POST /projects/{projectID}/tasks. Manager-only;
// the new task starts in NOT_STARTED, unassigned.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	pid, err := urlID(r, "projectID", "project")
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var req createTaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "title is required"))
		return
	}
	if !models.ValidPriority(req.Priority) {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "priority must be LOW, MEDIUM, or HIGH"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetForManager(ctx, pid, user.ID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var deadline time.Time
	if req.Deadline != nil {
		deadline = *req.Deadline
	}
	t, err := h.Tasks.Create(ctx, p, req.Title, req.Description, req.Priority, deadline)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("task created",
		zap.String("task_id", t.ID.Hex()),
		zap.String("project_id", p.ID.Hex()))
	httpjson.Write(w, http.StatusCreated, t)
}

// ServeList handles GET /projects/{projectID}/tasks, scoped to project
// members. Pages with an optional ?after=<id> keyset cursor;
// X-Has-Next signals a further page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	pid, err := urlID(r, "projectID", "project")
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	after, err := paging.ParseAfter(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Projects.GetForMember(ctx, pid, user.ID); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	out, err := h.Tasks.ListByProject(ctx, pid, after, paging.LimitPlusOne())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	paging.SetHasNext(w, paging.TrimPage(&out))
	if out == nil {
		out = []models.Task{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeGet handles GET /projects/{projectID}/tasks/{taskID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	pid, tid, err := ids(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Projects.GetForMember(ctx, pid, user.ID); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	t, err := h.Tasks.GetInProject(ctx, tid, pid)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "task not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, t)
}

// ServeDelete handles DELETE /projects/{projectID}/tasks/{taskID}.
// Manager-only.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	pid, tid, err := ids(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetForManager(ctx, pid, user.ID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Tasks.Delete(ctx, tid, p.ID); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "task not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("task deleted",
		zap.String("task_id", tid.Hex()),
		zap.String("project_id", p.ID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
