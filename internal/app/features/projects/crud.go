// internal/app/features/projects/crud.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/app/store/audit"
	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/paging"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.uber.org/zap"
)

type createProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ServeCreate handles POST /projects. The creator becomes the
// project's first (and only) manager.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req createProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "title is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Create(ctx, req.Title, req.Description, *user)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("manager_id", user.ID.Hex()))
	httpjson.Write(w, http.StatusCreated, p)
}

// ServeList handles GET /projects: every project the caller belongs
// to, in any role. Pages with an optional ?after=<id> keyset cursor;
// X-Has-Next signals a further page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	after, err := paging.ParseAfter(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Projects.ListForMember(ctx, user.ID, after, paging.LimitPlusOne())
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	paging.SetHasNext(w, paging.TrimPage(&out))
	if out == nil {
		out = []models.Project{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeGet handles GET /projects/{projectID}, scoped to members.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id, err := projectID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetForMember(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

// ServeDelete handles DELETE /projects/{projectID}. Manager-only; a
// non-manager gets the same "project not found" a stranger would.
// Tasks are cascaded first so a crash between the two deletes leaves
// an empty project rather than orphaned tasks.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id, err := projectID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, err := h.Projects.GetForManager(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	deleted, err := h.Tasks.DeleteByProject(ctx, p.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if err := h.Projects.Delete(ctx, p.ID); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", p.ID.Hex()),
		zap.Int64("tasks_deleted", deleted))
	h.Audit.Log(ctx, audit.Event{
		Category:  audit.CategoryProject,
		EventType: "project_deleted",
		ActorID:   &user.ID,
		ProjectID: &p.ID,
		Success:   true,
	})
	w.WriteHeader(http.StatusNoContent)
}
