// internal/app/features/projects/members.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck/internal/app/policy/membership"
	"github.com/taskdeck/taskdeck/internal/app/store/audit"
	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	userstore "github.com/taskdeck/taskdeck/internal/app/store/users"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// managerGate fetches the project scoped to the requester's manager
// role and resolves the target user by email. Both the absent project
// and the not-a-manager case come back as "project not found".
func (h *Handler) managerGate(ctx context.Context, r *http.Request) (models.Project, models.User, error) {
	requester, _ := auth.CurrentUser(r)
	id, err := projectID(r)
	if err != nil {
		return models.Project{}, models.User{}, err
	}

	p, err := h.Projects.GetForManager(ctx, id, requester.ID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			return models.Project{}, models.User{}, apperr.New(apperr.NotFound, "project not found")
		}
		return models.Project{}, models.User{}, err
	}

	email := strings.TrimSpace(strings.ToLower(chi.URLParam(r, "email")))
	target, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.Project{}, models.User{}, apperr.New(apperr.NotFound, "user not found")
		}
		return models.Project{}, models.User{}, err
	}
	return p, target, nil
}

// refetch returns the project's post-mutation state for the response.
func (h *Handler) refetch(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	return h.Projects.GetByID(ctx, id)
}

// auditMembership records a successful membership mutation.
func (h *Handler) auditMembership(ctx context.Context, r *http.Request, eventType string, projectID, targetID primitive.ObjectID) {
	requester, _ := auth.CurrentUser(r)
	h.Audit.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: eventType,
		ActorID:   &requester.ID,
		TargetID:  &targetID,
		ProjectID: &projectID,
		Success:   true,
	})
}

// ServeAddMember handles POST /projects/{projectID}/members/{email}.
func (h *Handler) ServeAddMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, target, err := h.managerGate(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Projects.AddMember(ctx, p.ID, target); err != nil {
		if errors.Is(err, projectstore.ErrAlreadyMember) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "user is already a member or manager of the project"))
			return
		}
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("member added",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", target.ID.Hex()))
	h.auditMembership(ctx, r, "member_added", p.ID, target.ID)
	h.respondWithProject(ctx, w, p.ID)
}

// ServeRemoveMember handles DELETE /projects/{projectID}/members/{email}.
// Removing a member also unassigns every task in the project that was
// assigned to them.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, target, err := h.managerGate(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Projects.RemoveMember(ctx, p.ID, target.ID); err != nil {
		if errors.Is(err, projectstore.ErrNotMember) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "user is not a member of the project"))
			return
		}
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.NotFound, "project not found"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	cleared, err := h.Tasks.ClearAssignee(ctx, p.ID, target.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("member removed",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", target.ID.Hex()),
		zap.Int64("tasks_unassigned", cleared))
	h.auditMembership(ctx, r, "member_removed", p.ID, target.ID)
	h.respondWithProject(ctx, w, p.ID)
}

// ServePromote handles POST /projects/{projectID}/managers/{email}.
// The target must already be a member holding the member role.
func (h *Handler) ServePromote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, target, err := h.managerGate(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	// Pre-check against the fetched snapshot for a specific reason; the
	// guarded update below re-validates atomically.
	ix := membership.Build(p)
	role, present := ix.Role(target.ID)
	if !present {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "user is not a member of the project"))
		return
	}
	if role == models.RoleManager {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "user is already a manager of the project"))
		return
	}

	if err := h.Projects.Promote(ctx, p.ID, target.ID); err != nil {
		if errors.Is(err, projectstore.ErrMembershipChanged) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "project membership changed, retry the operation"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("member promoted to manager",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", target.ID.Hex()))
	h.auditMembership(ctx, r, "member_promoted", p.ID, target.ID)
	h.respondWithProject(ctx, w, p.ID)
}

// ServeDemote handles DELETE /projects/{projectID}/managers/{email}.
// The target keeps their membership with the member role.
func (h *Handler) ServeDemote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, target, err := h.managerGate(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ix := membership.Build(p)
	if !ix.IsManager(target.ID) {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "user is not a manager of the project"))
		return
	}

	if err := h.Projects.Demote(ctx, p.ID, target.ID); err != nil {
		if errors.Is(err, projectstore.ErrMembershipChanged) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "project membership changed, retry the operation"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("manager demoted to member",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", target.ID.Hex()))
	h.auditMembership(ctx, r, "manager_demoted", p.ID, target.ID)
	h.respondWithProject(ctx, w, p.ID)
}

func (h *Handler) respondWithProject(ctx context.Context, w http.ResponseWriter, id primitive.ObjectID) {
	p, err := h.refetch(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}
