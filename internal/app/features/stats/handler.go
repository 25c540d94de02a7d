// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves read-only project statistics. Every endpoint is
// scoped to project members.
type Handler struct {
	Projects *projectstore.Store
	Tasks    *taskstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projectstore.New(db),
		Tasks:    taskstore.New(db),
		Log:      logger,
	}
}

// memberProject resolves the projectID URL param and checks the caller
// is a member. A miss is reported as "project not found".
func (h *Handler) memberProject(ctx context.Context, r *http.Request) (primitive.ObjectID, error) {
	user, _ := auth.CurrentUser(r)
	pid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.BadRequest, "invalid project id")
	}
	if _, err := h.Projects.GetForMember(ctx, pid, user.ID); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			return primitive.NilObjectID, apperr.New(apperr.NotFound, "project not found")
		}
		return primitive.NilObjectID, err
	}
	return pid, nil
}

// ServeStates handles GET /projects/{projectID}/stats/states.
func (h *Handler) ServeStates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pid, err := h.memberProject(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	out, err := h.Tasks.CountByState(ctx, pid)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []taskstore.StateCount{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeMatrix handles GET /projects/{projectID}/stats/matrix.
func (h *Handler) ServeMatrix(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pid, err := h.memberProject(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	out, err := h.Tasks.StatePriorityMatrix(ctx, pid)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []taskstore.MatrixCell{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeCompleters handles GET /projects/{projectID}/stats/completers.
// The optional limit query param caps the leaderboard size.
func (h *Handler) ServeCompleters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pid, err := h.memberProject(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "limit must be a positive integer"))
			return
		}
	}

	out, err := h.Tasks.TopCompleters(ctx, pid, limit)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []taskstore.Completer{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeDistribution handles GET /projects/{projectID}/stats/distribution.
func (h *Handler) ServeDistribution(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pid, err := h.memberProject(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	out, err := h.Tasks.StateDistribution(ctx, pid)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []taskstore.StateShare{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeUpcoming handles GET /projects/{projectID}/stats/upcoming.
// The optional within query param is a number of days, default 7.
func (h *Handler) ServeUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pid, err := h.memberProject(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	days := int64(7)
	if raw := r.URL.Query().Get("within"); raw != "" {
		days, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || days < 1 {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "within must be a positive number of days"))
			return
		}
	}

	out, err := h.Tasks.UpcomingDeadlines(ctx, pid, time.Duration(days)*24*time.Hour, 0)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.Task{}
	}
	httpjson.Write(w, http.StatusOK, out)
}
