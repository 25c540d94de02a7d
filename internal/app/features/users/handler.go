// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the current-user endpoints.
type Handler struct {
	Tasks *taskstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks: taskstore.New(db),
		Log:   logger,
	}
}

// ServeMe handles GET /users/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

type taskCountResponse struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// ServeTaskCount handles GET /users/me/task-count?state=S: how many
// tasks assigned to the caller are in the given state.
func (h *Handler) ServeTaskCount(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}
	state := r.URL.Query().Get("state")
	if !models.ValidState(state) {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "state query parameter is required and must be a known task state"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Tasks.CountForAssigneeByState(ctx, user.ID, state)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, taskCountResponse{State: state, Count: n})
}
