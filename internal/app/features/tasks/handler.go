// internal/app/features/tasks/handler.go
package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the task endpoints nested under a project.
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

func urlID(r *http.Request, name, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.BadRequest, "invalid "+what+" id")
	}
	return id, nil
}

func ids(r *http.Request) (projectID, taskID primitive.ObjectID, err error) {
	if projectID, err = urlID(r, "projectID", "project"); err != nil {
		return
	}
	taskID, err = urlID(r, "taskID", "task")
	return
}
