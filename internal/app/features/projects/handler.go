// internal/app/features/projects/handler.go
package projects

import (
	"net/http"

	projectstore "github.com/taskdeck/taskdeck/internal/app/store/projects"
	taskstore "github.com/taskdeck/taskdeck/internal/app/store/tasks"
	userstore "github.com/taskdeck/taskdeck/internal/app/store/users"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auditlog"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves project CRUD and membership mutations.
type Handler struct {
	Projects *projectstore.Store
	Tasks    *taskstore.Store
	Users    *userstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: projectstore.New(db),
		Tasks:    taskstore.New(db),
		Users:    userstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
}

// projectID parses the {projectID} URL parameter.
func projectID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.BadRequest, "invalid project id")
	}
	return id, nil
}
