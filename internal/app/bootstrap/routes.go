// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/taskdeck/taskdeck/internal/app/features/auth"
	healthfeature "github.com/taskdeck/taskdeck/internal/app/features/health"
	projectsfeature "github.com/taskdeck/taskdeck/internal/app/features/projects"
	statsfeature "github.com/taskdeck/taskdeck/internal/app/features/stats"
	tasksfeature "github.com/taskdeck/taskdeck/internal/app/features/tasks"
	usersfeature "github.com/taskdeck/taskdeck/internal/app/features/users"
	auditstore "github.com/taskdeck/taskdeck/internal/app/store/audit"
	userstore "github.com/taskdeck/taskdeck/internal/app/store/users"
	"github.com/taskdeck/taskdeck/internal/app/system/auditlog"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed.
//
// TaskDeck builds the token service, wires the bearer-token middleware
// with a fresh-user fetcher, and mounts the feature routers: auth,
// users, projects (with tasks and stats nested per project), and
// health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokenService(appCfg.JWTSecret, appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL, nil)
	if err != nil {
		logger.Error("token service init failed", zap.Error(err))
		return nil, err
	}

	// The middleware fetches the user document on every request so that
	// removed accounts lose access immediately.
	requireUser := auth.RequireUser(tokens, userstore.NewFetcher(db), logger)

	var limiter *ratelimit.LoginLimiter
	if appCfg.LoginRatePerMinute > 0 {
		limiter = ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute)
	}

	audit := auditlog.New(auditstore.New(db), logger, appCfg.AuditLog)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authHandler := authfeature.NewHandler(db, tokens, limiter, audit, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, requireUser))

	// Everything below requires a valid access token.
	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		usersHandler := usersfeature.NewHandler(db, logger)
		r.Mount("/users", usersfeature.Routes(usersHandler))

		// Tasks and stats nest under /projects/{projectID} on the same
		// subrouter; chi carries the projectID param across the mounts.
		projectsRouter := projectsfeature.Routes(projectsfeature.NewHandler(db, audit, logger))
		projectsRouter.Mount("/{projectID}/tasks", tasksfeature.Routes(tasksfeature.NewHandler(db, logger)))
		projectsRouter.Mount("/{projectID}/stats", statsfeature.Routes(statsfeature.NewHandler(db, logger)))
		r.Mount("/projects", projectsRouter)
	})

	return r, nil
}
