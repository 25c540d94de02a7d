// internal/app/features/auth/handler.go
package auth

import (
	userstore "github.com/taskdeck/taskdeck/internal/app/store/users"
	"github.com/taskdeck/taskdeck/internal/app/system/auditlog"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BcryptCost for password hashing.
const BcryptCost = 10

// Handler serves signup, login, token refresh, and logout.
type Handler struct {
	Users   *userstore.Store
	Tokens  *auth.TokenService
	Limiter *ratelimit.LoginLimiter // nil disables login throttling
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler wires the auth feature against the given database.
func NewHandler(db *mongo.Database, tokens *auth.TokenService, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Tokens:  tokens,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}
