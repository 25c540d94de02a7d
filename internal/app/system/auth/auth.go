// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserFetcher loads fresh user data for each request so profile and
// credential changes take effect immediately. Returns nil when the
// user does not exist.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID primitive.ObjectID) *models.User
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the resolved Principal for this request and a
// found flag. Handlers behind RequireUser can rely on ok being true.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok
}

// WithUser injects a user into the request context. Exported for
// handler tests that bypass the middleware.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireUser validates the bearer access token, resolves the user
// from a fresh read, and injects it into the request context. Missing
// or invalid credentials end the request with 401.
func RequireUser(tokens *TokenService, fetcher UserFetcher, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				httpjson.WriteError(w, log, apperr.New(apperr.Unauthenticated, "missing bearer token"))
				return
			}
			userID, err := tokens.Validate(token, TokenTypeAccess)
			if err != nil {
				httpjson.WriteError(w, log, err)
				return
			}
			u := fetcher.FetchUser(r.Context(), userID)
			if u == nil {
				httpjson.WriteError(w, log, apperr.New(apperr.Unauthenticated, "unknown user"))
				return
			}
			next.ServeHTTP(w, WithUser(r, u))
		})
	}
}
