// internal/app/features/auth/refresh.go
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeRefresh handles GET /auth/refresh. The bearer token must be a
// valid refresh token whose digest matches the single stored one; the
// pair is rotated so the presented token cannot be replayed.
func (h *Handler) ServeRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "missing bearer token"))
		return
	}
	userID, err := h.Tokens.Validate(token, auth.TokenTypeRefresh)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "invalid or expired token"))
		return
	}
	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(user.RefreshTokenHash), []byte(auth.HashToken(token))) != 1 {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "refresh token has been revoked"))
		return
	}

	pair, err := h.Tokens.Issue(user.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if err := h.Users.SetRefreshTokenHash(ctx, user.ID, auth.HashToken(pair.RefreshToken)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("token pair rotated", zap.String("user_id", user.ID.Hex()))
	httpjson.Write(w, http.StatusOK, pair)
}

// ServeLogout handles POST /auth/logout: clears the stored refresh
// digest so the active refresh token is invalidated.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.ClearRefreshTokenHash(ctx, user.ID); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
