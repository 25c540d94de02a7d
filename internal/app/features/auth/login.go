// internal/app/features/auth/login.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/app/store/audit"
	userstore "github.com/taskdeck/taskdeck/internal/app/store/users"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/auth"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/ratelimit"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeLogin handles POST /auth/login. A missing user and a wrong
// password are indistinguishable to the caller.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if h.Limiter != nil && !h.Limiter.Check(r, req.Email) {
		h.Log.Warn("login throttled", zap.String("ip", ratelimit.ClientIP(r)))
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "too many login attempts, try again later"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "incorrect email or password"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.Audit.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: "login_failed",
			TargetID:  &user.ID,
			IP:        ratelimit.ClientIP(r),
		})
		httpjson.WriteError(w, h.Log, apperr.New(apperr.Unauthenticated, "incorrect email or password"))
		return
	}

	pair, err := h.Tokens.Issue(user.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	// Storing the new digest invalidates any previously issued refresh
	// token for this user.
	if err := h.Users.SetRefreshTokenHash(ctx, user.ID, auth.HashToken(pair.RefreshToken)); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}

	h.Audit.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: "login",
		ActorID:   &user.ID,
		Success:   true,
		IP:        ratelimit.ClientIP(r),
	})
	h.Log.Info("user logged in", zap.String("user_id", user.ID.Hex()))
	httpjson.Write(w, http.StatusOK, pair)
}
