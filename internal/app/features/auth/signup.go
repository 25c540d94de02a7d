// internal/app/features/auth/signup.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/app/store/audit"
	userstore "github.com/taskdeck/taskdeck/internal/app/store/users"
	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"github.com/taskdeck/taskdeck/internal/app/system/httpjson"
	"github.com/taskdeck/taskdeck/internal/app/system/ratelimit"
	"github.com/taskdeck/taskdeck/internal/app/system/timeouts"
	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ServeSignup handles POST /auth/signup. Email is the uniqueness
// identity; a duplicate surfaces as Conflict.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		httpjson.WriteError(w, h.Log, apperr.New(apperr.BadRequest, "email and password are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.WriteError(w, h.Log, apperr.New(apperr.Conflict, "a user with this email already exists"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Audit.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: "signup",
		ActorID:   &user.ID,
		Success:   true,
		IP:        ratelimit.ClientIP(r),
	})
	h.Log.Info("user signed up", zap.String("user_id", user.ID.Hex()))
	httpjson.Write(w, http.StatusCreated, user)
}
