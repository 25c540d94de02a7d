// Package httpjson holds the JSON request/response helpers shared by
// all feature handlers, including the apperr → HTTP status mapping.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/app/system/apperr"
	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies; partial-update payloads are small.
const MaxBodyBytes = 1 << 20

// Decode reads the request body as JSON into dst.
func Decode(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.BadRequest, "request body cannot be empty")
		}
		return apperr.Wrap(apperr.BadRequest, "request body is not valid JSON", err)
	}
	return nil
}

// Write sends v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorBody is the wire shape for every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteError maps err to an HTTP status and sends the reason string.
// Errors without an apperr kind are treated as internal and logged;
// their text is not leaked to the caller.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status, name := statusOf(kind)
	msg := err.Error()
	if kind == 0 || kind == apperr.Inconsistent {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		if kind == 0 {
			msg = "internal server error"
		}
	}
	Write(w, status, errorBody{Error: msg, Kind: name})
}

func statusOf(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized, "unauthenticated"
	case apperr.Forbidden:
		return http.StatusForbidden, "forbidden"
	case apperr.NotFound:
		return http.StatusNotFound, "not_found"
	case apperr.BadRequest:
		return http.StatusBadRequest, "bad_request"
	case apperr.Conflict:
		return http.StatusConflict, "conflict"
	case apperr.Inconsistent:
		return http.StatusInternalServerError, "inconsistent"
	}
	return http.StatusInternalServerError, "internal"
}
