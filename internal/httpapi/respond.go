package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"aitio.org/internal/access"
	"aitio.org/internal/audit"
	"aitio.org/internal/googleauth"
	"aitio.org/internal/obs"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// handleAccessError maps service errors onto HTTP statuses. The
// permission chain only ever signals through errors, so anything that is
// not an explicit grant ends up here.
func handleAccessError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, access.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrInvalidCredentials):
		obs.AuthFailure("credentials")
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, access.ErrMissingToken),
		errors.Is(err, access.ErrSessionNotFound),
		errors.Is(err, access.ErrAccountNotFound):
		obs.AuthFailure("token")
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, googleauth.ErrInvalidIDToken):
		obs.AuthFailure("google")
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, access.ErrPermissionDenied):
		obs.PermissionDenied()
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, access.ErrNotFound),
		errors.Is(err, access.ErrNoMembership):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, access.ErrAccountConflict),
		errors.Is(err, access.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
