package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"aitio.org/internal/access"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/v1/registration",
	"/v1/authentication",
	"/v1/authentication/google",
}

var publicPrefixes = []string{
	"/v1/authentication/activate/",
}

// withAuth confirms the bearer token on every non-public request and
// stashes the resulting identity in the context. Handlers behind it can
// assume a confirmed session.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			handleAccessError(w, r, access.ErrMissingToken)
			return
		}

		session, account, err := a.svc.ConfirmToken(r.Context(), token)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}

		ctx := access.ContextWithIdentity(r.Context(), access.Identity{
			Session: session,
			Account: account,
		})
		ctx = access.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// identity returns the confirmed identity placed by withAuth. Missing
// identity on a protected route is a programming error in the route
// table, so it is treated as an authentication failure rather than a
// server fault.
func identity(r *http.Request) (access.Identity, error) {
	id, ok := access.IdentityFromContext(r.Context())
	if !ok || id.Account == nil {
		return access.Identity{}, access.ErrMissingToken
	}
	return id, nil
}
