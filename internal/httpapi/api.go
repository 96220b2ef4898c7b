package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"aitio.org/internal/access"
	"aitio.org/internal/googleauth"
	"aitio.org/internal/mail"
	"aitio.org/internal/obs"
)

// ReadyProbe reports backend readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the collaborators the HTTP layer needs.
type Config struct {
	Service  *access.Service
	Verifier googleauth.Verifier
	Mailer   mail.Sender
	Ready    ReadyProbe
	Version  string
	MailFrom string
}

// API is the HTTP layer.
type API struct {
	mux      *http.ServeMux
	svc      *access.Service
	verifier googleauth.Verifier
	mailer   mail.Sender
	ready    ReadyProbe
	version  string
	mailFrom string
}

func New(cfg Config) *API {
	a := &API{
		mux:      http.NewServeMux(),
		svc:      cfg.Service,
		verifier: cfg.Verifier,
		mailer:   cfg.Mailer,
		ready:    cfg.Ready,
		version:  cfg.Version,
		mailFrom: cfg.MailFrom,
	}
	if a.mailFrom == "" {
		a.mailFrom = "noreply@aitio.org"
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// accounts and sessions
	a.mux.HandleFunc("/v1/registration", a.handleRegistration)
	a.mux.HandleFunc("/v1/authentication", a.handleAuthentication)
	a.mux.HandleFunc("/v1/authentication/google", a.handleGoogleAuthentication)
	a.mux.HandleFunc("/v1/authentication/confirm", a.handleConfirm)
	a.mux.HandleFunc("/v1/authentication/activate/", a.handleActivate)
	a.mux.HandleFunc("/v1/account", a.handleAccount)

	// groups and membership
	a.mux.HandleFunc("/v1/group", a.handleGroup)
	a.mux.HandleFunc("/v1/groups", a.handleGroups)
	a.mux.HandleFunc("/v1/group/", a.handleGroupScoped)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server: request ids,
// structured logging, hardening headers, rate limiting, bearer
// authentication and request metrics.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 20, 10)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service endpoints ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "aitio-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "aitio-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
