package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"aitio.org/internal/access"
	"aitio.org/internal/audit"
	"aitio.org/internal/mail"
	"aitio.org/internal/obs"
)

type registrationRequest struct {
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	Fullname     string   `json:"fullname"`
	Password     string   `json:"password"`
	Applications []string `json:"applications"`
}

type googleAuthRequest struct {
	IDToken string `json:"id_token"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Account *access.Account `json:"account"`
}

type identityResponse struct {
	Session *access.Session `json:"session"`
	Account *access.Account `json:"account"`
}

func (a *API) handleRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	account, err := a.svc.CreateAccount(r.Context(), &access.Account{
		Email:        req.Email,
		Username:     req.Username,
		Fullname:     req.Fullname,
		Applications: req.Applications,
	}, req.Password)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.sendActivationMail(r, account)

	_ = audit.LogEvent(r.Context(), "access.account.register", map[string]any{
		"account_id": account.ID,
		"email":      account.Email,
	})

	// The activation code travels by mail only.
	account.ActivationCode = ""
	writeJSON(w, http.StatusCreated, account)
}

func (a *API) sendActivationMail(r *http.Request, account *access.Account) {
	if a.mailer == nil {
		return
	}
	msg := mail.Message{
		From:    a.mailFrom,
		To:      account.Email,
		Subject: "Activate your account",
		Text: fmt.Sprintf("Hello %s,\n\nyour activation code is %s.\n",
			account.Username, account.ActivationCode),
	}
	if err := a.mailer.Send(msg); err != nil {
		obs.Event("error", "activation mail not sent", map[string]any{
			"account_id": account.ID,
			"error":      err.Error(),
		})
	}
}

func (a *API) handleAuthentication(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var creds access.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, account, err := a.svc.Authenticate(r.Context(), creds)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	obs.SessionIssued(session.Method)
	_ = audit.LogEvent(r.Context(), "access.session.open", map[string]any{
		"session_id": session.ID,
		"account_id": account.ID,
		"method":     session.Method,
	})

	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, Account: account})
}

func (a *API) handleGoogleAuthentication(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.verifier == nil {
		writeError(w, r, http.StatusServiceUnavailable, "google authentication unavailable")
		return
	}

	var req googleAuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := a.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	session, account, err := a.svc.GoogleAuthenticate(r.Context(), claim)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	obs.SessionIssued(session.Method)
	_ = audit.LogEvent(r.Context(), "access.session.open", map[string]any{
		"session_id": session.ID,
		"account_id": account.ID,
		"method":     session.Method,
	})

	writeJSON(w, http.StatusOK, sessionResponse{Token: session.Token, Account: account})
}

func (a *API) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id, err := identity(r)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{Session: id.Session, Account: id.Account})
}

func (a *API) handleActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/authentication/activate/"), "/")
	account, err := a.svc.ActivateAccount(r.Context(), code)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "access.account.activate", map[string]any{
		"account_id": account.ID,
	})

	writeJSON(w, http.StatusOK, account)
}

func (a *API) handleAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id, err := identity(r)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id.Account)
}
