package googleauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokeninfoVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "good-token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aud":"client-1","sub":"s1","email":"g@x.com","given_name":"Greta","family_name":"Google"}`))
	}))
	defer srv.Close()

	v := &TokeninfoVerifier{ClientID: "client-1", Endpoint: srv.URL, Client: srv.Client()}

	claim, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claim.Subject != "s1" || claim.Email != "g@x.com" {
		t.Fatalf("unexpected claim %+v", claim)
	}

	if _, err := v.Verify(context.Background(), "bad-token"); !errors.Is(err, ErrInvalidIDToken) {
		t.Fatalf("expected ErrInvalidIDToken, got %v", err)
	}
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidIDToken) {
		t.Fatalf("expected ErrInvalidIDToken for empty token, got %v", err)
	}
}

func TestTokeninfoVerifierAudienceMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aud":"someone-else","sub":"s1","email":"g@x.com"}`))
	}))
	defer srv.Close()

	v := &TokeninfoVerifier{ClientID: "client-1", Endpoint: srv.URL, Client: srv.Client()}
	if _, err := v.Verify(context.Background(), "token"); !errors.Is(err, ErrInvalidIDToken) {
		t.Fatalf("expected ErrInvalidIDToken, got %v", err)
	}
}
