package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aitio.org/internal/access"
)

// ErrInvalidIDToken indicates the provider refused the presented token
// or its audience did not match the configured client.
var ErrInvalidIDToken = errors.New("googleauth: invalid id token")

const tokeninfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"

// Verifier turns an opaque provider credential into a verified identity
// claim. The cryptographic verification itself is delegated to the
// provider.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (access.FederatedClaim, error)
}

// TokeninfoVerifier validates Google ID tokens against the tokeninfo
// endpoint and checks the audience against the configured client id.
type TokeninfoVerifier struct {
	ClientID string
	Endpoint string
	Client   *http.Client
}

// NewTokeninfoVerifier builds a verifier for the given OAuth client id.
func NewTokeninfoVerifier(clientID string) *TokeninfoVerifier {
	return &TokeninfoVerifier{
		ClientID: clientID,
		Endpoint: tokeninfoEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *TokeninfoVerifier) Verify(ctx context.Context, idToken string) (access.FederatedClaim, error) {
	if idToken == "" {
		return access.FederatedClaim{}, ErrInvalidIDToken
	}
	endpoint := v.Endpoint
	if endpoint == "" {
		endpoint = tokeninfoEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return access.FederatedClaim{}, err
	}
	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return access.FederatedClaim{}, fmt.Errorf("googleauth: tokeninfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return access.FederatedClaim{}, ErrInvalidIDToken
	}

	var payload struct {
		Aud        string `json:"aud"`
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return access.FederatedClaim{}, fmt.Errorf("googleauth: decode tokeninfo: %w", err)
	}
	if v.ClientID != "" && payload.Aud != v.ClientID {
		return access.FederatedClaim{}, ErrInvalidIDToken
	}
	if payload.Sub == "" || payload.Email == "" {
		return access.FederatedClaim{}, ErrInvalidIDToken
	}
	return access.FederatedClaim{
		Subject:    payload.Sub,
		Email:      payload.Email,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
	}, nil
}
