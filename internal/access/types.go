package access

import "time"

// Authentication methods recorded on a session.
const (
	MethodEmail       = "email"
	MethodUsername    = "username"
	MethodApplication = "application"
	MethodGoogle      = "google"
)

// SourceGoogle tags accounts provisioned through Google federated login.
const SourceGoogle = "google"

// Account is an identity record. Password holds the stored digest, never
// the plaintext. Federated accounts carry Source and SourceSub instead of
// a password and are active from the moment they are created.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Fullname       string    `json:"fullname,omitempty"`
	Password       string    `json:"-"`
	Role           string    `json:"role"`
	Applications   []string  `json:"applications,omitempty"`
	Active         bool      `json:"active"`
	ActivationCode string    `json:"-"`
	RecoveryCode   string    `json:"-"`
	Source         string    `json:"source,omitempty"`
	SourceSub      string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Redacted returns a copy of the account with the password digest
// overwritten. Every account that leaves this package goes through it.
func (a *Account) Redacted() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.Password = ""
	return &out
}

// Session is proof of authentication. The token is an opaque bearer
// credential: possession is equivalent to the account itself.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Group is the tenancy boundary. Content and members are scoped to it.
type Group struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessCode string    `json:"business_code"`
	Address      string    `json:"address"`
	Domains      []string  `json:"domains"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Member joins one account to one group with a set of rights.
// An account belongs to at most one group.
type Member struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	AccountID string    `json:"account_id"`
	Rights    Rights    `json:"rights"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credentials selects exactly one identity field for Authenticate.
type Credentials struct {
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	Application string `json:"application,omitempty"`
	Password    string `json:"password"`
}

// FederatedClaim is the verified identity claim produced by an external
// OAuth verifier. This package never sees the raw provider token.
type FederatedClaim struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}
