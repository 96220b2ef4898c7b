package access

import (
	"context"
	"fmt"
	"strings"
)

// Authenticate verifies local credentials and opens a new session.
// Exactly one of the email, username and application fields must be set;
// the field selects the account lookup. Sessions are additive, so
// concurrent logins for one account each get their own token.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*Session, *Account, error) {
	var (
		account *Account
		method  string
		err     error
	)
	switch {
	case creds.Email != "" && creds.Username == "" && creds.Application == "":
		account, err = s.store.Accounts().FindActiveByEmail(ctx, strings.ToLower(creds.Email))
		method = MethodEmail
	case creds.Email == "" && creds.Username != "" && creds.Application == "":
		account, err = s.store.Accounts().FindActiveByUsername(ctx, creds.Username)
		method = MethodUsername
	case creds.Email == "" && creds.Username == "" && creds.Application != "":
		account, err = s.store.Accounts().FindByApplication(ctx, creds.Application)
		method = MethodApplication
	default:
		return nil, nil, fmt.Errorf("%w: exactly one of email, username or application must be set", ErrInvalidInput)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("access: find account: %w", err)
	}
	if err := s.hasher.Verify(creds.Password, account.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	session, err := s.openSession(ctx, account.ID, method)
	if err != nil {
		return nil, nil, err
	}
	return session, account.Redacted(), nil
}

// GoogleAuthenticate opens a session for a verified federated claim.
// An unknown email provisions a new account, already active; a known
// email must be a Google account with the same subject, otherwise the
// login is refused so an existing password account cannot be taken over.
// Repeated logins with the same claim reuse the account, keyed by email.
func (s *Service) GoogleAuthenticate(ctx context.Context, claim FederatedClaim) (*Session, *Account, error) {
	if claim.Subject == "" || claim.Email == "" {
		return nil, nil, fmt.Errorf("%w: federated claim missing subject or email", ErrInvalidInput)
	}
	email := strings.ToLower(claim.Email)
	account, err := s.store.Accounts().FindByEmail(ctx, email)
	switch {
	case err == nil:
		if account.Source != SourceGoogle || account.SourceSub != claim.Subject {
			return nil, nil, ErrAccountConflict
		}
	case isNotFound(err):
		now := s.now().UTC()
		account = &Account{
			ID:        s.newID(),
			Email:     email,
			Username:  strings.TrimSpace(claim.GivenName + " " + claim.FamilyName),
			Role:      "none",
			Active:    true,
			Source:    SourceGoogle,
			SourceSub: claim.Subject,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Accounts().Insert(ctx, account); err != nil {
			return nil, nil, fmt.Errorf("access: create federated account: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("access: find account: %w", err)
	}
	session, err := s.openSession(ctx, account.ID, MethodGoogle)
	if err != nil {
		return nil, nil, err
	}
	return session, account.Redacted(), nil
}

// ConfirmToken resolves a bearer token to its session and account. This
// is the sole gate in front of every authenticated operation: a missing
// token, an unknown token and a dangling session are each distinct
// failures, and all of them deny.
func (s *Service) ConfirmToken(ctx context.Context, token string) (*Session, *Account, error) {
	if token == "" {
		return nil, nil, ErrMissingToken
	}
	session, err := s.store.Sessions().FindByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("access: find session: %w", err)
	}
	account, err := s.store.Accounts().Find(ctx, session.AccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrAccountNotFound
		}
		return nil, nil, fmt.Errorf("access: find session account: %w", err)
	}
	return session, account.Redacted(), nil
}

func (s *Service) openSession(ctx context.Context, accountID, method string) (*Session, error) {
	token, err := RandomString(sessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("access: generate token: %w", err)
	}
	now := s.now().UTC()
	session := &Session{
		ID:        s.newID(),
		Token:     token,
		AccountID: accountID,
		Method:    method,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Sessions().Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("access: create session: %w", err)
	}
	return session, nil
}
