package access

import (
	"context"
	"fmt"
	"strings"
)

// CreateAccount registers a password account. The row starts inactive
// with a fresh activation code; the caller mails the code out. The
// returned account carries the code so the caller can build that mail,
// but the password field is already redacted.
func (s *Service) CreateAccount(ctx context.Context, account *Account, password string) (*Account, error) {
	if account == nil || strings.TrimSpace(account.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(account.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("access: hash password: %w", err)
	}
	code, err := RandomString(activationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("access: generate activation code: %w", err)
	}
	now := s.now().UTC()
	account.ID = s.newID()
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	account.Password = digest
	if account.Role == "" {
		account.Role = "none"
	}
	account.Active = false
	account.ActivationCode = code
	account.CreatedAt = now
	account.UpdatedAt = now
	if err := s.store.Accounts().Insert(ctx, account); err != nil {
		return nil, fmt.Errorf("access: create account: %w", err)
	}
	out := account.Redacted()
	out.ActivationCode = code
	return out, nil
}

// GetAccount returns an account by id, redacted.
func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	account, err := s.store.Accounts().Find(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: find account: %w", err)
	}
	return account.Redacted(), nil
}

// ActivateAccount flips the account holding the code to active.
func (s *Service) ActivateAccount(ctx context.Context, code string) (*Account, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: activation code is required", ErrInvalidInput)
	}
	account, err := s.store.Accounts().ActivateByCode(ctx, code)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("access: activate account: %w", err)
	}
	return account.Redacted(), nil
}
