package access

import (
	"errors"
	"time"

	"aitio.org/internal/ids"
)

const (
	sessionTokenLength   = 64
	activationCodeLength = 16
)

// Service exposes the session, account, group and permission operations.
// All mutating callers are expected to run the same chain: resolve the
// bearer token with ConfirmToken, then check the required right, then
// act. Any failure along the chain aborts the whole request.
type Service struct {
	store  Store
	hasher Hasher
	now    func() time.Time
	newID  func() string
}

// Option configures Service behavior.
type Option func(*Service)

// WithHasher overrides the password hasher.
func WithHasher(h Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithIDGenerator overrides record id generation (useful for tests).
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService constructs the access service over the given store.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("access: store is required")
	}
	s := &Service{
		store:  store,
		hasher: NewSHA256Hasher(),
		now:    time.Now,
		newID:  ids.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
