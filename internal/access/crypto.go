package access

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and verifies password digests. Verify returns nil on a
// match and ErrInvalidCredentials otherwise.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) error
}

// NewSHA256Hasher returns the hasher used for existing account rows:
// a plain unsalted SHA-256 hex digest. The comparison is constant time,
// which the original scheme was not; digests themselves are unchanged so
// stored credentials keep verifying.
func NewSHA256Hasher() Hasher { return sha256Hasher{} }

type sha256Hasher struct{}

func (sha256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (sha256Hasher) Verify(password, digest string) error {
	if digest == "" {
		return ErrInvalidCredentials
	}
	sum := sha256.Sum256([]byte(password))
	actual := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(actual), []byte(digest)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// NewBcryptHasher returns the salted slow hasher for deployments that
// have migrated their account rows off the legacy digests.
func NewBcryptHasher() Hasher { return bcryptHasher{} }

type bcryptHasher struct{}

func (bcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (bcryptHasher) Verify(password, digest string) error {
	if digest == "" {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns n characters drawn uniformly from the 62-character
// alphanumeric alphabet. Used for session tokens and activation codes, so
// the entropy source is crypto/rand.
func RandomString(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tokenAlphabet[idx.Int64()]
	}
	return string(out), nil
}
