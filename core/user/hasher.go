package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Password schemes selectable through auth.passwordScheme.
const (
	SchemeLegacySHA256 = "legacy-sha256"
	SchemeBcrypt       = "bcrypt"
)

// PasswordHasher hashes and verifies passwords. The person id is part of the input
// because the legacy store salts every hash with it.
type PasswordHasher interface {
	Hash(password string, personID int) (string, error)
	Verify(hash, password string, personID int) bool
}

func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", SchemeLegacySHA256:
		return LegacyHasher{}, nil
	case SchemeBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, errors.Errorf("unknown password scheme %q", scheme)
	}
}

// LegacyHasher reproduces the existing credential store: hex(sha256(password + personID)).
type LegacyHasher struct{}

func (LegacyHasher) Hash(password string, personID int) (string, error) {
	sum := sha256.Sum256([]byte(password + strconv.Itoa(personID)))
	return hex.EncodeToString(sum[:]), nil
}

func (h LegacyHasher) Verify(hash, password string, personID int) bool {
	want, _ := h.Hash(password, personID)
	got := strings.ToLower(strings.TrimSpace(hash))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// BcryptHasher writes bcrypt hashes and still accepts legacy hashes until they are reset.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string, _ int) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(hash, password string, personID int) bool {
	if !strings.HasPrefix(hash, "$2") {
		return LegacyHasher{}.Verify(hash, password, personID)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
