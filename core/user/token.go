package user

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

var errInvalidToken = errors.New("invalid token")

// TokenClaims represents the claims carried by a bearer token.
type TokenClaims struct {
	Abilities []string `json:"abilities,omitempty"`
	jwt.RegisteredClaims
}

// PersonID parses the subject claim.
func (c TokenClaims) PersonID() (int, error) {
	return strconv.Atoi(c.Subject)
}

// TokenIssuer signs bearer tokens (HS256). A token is only honoured while the
// hash of its id is present in the token store.
type TokenIssuer struct {
	secret []byte
	issuer string
}

func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(secret, "secret"),
	).Check(); err != nil {
		return nil, err
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}, nil
}

// Issue returns the signed token and its id.
func (ti *TokenIssuer) Issue(personID int, abilities []string, issuedAt, expiresAt time.Time) (string, string, error) {
	id := uuid.NewString()
	claims := TokenClaims{
		Abilities: abilities,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    ti.issuer,
			Subject:   strconv.Itoa(personID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(ti.secret)
	if err != nil {
		return "", "", errors.Wrap(err, "signing token")
	}
	return ss, id, nil
}

// Parse verifies the signature, issuer and expiry of a token.
func (ti *TokenIssuer) Parse(token string) (*TokenClaims, error) {
	claims := new(TokenClaims)
	parsed, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(core.NowFunc),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// HashTokenID is what the token store keeps instead of the token itself.
func HashTokenID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
