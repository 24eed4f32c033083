package user

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core/member"
)

// Abilities granted to access tokens.
const (
	AbilityProfileRead   = "profile-read"
	AbilityProfileUpdate = "profile-update"
	AbilityQRRead        = "qr-read"
	AbilityAdminAccess   = "admin-access"
)

var memberAbilities = []string{AbilityProfileRead, AbilityProfileUpdate, AbilityQRRead}

// Credential mirrors a row of user_usr.
type Credential struct {
	PersonID           int       `db:"usr_per_id"`
	Username           string    `db:"usr_username"`
	PasswordHash       string    `db:"usr_password"`
	IsAdmin            bool      `db:"usr_admin"`
	LastLogin          null.Time `db:"usr_lastlogin"`
	LoginCount         int       `db:"usr_logincount"`
	NeedPasswordChange bool      `db:"usr_needpasswordchange"`
}

// Abilities returns the abilities granted to a fresh token of this credential.
func (c Credential) Abilities() Abilities {
	abs := make(Abilities, 0, len(memberAbilities)+1)
	abs = append(abs, memberAbilities...)
	if c.IsAdmin {
		abs = append(abs, AbilityAdminAccess)
	}
	return abs
}

// Abilities is stored as a JSON array in personal_access_tokens.abilities.
type Abilities []string

func (a Abilities) Has(ability string) bool {
	for _, ab := range a {
		if ab == ability || ab == "*" {
			return true
		}
	}
	return false
}

func (a Abilities) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Abilities) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*a = Abilities{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("abilities: cannot scan %T", src)
	}
	var abs []string
	if err := json.Unmarshal(data, &abs); err != nil {
		return errors.Wrap(err, "abilities: decoding")
	}
	*a = abs
	return nil
}

// AccessToken mirrors a row of personal_access_tokens. Only the hash of the token id is stored.
type AccessToken struct {
	ID         int64     `db:"id"`
	PersonID   int       `db:"tokenable_id"`
	Name       string    `db:"name"`
	TokenHash  string    `db:"token"`
	Abilities  Abilities `db:"abilities"`
	LastUsedAt null.Time `db:"last_used_at"`
	ExpiresAt  time.Time `db:"expires_at"`
	CreatedAt  time.Time `db:"created_at"`
}

func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Session is an authenticated request's token.
type Session struct {
	Token    AccessToken
	Username string
}

func (s Session) PersonID() int { return s.Token.PersonID }

func (s Session) Can(ability string) bool { return s.Token.Abilities.Has(ability) }

// View is the authenticated-user payload.
type View struct {
	ID                  int            `json:"id"`
	Username            string         `json:"username"`
	IsAdmin             bool           `json:"is_admin"`
	LastLogin           null.Time      `json:"last_login"`
	LoginCount          int            `json:"login_count"`
	NeedsPasswordChange bool           `json:"needs_password_change"`
	Abilities           []string       `json:"abilities"`
	Person              member.Profile `json:"person"`
}

type LoginResult struct {
	User      View      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
