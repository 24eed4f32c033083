package user

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/member"
)

const tokenName = "member-portal"

var (
	// errors
	ErrInvalidCredentials = errors.New("These credentials do not match our records.")
	ErrUnauthenticated    = errors.New("Unauthenticated.")
)

type (
	Repository interface {
		// GetCredentialByUsername returns core.ErrNotFound on a miss.
		GetCredentialByUsername(ctx context.Context, username string) (Credential, error)
		GetCredential(ctx context.Context, personID int) (Credential, error)
		// RecordLogin bumps the login counter and sets the last login.
		RecordLogin(ctx context.Context, personID int, at time.Time) error
		SetPasswordHash(ctx context.Context, personID int, hash string) error

		CreateToken(ctx context.Context, tok AccessToken) (AccessToken, error)
		GetTokenByHash(ctx context.Context, hash string) (AccessToken, error)
		TouchToken(ctx context.Context, id int64, at time.Time) error
		DeleteToken(ctx context.Context, id int64) error
		// DeleteTokens removes every token of the person.
		DeleteTokens(ctx context.Context, personID int) error
		DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	}

	// ProfileReader formats the person nested in the user view.
	ProfileReader interface {
		ReadRaw(ctx context.Context, personID int) (member.Profile, error)
	}

	Options struct {
		TokenTTL    time.Duration
		RememberTTL time.Duration
	}

	Service struct {
		repo     Repository
		hasher   PasswordHasher
		tokens   *TokenIssuer
		profiles ProfileReader
		opts     Options
	}
)

func NewService(repo Repository, hasher PasswordHasher, tokens *TokenIssuer, profiles ProfileReader, opts Options) (*Service, error) {
	if err := vala.BeginValidation().Validate(
		core.NotNil(repo, "repo"),
		core.NotNil(hasher, "hasher"),
		core.NotNil(tokens, "tokens"),
		core.NotNil(profiles, "profiles"),
	).Check(); err != nil {
		return nil, err
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = 14 * 24 * time.Hour
	}
	return &Service{repo: repo, hasher: hasher, tokens: tokens, profiles: profiles, opts: opts}, nil
}

func invalidCredentials() error {
	return core.NewValidationError(
		ErrInvalidCredentials,
		core.FieldError{Field: "username", Error: ErrInvalidCredentials.Error()},
	)
}

// Login checks the credentials, replaces every token of the person with a new one
// and records the login. Unknown usernames and wrong passwords fail the same way.
func (svc *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	cred, err := svc.repo.GetCredentialByUsername(ctx, core.CleanString(req.Username))
	if err != nil {
		if core.IsNotFound(err) {
			svc.hasher.Verify("", req.Password, 0) // keep timing close to a real check
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, errors.Wrap(err, "getting credential")
	}
	if !svc.hasher.Verify(cred.PasswordHash, req.Password, cred.PersonID) {
		return LoginResult{}, invalidCredentials()
	}

	// single active session: drop older tokens before issuing the new one
	if err := svc.repo.DeleteTokens(ctx, cred.PersonID); err != nil {
		return LoginResult{}, errors.Wrap(err, "deleting tokens")
	}

	now := core.NowFunc().UTC()
	ttl := svc.opts.TokenTTL
	if req.Remember {
		ttl = svc.opts.RememberTTL
	}
	expiresAt := now.Add(ttl)
	abilities := cred.Abilities()

	token, tokenID, err := svc.tokens.Issue(cred.PersonID, abilities, now, expiresAt)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "issuing token")
	}
	if _, err := svc.repo.CreateToken(ctx, AccessToken{
		PersonID:  cred.PersonID,
		Name:      tokenName,
		TokenHash: HashTokenID(tokenID),
		Abilities: abilities,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return LoginResult{}, errors.Wrap(err, "storing token")
	}

	if err := svc.repo.RecordLogin(ctx, cred.PersonID, now); err != nil {
		return LoginResult{}, errors.Wrap(err, "recording login")
	}
	cred, err = svc.repo.GetCredential(ctx, cred.PersonID)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "reloading credential")
	}

	view, err := svc.view(ctx, cred, abilities)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: view, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token to its Session.
// Every failure is reported as ErrUnauthenticated (wrapped with the reason).
func (svc *Service) Authenticate(ctx context.Context, bearer string) (Session, error) {
	if bearer == "" {
		return Session{}, ErrUnauthenticated
	}
	claims, err := svc.tokens.Parse(bearer)
	if err != nil {
		return Session{}, errors.WithMessage(ErrUnauthenticated, err.Error())
	}
	personID, err := claims.PersonID()
	if err != nil {
		return Session{}, errors.WithMessage(ErrUnauthenticated, "invalid subject")
	}

	tok, err := svc.repo.GetTokenByHash(ctx, HashTokenID(claims.ID))
	if err != nil {
		if core.IsNotFound(err) {
			return Session{}, errors.WithMessage(ErrUnauthenticated, "token revoked")
		}
		return Session{}, errors.Wrap(err, "getting token")
	}
	if tok.PersonID != personID || tok.Expired(core.NowFunc()) {
		return Session{}, errors.WithMessage(ErrUnauthenticated, "token expired or foreign")
	}

	cred, err := svc.repo.GetCredential(ctx, personID)
	if err != nil {
		if core.IsNotFound(err) {
			return Session{}, errors.WithMessage(ErrUnauthenticated, "credential removed")
		}
		return Session{}, errors.Wrap(err, "getting credential")
	}
	return Session{Token: tok, Username: cred.Username}, nil
}

// Touch stamps the token's last use.
func (svc *Service) Touch(ctx context.Context, s Session) error {
	return errors.Wrap(svc.repo.TouchToken(ctx, s.Token.ID, core.NowFunc().UTC()), "touching token")
}

// Logout revokes only the token of the session.
func (svc *Service) Logout(ctx context.Context, s Session) error {
	return errors.Wrap(svc.repo.DeleteToken(ctx, s.Token.ID), "deleting token")
}

// Current returns the authenticated-user view of the session.
func (svc *Service) Current(ctx context.Context, s Session) (View, error) {
	cred, err := svc.repo.GetCredential(ctx, s.PersonID())
	if err != nil {
		return View{}, errors.Wrap(err, "getting credential")
	}
	return svc.view(ctx, cred, s.Token.Abilities)
}

func (svc *Service) view(ctx context.Context, cred Credential, abilities Abilities) (View, error) {
	person, err := svc.profiles.ReadRaw(ctx, cred.PersonID)
	if err != nil {
		return View{}, errors.Wrap(err, "reading person")
	}
	if abilities == nil {
		abilities = Abilities{}
	}
	return View{
		ID:                  cred.PersonID,
		Username:            cred.Username,
		IsAdmin:             cred.IsAdmin,
		LastLogin:           cred.LastLogin,
		LoginCount:          cred.LoginCount,
		NeedsPasswordChange: cred.NeedPasswordChange,
		Abilities:           abilities,
		Person:              person,
	}, nil
}

// ResetPassword stores a new hash for the username. The request must be validated first.
func (svc *Service) ResetPassword(ctx context.Context, pr PasswordReset) error {
	cred, err := svc.repo.GetCredentialByUsername(ctx, pr.Username)
	if err != nil {
		return errors.Wrap(err, "getting credential")
	}
	hash, err := svc.hasher.Hash(pr.Password, cred.PersonID)
	if err != nil {
		return err
	}
	return errors.Wrap(svc.repo.SetPasswordHash(ctx, cred.PersonID, hash), "setting password")
}

// PurgeExpiredTokens deletes tokens past their expiry and returns how many were removed.
func (svc *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := svc.repo.DeleteExpiredTokens(ctx, core.NowFunc().UTC())
	return n, errors.Wrap(err, "deleting expired tokens")
}
