package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
)

const (
	credentialColumns = `usr_per_id, usr_username, usr_password, usr_admin,
	usr_lastlogin, usr_logincount, usr_needpasswordchange`

	tokenColumns = `id, tokenable_id, name, token, abilities, last_used_at, expires_at, created_at`
)

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo *userRepository) GetCredentialByUsername(ctx context.Context, username string) (user.Credential, error) {
	var cred user.Credential
	q := repo.exec.Rebind(`SELECT ` + credentialColumns + ` FROM user_usr WHERE usr_username = ?`)
	if err := repo.exec.GetContext(ctx, &cred, q, username); err != nil {
		return user.Credential{}, trapNoRowsErr(err, "selecting credential by username")
	}
	return cred, nil
}

func (repo *userRepository) GetCredential(ctx context.Context, personID int) (user.Credential, error) {
	var cred user.Credential
	q := repo.exec.Rebind(`SELECT ` + credentialColumns + ` FROM user_usr WHERE usr_per_id = ?`)
	if err := repo.exec.GetContext(ctx, &cred, q, personID); err != nil {
		return user.Credential{}, trapNoRowsErr(err, "selecting credential")
	}
	return cred, nil
}

func (repo *userRepository) RecordLogin(ctx context.Context, personID int, at time.Time) error {
	q := repo.exec.Rebind(`UPDATE user_usr SET usr_logincount = usr_logincount + 1, usr_lastlogin = ? WHERE usr_per_id = ?`)
	return repo.execOne(ctx, "recording login", q, at, personID)
}

func (repo *userRepository) SetPasswordHash(ctx context.Context, personID int, hash string) error {
	q := repo.exec.Rebind(`UPDATE user_usr SET usr_password = ? WHERE usr_per_id = ?`)
	return repo.execOne(ctx, "setting password", q, hash, personID)
}

func (repo *userRepository) CreateToken(ctx context.Context, tok user.AccessToken) (user.AccessToken, error) {
	q := repo.exec.Rebind(`INSERT INTO personal_access_tokens (tokenable_id, name, token, abilities, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := repo.exec.GetContext(ctx, &tok.ID, q,
		tok.PersonID, tok.Name, tok.TokenHash, tok.Abilities, tok.ExpiresAt, tok.CreatedAt,
	); err != nil {
		return user.AccessToken{}, errors.Wrap(err, "inserting token")
	}
	return tok, nil
}

func (repo *userRepository) GetTokenByHash(ctx context.Context, hash string) (user.AccessToken, error) {
	var tok user.AccessToken
	q := repo.exec.Rebind(`SELECT ` + tokenColumns + ` FROM personal_access_tokens WHERE token = ?`)
	if err := repo.exec.GetContext(ctx, &tok, q, hash); err != nil {
		return user.AccessToken{}, trapNoRowsErr(err, "selecting token")
	}
	return tok, nil
}

func (repo *userRepository) TouchToken(ctx context.Context, id int64, at time.Time) error {
	q := repo.exec.Rebind(`UPDATE personal_access_tokens SET last_used_at = ? WHERE id = ?`)
	_, err := repo.exec.ExecContext(ctx, q, at, id)
	return errors.Wrap(err, "touching token")
}

func (repo *userRepository) DeleteToken(ctx context.Context, id int64) error {
	q := repo.exec.Rebind(`DELETE FROM personal_access_tokens WHERE id = ?`)
	_, err := repo.exec.ExecContext(ctx, q, id)
	return errors.Wrap(err, "deleting token")
}

func (repo *userRepository) DeleteTokens(ctx context.Context, personID int) error {
	q := repo.exec.Rebind(`DELETE FROM personal_access_tokens WHERE tokenable_id = ?`)
	_, err := repo.exec.ExecContext(ctx, q, personID)
	return errors.Wrap(err, "deleting person tokens")
}

func (repo *userRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	q := repo.exec.Rebind(`DELETE FROM personal_access_tokens WHERE expires_at <= ?`)
	res, err := repo.exec.ExecContext(ctx, q, now)
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired tokens")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "deleting expired tokens")
}

// execOne runs q and reports core.ErrNotFound when no row was touched.
func (repo *userRepository) execOne(ctx context.Context, msg, q string, args ...interface{}) error {
	res, err := repo.exec.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
