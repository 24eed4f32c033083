package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) GetCredentialByUsername(_ context.Context, username string) (user.Credential, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, c := range repo.db.credentials {
		if c.Username == username {
			return c, nil
		}
	}
	return user.Credential{}, core.ErrNotFound
}

func (repo *userRepository) GetCredential(_ context.Context, personID int) (user.Credential, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	c, ok := repo.db.credentials[personID]
	if !ok {
		return user.Credential{}, core.ErrNotFound
	}
	return c, nil
}

func (repo *userRepository) RecordLogin(_ context.Context, personID int, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	c, ok := repo.db.credentials[personID]
	if !ok {
		return core.ErrNotFound
	}
	c.LoginCount++
	c.LastLogin = null.TimeFrom(at)
	repo.db.credentials[personID] = c
	return nil
}

func (repo *userRepository) SetPasswordHash(_ context.Context, personID int, hash string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	c, ok := repo.db.credentials[personID]
	if !ok {
		return core.ErrNotFound
	}
	c.PasswordHash = hash
	repo.db.credentials[personID] = c
	return nil
}

func (repo *userRepository) CreateToken(_ context.Context, tok user.AccessToken) (user.AccessToken, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.tokenPK++
	tok.ID = repo.db.tokenPK
	repo.db.tokens[tok.ID] = tok
	return tok, nil
}

func (repo *userRepository) GetTokenByHash(_ context.Context, hash string) (user.AccessToken, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, t := range repo.db.tokens {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return user.AccessToken{}, core.ErrNotFound
}

func (repo *userRepository) TouchToken(_ context.Context, id int64, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if t, ok := repo.db.tokens[id]; ok {
		t.LastUsedAt = null.TimeFrom(at)
		repo.db.tokens[id] = t
	}
	return nil
}

func (repo *userRepository) DeleteToken(_ context.Context, id int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.tokens, id)
	return nil
}

func (repo *userRepository) DeleteTokens(_ context.Context, personID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, t := range repo.db.tokens {
		if t.PersonID == personID {
			delete(repo.db.tokens, id)
		}
	}
	return nil
}

func (repo *userRepository) DeleteExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int64
	for id, t := range repo.db.tokens {
		if t.Expired(now) {
			delete(repo.db.tokens, id)
			n++
		}
	}
	return n, nil
}
