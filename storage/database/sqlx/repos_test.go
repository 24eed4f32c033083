package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
	testutil "github.com/vinckarunia/raha-member-app/tests"
)

func prepareDB(t *testing.T) *sqlx.DB {
	db := testutil.PostgresDB(t)
	testutil.Exec(t, db,
		`TRUNCATE event_attend, events_event, event_types, personal_access_tokens, user_usr, person_custom, list_lst, person_per RESTART IDENTITY CASCADE`,
		`INSERT INTO person_per (per_id, per_firstname, per_lastname, per_city, per_gender) VALUES (1, 'John', 'Doe', 'Bandung', 1), (2, 'Anna', 'Smith', NULL, 2)`,
		`INSERT INTO person_custom (per_id, c1, c2, c6) VALUES (1, 'RAHA-0001', '2001-04-15', 2)`,
		`INSERT INTO list_lst VALUES (101, 1, 1, 'Single'), (101, 2, 2, 'Married'), (105, 3, 1, 'Worship'), (105, 1, 2, 'Youth')`,
		`INSERT INTO user_usr (usr_per_id, usr_username, usr_password, usr_admin) VALUES (1, 'jdoe', 'x', FALSE)`,
		`INSERT INTO event_types VALUES (1, 'Sunday Service')`,
		`INSERT INTO events_event VALUES (1, 1, 'Sunday Service', '2024-01-07 09:00'), (2, 1, 'Sunday Service', '2024-01-14 09:00')`,
		`INSERT INTO event_attend (attend_id, event_id, person_id, checkin_date) VALUES (1, 1, 1, '2024-01-07 08:55'), (2, 2, 1, '2024-01-14 08:58')`,
	)
	return db
}

func TestMemberRepository(t *testing.T) {
	db := prepareDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	p, err := repo.GetPerson(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("John"), p.FirstName)

	_, err = repo.GetPerson(ctx, 404)
	assert.Equal(t, core.ErrNotFound, err)

	cf, err := repo.GetCustomFields(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("RAHA-0001"), cf.Slot(1))
	assert.Equal(t, null.StringFrom("2001-04-15"), cf.Slot(2))
	assert.Equal(t, null.StringFrom("2"), cf.Slot(6))

	cf, err = repo.GetCustomFields(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, cf)

	opts, err := repo.QueryDropdownOptions(ctx, 105)
	require.NoError(t, err)
	assert.Equal(t, []member.DropdownOption{
		{ListID: 105, OptionID: 3, Sequence: 1, Label: "Worship"},
		{ListID: 105, OptionID: 1, Sequence: 2, Label: "Youth"},
	}, opts)
	opts, err = repo.QueryDropdownOptions(ctx)
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	t.Run("update", func(t *testing.T) {
		at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		err := repo.WithinTx(ctx, func(tx member.Repository) error {
			return tx.UpdatePerson(ctx, member.PersonUpdate{PersonID: 1, Fields: map[string]string{"per_city": "Jakarta"}, EditedBy: 1, EditedAt: at})
		})
		require.NoError(t, err)
		p, err := repo.GetPerson(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("Jakarta"), p.City)
		assert.Equal(t, null.IntFrom(1), p.EditedBy)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.WithinTx(ctx, func(tx member.Repository) error {
			if err := tx.UpdatePerson(ctx, member.PersonUpdate{PersonID: 1, Fields: map[string]string{"per_city": "Surabaya"}, EditedAt: time.Now()}); err != nil {
				return err
			}
			return boom
		})
		assert.Equal(t, boom, err)
		p, err := repo.GetPerson(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("Jakarta"), p.City)
	})

	t.Run("not editable", func(t *testing.T) {
		err := repo.UpdatePerson(ctx, member.PersonUpdate{PersonID: 1, Fields: map[string]string{"per_firstname": "X"}})
		assert.Error(t, err)
	})
}

func TestUserRepository(t *testing.T) {
	db := prepareDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	cred, err := repo.GetCredentialByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, 1, cred.PersonID)
	_, err = repo.GetCredentialByUsername(ctx, "nobody")
	assert.Equal(t, core.ErrNotFound, err)

	require.NoError(t, repo.RecordLogin(ctx, 1, now))
	cred, err = repo.GetCredential(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cred.LoginCount)

	tok, err := repo.CreateToken(ctx, user.AccessToken{
		PersonID:  1,
		Name:      "member-portal",
		TokenHash: user.HashTokenID("a"),
		Abilities: user.Abilities{user.AbilityProfileRead},
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.NotZero(t, tok.ID)

	got, err := repo.GetTokenByHash(ctx, user.HashTokenID("a"))
	require.NoError(t, err)
	assert.Equal(t, user.Abilities{user.AbilityProfileRead}, got.Abilities)

	require.NoError(t, repo.TouchToken(ctx, tok.ID, now))
	n, err := repo.DeleteExpiredTokens(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.GetTokenByHash(ctx, user.HashTokenID("a"))
	assert.Equal(t, core.ErrNotFound, err)
}

func TestAttendanceRepository(t *testing.T) {
	db := prepareDB(t)
	repo := NewAttendanceRepository(db)

	rows, err := repo.QueryHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].AttendanceID)
	assert.Equal(t, "Sunday Service", rows[0].EventType)

	rows, err = repo.QueryHistory(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
