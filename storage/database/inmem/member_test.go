package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/member"
)

func TestMemberRepository(t *testing.T) {
	db := Open()
	Seed(db)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	t.Run("custom fields", func(t *testing.T) {
		cf, err := repo.GetCustomFields(ctx, DemoPersonID)
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("RAHA-0001"), cf.Slot(1))

		cf, err = repo.GetCustomFields(ctx, DemoOrphanID)
		require.NoError(t, err)
		assert.Nil(t, cf)
	})

	t.Run("dropdown options", func(t *testing.T) {
		all, err := repo.QueryDropdownOptions(ctx)
		require.NoError(t, err)
		some, err := repo.QueryDropdownOptions(ctx, 102, 106)
		require.NoError(t, err)
		assert.Len(t, some, 6)
		assert.Greater(t, len(all), len(some))
	})

	t.Run("update rejects other columns", func(t *testing.T) {
		err := repo.UpdatePerson(ctx, member.PersonUpdate{PersonID: DemoPersonID, Fields: map[string]string{"per_firstname": "X"}})
		assert.Error(t, err)
		p, _ := repo.GetPerson(ctx, DemoPersonID)
		assert.Equal(t, null.StringFrom("John"), p.FirstName)
	})

	t.Run("update unknown person", func(t *testing.T) {
		err := repo.UpdatePerson(ctx, member.PersonUpdate{PersonID: 404})
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.WithinTx(ctx, func(tx member.Repository) error {
			if err := tx.UpdatePerson(ctx, member.PersonUpdate{
				PersonID: DemoPersonID,
				Fields:   map[string]string{"per_city": "Surabaya"},
				EditedBy: DemoPersonID,
				EditedAt: time.Now(),
			}); err != nil {
				return err
			}
			p, err := tx.GetPerson(ctx, DemoPersonID)
			require.NoError(t, err)
			assert.Equal(t, null.StringFrom("Surabaya"), p.City, "visible inside the transaction")
			return boom
		})
		assert.Equal(t, boom, err)

		p, err := repo.GetPerson(ctx, DemoPersonID)
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("Bandung"), p.City)
	})
}
