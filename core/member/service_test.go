package member_test

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
	inmemdb "github.com/vinckarunia/raha-member-app/storage/database/inmem"
	testutil "github.com/vinckarunia/raha-member-app/tests"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func setupService(t *testing.T, wrap ...func(member.Repository) member.Repository) (*member.Service, *inmemdb.DB) {
	t.Helper()
	testutil.FreezeTime(t, testNow)
	db := testutil.SeededDB(t)
	repo := inmemdb.NewMemberRepository(db)
	for _, w := range wrap {
		repo = w(repo)
	}
	svc, err := member.NewService(repo, member.MustDefaultSchema())
	require.NoError(t, err)
	return svc, db
}

// failingRepo writes through to the wrapped repository, then fails the transaction.
type failingRepo struct {
	member.Repository
}

var errBoom = errors.New("boom")

func (r failingRepo) WithinTx(ctx context.Context, fn func(member.Repository) error) error {
	return r.Repository.WithinTx(ctx, func(tx member.Repository) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errBoom
	})
}

func TestNewService(t *testing.T) {
	_, err := member.NewService(nil, member.MustDefaultSchema())
	assert.Error(t, err)
	_, err = member.NewService(inmemdb.NewMemberRepository(inmemdb.Open()), member.Schema{})
	assert.Error(t, err)
}

func TestService_Read(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.Read(ctx, inmemdb.DemoPersonID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", p.Personal.FullName)
	assert.Equal(t, null.IntFrom(38), p.Personal.Age)
	assert.Equal(t, "male", p.Personal.GenderLabel)
	assert.Equal(t, "Jl. Merdeka 1, Bandung, Jawa Barat, 40111, Indonesia", p.Address.FullAddress)
	assert.Equal(t, null.StringFrom("Married"), p.CustomFields["marital_status"])
	assert.Equal(t, null.StringFrom("Worship"), p.CustomFields["ministry"])
	assert.Equal(t, null.String{}, p.CustomFields["education"])
	assert.Equal(t, null.String{}, p.CustomFields["transfer_date"])

	raw, err := svc.ReadRaw(ctx, inmemdb.DemoPersonID)
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("2"), raw.CustomFields["marital_status"])
	assert.Equal(t, null.StringFrom("99"), raw.CustomFields["education"])

	orphan, err := svc.Read(ctx, inmemdb.DemoOrphanID)
	require.NoError(t, err)
	assert.Len(t, orphan.CustomFields, member.NumCustomSlots)
	assert.Equal(t, null.String{}, orphan.Personal.BirthDate)
	assert.Equal(t, null.Int{}, orphan.Personal.Age)

	_, err = svc.Read(ctx, 404)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("writes changes and audit", func(t *testing.T) {
		svc, db := setupService(t)
		p, err := svc.Update(ctx, inmemdb.DemoPersonID, inmemdb.DemoPersonID, member.ProfileChanges{City: "Jakarta", Zip: "10110"})
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("Jakarta"), p.Address.City)
		assert.Equal(t, null.StringFrom("10110"), p.Address.Zip)
		assert.Equal(t, null.StringFrom("Jl. Merdeka 1"), p.Address.Address1)

		person, err := inmemdb.NewMemberRepository(db).GetPerson(ctx, inmemdb.DemoPersonID)
		require.NoError(t, err)
		assert.Equal(t, null.TimeFrom(testNow), person.DateLastEdited)
		assert.Equal(t, null.IntFrom(inmemdb.DemoPersonID), person.EditedBy)
	})

	t.Run("empty changes still stamp the audit", func(t *testing.T) {
		svc, db := setupService(t)
		_, err := svc.Update(ctx, inmemdb.DemoPersonID, inmemdb.DemoAdminID, member.ProfileChanges{})
		require.NoError(t, err)

		person, err := inmemdb.NewMemberRepository(db).GetPerson(ctx, inmemdb.DemoPersonID)
		require.NoError(t, err)
		assert.Equal(t, null.TimeFrom(testNow), person.DateLastEdited)
		assert.Equal(t, null.IntFrom(inmemdb.DemoAdminID), person.EditedBy)
	})

	t.Run("rolled back on failure", func(t *testing.T) {
		svc, db := setupService(t, func(r member.Repository) member.Repository { return failingRepo{r} })
		_, err := svc.Update(ctx, inmemdb.DemoPersonID, inmemdb.DemoPersonID, member.ProfileChanges{City: "Jakarta"})
		assert.Equal(t, errBoom, err)

		person, err := inmemdb.NewMemberRepository(db).GetPerson(ctx, inmemdb.DemoPersonID)
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom("Bandung"), person.City)
		assert.False(t, person.DateLastEdited.Valid)
	})

	t.Run("unknown person", func(t *testing.T) {
		svc, _ := setupService(t)
		_, err := svc.Update(ctx, 404, 404, member.ProfileChanges{City: "Jakarta"})
		assert.True(t, core.IsNotFound(err))
	})
}

func TestService_QR(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	qr, err := svc.QR(ctx, inmemdb.DemoPersonID)
	require.NoError(t, err)
	assert.Equal(t, member.QRIdentity{PersonID: "1", FullName: "John Doe", MemberNumber: null.StringFrom("RAHA-0001")}, qr)

	qr, err = svc.QR(ctx, inmemdb.DemoOrphanID)
	require.NoError(t, err)
	assert.Equal(t, member.QRIdentity{PersonID: "3", FullName: "Anna Smith"}, qr)

	_, err = svc.QR(ctx, 404)
	assert.True(t, core.IsNotFound(err))
}

func TestService_FieldDefinitions(t *testing.T) {
	svc, _ := setupService(t)

	defs, err := svc.FieldDefinitions(context.Background())
	require.NoError(t, err)
	assert.Len(t, defs.Fields, member.NumCustomSlots)
	assert.Len(t, defs.DropdownOptions, 6)
	require.Len(t, defs.DropdownOptions[105], 3)
	assert.Equal(t, "Worship", defs.DropdownOptions[105][0].Label)
	assert.Equal(t, "Choir", defs.DropdownOptions[105][2].Label)
}
