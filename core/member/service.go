package member

import (
	"context"
	"strconv"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

type (
	Repository interface {
		// GetPerson returns core.ErrNotFound when no person_per row exists.
		GetPerson(ctx context.Context, id int) (Person, error)
		// GetCustomFields returns nil (and no error) when the person has no person_custom row.
		GetCustomFields(ctx context.Context, personID int) (*CustomFields, error)
		// QueryDropdownOptions returns the options of the given lists, or all options when none are given.
		QueryDropdownOptions(ctx context.Context, listIDs ...int) ([]DropdownOption, error)
		// UpdatePerson always writes the audit columns; it returns core.ErrNotFound when no row matched.
		UpdatePerson(ctx context.Context, upd PersonUpdate) error
		// WithinTx runs fn against a transactional Repository, rolling back when fn fails.
		WithinTx(ctx context.Context, fn func(Repository) error) error
	}

	Service struct {
		repo   Repository
		schema Schema
	}
)

func NewService(repo Repository, schema Schema) (*Service, error) {
	if err := vala.BeginValidation().Validate(
		core.NotNil(repo, "repo"),
		vala.GreaterThan(len(schema.Fields), 0, "schema.Fields"),
	).Check(); err != nil {
		return nil, err
	}
	return &Service{repo: repo, schema: schema}, nil
}

func (svc *Service) Schema() Schema {
	return svc.schema
}

func (svc *Service) load(ctx context.Context, personID int) (Person, *CustomFields, error) {
	p, err := svc.repo.GetPerson(ctx, personID)
	if err != nil {
		return Person{}, nil, errors.Wrap(err, "getting person")
	}
	cf, err := svc.repo.GetCustomFields(ctx, personID)
	if err != nil {
		return Person{}, nil, errors.Wrap(err, "getting custom fields")
	}
	return p, cf, nil
}

// Read returns the profile view with dropdown slots resolved to their labels.
func (svc *Service) Read(ctx context.Context, personID int) (Profile, error) {
	p, cf, err := svc.load(ctx, personID)
	if err != nil {
		return Profile{}, err
	}
	opts, err := svc.repo.QueryDropdownOptions(ctx, svc.schema.ListIDs()...)
	if err != nil {
		return Profile{}, errors.Wrap(err, "querying dropdown options")
	}
	return FormatProfile(svc.schema, p, cf, NewOptionIndex(opts), core.NowFunc()), nil
}

// ReadRaw returns the profile view keeping raw dropdown option ids.
func (svc *Service) ReadRaw(ctx context.Context, personID int) (Profile, error) {
	p, cf, err := svc.load(ctx, personID)
	if err != nil {
		return Profile{}, err
	}
	return FormatProfile(svc.schema, p, cf, nil, core.NowFunc()), nil
}

// Update writes the non-empty allow-listed changes plus the edit audit in one transaction,
// then returns the fresh profile view. Errors from the transaction are returned as is.
func (svc *Service) Update(ctx context.Context, personID, editorID int, changes ProfileChanges) (Profile, error) {
	upd := PersonUpdate{
		PersonID: personID,
		Fields:   changes.Columns(),
		EditedBy: editorID,
		EditedAt: core.NowFunc().UTC(),
	}
	err := svc.repo.WithinTx(ctx, func(repo Repository) error {
		return repo.UpdatePerson(ctx, upd)
	})
	if err != nil {
		return Profile{}, err
	}
	return svc.Read(ctx, personID)
}

// FieldDefinitions lists the slot descriptors and every dropdown option grouped by list.
func (svc *Service) FieldDefinitions(ctx context.Context) (FieldDefinitions, error) {
	opts, err := svc.repo.QueryDropdownOptions(ctx)
	if err != nil {
		return FieldDefinitions{}, errors.Wrap(err, "querying dropdown options")
	}
	return NewFieldDefinitions(svc.schema, opts), nil
}

// QR returns the identity payload printed on the member card.
func (svc *Service) QR(ctx context.Context, personID int) (QRIdentity, error) {
	p, cf, err := svc.load(ctx, personID)
	if err != nil {
		return QRIdentity{}, err
	}
	return QRIdentity{
		PersonID:     strconv.Itoa(p.ID),
		FullName:     p.FullName(),
		MemberNumber: cf.Slot(MemberNumberSlot),
	}, nil
}
