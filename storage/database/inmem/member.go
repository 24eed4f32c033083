package inmemdb

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/member"
)

type memberRepository struct {
	db *DB
	tx bool // the write lock is already held by WithinTx
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db}
}

func (repo *memberRepository) rlock() func() {
	if repo.tx {
		return func() {}
	}
	repo.db.mu.RLock()
	return repo.db.mu.RUnlock
}

func (repo *memberRepository) lock() func() {
	if repo.tx {
		return func() {}
	}
	repo.db.mu.Lock()
	return repo.db.mu.Unlock
}

func (repo *memberRepository) GetPerson(_ context.Context, id int) (member.Person, error) {
	defer repo.rlock()()
	p, ok := repo.db.persons[id]
	if !ok {
		return member.Person{}, core.ErrNotFound
	}
	return p, nil
}

func (repo *memberRepository) GetCustomFields(_ context.Context, personID int) (*member.CustomFields, error) {
	defer repo.rlock()()
	cf, ok := repo.db.custom[personID]
	if !ok {
		return nil, nil
	}
	return &cf, nil
}

func (repo *memberRepository) QueryDropdownOptions(_ context.Context, listIDs ...int) ([]member.DropdownOption, error) {
	defer repo.rlock()()
	wanted := make(map[int]bool, len(listIDs))
	for _, id := range listIDs {
		wanted[id] = true
	}
	opts := make([]member.DropdownOption, 0, len(repo.db.options))
	for _, o := range repo.db.options {
		if len(wanted) == 0 || wanted[o.ListID] {
			opts = append(opts, o)
		}
	}
	return opts, nil
}

func (repo *memberRepository) UpdatePerson(_ context.Context, upd member.PersonUpdate) error {
	defer repo.lock()()
	p, ok := repo.db.persons[upd.PersonID]
	if !ok {
		return core.ErrNotFound
	}
	for col, v := range upd.Fields {
		fld, ok := personColumn(&p, col)
		if !ok {
			return errors.Errorf("column %q is not editable", col)
		}
		*fld = null.StringFrom(v)
	}
	p.DateLastEdited = null.TimeFrom(upd.EditedAt)
	p.EditedBy = null.IntFrom(upd.EditedBy)
	repo.db.persons[p.ID] = p
	return nil
}

// WithinTx holds the write lock for the whole of fn and restores the person table when fn fails.
func (repo *memberRepository) WithinTx(ctx context.Context, fn func(member.Repository) error) error {
	if repo.tx {
		return fn(repo)
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	snapshot := make(map[int]member.Person, len(repo.db.persons))
	for id, p := range repo.db.persons {
		snapshot[id] = p
	}
	if err := fn(&memberRepository{db: repo.db, tx: true}); err != nil {
		repo.db.persons = snapshot
		return err
	}
	return nil
}

func personColumn(p *member.Person, col string) (*null.String, bool) {
	if !member.IsEditableColumn(col) {
		return nil, false
	}
	switch col {
	case "per_address1":
		return &p.Address1, true
	case "per_address2":
		return &p.Address2, true
	case "per_city":
		return &p.City, true
	case "per_state":
		return &p.State, true
	case "per_zip":
		return &p.Zip, true
	case "per_homephone":
		return &p.HomePhone, true
	case "per_cellphone":
		return &p.CellPhone, true
	case "per_email":
		return &p.Email, true
	}
	return nil, false
}
