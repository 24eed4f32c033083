package sqlxrepos

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/member"
)

const (
	personColumns = `per_id, per_title, per_firstname, per_middlename, per_lastname, per_suffix,
	per_address1, per_address2, per_city, per_state, per_zip, per_country,
	per_homephone, per_cellphone, per_email, per_workemail,
	per_birthyear, per_birthmonth, per_birthday, per_membershipdate, per_gender,
	per_facebook, per_twitter, per_linkedin,
	per_dateentered, per_datelastedited, per_enteredby, per_editedby`

	// every slot is read as text; the schema decides how to render it
	customColumns = `per_id,
	c1::text AS c1, c2::text AS c2, c3::text AS c3, c4::text AS c4, c5::text AS c5,
	c6::text AS c6, c7::text AS c7, c8::text AS c8, c9::text AS c9, c10::text AS c10,
	c11::text AS c11, c12::text AS c12, c13::text AS c13, c14::text AS c14, c15::text AS c15,
	c16::text AS c16, c17::text AS c17, c18::text AS c18, c19::text AS c19, c20::text AS c20`

	optionColumns = `lst_id, lst_optionid, lst_optionsequence, lst_optionname`
)

type customRow struct {
	PersonID int         `db:"per_id"`
	C1       null.String `db:"c1"`
	C2       null.String `db:"c2"`
	C3       null.String `db:"c3"`
	C4       null.String `db:"c4"`
	C5       null.String `db:"c5"`
	C6       null.String `db:"c6"`
	C7       null.String `db:"c7"`
	C8       null.String `db:"c8"`
	C9       null.String `db:"c9"`
	C10      null.String `db:"c10"`
	C11      null.String `db:"c11"`
	C12      null.String `db:"c12"`
	C13      null.String `db:"c13"`
	C14      null.String `db:"c14"`
	C15      null.String `db:"c15"`
	C16      null.String `db:"c16"`
	C17      null.String `db:"c17"`
	C18      null.String `db:"c18"`
	C19      null.String `db:"c19"`
	C20      null.String `db:"c20"`
}

func (r customRow) toDomain() *member.CustomFields {
	return &member.CustomFields{
		PersonID: r.PersonID,
		Values: [member.NumCustomSlots]null.String{
			r.C1, r.C2, r.C3, r.C4, r.C5, r.C6, r.C7, r.C8, r.C9, r.C10,
			r.C11, r.C12, r.C13, r.C14, r.C15, r.C16, r.C17, r.C18, r.C19, r.C20,
		},
	}
}

type memberRepository struct {
	db   core.DB
	exec core.DBExecutor
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db core.DB) *memberRepository {
	return &memberRepository{db: db, exec: db}
}

// trapNoRowsErr maps psql "no rows" err to core.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return core.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *memberRepository) GetPerson(ctx context.Context, id int) (member.Person, error) {
	var p member.Person
	q := repo.exec.Rebind(`SELECT ` + personColumns + ` FROM person_per WHERE per_id = ?`)
	if err := repo.exec.GetContext(ctx, &p, q, id); err != nil {
		return member.Person{}, trapNoRowsErr(err, "selecting person")
	}
	return p, nil
}

func (repo *memberRepository) GetCustomFields(ctx context.Context, personID int) (*member.CustomFields, error) {
	var row customRow
	q := repo.exec.Rebind(`SELECT ` + customColumns + ` FROM person_custom WHERE per_id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, personID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "selecting custom fields")
	}
	return row.toDomain(), nil
}

func (repo *memberRepository) QueryDropdownOptions(ctx context.Context, listIDs ...int) ([]member.DropdownOption, error) {
	q := `SELECT ` + optionColumns + ` FROM list_lst`
	var args []interface{}
	if len(listIDs) > 0 {
		var err error
		q, args, err = sqlx.In(q+` WHERE lst_id IN (?)`, listIDs)
		if err != nil {
			return nil, errors.Wrap(err, "building dropdown query")
		}
	}
	q = repo.exec.Rebind(q + ` ORDER BY lst_id, lst_optionsequence, lst_optionid`)

	opts := make([]member.DropdownOption, 0)
	if err := repo.exec.SelectContext(ctx, &opts, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting dropdown options")
	}
	return opts, nil
}

func (repo *memberRepository) UpdatePerson(ctx context.Context, upd member.PersonUpdate) error {
	cols := make([]string, 0, len(upd.Fields))
	for col := range upd.Fields {
		if !member.IsEditableColumn(col) {
			return errors.Errorf("column %q is not editable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+2)
	args := make([]interface{}, 0, len(cols)+3)
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, upd.Fields[col])
	}
	sets = append(sets, "per_datelastedited = ?", "per_editedby = ?")
	args = append(args, upd.EditedAt, upd.EditedBy, upd.PersonID)

	q := repo.exec.Rebind(`UPDATE person_per SET ` + strings.Join(sets, ", ") + ` WHERE per_id = ?`)
	res, err := repo.exec.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "updating person")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating person")
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (repo *memberRepository) WithinTx(ctx context.Context, fn func(member.Repository) error) error {
	return withinTx(ctx, repo.db, repo.exec, func(exec core.DBExecutor) error {
		return fn(&memberRepository{db: repo.db, exec: exec})
	})
}
