package member

import (
	"sort"
	"time"

	"github.com/volatiletech/null/v8"
)

// Gender codes stored in per_Gender.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// Person mirrors a row of person_per.
type Person struct {
	ID             int         `db:"per_id"`
	Title          null.String `db:"per_title"`
	FirstName      null.String `db:"per_firstname"`
	MiddleName     null.String `db:"per_middlename"`
	LastName       null.String `db:"per_lastname"`
	Suffix         null.String `db:"per_suffix"`
	Address1       null.String `db:"per_address1"`
	Address2       null.String `db:"per_address2"`
	City           null.String `db:"per_city"`
	State          null.String `db:"per_state"`
	Zip            null.String `db:"per_zip"`
	Country        null.String `db:"per_country"`
	HomePhone      null.String `db:"per_homephone"`
	CellPhone      null.String `db:"per_cellphone"`
	Email          null.String `db:"per_email"`
	WorkEmail      null.String `db:"per_workemail"`
	BirthYear      null.Int    `db:"per_birthyear"`
	BirthMonth     null.Int    `db:"per_birthmonth"`
	BirthDay       null.Int    `db:"per_birthday"`
	MembershipDate null.Time   `db:"per_membershipdate"`
	Gender         int         `db:"per_gender"`
	Facebook       null.String `db:"per_facebook"`
	Twitter        null.String `db:"per_twitter"`
	LinkedIn       null.String `db:"per_linkedin"`
	DateEntered    null.Time   `db:"per_dateentered"`
	DateLastEdited null.Time   `db:"per_datelastedited"`
	EnteredBy      null.Int    `db:"per_enteredby"`
	EditedBy       null.Int    `db:"per_editedby"`
}

// BirthDate is valid only when year, month and day are all set and form a real date.
func (p Person) BirthDate() null.Time {
	if !p.BirthYear.Valid || !p.BirthMonth.Valid || !p.BirthDay.Valid {
		return null.Time{}
	}
	y, m, d := p.BirthYear.Int, p.BirthMonth.Int, p.BirthDay.Int
	if y <= 0 || m < 1 || m > 12 || d < 1 {
		return null.Time{}
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(m) || t.Day() != d { // e.g. Feb 30
		return null.Time{}
	}
	return null.TimeFrom(t)
}

// NumCustomSlots is the number of positional columns (c1..c20) in person_custom.
const NumCustomSlots = 20

// CustomFields is the sparse person_custom row. Values are kept as raw text;
// the schema decides how each slot is rendered.
type CustomFields struct {
	PersonID int
	Values   [NumCustomSlots]null.String
}

// Slot returns the raw value of slot n (1-based).
func (cf *CustomFields) Slot(n int) null.String {
	if cf == nil || n < 1 || n > NumCustomSlots {
		return null.String{}
	}
	return cf.Values[n-1]
}

// DropdownOption mirrors a row of list_lst.
type DropdownOption struct {
	ListID   int    `db:"lst_id" json:"list_id"`
	OptionID int    `db:"lst_optionid" json:"option_id"`
	Sequence int    `db:"lst_optionsequence" json:"sequence"`
	Label    string `db:"lst_optionname" json:"label"`
}

// OptionKey is the composite (list, option) lookup key.
type OptionKey struct {
	ListID   int
	OptionID int
}

// OptionIndex resolves dropdown labels by composite key.
type OptionIndex map[OptionKey]DropdownOption

func NewOptionIndex(opts []DropdownOption) OptionIndex {
	idx := make(OptionIndex, len(opts))
	for _, o := range opts {
		idx[OptionKey{ListID: o.ListID, OptionID: o.OptionID}] = o
	}
	return idx
}

func (idx OptionIndex) Label(listID, optionID int) (string, bool) {
	o, ok := idx[OptionKey{ListID: listID, OptionID: optionID}]
	return o.Label, ok
}

func sortOptions(opts []DropdownOption) {
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].Sequence != opts[j].Sequence {
			return opts[i].Sequence < opts[j].Sequence
		}
		return opts[i].OptionID < opts[j].OptionID
	})
}

// PersonUpdate carries the columns written by a profile update.
// Fields maps raw column names (allow-listed) to their new values.
type PersonUpdate struct {
	PersonID int
	Fields   map[string]string
	EditedBy int
	EditedAt time.Time
}
