package member

import (
	"fmt"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

// Raw person_per fields a member may edit, mapped to their columns.
// Anything else submitted to an update is ignored.
var editableColumns = map[string]string{
	"per_Address1":  "per_address1",
	"per_Address2":  "per_address2",
	"per_City":      "per_city",
	"per_State":     "per_state",
	"per_Zip":       "per_zip",
	"per_HomePhone": "per_homephone",
	"per_CellPhone": "per_cellphone",
	"per_Email":     "per_email",
}

// EditableFields lists the allow-listed field names.
func EditableFields() []string {
	return []string{
		"per_Address1", "per_Address2", "per_City", "per_State",
		"per_Zip", "per_HomePhone", "per_CellPhone", "per_Email",
	}
}

var errNotAString = "The %s must be a string."

// ProfileChanges holds the allow-listed values of an update request.
// An empty field means "leave unchanged".
type ProfileChanges struct {
	Address1  string `json:"per_Address1" validate:"omitempty,max=50"`
	Address2  string `json:"per_Address2" validate:"omitempty,max=50"`
	City      string `json:"per_City" validate:"omitempty,max=50"`
	State     string `json:"per_State" validate:"omitempty,max=50"`
	Zip       string `json:"per_Zip" validate:"omitempty,max=10"`
	HomePhone string `json:"per_HomePhone" validate:"omitempty,max=30,phone_"`
	CellPhone string `json:"per_CellPhone" validate:"omitempty,max=30,phone_"`
	Email     string `json:"per_Email" validate:"omitempty,max=50,email"`
}

// NewProfileChanges intersects a raw request body with the allow-list.
// Unknown keys and null values are dropped; numbers are accepted as their decimal text.
func NewProfileChanges(raw map[string]interface{}) (ProfileChanges, error) {
	vals := make(map[string]string, len(editableColumns))
	var flds []core.FieldError
	for _, name := range EditableFields() {
		v, ok := raw[name]
		if !ok || v == nil {
			continue
		}
		switch tv := v.(type) {
		case string:
			vals[name] = core.CleanString(tv)
		case float64:
			vals[name] = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			flds = append(flds, core.FieldError{Field: name, Error: fmt.Sprintf(errNotAString, name)})
		}
	}
	if len(flds) > 0 {
		return ProfileChanges{}, core.NewValidationError(errors.New(flds[0].Error), flds...)
	}

	return ProfileChanges{
		Address1:  vals["per_Address1"],
		Address2:  vals["per_Address2"],
		City:      vals["per_City"],
		State:     vals["per_State"],
		Zip:       vals["per_Zip"],
		HomePhone: vals["per_HomePhone"],
		CellPhone: vals["per_CellPhone"],
		Email:     vals["per_Email"],
	}, nil
}

func (pc *ProfileChanges) clean() {
	pc.Address1 = core.CleanString(pc.Address1)
	pc.Address2 = core.CleanString(pc.Address2)
	pc.City = core.CleanString(pc.City)
	pc.State = core.CleanString(pc.State)
	pc.Zip = core.CleanString(pc.Zip)
	pc.HomePhone = core.CleanString(pc.HomePhone)
	pc.CellPhone = core.CleanString(pc.CellPhone)
	pc.Email = core.CleanString(pc.Email)
}

func (pc *ProfileChanges) Validate(validate *validator.Validate, translator ut.Translator) error {
	pc.clean()
	return core.TranslateValidationErrors(validate.Struct(pc), translator)
}

// Columns returns the non-empty changes keyed by person_per column.
func (pc ProfileChanges) Columns() map[string]string {
	byName := map[string]string{
		"per_Address1":  pc.Address1,
		"per_Address2":  pc.Address2,
		"per_City":      pc.City,
		"per_State":     pc.State,
		"per_Zip":       pc.Zip,
		"per_HomePhone": pc.HomePhone,
		"per_CellPhone": pc.CellPhone,
		"per_Email":     pc.Email,
	}
	cols := make(map[string]string, len(byName))
	for name, v := range byName {
		if v = core.CleanString(v); v != "" {
			cols[editableColumns[name]] = v
		}
	}
	return cols
}

// IsEditableColumn reports whether col is one of the allow-listed person_per columns.
func IsEditableColumn(col string) bool {
	for _, c := range editableColumns {
		if c == col {
			return true
		}
	}
	return false
}
