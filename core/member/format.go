package member

import (
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core"
)

const dateLayout = "2006-01-02"

// MemberNumberSlot holds the free-text member number used on the QR card.
const MemberNumberSlot = 1

var genderLabels = map[int]string{
	GenderUnknown: "unknown",
	GenderMale:    "male",
	GenderFemale:  "female",
}

type (
	Personal struct {
		Title          null.String `json:"title"`
		FirstName      null.String `json:"first_name"`
		MiddleName     null.String `json:"middle_name"`
		LastName       null.String `json:"last_name"`
		Suffix         null.String `json:"suffix"`
		FullName       string      `json:"full_name"`
		Gender         int         `json:"gender"`
		GenderLabel    string      `json:"gender_label"`
		BirthDate      null.String `json:"birth_date"`
		Age            null.Int    `json:"age"`
		MembershipDate null.String `json:"membership_date"`
	}

	Address struct {
		Address1    null.String `json:"address1"`
		Address2    null.String `json:"address2"`
		City        null.String `json:"city"`
		State       null.String `json:"state"`
		Zip         null.String `json:"zip"`
		Country     null.String `json:"country"`
		FullAddress string      `json:"full_address"`
	}

	Contact struct {
		HomePhone null.String `json:"home_phone"`
		CellPhone null.String `json:"cell_phone"`
		Email     null.String `json:"email"`
		WorkEmail null.String `json:"work_email"`
		Facebook  null.String `json:"facebook"`
		Twitter   null.String `json:"twitter"`
		LinkedIn  null.String `json:"linkedin"`
	}

	// Profile is the denormalized view of a Person and its custom fields.
	Profile struct {
		PersonID     int                    `json:"id"`
		Personal     Personal               `json:"personal"`
		Address      Address                `json:"address"`
		Contact      Contact                `json:"contact"`
		CustomFields map[string]null.String `json:"custom_fields"`
	}

	QRIdentity struct {
		PersonID     string      `json:"person_id"`
		FullName     string      `json:"full_name"`
		MemberNumber null.String `json:"member_number"`
	}

	FieldDefinitions struct {
		Fields          []FieldDef               `json:"fields"`
		DropdownOptions map[int][]DropdownOption `json:"dropdown_options"`
	}
)

// FullName joins the non-empty name parts with a single space.
func FullName(first, middle, last string) string {
	return core.JoinNonEmpty(" ", first, middle, last)
}

// FullAddress joins the non-empty address parts with ", ".
func FullAddress(parts ...string) string {
	return core.JoinNonEmpty(", ", parts...)
}

// Age returns the whole years between birth and now. Never negative.
func Age(birth null.Time, now time.Time) null.Int {
	if !birth.Valid {
		return null.Int{}
	}
	b := birth.Time
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return null.IntFrom(years)
}

func formatTime(t null.Time) null.String {
	if !t.Valid || t.Time.IsZero() {
		return null.String{}
	}
	return null.StringFrom(t.Time.Format(dateLayout))
}

// formatDate normalises a raw date value (e.g. "2001-02-03" or an RFC3339 timestamp) to YYYY-MM-DD.
func formatDate(raw string) null.String {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(dateLayout) {
		return null.String{}
	}
	t, err := time.Parse(dateLayout, raw[:len(dateLayout)])
	if err != nil {
		return null.String{}
	}
	return null.StringFrom(t.Format(dateLayout))
}

// FormatCustomFields renders all slots of the schema, keyed by semantic name.
// With a nil index dropdown slots keep their raw option id.
func FormatCustomFields(schema Schema, cf *CustomFields, opts OptionIndex) map[string]null.String {
	out := make(map[string]null.String, len(schema.Fields))
	for _, f := range schema.Fields {
		raw := cf.Slot(f.Slot)
		if !raw.Valid || raw.String == "" {
			out[f.Name] = null.String{}
			continue
		}

		switch f.Type {
		case TypeDate:
			out[f.Name] = formatDate(raw.String)
		case TypeDropdown:
			id := strings.TrimSpace(raw.String)
			if opts == nil {
				out[f.Name] = null.NewString(id, id != "")
				continue
			}
			optID, err := strconv.Atoi(id)
			if err != nil {
				out[f.Name] = null.String{}
				continue
			}
			label, ok := opts.Label(*f.ListID, optID)
			out[f.Name] = null.NewString(label, ok)
		default:
			out[f.Name] = raw
		}
	}
	return out
}

// FormatProfile assembles the denormalized view.
func FormatProfile(schema Schema, p Person, cf *CustomFields, opts OptionIndex, now time.Time) Profile {
	birth := p.BirthDate()
	return Profile{
		PersonID: p.ID,
		Personal: Personal{
			Title:          p.Title,
			FirstName:      p.FirstName,
			MiddleName:     p.MiddleName,
			LastName:       p.LastName,
			Suffix:         p.Suffix,
			FullName:       p.FullName(),
			Gender:         p.Gender,
			GenderLabel:    genderLabel(p.Gender),
			BirthDate:      formatTime(birth),
			Age:            Age(birth, now),
			MembershipDate: formatTime(p.MembershipDate),
		},
		Address: Address{
			Address1:    p.Address1,
			Address2:    p.Address2,
			City:        p.City,
			State:       p.State,
			Zip:         p.Zip,
			Country:     p.Country,
			FullAddress: FullAddress(p.Address1.String, p.Address2.String, p.City.String, p.State.String, p.Zip.String, p.Country.String),
		},
		Contact: Contact{
			HomePhone: p.HomePhone,
			CellPhone: p.CellPhone,
			Email:     p.Email,
			WorkEmail: p.WorkEmail,
			Facebook:  p.Facebook,
			Twitter:   p.Twitter,
			LinkedIn:  p.LinkedIn,
		},
		CustomFields: FormatCustomFields(schema, cf, opts),
	}
}

func (p Person) FullName() string {
	return FullName(p.FirstName.String, p.MiddleName.String, p.LastName.String)
}

func genderLabel(code int) string {
	if l, ok := genderLabels[code]; ok {
		return l
	}
	return genderLabels[GenderUnknown]
}

// NewFieldDefinitions pairs the schema with dropdown options grouped by list and sorted by sequence.
func NewFieldDefinitions(schema Schema, opts []DropdownOption) FieldDefinitions {
	fields := make([]FieldDef, len(schema.Fields))
	copy(fields, schema.Fields)
	for i := range fields {
		fields[i].Editable = false
	}

	grouped := make(map[int][]DropdownOption)
	for _, o := range opts {
		grouped[o.ListID] = append(grouped[o.ListID], o)
	}
	for _, list := range grouped {
		sortOptions(list)
	}
	return FieldDefinitions{Fields: fields, DropdownOptions: grouped}
}
