package inmemdb

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/vinckarunia/raha-member-app/core/attendance"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
)

// Demo accounts created by Seed.
const (
	DemoPersonID = 1
	DemoUsername = "jdoe"
	DemoPassword = "secret"

	DemoAdminID       = 2
	DemoAdminUsername = "admin"
	DemoAdminPassword = "secret"

	// DemoOrphanID has a login but no person_custom row nor attendance.
	DemoOrphanID       = 3
	DemoOrphanUsername = "asmith"
	DemoOrphanPassword = "secret"
)

// Seed fills db with a small congregation used by the demo mode and the tests.
func Seed(db *DB) {
	entered := time.Date(2015, 3, 1, 9, 0, 0, 0, time.UTC)

	db.AddPerson(member.Person{
		ID:             DemoPersonID,
		Title:          null.StringFrom("Mr."),
		FirstName:      null.StringFrom("John"),
		LastName:       null.StringFrom("Doe"),
		Address1:       null.StringFrom("Jl. Merdeka 1"),
		City:           null.StringFrom("Bandung"),
		State:          null.StringFrom("Jawa Barat"),
		Zip:            null.StringFrom("40111"),
		Country:        null.StringFrom("Indonesia"),
		CellPhone:      null.StringFrom("+62 812 0000 0001"),
		Email:          null.StringFrom("john.doe@example.com"),
		BirthYear:      null.IntFrom(1985),
		BirthMonth:     null.IntFrom(6),
		BirthDay:       null.IntFrom(15),
		MembershipDate: null.TimeFrom(time.Date(2010, 1, 10, 0, 0, 0, 0, time.UTC)),
		Gender:         member.GenderMale,
		DateEntered:    null.TimeFrom(entered),
		EnteredBy:      null.IntFrom(DemoAdminID),
	})
	db.AddPerson(member.Person{
		ID:          DemoAdminID,
		FirstName:   null.StringFrom("Maria"),
		LastName:    null.StringFrom("Tan"),
		Email:       null.StringFrom("maria.tan@example.com"),
		Gender:      member.GenderFemale,
		DateEntered: null.TimeFrom(entered),
	})
	db.AddPerson(member.Person{
		ID:          DemoOrphanID,
		FirstName:   null.StringFrom("Anna"),
		LastName:    null.StringFrom("Smith"),
		BirthYear:   null.IntFrom(1990), // incomplete birth date
		DateEntered: null.TimeFrom(entered),
	})

	var cf member.CustomFields
	cf.PersonID = DemoPersonID
	cf.Values[0] = null.StringFrom("RAHA-0001")   // member_number
	cf.Values[1] = null.StringFrom("2001-04-15")  // baptism_date
	cf.Values[5] = null.StringFrom("2")           // marital_status
	cf.Values[8] = null.StringFrom("1")           // blood_type
	cf.Values[9] = null.StringFrom("99")          // education: dangling option
	cf.Values[13] = null.StringFrom("3")          // ministry
	cf.Values[16] = null.StringFrom("not-a-date") // transfer_date
	db.SetCustomFields(cf)

	db.AddDropdownOptions(
		opt(101, 1, 1, "Single"), opt(101, 2, 2, "Married"), opt(101, 3, 3, "Widowed"),
		opt(102, 1, 1, "A"), opt(102, 2, 2, "B"), opt(102, 3, 3, "AB"), opt(102, 4, 4, "O"),
		opt(103, 1, 1, "High School"), opt(103, 2, 2, "Bachelor"), opt(103, 3, 3, "Master"),
		opt(104, 1, 1, "Employee"), opt(104, 2, 2, "Entrepreneur"),
		opt(105, 3, 1, "Worship"), opt(105, 1, 2, "Youth"), opt(105, 2, 3, "Choir"),
		opt(106, 1, 1, "North"), opt(106, 2, 2, "South"),
	)

	addCredential(db, DemoPersonID, DemoUsername, DemoPassword, false)
	addCredential(db, DemoAdminID, DemoAdminUsername, DemoAdminPassword, true)
	addCredential(db, DemoOrphanID, DemoOrphanUsername, DemoOrphanPassword, false)

	db.AddEventType(attendance.EventType{ID: 1, Name: "Sunday Service"})
	db.AddEventType(attendance.EventType{ID: 2, Name: "Prayer Meeting"})
	db.AddEvent(attendance.Event{ID: 1, TypeID: 1, Title: "Sunday Service", Start: time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)})
	db.AddEvent(attendance.Event{ID: 2, TypeID: 2, Title: "Wednesday Prayer", Start: time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC)})
	db.AddEvent(attendance.Event{ID: 3, TypeID: 1, Title: "Sunday Service", Start: time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)})
	db.AddAttendance(
		attendance.Record{ID: 1, EventID: 1, PersonID: DemoPersonID, CheckinDate: time.Date(2024, 1, 7, 8, 55, 0, 0, time.UTC)},
		attendance.Record{ID: 2, EventID: 2, PersonID: DemoPersonID, CheckinDate: time.Date(2024, 1, 10, 18, 50, 0, 0, time.UTC)},
		attendance.Record{ID: 3, EventID: 3, PersonID: DemoPersonID, CheckinDate: time.Date(2024, 1, 14, 8, 58, 0, 0, time.UTC)},
		attendance.Record{ID: 4, EventID: 1, PersonID: DemoAdminID, CheckinDate: time.Date(2024, 1, 7, 8, 40, 0, 0, time.UTC)},
		attendance.Record{ID: 5, EventID: 42, PersonID: DemoPersonID, CheckinDate: time.Date(2024, 1, 21, 9, 0, 0, 0, time.UTC)}, // dangling event
	)
}

func opt(list, id, seq int, label string) member.DropdownOption {
	return member.DropdownOption{ListID: list, OptionID: id, Sequence: seq, Label: label}
}

func addCredential(db *DB, personID int, username, password string, admin bool) {
	hash, _ := user.LegacyHasher{}.Hash(password, personID)
	db.AddCredential(user.Credential{
		PersonID:     personID,
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      admin,
	})
}
