package inmemdb

import (
	"context"
	"sync"

	"github.com/vinckarunia/raha-member-app/core/attendance"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
)

// DB is a process-local store with the same tables as the membership database.
// It backs the demo mode and the tests.
type DB struct {
	mu sync.RWMutex

	persons     map[int]member.Person
	custom      map[int]member.CustomFields
	options     []member.DropdownOption
	credentials map[int]user.Credential
	tokens      map[int64]user.AccessToken
	tokenPK     int64
	eventTypes  map[int]attendance.EventType
	events      map[int]attendance.Event
	attendance  []attendance.Record
}

func Open() *DB {
	return &DB{
		persons:     make(map[int]member.Person),
		custom:      make(map[int]member.CustomFields),
		credentials: make(map[int]user.Credential),
		tokens:      make(map[int64]user.AccessToken),
		eventTypes:  make(map[int]attendance.EventType),
		events:      make(map[int]attendance.Event),
	}
}

func (db *DB) PingContext(context.Context) error { return nil }

func (db *DB) Close() error { return nil }

// Reset empties every table.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.persons = make(map[int]member.Person)
	db.custom = make(map[int]member.CustomFields)
	db.options = nil
	db.credentials = make(map[int]user.Credential)
	db.tokens = make(map[int64]user.AccessToken)
	db.tokenPK = 0
	db.eventTypes = make(map[int]attendance.EventType)
	db.events = make(map[int]attendance.Event)
	db.attendance = nil
}

func (db *DB) AddPerson(p member.Person) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.persons[p.ID] = p
}

func (db *DB) SetCustomFields(cf member.CustomFields) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.custom[cf.PersonID] = cf
}

func (db *DB) AddDropdownOptions(opts ...member.DropdownOption) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.options = append(db.options, opts...)
}

func (db *DB) AddCredential(c user.Credential) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.credentials[c.PersonID] = c
}

func (db *DB) AddEventType(et attendance.EventType) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.eventTypes[et.ID] = et
}

func (db *DB) AddEvent(e attendance.Event) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.events[e.ID] = e
}

func (db *DB) AddAttendance(recs ...attendance.Record) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.attendance = append(db.attendance, recs...)
}

// Tokens returns a copy of the stored tokens of a person.
func (db *DB) Tokens(personID int) []user.AccessToken {
	db.mu.RLock()
	defer db.mu.RUnlock()
	toks := make([]user.AccessToken, 0)
	for _, t := range db.tokens {
		if t.PersonID == personID {
			toks = append(toks, t)
		}
	}
	return toks
}
