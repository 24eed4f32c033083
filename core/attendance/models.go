package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Record mirrors a row of event_attend.
type Record struct {
	ID           int       `db:"attend_id"`
	EventID      int       `db:"event_id"`
	PersonID     int       `db:"person_id"`
	CheckinDate  time.Time `db:"checkin_date"`
	CheckoutDate null.Time `db:"checkout_date"`
}

// Event mirrors a row of events_event.
type Event struct {
	ID     int       `db:"event_id"`
	TypeID int       `db:"event_type"`
	Title  string    `db:"event_title"`
	Start  time.Time `db:"event_start"`
}

// EventType mirrors a row of event_types.
type EventType struct {
	ID   int    `db:"type_id"`
	Name string `db:"type_name"`
}

// HistoryRow is one line of a member's attendance history.
type HistoryRow struct {
	AttendanceID int       `db:"attend_id" json:"attendance_id"`
	EventTitle   string    `db:"event_title" json:"event_title"`
	EventType    string    `db:"type_name" json:"event_type"`
	CheckinDate  time.Time `db:"checkin_date" json:"checkin_date"`
	EventStart   time.Time `db:"event_start" json:"-"`
}
