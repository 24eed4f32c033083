package inmemdb

import (
	"context"
	"sort"

	"github.com/vinckarunia/raha-member-app/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// QueryHistory mimics the inner join: rows whose event, event type or person is missing are skipped.
func (repo *attendanceRepository) QueryHistory(_ context.Context, personID int) ([]attendance.HistoryRow, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rows := make([]attendance.HistoryRow, 0)
	if _, ok := repo.db.persons[personID]; !ok {
		return rows, nil
	}
	for _, rec := range repo.db.attendance {
		if rec.PersonID != personID {
			continue
		}
		ev, ok := repo.db.events[rec.EventID]
		if !ok {
			continue
		}
		et, ok := repo.db.eventTypes[ev.TypeID]
		if !ok {
			continue
		}
		rows = append(rows, attendance.HistoryRow{
			AttendanceID: rec.ID,
			EventTitle:   ev.Title,
			EventType:    et.Name,
			CheckinDate:  rec.CheckinDate,
			EventStart:   ev.Start,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].EventStart.Equal(rows[j].EventStart) {
			return rows[i].EventStart.After(rows[j].EventStart)
		}
		return rows[i].AttendanceID > rows[j].AttendanceID
	})
	return rows, nil
}
