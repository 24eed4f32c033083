package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/attendance"
)

const historyQuery = `SELECT a.attend_id, e.event_title, t.type_name, a.checkin_date, e.event_start
	FROM event_attend a
	INNER JOIN events_event e ON e.event_id = a.event_id
	INNER JOIN event_types t ON t.type_id = e.event_type
	INNER JOIN person_per p ON p.per_id = a.person_id
	WHERE a.person_id = ?
	ORDER BY e.event_start DESC, a.attend_id DESC`

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo *attendanceRepository) QueryHistory(ctx context.Context, personID int) ([]attendance.HistoryRow, error) {
	rows := make([]attendance.HistoryRow, 0)
	if err := repo.exec.SelectContext(ctx, &rows, repo.exec.Rebind(historyQuery), personID); err != nil {
		return nil, errors.Wrap(err, "selecting attendance history")
	}
	return rows, nil
}
