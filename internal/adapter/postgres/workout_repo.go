package postgres

import (
	"context"

	"github.com/lib/pq"

	"healthdash/internal/domain"
)

var _ domain.WorkoutLogRepository = (*DB)(nil)

// UpsertWorkoutLog stores the checklist of a day, replacing an earlier one.
func (d *DB) UpsertWorkoutLog(ctx context.Context, l domain.WorkoutLog) error {
	steps := l.CompletedSteps
	if steps == nil {
		steps = []string{}
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO workout_logs (user_id, date, session_type, completed_steps, notes, updated_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		   session_type = EXCLUDED.session_type,
		   completed_steps = EXCLUDED.completed_steps,
		   notes = EXCLUDED.notes,
		   updated_at = EXCLUDED.updated_at;`,
		l.UserID, l.Date, string(l.SessionType), pq.Array(steps), l.Notes, l.UpdatedAt.UTC(),
	)
	return storeErr(err)
}

// ListRecentWorkoutLogs returns the most recent workout logs up to limit.
func (d *DB) ListRecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]domain.WorkoutLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT date, session_type, completed_steps, notes, updated_at FROM workout_logs WHERE user_id = $1 ORDER BY date DESC LIMIT $2;",
		userID, limit,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.WorkoutLog
	for rows.Next() {
		l := domain.WorkoutLog{UserID: userID}
		var sessionType string
		if err := rows.Scan(&l.Date, &sessionType, pq.Array(&l.CompletedSteps), &l.Notes, &l.UpdatedAt); err != nil {
			return nil, storeErr(err)
		}
		l.SessionType = domain.SessionType(sessionType)
		out = append(out, l)
	}
	return out, storeErr(rows.Err())
}
