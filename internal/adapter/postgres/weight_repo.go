package postgres

import (
	"context"

	"healthdash/internal/domain"
)

var _ domain.WeightLogRepository = (*DB)(nil)

// UpsertWeightLog stores the weight of a day, replacing an earlier one.
func (d *DB) UpsertWeightLog(ctx context.Context, l domain.WeightLog) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO weight_logs (user_id, date, weight_kg, note, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at;`,
		l.UserID, l.Date, l.WeightKg, l.Note, l.UpdatedAt.UTC(),
	)
	return storeErr(err)
}

// ListWeightLogs returns the most recent weight logs up to limit.
func (d *DB) ListWeightLogs(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT date, weight_kg, note, updated_at FROM weight_logs WHERE user_id = $1 ORDER BY date DESC LIMIT $2;",
		userID, limit,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.WeightLog
	for rows.Next() {
		l := domain.WeightLog{UserID: userID}
		if err := rows.Scan(&l.Date, &l.WeightKg, &l.Note, &l.UpdatedAt); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, l)
	}
	return out, storeErr(rows.Err())
}
