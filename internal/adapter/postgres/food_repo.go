package postgres

import (
	"context"
	"fmt"

	"healthdash/internal/domain"
)

var _ domain.FoodLogRepository = (*DB)(nil)

// AddFoodLog inserts a meal.
func (d *DB) AddFoodLog(ctx context.Context, l domain.FoodLog) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO food_logs (id, user_id, eaten_at, meal, calorie_level, meal_type, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		l.ID, l.UserID, l.EatenAt, l.Meal, string(l.CalorieLevel), l.MealType, l.Notes, l.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert food log %s: %w", l.ID, storeErr(err))
	}
	return nil
}

// ListRecentFoodLogs returns the most recent meals up to limit.
func (d *DB) ListRecentFoodLogs(ctx context.Context, userID int64, limit int) ([]domain.FoodLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, eaten_at, meal, calorie_level, meal_type, notes, created_at
		 FROM food_logs WHERE user_id = $1 ORDER BY eaten_at DESC, created_at DESC LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.FoodLog
	for rows.Next() {
		l := domain.FoodLog{UserID: userID}
		var level string
		if err := rows.Scan(&l.ID, &l.EatenAt, &l.Meal, &level, &l.MealType, &l.Notes, &l.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		l.CalorieLevel = domain.CalorieLevel(level)
		out = append(out, l)
	}
	return out, storeErr(rows.Err())
}
