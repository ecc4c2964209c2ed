package postgres

import (
	"context"
	"database/sql"
	"errors"

	"healthdash/internal/domain"
)

var _ domain.ProfileRepository = (*DB)(nil)

// GetProfile returns the profile of a user.
func (d *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	err := d.sql.QueryRowContext(ctx,
		`SELECT height_cm, starting_weight_kg, starting_date, goal_weight_kg, target_date, current_weight_kg, updated_at
		 FROM profiles WHERE user_id = $1;`,
		userID,
	).Scan(&p.HeightCm, &p.StartingWeightKg, &p.StartingDate, &p.GoalWeightKg, &p.TargetDate, &p.CurrentWeightKg, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &p, nil
}

// SaveProfile inserts or replaces the profile of p.UserID.
func (d *DB) SaveProfile(ctx context.Context, p domain.Profile) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO profiles (user_id, height_cm, starting_weight_kg, starting_date, goal_weight_kg, target_date, current_weight_kg, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		   height_cm = EXCLUDED.height_cm,
		   starting_weight_kg = EXCLUDED.starting_weight_kg,
		   starting_date = EXCLUDED.starting_date,
		   goal_weight_kg = EXCLUDED.goal_weight_kg,
		   target_date = EXCLUDED.target_date,
		   current_weight_kg = EXCLUDED.current_weight_kg,
		   updated_at = EXCLUDED.updated_at;`,
		p.UserID, p.HeightCm, p.StartingWeightKg, p.StartingDate, p.GoalWeightKg, p.TargetDate, p.CurrentWeightKg, p.UpdatedAt.UTC(),
	)
	return storeErr(err)
}
