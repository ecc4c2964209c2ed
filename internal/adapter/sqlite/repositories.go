package sqlite

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthdash/internal/domain"
)

var (
	_ domain.UserRepository       = (*DB)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
	_ domain.ProfileRepository    = (*DB)(nil)
	_ domain.WeightLogRepository  = (*DB)(nil)
	_ domain.WorkoutLogRepository = (*DB)(nil)
	_ domain.FoodLogRepository    = (*DB)(nil)
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// GetByUsername retrieves a user by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	if err := d.gorm.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toDomain(), nil
}

// GetByID retrieves a user by ID.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	if err := d.gorm.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toDomain(), nil
}

// Create creates a new user.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	row := userRow{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	if err := d.gorm.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int64
	err := d.gorm.WithContext(ctx).Model(&userRow{}).Count(&count).Error
	return int(count), err
}

// SessionRepo implements session persistence on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error {
	row := sessionRow{Token: token, UserID: userID, UserAgent: userAgent, ExpiresAt: expiresAt.UTC(), CreatedAt: time.Now().UTC()}
	return r.db.gorm.WithContext(ctx).Create(&row).Error
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var row sessionRow
	if err := r.db.gorm.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &domain.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		UserAgent: row.UserAgent,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	return r.db.gorm.WithContext(ctx).Where("token = ?", token).Delete(&sessionRow{}).Error
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	return r.db.gorm.WithContext(ctx).Where("expires_at < ?", time.Now().UTC()).Delete(&sessionRow{}).Error
}

// GetProfile returns the profile of a user.
func (d *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	var row profileRow
	if err := d.gorm.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &domain.Profile{
		UserID:           row.UserID,
		HeightCm:         row.HeightCm,
		StartingWeightKg: row.StartingWeightKg,
		StartingDate:     row.StartingDate,
		GoalWeightKg:     row.GoalWeightKg,
		TargetDate:       row.TargetDate,
		CurrentWeightKg:  row.CurrentWeightKg,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

// SaveProfile inserts or replaces the profile of p.UserID.
func (d *DB) SaveProfile(ctx context.Context, p domain.Profile) error {
	row := profileRow{
		UserID:           p.UserID,
		HeightCm:         p.HeightCm,
		StartingWeightKg: p.StartingWeightKg,
		StartingDate:     p.StartingDate,
		GoalWeightKg:     p.GoalWeightKg,
		TargetDate:       p.TargetDate,
		CurrentWeightKg:  p.CurrentWeightKg,
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
	return d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// UpsertWeightLog stores the weight of a day, replacing an earlier one.
func (d *DB) UpsertWeightLog(ctx context.Context, l domain.WeightLog) error {
	row := weightLogRow{UserID: l.UserID, Date: l.Date, WeightKg: l.WeightKg, Note: l.Note, UpdatedAt: l.UpdatedAt.UTC()}
	return d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// ListWeightLogs returns the most recent weight logs up to limit.
func (d *DB) ListWeightLogs(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
	rows := make([]weightLogRow, 0)
	if err := d.gorm.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.WeightLog, len(rows))
	for i, r := range rows {
		out[i] = domain.WeightLog{UserID: r.UserID, Date: r.Date, WeightKg: r.WeightKg, Note: r.Note, UpdatedAt: r.UpdatedAt}
	}
	return out, nil
}

// UpsertWorkoutLog stores the checklist of a day, replacing an earlier one.
func (d *DB) UpsertWorkoutLog(ctx context.Context, l domain.WorkoutLog) error {
	steps := l.CompletedSteps
	if steps == nil {
		steps = []string{}
	}
	row := workoutLogRow{
		UserID:         l.UserID,
		Date:           l.Date,
		SessionType:    string(l.SessionType),
		CompletedSteps: steps,
		Notes:          l.Notes,
		UpdatedAt:      l.UpdatedAt.UTC(),
	}
	return d.gorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&row).Error
}

// ListRecentWorkoutLogs returns the most recent workout logs up to limit.
func (d *DB) ListRecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]domain.WorkoutLog, error) {
	rows := make([]workoutLogRow, 0)
	if err := d.gorm.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.WorkoutLog, len(rows))
	for i, r := range rows {
		out[i] = domain.WorkoutLog{
			UserID:         r.UserID,
			Date:           r.Date,
			SessionType:    domain.SessionType(r.SessionType),
			CompletedSteps: r.CompletedSteps,
			Notes:          r.Notes,
			UpdatedAt:      r.UpdatedAt,
		}
	}
	return out, nil
}

// AddFoodLog inserts a meal.
func (d *DB) AddFoodLog(ctx context.Context, l domain.FoodLog) error {
	row := foodLogRow{
		ID:           l.ID,
		UserID:       l.UserID,
		EatenAt:      l.EatenAt,
		Meal:         l.Meal,
		CalorieLevel: string(l.CalorieLevel),
		MealType:     l.MealType,
		Notes:        l.Notes,
		CreatedAt:    l.CreatedAt.UTC(),
	}
	return d.gorm.WithContext(ctx).Create(&row).Error
}

// ListRecentFoodLogs returns the most recent meals up to limit.
func (d *DB) ListRecentFoodLogs(ctx context.Context, userID int64, limit int) ([]domain.FoodLog, error) {
	rows := make([]foodLogRow, 0)
	if err := d.gorm.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("eaten_at DESC, created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.FoodLog, len(rows))
	for i, r := range rows {
		out[i] = domain.FoodLog{
			ID:           r.ID,
			UserID:       r.UserID,
			EatenAt:      r.EatenAt,
			Meal:         r.Meal,
			CalorieLevel: domain.CalorieLevel(r.CalorieLevel),
			MealType:     r.MealType,
			Notes:        r.Notes,
			CreatedAt:    r.CreatedAt,
		}
	}
	return out, nil
}
