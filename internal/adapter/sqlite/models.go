package sqlite

import (
	"time"

	"healthdash/internal/domain"
)

type userRow struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

type sessionRow struct {
	Token     string    `gorm:"primaryKey"`
	UserID    int64     `gorm:"index;not null"`
	UserAgent string    `gorm:"not null;default:''"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (sessionRow) TableName() string { return "sessions" }

type profileRow struct {
	UserID           int64 `gorm:"primaryKey;autoIncrement:false"`
	HeightCm         float64
	StartingWeightKg float64
	StartingDate     string
	GoalWeightKg     float64
	TargetDate       string
	CurrentWeightKg  float64
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
}

func (profileRow) TableName() string { return "profiles" }

type weightLogRow struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Date      string `gorm:"primaryKey"`
	WeightKg  float64
	Note      string
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (weightLogRow) TableName() string { return "weight_logs" }

type workoutLogRow struct {
	UserID         int64  `gorm:"primaryKey;autoIncrement:false"`
	Date           string `gorm:"primaryKey"`
	SessionType    string
	CompletedSteps []string `gorm:"serializer:json"`
	Notes          string
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}

func (workoutLogRow) TableName() string { return "workout_logs" }

type foodLogRow struct {
	ID           string `gorm:"primaryKey"`
	UserID       int64  `gorm:"index:idx_food_logs_user_eaten_at,priority:1;not null"`
	EatenAt      string `gorm:"index:idx_food_logs_user_eaten_at,priority:2;not null"`
	Meal         string `gorm:"not null"`
	CalorieLevel string
	MealType     string
	Notes        string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
}

func (foodLogRow) TableName() string { return "food_logs" }
