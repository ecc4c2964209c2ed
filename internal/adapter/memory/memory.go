// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"healthdash/internal/domain"
)

type dateKey struct {
	userID int64
	date   string
}

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	profiles map[int64]domain.Profile
	weights  map[dateKey]domain.WeightLog
	workouts map[dateKey]domain.WorkoutLog
	foods    []domain.FoodLog
	users    []*domain.User
	sessions map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[int64]domain.Profile),
		weights:  make(map[dateKey]domain.WeightLog),
		workouts: make(map[dateKey]domain.WorkoutLog),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.WeightLogRepository = (*DB)(nil)
var _ domain.WorkoutLogRepository = (*DB)(nil)
var _ domain.FoodLogRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- ProfileRepository ---

// GetProfile returns a copy of the stored profile.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// SaveProfile replaces the stored profile.
func (db *DB) SaveProfile(ctx context.Context, p domain.Profile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p.UpdatedAt = p.UpdatedAt.UTC()
	db.profiles[p.UserID] = p
	return nil
}

// --- WeightLogRepository ---

// UpsertWeightLog stores the log, replacing one with the same date.
func (db *DB) UpsertWeightLog(ctx context.Context, l domain.WeightLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	l.UpdatedAt = l.UpdatedAt.UTC()
	db.weights[dateKey{l.UserID, l.Date}] = l
	return nil
}

// ListWeightLogs lists the logs of a user, newest date first.
func (db *DB) ListWeightLogs(ctx context.Context, userID int64, limit int) ([]domain.WeightLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.WeightLog
	for k, l := range db.weights {
		if k.userID == userID {
			result = append(result, l)
		}
	}
	slices.SortFunc(result, func(a, b domain.WeightLog) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return truncate(result, limit), nil
}

// --- WorkoutLogRepository ---

// UpsertWorkoutLog stores the log, replacing one with the same date.
func (db *DB) UpsertWorkoutLog(ctx context.Context, l domain.WorkoutLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	l.CompletedSteps = slices.Clone(l.CompletedSteps)
	l.UpdatedAt = l.UpdatedAt.UTC()
	db.workouts[dateKey{l.UserID, l.Date}] = l
	return nil
}

// ListRecentWorkoutLogs lists the logs of a user, newest date first.
func (db *DB) ListRecentWorkoutLogs(ctx context.Context, userID int64, limit int) ([]domain.WorkoutLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.WorkoutLog
	for k, l := range db.workouts {
		if k.userID == userID {
			l.CompletedSteps = slices.Clone(l.CompletedSteps)
			result = append(result, l)
		}
	}
	slices.SortFunc(result, func(a, b domain.WorkoutLog) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return truncate(result, limit), nil
}

// --- FoodLogRepository ---

// AddFoodLog appends a meal. IDs must be unique.
func (db *DB) AddFoodLog(ctx context.Context, l domain.FoodLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.foods {
		if existing.ID == l.ID {
			return errors.New("food log already exists")
		}
	}
	l.CreatedAt = l.CreatedAt.UTC()
	db.foods = append(db.foods, l)
	return nil
}

// ListRecentFoodLogs lists the meals of a user, latest first.
func (db *DB) ListRecentFoodLogs(ctx context.Context, userID int64, limit int) ([]domain.FoodLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.FoodLog
	for _, l := range db.foods {
		if l.UserID == userID {
			result = append(result, l)
		}
	}
	slices.SortStableFunc(result, func(a, b domain.FoodLog) int {
		return cmp.Compare(b.EatenAt, a.EatenAt)
	})
	return truncate(result, limit), nil
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	c := *u
	return &c, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token. Expired sessions are still
// returned; the caller decides what to do with them.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		c := *s
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
