package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skyroute/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// IsDuplicateKey reports whether the error is a unique constraint violation
func IsDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser creates a new user with the default role and free subscription
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	prefs := models.DefaultPreferences()
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Role:         models.RoleUser,
		Preferences: models.JSONB{
			"theme":          prefs.Theme,
			"voice_guidance": prefs.VoiceGuidance,
			"offline_mode":   prefs.OfflineMode,
		},
		Subscription: models.SubscriptionFree,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (
			id, email, password_hash, name, role,
			preferences, subscription, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Preferences,
		user.Subscription,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail fetches a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE email = $1`
	err := r.db.Get(&user, query, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID fetches a user by ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.Get(&user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin stamps the user's last login time
func (r *UserRepository) UpdateLastLogin(id uuid.UUID) error {
	query := `UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.Exec(query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdatePreferences replaces the user's preference document
func (r *UserRepository) UpdatePreferences(id uuid.UUID, prefs models.JSONB) error {
	query := `UPDATE users SET preferences = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.Exec(query, prefs, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

// CountUsers returns the total number of users
func (r *UserRepository) CountUsers() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// MonthlyCount is one bucket of the user growth series
type MonthlyCount struct {
	Year  int `json:"year" db:"year"`
	Month int `json:"month" db:"month"`
	Count int `json:"count" db:"count"`
}

// UserGrowth returns signups bucketed by month, oldest first
func (r *UserRepository) UserGrowth() ([]MonthlyCount, error) {
	var growth []MonthlyCount
	query := `
		SELECT
			EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			COUNT(*)::int AS count
		FROM users
		GROUP BY year, month
		ORDER BY year, month
	`
	if err := r.db.Select(&growth, query); err != nil {
		return nil, fmt.Errorf("failed to get user growth: %w", err)
	}
	return growth, nil
}
