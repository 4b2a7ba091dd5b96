package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/skyvista/flight-booking-backend/internal/models"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, username, email, password_hash, role,
	first_name, last_name, phone, date_of_birth, address,
	is_active, last_login_at, last_device, created_at, updated_at`

// Create inserts a new user account
func (r *UserRepository) Create(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := r.db.QueryRow(`
		INSERT INTO users (
			id, username, email, password_hash, role,
			first_name, last_name, phone, date_of_birth, address, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.Profile.FirstName, user.Profile.LastName, user.Profile.Phone,
		nullIfEmpty(user.Profile.DateOfBirth), nullIfEmpty(user.Profile.Address),
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(query, id))
}

// EmailExists reports whether an account already uses the email
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates the editable profile fields
func (r *UserRepository) UpdateProfile(id uuid.UUID, profile models.UserProfile) error {
	result, err := r.db.Exec(`
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4,
		    date_of_birth = $5, address = $6, updated_at = NOW()
		WHERE id = $1`,
		id, profile.FirstName, profile.LastName, profile.Phone,
		nullIfEmpty(profile.DateOfBirth), nullIfEmpty(profile.Address))
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// RecordLogin stamps the login time and the device it came from
func (r *UserRepository) RecordLogin(id uuid.UUID, device string) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET last_login_at = NOW(), last_device = $2, updated_at = NOW()
		WHERE id = $1`,
		id, nullIfEmpty(device))
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// List retrieves all users, newest first (admin)
func (r *UserRepository) List() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// UpdateStatus activates or deactivates an account (admin)
func (r *UserRepository) UpdateStatus(id uuid.UUID, isActive bool) error {
	result, err := r.db.Exec(`
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		id, isActive)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var phone, dateOfBirth, address sql.NullString
	var lastLoginAt sql.NullTime
	var lastDevice sql.NullString

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.Profile.FirstName, &user.Profile.LastName, &phone, &dateOfBirth, &address,
		&user.IsActive, &lastLoginAt, &lastDevice, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Profile.Phone = phone.String
	user.Profile.DateOfBirth = dateOfBirth.String
	user.Profile.Address = address.String
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	if lastDevice.Valid {
		user.LastDevice = &lastDevice.String
	}

	return user, nil
}
