package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"
)

// User database operations

const userColumns = "id, name, email, password_hash, role, created_at"

func scanUser(row interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetUserByID queries for the user with the specified ID
func GetUserByID(db *sql.DB, id int64) (models.User, error) {
	row := db.QueryRow("SELECT "+userColumns+" FROM user WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, fmt.Errorf("getUserByID %d: %w", id, ErrNotFound)
		}
		logger.Log.Errorw("Failed to query user", "user_id", id, "error", err)
		return u, fmt.Errorf("getUserByID %d: %v", id, err)
	}
	return u, nil
}

// GetUserByEmail queries for the user with the specified email,
// matched case-insensitively
func GetUserByEmail(db *sql.DB, email string) (models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	row := db.QueryRow("SELECT "+userColumns+" FROM user WHERE email = ?", normalized)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, fmt.Errorf("getUserByEmail %q: %w", normalized, ErrNotFound)
		}
		logger.Log.Errorw("Failed to query user by email", "error", err)
		return u, fmt.Errorf("getUserByEmail %q: %v", normalized, err)
	}
	return u, nil
}

// AddUser adds the specified user to the database, returning the user ID of
// the new entry. The email must not already be registered.
func AddUser(db *sql.DB, user models.User) (int64, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if _, err := GetUserByEmail(db, user.Email); err == nil {
		return 0, fmt.Errorf("addUser: %w", ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	logger.Log.Infow("Adding new user", "name", user.Name, "role", user.Role)

	now := time.Now().UTC().Truncate(time.Second)
	result, err := db.Exec(
		"INSERT INTO user (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)",
		user.Name, user.Email, user.PasswordHash, user.Role, now)
	if err != nil {
		logger.Log.Errorw("Failed to insert user", "error", err)
		return 0, fmt.Errorf("addUser: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		logger.Log.Errorw("Failed to get user ID", "error", err)
		return 0, fmt.Errorf("addUser: %v", err)
	}

	logger.Log.Infow("User created", "user_id", id)
	return id, nil
}

// UpdateUserProfile updates a user's name and email
func UpdateUserProfile(db *sql.DB, id int64, name, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	if existing, err := GetUserByEmail(db, normalized); err == nil && existing.ID != id {
		return fmt.Errorf("updateUserProfile %d: %w", id, ErrEmailTaken)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	result, err := db.Exec("UPDATE user SET name = ?, email = ? WHERE id = ?", name, normalized, id)
	if err != nil {
		logger.Log.Errorw("Failed to update user profile", "user_id", id, "error", err)
		return fmt.Errorf("updateUserProfile %d: %v", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updateUserProfile %d: %v", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("updateUserProfile %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash
func UpdateUserPassword(db *sql.DB, id int64, passwordHash string) error {
	result, err := db.Exec("UPDATE user SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		logger.Log.Errorw("Failed to update password", "user_id", id, "error", err)
		return fmt.Errorf("updateUserPassword %d: %v", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updateUserPassword %d: %v", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("updateUserPassword %d: %w", id, ErrNotFound)
	}

	logger.Log.Infow("Password updated", "user_id", id)
	return nil
}

// CountUsers returns the number of registered users
func CountUsers(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM user").Scan(&count); err != nil {
		return 0, fmt.Errorf("countUsers: %v", err)
	}
	return count, nil
}
