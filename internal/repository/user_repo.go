package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
)

// UserRepository handles the MySQL credential table. Secrets are stored
// as-is: the login is a shared-dashboard convenience, not a security
// boundary.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// seedUsers are the fixed accounts the dashboard ships with.
var seedUsers = []struct {
	username, secret, displayName string
	role                          models.Role
}{
	{"shreyansh", "admin123", "shreyansh", models.RoleAdmin},
	{"shiwangi", "shiwangi123", "shiwangi", models.RoleUser},
	{"nishitah", "nishitah123", "nishitah", models.RoleUser},
}

// EnsureSchema creates the users table and seeds the fixed credential
// rows if they are not present yet.
func (r *UserRepository) EnsureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS users (
	            username VARCHAR(64) PRIMARY KEY,
	            secret VARCHAR(128) NOT NULL,
	            role VARCHAR(16) NOT NULL DEFAULT 'user',
	            display_name VARCHAR(64) NOT NULL DEFAULT '',
	            last_login_at DATETIME NULL
	          )`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	for _, u := range seedUsers {
		query := `INSERT IGNORE INTO users (username, secret, role, display_name) VALUES (?, ?, ?, ?)`
		if _, err := r.db.ExecContext(ctx, query, u.username, u.secret, string(u.role), u.displayName); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
	}
	return nil
}

// GetByUsername returns the user and their stored secret, or
// (nil, "", nil) when the username is unknown.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var user models.User
	var secret string
	var lastLogin sql.NullTime
	query := `SELECT username, secret, role, display_name, last_login_at FROM users WHERE username = ?`
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username, &secret, &user.Role, &user.DisplayName, &lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get user %s: %w", username, err)
	}
	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return &user, secret, nil
}

// List returns all known users.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT username, role, display_name, last_login_at FROM users ORDER BY username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&user.Username, &user.Role, &user.DisplayName, &lastLogin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if lastLogin.Valid {
			user.LastLoginAt = &lastLogin.Time
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, username string) error {
	query := `UPDATE users SET last_login_at = ? WHERE username = ?`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), username); err != nil {
		return fmt.Errorf("touch last login for %s: %w", username, err)
	}
	return nil
}
