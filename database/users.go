// Package database - user account queries
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/grovetrack/grove-backend/model"
)

func scanUser(r rowScanner) (*model.User, error) {
	var u model.User
	var active int
	var created, updated string

	err := r.Scan(&u.Username, &u.PasswordHash, &u.Role, &u.Institution,
		&u.Email, &active, &created, &updated)
	if err != nil {
		return nil, err
	}

	u.IsActive = active != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &u, nil
}

// GetUser returns one user by username, or nil when absent
func GetUser(ctx context.Context, db DBConnection, username string) (*model.User, error) {
	row := db.DB.QueryRowContext(ctx,
		`SELECT username, password_hash, role, institution, email, is_active,
		        created_at, updated_at
		   FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// ListUsers returns every account ordered by username
func ListUsers(ctx context.Context, db DBConnection) ([]model.User, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT username, password_hash, role, institution, email, is_active,
		        created_at, updated_at
		   FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// CreateUser inserts a new account
func CreateUser(ctx context.Context, db DBConnection, u *model.User) error {
	active := 0
	if u.IsActive {
		active = 1
	}
	_, err := db.DB.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, institution, email,
		        is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Role, u.Institution, u.Email, active,
		u.CreatedAt.Format(time.RFC3339), u.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create user %q: %w", u.Username, err)
	}
	return nil
}

// UpdateUser rewrites the mutable columns of one account row
func UpdateUser(ctx context.Context, db DBConnection, u *model.User) error {
	active := 0
	if u.IsActive {
		active = 1
	}
	u.UpdatedAt = time.Now()

	res, err := db.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, role = ?, institution = ?, email = ?,
		        is_active = ?, updated_at = ?
		  WHERE username = ?`,
		u.PasswordHash, u.Role, u.Institution, u.Email, active,
		u.UpdatedAt.Format(time.RFC3339), u.Username)
	if err != nil {
		return fmt.Errorf("update user %q: %w", u.Username, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update user %q: no such user", u.Username)
	}
	return nil
}

// DeleteUser removes one account
func DeleteUser(ctx context.Context, db DBConnection, username string) error {
	res, err := db.DB.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("delete user %q: %w", username, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete user %q: no such user", username)
	}
	return nil
}
