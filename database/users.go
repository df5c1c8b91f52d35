package database

import (
	"fmt"
	"strings"
	"time"
)

// User is a devserver account row
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	Password     string
	ProfileImage string
	Status       string
	CreatedAt    time.Time
}

// UserUpdate holds the optional columns of a profile PATCH
type UserUpdate struct {
	FullName     *string
	Status       *string
	ProfileImage *string
}

const userColumns = "id, username, email, full_name, password, profile_image, status, created_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Password, &u.ProfileImage, &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// CreateUser inserts a new user
func (db *DB) CreateUser(username, email, fullName, passwordHash string) (*User, error) {
	result, err := db.sql.Exec(
		"INSERT INTO users (username, email, full_name, password, created_at) VALUES (?, ?, ?, ?, ?)",
		username, email, fullName, passwordHash, now(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by id
func (db *DB) GetUserByID(id int64) (*User, error) {
	return scanUser(db.sql.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*User, error) {
	return scanUser(db.sql.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// GetUserByLogin retrieves a user by username or email
func (db *DB) GetUserByLogin(identifier string) (*User, error) {
	return scanUser(db.sql.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE username = ? OR email = ?",
		identifier, strings.ToLower(identifier),
	))
}

// AvailableUsername returns base, or base with a numeric suffix when taken
func (db *DB) AvailableUsername(base string) (string, error) {
	candidate := base
	for i := 1; i < 1000; i++ {
		var n int
		if err := db.sql.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", candidate).Scan(&n); err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("no free username for %q", base)
}

// AllUsers returns every user ordered by id
func (db *DB) AllUsers() ([]User, error) {
	rows, err := db.sql.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies the non-nil fields of upd
func (db *DB) UpdateUser(id int64, upd UserUpdate) (*User, error) {
	var sets []string
	var args []any
	if upd.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *upd.FullName)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.ProfileImage != nil {
		sets = append(sets, "profile_image = ?")
		args = append(args, *upd.ProfileImage)
	}
	if len(sets) > 0 {
		args = append(args, id)
		result, err := db.sql.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return nil, err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return nil, ErrNotFound
		}
	}
	return db.GetUserByID(id)
}

// CreateRefreshToken stores an opaque refresh token
func (db *DB) CreateRefreshToken(token string, userID int64, expiresAt time.Time) error {
	_, err := db.sql.Exec(
		"INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, expiresAt.UTC(),
	)
	return err
}
