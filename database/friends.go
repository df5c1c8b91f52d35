package database

import (
	"time"
)

// FriendRequest is a stored friend request with both usernames resolved
type FriendRequest struct {
	ID           int64
	FromUserID   int64
	FromUsername string
	FromFullName string
	FromImage    string
	ToUserID     int64
	ToUsername   string
	Status       string
	CreatedAt    time.Time
}

const friendSelect = `SELECT f.id, f.from_user_id, fu.username, fu.full_name, fu.profile_image,
		f.to_user_id, tu.username, f.status, f.created_at
	FROM friend_requests f
	JOIN users fu ON f.from_user_id = fu.id
	JOIN users tu ON f.to_user_id = tu.id`

func scanFriendRequest(row interface{ Scan(...any) error }) (*FriendRequest, error) {
	r := &FriendRequest{}
	err := row.Scan(&r.ID, &r.FromUserID, &r.FromUsername, &r.FromFullName, &r.FromImage,
		&r.ToUserID, &r.ToUsername, &r.Status, &r.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

// CreateFriendRequest creates a pending request from one user to another
func (db *DB) CreateFriendRequest(fromID, toID int64) (*FriendRequest, error) {
	result, err := db.sql.Exec(
		"INSERT INTO friend_requests (from_user_id, to_user_id, status, created_at) VALUES (?, ?, 'pending', ?)",
		fromID, toID, now(),
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetFriendRequest(id)
}

// GetFriendRequest retrieves a request by id
func (db *DB) GetFriendRequest(id int64) (*FriendRequest, error) {
	return scanFriendRequest(db.sql.QueryRow(friendSelect+" WHERE f.id = ?", id))
}

// GetFriendship retrieves the request between two users in either direction
func (db *DB) GetFriendship(userID, otherID int64) (*FriendRequest, error) {
	return scanFriendRequest(db.sql.QueryRow(
		friendSelect+" WHERE (f.from_user_id = ? AND f.to_user_id = ?) OR (f.from_user_id = ? AND f.to_user_id = ?)",
		userID, otherID, otherID, userID,
	))
}

// FriendRequestsFor returns requests sent or received by a user, newest first
func (db *DB) FriendRequestsFor(userID int64) ([]FriendRequest, error) {
	rows, err := db.sql.Query(
		friendSelect+" WHERE f.to_user_id = ? OR f.from_user_id = ? ORDER BY f.id DESC",
		userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []FriendRequest
	for rows.Next() {
		r, err := scanFriendRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// RespondFriendRequest sets the status of a pending request addressed to userID
func (db *DB) RespondFriendRequest(requestID, userID int64, status string) error {
	result, err := db.sql.Exec(
		"UPDATE friend_requests SET status = ? WHERE id = ? AND to_user_id = ? AND status = 'pending'",
		status, requestID, userID,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelFriendRequest deletes a pending request sent by userID
func (db *DB) CancelFriendRequest(requestID, userID int64) error {
	result, err := db.sql.Exec(
		"DELETE FROM friend_requests WHERE id = ? AND from_user_id = ? AND status = 'pending'",
		requestID, userID,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AreFriends reports whether an accepted request links the two users
func (db *DB) AreFriends(userID, otherID int64) (bool, error) {
	r, err := db.GetFriendship(userID, otherID)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.Status == "accepted", nil
}
