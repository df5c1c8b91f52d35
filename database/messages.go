package database

import "time"

// Message is a stored chat message
type Message struct {
	ID               int64
	SenderID         int64
	ReceiverID       int64
	SenderUsername   string
	ReceiverUsername string
	Content          string
	MediaURL         string
	SentAt           time.Time
}

// CreateMessage stores a message and returns it with usernames resolved
func (db *DB) CreateMessage(senderID, receiverID int64, content, mediaURL string) (*Message, error) {
	result, err := db.sql.Exec(
		"INSERT INTO messages (sender_id, receiver_id, content, media_url, sent_at) VALUES (?, ?, ?, ?, ?)",
		senderID, receiverID, content, mediaURL, now(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetMessageByID(id)
}

const messageSelect = `SELECT m.id, m.sender_id, m.receiver_id, s.username, r.username, m.content, m.media_url, m.sent_at
	FROM messages m
	JOIN users s ON m.sender_id = s.id
	JOIN users r ON m.receiver_id = r.id`

func scanMessage(row interface{ Scan(...any) error }) (*Message, error) {
	m := &Message{}
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SenderUsername, &m.ReceiverUsername, &m.Content, &m.MediaURL, &m.SentAt)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// GetMessageByID retrieves a message by id
func (db *DB) GetMessageByID(id int64) (*Message, error) {
	return scanMessage(db.sql.QueryRow(messageSelect+" WHERE m.id = ?", id))
}

// MessagesBetween returns the latest limit messages between two users,
// oldest first
func (db *DB) MessagesBetween(userID1, userID2 int64, limit int) ([]Message, error) {
	rows, err := db.sql.Query(
		messageSelect+`
		WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.id DESC
		LIMIT ?`,
		userID1, userID2, userID2, userID1, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
