package api

import (
	"context"
	"net/http"
	"net/url"

	"linkup/models"
)

// SendRequest is an outbound chat message
type SendRequest struct {
	Receiver string
	Content  string
	Media    *Upload
}

// ChatHistory fetches the conversation with username, oldest first
func (c *Client) ChatHistory(ctx context.Context, username string) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/users/api/chat/history/"+url.PathEscape(username)+"/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a message and returns the server's canonical copy
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*models.SentMessage, error) {
	f := newForm()
	if err := f.field("receiver_username", req.Receiver); err != nil {
		return nil, err
	}
	if req.Content != "" {
		if err := f.field("content", req.Content); err != nil {
			return nil, err
		}
	}
	if req.Media != nil && req.Media.Reader != nil {
		if err := f.file("media", req.Media.Filename, req.Media.Reader); err != nil {
			return nil, err
		}
	}

	var out models.SendResponse
	if err := c.doForm(ctx, http.MethodPost, "/users/api/chat/send/", f, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
