package api

import (
	"context"
	"net/http"
	"net/url"

	"linkup/models"
)

// ListFriendRequests fetches the signed in user's friend requests
func (c *Client) ListFriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	if err := c.doJSON(ctx, http.MethodGet, "/users/friend-requests/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendFriendRequest sends a request to toUserID
func (c *Client) SendFriendRequest(ctx context.Context, toUserID string) error {
	body := map[string]string{"to_user": toUserID}
	return c.doJSON(ctx, http.MethodPost, "/users/friend-requests/", body, nil)
}

// RespondFriendRequest accepts or rejects a request
func (c *Client) RespondFriendRequest(ctx context.Context, requestID, action string) error {
	return c.doJSON(ctx, http.MethodPut, "/users/friend-requests/"+url.PathEscape(requestID)+"/", models.FriendAction{Action: action}, nil)
}

// CancelFriendRequest withdraws a request the user sent
func (c *Client) CancelFriendRequest(ctx context.Context, requestID string) error {
	return c.doJSON(ctx, http.MethodPost, "/users/friend-requests/"+url.PathEscape(requestID)+"/cancel/", nil, nil)
}
