package models

import "strings"

// AssistantID is the reserved peer id of the scripted assistant
const AssistantID = "linko"

// AssistantName is the assistant's sender and display name
const AssistantName = "Linko"

// User is a conversation peer as shown by the client
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Status       string `json:"status"`
	IsFriend     string `json:"isFriend"` // "True", "False", "Pending"
	Online       bool   `json:"online"`
}

// UserResponse is a user as returned by the users endpoints
type UserResponse struct {
	ID           FlexibleID `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email,omitempty"`
	ProfileImage string     `json:"profile_image,omitempty"`
	Status       string     `json:"status,omitempty"`
	IsFriend     string     `json:"is_friend,omitempty"`
}

// ToUser converts a backend user into a peer. Relative profile image
// paths are resolved against baseURL.
func (u *UserResponse) ToUser(baseURL string) User {
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	status := u.Status
	if status == "" {
		status = "Available"
	}
	isFriend := u.IsFriend
	if isFriend == "" {
		isFriend = "False"
	}
	return User{
		ID:           u.ID.String(),
		Name:         name,
		Username:     u.Username,
		Email:        u.Email,
		Avatar:       ResolveMediaURL(baseURL, u.ProfileImage),
		ProfileImage: u.ProfileImage,
		Status:       status,
		IsFriend:     isFriend,
	}
}

// AccountUser is the signed in user kept in the credential store
type AccountUser struct {
	ID           FlexibleID `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	ProfileImage string     `json:"profile_image,omitempty"`
	Status       string     `json:"status,omitempty"`
}

// Tokens is the token pair issued on login and registration
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is returned by the login and register endpoints
type AuthResponse struct {
	Tokens Tokens      `json:"tokens"`
	User   AccountUser `json:"user"`
}

// ResolveMediaURL prefixes relative media paths with baseURL
func ResolveMediaURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "file://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}
