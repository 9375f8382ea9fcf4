package models

import "strings"

// User is the authenticated identity as returned by /auth/me and cached locally
type User struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// LoginRequest is the request body for /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the token exchange result. Name and Username are optional.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      uint   `json:"user_id"`
	Name        string `json:"name,omitempty"`
	Username    string `json:"username,omitempty"`
}

// SignupRequest is the request body for /auth/signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DefaultDisplayName is used when the backend omits a name on login
const DefaultDisplayName = "User"

// UserFromLogin builds the session identity from a login exchange,
// filling the display name and username when the backend leaves them out.
func UserFromLogin(email string, resp *LoginResponse) User {
	user := User{
		ID:       resp.UserID,
		Email:    email,
		Name:     resp.Name,
		Username: resp.Username,
	}
	if user.Name == "" {
		user.Name = DefaultDisplayName
	}
	if user.Username == "" {
		user.Username = EmailLocalPart(email)
	}
	return user
}

// EmailLocalPart returns everything before the first '@'
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
