package session

import "ai-agent-character-demo/client/internal/models"

// State is the position in the session lifecycle
type State int

const (
	Uninitialized State = iota
	Resolving
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent view of the session at one instant
type Snapshot struct {
	State           State        `json:"state"`
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
	IsLoading       bool         `json:"is_loading"`
}

// Navigation targets
const (
	PathCharacters = "/characters"
	PathLogin      = "/login"
)

// User-visible messages
const (
	MsgLoginSuccess  = "Login successful"
	MsgLoginFailed   = "Login failed. Please check your credentials."
	MsgSignupSuccess = "Signup successful! Please login."
	MsgSignupFailed  = "Signup failed. Please try again."
	MsgLoggedOut     = "You have been logged out"
)

// Navigator moves the attached front end to another view
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

// Navigate calls f
func (f NavigatorFunc) Navigate(path string) { f(path) }

type noNavigation struct{}

func (noNavigation) Navigate(string) {}
