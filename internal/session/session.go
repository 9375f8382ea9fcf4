// Package session owns the process-wide authentication state and keeps it
// in step with the persisted token and user.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/storage"
	"ai-agent-character-demo/client/pkg/jwt"
	"ai-agent-character-demo/client/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrAuthExpired means a persisted token no longer resolves to a user
var ErrAuthExpired = errors.New("session expired")

// Authenticator is the slice of the auth API the session drives
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Signup(ctx context.Context, name, email, username, password string) (json.RawMessage, error)
	Logout(ctx context.Context) error
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

// Store holds the single session instance. Transitions are serialized, so
// overlapping login, logout and init calls apply one after another and each
// writes or clears the complete token and user pair.
type Store struct {
	auth     Authenticator
	storage  storage.Store
	notifier notify.Notifier
	nav      Navigator
	log      *logger.Logger
	now      func() time.Time

	transitions metric.Int64Counter

	// transition serializes Init, Login, Signup and Logout
	transition chan struct{}

	mu      sync.RWMutex
	state   State
	user    *models.User
	loading bool
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the session logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMeterProvider sets where transition counts are reported
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Store) { s.transitions = newTransitionCounter(mp) }
}

// WithClock overrides the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session in the Uninitialized state. nav may be nil.
func NewStore(auth Authenticator, store storage.Store, notifier notify.Notifier, nav Navigator, opts ...Option) *Store {
	if nav == nil {
		nav = noNavigation{}
	}
	s := &Store{
		auth:       auth,
		storage:    store,
		notifier:   notifier,
		nav:        nav,
		log:        logger.GetGlobal(),
		now:        time.Now,
		transition: make(chan struct{}, 1),
		state:      Uninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transitions == nil {
		s.transitions = newTransitionCounter(otel.GetMeterProvider())
	}
	s.log = s.log.WithComponent("session")
	return s
}

func newTransitionCounter(mp metric.MeterProvider) metric.Int64Counter {
	counter, err := mp.Meter("ai-agent-character-demo/client/session").Int64Counter(
		"session.transitions",
		metric.WithDescription("Session state changes by target state."),
	)
	if err != nil {
		logger.GetGlobal().LogError(err, "failed to create session transition counter")
	}
	return counter
}

// Init resolves a persisted token into a user. Any failure to resolve
// purges the persisted pair and leaves the session Unauthenticated; the
// returned error only reports a purge or persist failure.
func (s *Store) Init(ctx context.Context) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.end()

	token, ok, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		s.log.LogError(err, "failed to read persisted token")
	}
	if !ok || token == "" {
		s.set(Unauthenticated, nil, false)
		return nil
	}

	s.set(Resolving, nil, true)

	if claims, err := jwt.CheckExpiry(token, s.now()); errors.Is(err, jwt.ErrExpiredToken) {
		exp, _ := claims.Expiry()
		s.log.Info("persisted token is past its expiry, backend will decide", "expired_at", exp)
	}

	user, err := s.auth.GetCurrentUser(ctx)
	if err == nil && user == nil {
		err = ErrAuthExpired
	}
	if err != nil {
		s.log.Info("persisted session could not be resolved", "error", err.Error())
		purgeErr := s.auth.Logout(ctx)
		s.set(Unauthenticated, nil, false)
		return purgeErr
	}

	if err := saveUser(ctx, s.storage, user); err != nil {
		s.log.LogError(err, "failed to refresh cached user")
		purgeErr := s.auth.Logout(ctx)
		s.set(Unauthenticated, nil, false)
		return errors.Join(err, purgeErr)
	}

	s.set(Authenticated, user, false)
	return nil
}

// Login exchanges credentials and, on success, authenticates the session,
// notifies and navigates to the characters view. Failures are notified and
// leave the state unchanged; the result reports which happened.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	if err := s.begin(ctx); err != nil {
		return false
	}
	defer s.end()

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login failed", "error", err.Error())
		s.notifier.Error(MsgLoginFailed)
		return false
	}

	user := models.UserFromLogin(email, resp)
	if err := saveUser(ctx, s.storage, &user); err != nil {
		s.log.LogError(err, "failed to persist user after login")
		// the token was already written; never leave half a pair behind
		if purgeErr := s.auth.Logout(ctx); purgeErr != nil {
			s.log.LogError(purgeErr, "failed to purge token after login failure")
		}
		s.notifier.Error(MsgLoginFailed)
		return false
	}

	s.set(Authenticated, &user, true)
	s.notifier.Success(MsgLoginSuccess)
	s.nav.Navigate(PathCharacters)
	return true
}

// Signup registers an account without touching the session state
func (s *Store) Signup(ctx context.Context, name, email, username, password string) bool {
	if err := s.begin(ctx); err != nil {
		return false
	}
	defer s.end()

	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.auth.Signup(ctx, name, email, username, password); err != nil {
		s.log.Info("signup failed", "error", err.Error())
		s.notifier.Error(MsgSignupFailed)
		return false
	}

	s.notifier.Success(MsgSignupSuccess)
	s.nav.Navigate(PathLogin)
	return true
}

// Logout purges the persisted pair and ends the session from any state.
// The returned error only reports a storage failure; the session is
// Unauthenticated either way.
func (s *Store) Logout(ctx context.Context) error {
	// logout is never refused, even when the caller's context is done
	ctx = context.WithoutCancel(ctx)
	s.transition <- struct{}{}
	defer s.end()

	err := s.auth.Logout(ctx)
	if err != nil {
		s.log.LogError(err, "failed to purge persisted session")
	}

	s.set(Unauthenticated, nil, false)
	s.notifier.Info(MsgLoggedOut)
	s.nav.Navigate(PathLogin)
	return err
}

// State returns the current lifecycle state
func (s *Store) State() State {
	return s.Snapshot().State
}

// User returns the authenticated user, or nil
func (s *Store) User() *models.User {
	return s.Snapshot().User
}

// IsAuthenticated is true iff the state is Authenticated
func (s *Store) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// IsLoading is true while a persisted token is resolved and while login or
// signup is in progress
func (s *Store) IsLoading() bool {
	return s.Snapshot().IsLoading
}

// Snapshot returns state, user and loading flag read together
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:           s.state,
		IsAuthenticated: s.state == Authenticated,
		IsLoading:       s.loading,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// begin waits for any running transition to finish
func (s *Store) begin(ctx context.Context) error {
	select {
	case s.transition <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) end() {
	<-s.transition
}

func (s *Store) set(state State, user *models.User, loading bool) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.user = user
	s.loading = loading
	s.mu.Unlock()

	if prev != state {
		s.log.Debug("session transition", "from", prev.String(), "to", state.String())
		if s.transitions != nil {
			s.transitions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("to", state.String())))
		}
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}
