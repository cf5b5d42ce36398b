package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/errs"
)

const DefaultSessionTTL = 12 * time.Hour

// Session is a signed-in admin. Token is the bearer token handed to clients.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type EventKind string

const (
	SignedIn  EventKind = "signedIn"
	SignedOut EventKind = "signedOut"
)

// Event is delivered to subscribers on every sign-in and sign-out.
type Event struct {
	Kind    EventKind
	Session Session
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Sessions is the admin session context. It is created once and passed to
// whatever needs to know who is signed in.
type Sessions struct {
	verifier Verifier
	secret   []byte
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	mu          sync.Mutex
	revoked     map[string]time.Time // session id -> token expiry
	subscribers map[uint64]func(Event)
	nextSub     uint64
}

func NewSessions(verifier Verifier, secret []byte, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		verifier:    verifier,
		secret:      secret,
		ttl:         ttl,
		logger:      log.With().Str("component", "sessions").Logger(),
		now:         time.Now,
		revoked:     make(map[string]time.Time),
		subscribers: make(map[uint64]func(Event)),
	}
}

// SignIn verifies the credentials and issues a session. Bad credentials
// return an auth error and no session.
func (s *Sessions) SignIn(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, errs.NewAuthError("Email and password are required.")
	}

	identity, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errs.IsAuthError(err) {
			s.logger.Info().Str("email", email).Msg("Rejected admin sign-in")
			return Session{}, errs.NewAuthErrorWithCause("", err)
		}
		return Session{}, errs.NewInternalErrorWithCause("failed to verify credentials", err)
	}

	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	session.Token, err = token.SignedString(s.secret)
	if err != nil {
		return Session{}, errs.NewInternalErrorWithCause("failed to sign session token", err)
	}

	s.logger.Info().Str("sessionID", session.ID).Str("subject", identity.Subject).Msg("Admin signed in")
	s.publish(Event{Kind: SignedIn, Session: session})
	return session, nil
}

// Validate parses a bearer token and rejects expired, forged and signed-out
// tokens.
func (s *Sessions) Validate(token string) (Session, error) {
	if token == "" {
		return Session{}, errs.NewMissingTokenError()
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Session{}, errs.NewExpiredTokenError()
	case err != nil:
		return Session{}, errs.NewInvalidTokenError()
	}

	s.mu.Lock()
	_, revoked := s.revoked[c.ID]
	s.mu.Unlock()
	if revoked {
		return Session{}, errs.NewInvalidTokenError()
	}

	return Session{
		ID:        c.ID,
		Token:     token,
		Identity:  Identity{Subject: c.Subject, Email: c.Email, Name: c.Name},
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session behind token. Signing out twice is an error
// because the second token no longer validates.
func (s *Sessions) SignOut(token string) error {
	session, err := s.Validate(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pruneLocked()
	s.revoked[session.ID] = session.ExpiresAt
	s.mu.Unlock()

	s.logger.Info().Str("sessionID", session.ID).Msg("Admin signed out")
	s.publish(Event{Kind: SignedOut, Session: session})
	return nil
}

// Subscribe registers fn for session changes and returns a func that
// removes it.
func (s *Sessions) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Sessions) publish(e Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// pruneLocked forgets revocations whose tokens have expired anyway.
func (s *Sessions) pruneLocked() {
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
}
