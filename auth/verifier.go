package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/tonypoem-foundation/site-backend/config"
	"github.com/tonypoem-foundation/site-backend/errs"
)

// Identity is the admin a session belongs to.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
}

// Verifier checks admin credentials. Implementations return an error
// wrapping errs.ErrInvalidCredentials for a bad email or password.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (Identity, error)
}

// NewVerifier selects the verifier named by AUTH_PROVIDER.
func NewVerifier(cfg map[string]string) (Verifier, error) {
	provider := config.GetString(cfg, "AUTH_PROVIDER", "local")
	log.Info().Str("authProvider", provider).Msg("Configuring admin authentication")

	switch provider {
	case "local":
		if err := config.Require(cfg, "ADMIN_EMAIL", "ADMIN_PASSWORD_HASH"); err != nil {
			return nil, err
		}
		return NewLocalVerifier(map[string]string{
			config.GetString(cfg, "ADMIN_EMAIL", ""): config.GetString(cfg, "ADMIN_PASSWORD_HASH", ""),
		}), nil
	case "descope":
		if err := config.Require(cfg, "DESCOPE_PROJECT_ID"); err != nil {
			return nil, err
		}
		return NewDescopeVerifier(config.GetString(cfg, "DESCOPE_PROJECT_ID", ""))
	default:
		return nil, fmt.Errorf("unsupported AUTH_PROVIDER %q", provider)
	}
}

// LocalVerifier checks against bcrypt hashes held in configuration.
type LocalVerifier struct {
	accounts map[string][]byte
}

// dummyHash keeps the cost of an unknown email equal to a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused"), bcrypt.DefaultCost)

// NewLocalVerifier takes email to bcrypt hash pairs. Emails match case
// insensitively.
func NewLocalVerifier(accounts map[string]string) *LocalVerifier {
	v := &LocalVerifier{accounts: make(map[string][]byte, len(accounts))}
	for email, hash := range accounts {
		v.accounts[normalizeEmail(email)] = []byte(hash)
	}
	return v
}

func (v *LocalVerifier) Verify(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)

	hash, ok := v.accounts[email]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Identity{}, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Identity{}, errs.ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("compare password hash: %w", err)
	}
	return Identity{Subject: email, Email: email}, nil
}

// HashPassword produces a value for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// passwordSignIn is the part of the Descope password API the verifier uses.
type passwordSignIn interface {
	SignIn(ctx context.Context, loginID, password string, w http.ResponseWriter) (*descope.AuthenticationInfo, error)
}

// DescopeVerifier delegates password checks to a Descope project.
type DescopeVerifier struct {
	password passwordSignIn
}

func NewDescopeVerifier(projectID string) (*DescopeVerifier, error) {
	descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("error creating Descope client: %w", err)
	}
	return &DescopeVerifier{password: descopeClient.Auth.Password()}, nil
}

func (v *DescopeVerifier) Verify(ctx context.Context, email, password string) (Identity, error) {
	info, err := v.password.SignIn(ctx, normalizeEmail(email), password, nil)
	if err != nil {
		if credentialsRejected(err) {
			return Identity{}, fmt.Errorf("%w: %w", errs.ErrInvalidCredentials, err)
		}
		return Identity{}, fmt.Errorf("descope sign-in: %w", err)
	}

	id := Identity{Subject: normalizeEmail(email), Email: normalizeEmail(email)}
	if info != nil && info.User != nil {
		if info.User.UserID != "" {
			id.Subject = info.User.UserID
		}
		id.Name = info.User.Name
	}
	return id, nil
}

// credentialsRejected reports whether Descope refused the login itself.
// Transport failures, rate limiting and 5xx answers are not rejections.
func credentialsRejected(err error) bool {
	de := descope.AsError(err)
	if de == nil {
		return false
	}
	if de.IsUnauthorized() || de.IsForbidden() || de.IsNotFound() || de.IsBadRequest() {
		return true
	}
	return descope.IsError(err,
		descope.ErrInvalidArguments.Code,
		descope.ErrMissingArguments.Code,
		descope.ErrValidationFailure.Code,
		descope.ErrPasswordExpired.Code,
	)
}
