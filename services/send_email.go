package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/config"
)

const defaultResendURL = "https://api.resend.com"

// Email is one outgoing message in the shape the Resend API accepts. From is
// filled in by the Mailer.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sentEmail struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
}

// Mailer sends mail through the Resend API. A Mailer without an API key is
// disabled: Send logs and returns nil.
type Mailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewMailer reads RESEND_API_KEY, RESEND_FROM_EMAIL and, for tests,
// RESEND_BASE_URL.
func NewMailer(cfg map[string]string) *Mailer {
	return &Mailer{
		apiKey:  config.GetString(cfg, "RESEND_API_KEY", ""),
		from:    config.GetString(cfg, "RESEND_FROM_EMAIL", ""),
		baseURL: strings.TrimSuffix(config.GetString(cfg, "RESEND_BASE_URL", defaultResendURL), "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  log.With().Str("component", "mailer").Logger(),
	}
}

func (m *Mailer) Enabled() bool {
	return m.apiKey != "" && m.from != ""
}

// Send delivers email. A disabled Mailer drops it with a warning.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return errors.New("email has no recipients")
	}
	if !m.Enabled() {
		m.logger.Warn().Str("subject", email.Subject).Msg("Mail disabled, dropping message")
		return nil
	}
	email.From = m.from

	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read resend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		reason := strings.TrimSpace(string(body))
		var failure resendError
		if json.Unmarshal(body, &failure) == nil && failure.Message != "" {
			reason = failure.Message
		}
		return fmt.Errorf("resend rejected email (status %d): %s", resp.StatusCode, reason)
	}

	var sent sentEmail
	if err := json.Unmarshal(body, &sent); err != nil {
		m.logger.Warn().Err(err).Msg("Email accepted but response unreadable")
		return nil
	}
	m.logger.Info().Str("emailId", sent.ID).Strs("to", email.To).Msg("Email sent")
	return nil
}
