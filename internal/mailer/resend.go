package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Mailer submits transactional email through the Resend API.
type Mailer struct {
	apiKey   string
	from     string
	endpoint string
	httpc    *http.Client
	log      zerolog.Logger
}

// New constructs a Mailer. from must be a sender verified with the provider.
func New(apiKey, from string, log zerolog.Logger) *Mailer {
	return NewWithEndpoint(apiKey, from, defaultEndpoint, log)
}

// NewWithEndpoint constructs a Mailer against a non-default API endpoint.
func NewWithEndpoint(apiKey, from, endpoint string, log zerolog.Logger) *Mailer {
	return &Mailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		log:      log.With().Str("component", "mailer").Logger(),
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendHTML dispatches a single HTML email. A provider rejection is returned to
// the caller; delivery beyond acceptance is the provider's problem.
func (m *Mailer) SendHTML(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		m.log.Error().Int("status", resp.StatusCode).Str("to", to).Msg("email provider rejected message")
		return fmt.Errorf("email provider rejected message: status %d: %s", resp.StatusCode, string(body))
	}

	m.log.Info().Str("to", to).Str("subject", subject).Msg("email accepted by provider")
	return nil
}
