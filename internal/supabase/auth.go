package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUserExists signals that the auth backend already holds an identity for
// the email. Callers surface this as "already registered" rather than a
// generic failure.
var ErrUserExists = errors.New("supabase: user already registered")

// CreateUser provisions an auth identity via the admin API. The email is
// confirmed immediately because the caller has already proven control of the
// mailbox through a verification code.
func (c *Client) CreateUser(ctx context.Context, email, password, fullName string) (string, error) {
	payload := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]any{"full_name": fullName},
	}

	var created struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/admin/users",
		body:   payload,
		out:    &created,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isDuplicateUser(apiErr) {
			return "", fmt.Errorf("%w: %s", ErrUserExists, apiErr.Body)
		}
		return "", err
	}
	if created.ID == "" {
		return "", errors.New("supabase: create user returned no id")
	}
	return created.ID, nil
}

func isDuplicateUser(e *APIError) bool {
	if e.Status == http.StatusUnprocessableEntity || e.Status == http.StatusConflict {
		return true
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "already been registered") || strings.Contains(body, "email_exists")
}

// DeleteUser removes an auth identity via the admin API.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/auth/v1/admin/users/" + userID,
	})
}

// GenerateInviteLink asks the auth backend for a one-time invite action link
// that lets the recipient set a password, landing on redirectTo afterwards.
func (c *Client) GenerateInviteLink(ctx context.Context, email, redirectTo string) (string, error) {
	payload := map[string]any{
		"type":    "invite",
		"email":   email,
		"options": map[string]any{"redirectTo": redirectTo},
	}

	var link struct {
		ActionLink string `json:"action_link"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/admin/generate_link",
		body:   payload,
		out:    &link,
	})
	if err != nil {
		return "", err
	}
	if link.ActionLink == "" {
		return "", errors.New("supabase: generate_link returned no action_link")
	}
	return link.ActionLink, nil
}

// UserFromToken resolves a caller-supplied access token to its user id using
// the public credential, mirroring what the browser client is allowed to do.
func (c *Client) UserFromToken(ctx context.Context, accessToken string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		apikey: c.anonKey,
		bearer: accessToken,
		out:    &user,
	})
	if err != nil {
		return "", err
	}
	if user.ID == "" {
		return "", errors.New("supabase: token resolved to no user")
	}
	return user.ID, nil
}
