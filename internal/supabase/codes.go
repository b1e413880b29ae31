package supabase

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/example/smartcore/internal/models"
)

const codesTable = "/rest/v1/signup_codes"

type codeInsert struct {
	Email       string  `json:"email"`
	CodeHash    string  `json:"code_hash"`
	Purpose     string  `json:"purpose"`
	CompanyCode *string `json:"company_code"`
	FullName    *string `json:"full_name,omitempty"`
	ExpiresAt   string  `json:"expires_at"`
}

// InsertCode stores a freshly issued verification code row. Only the digest of
// the code travels here; id and created_at are assigned by the backend.
func (c *Client) InsertCode(ctx context.Context, rec models.VerificationCode) error {
	row := codeInsert{
		Email:     rec.Email,
		CodeHash:  rec.CodeHash,
		Purpose:   rec.Purpose.String(),
		ExpiresAt: rec.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if rec.CompanyCode != "" {
		row.CompanyCode = &rec.CompanyCode
	}
	if rec.FullName != "" {
		row.FullName = &rec.FullName
	}

	return c.do(ctx, request{
		method: http.MethodPost,
		path:   codesTable,
		body:   []codeInsert{row},
		prefer: "return=minimal",
	})
}

// LatestCode returns the most recently created code row for the given email
// and purpose, additionally scoped to a company code when one is supplied.
// Returns ErrNotFound when no row matches.
func (c *Client) LatestCode(ctx context.Context, email string, purpose models.Purpose, companyCode string) (*models.VerificationCode, error) {
	q := url.Values{}
	q.Set("select", "id,email,code_hash,purpose,company_code,full_name,expires_at,used_at,created_at")
	q.Set("email", eq(email))
	q.Set("purpose", eq(purpose.String()))
	if companyCode != "" {
		q.Set("company_code", eq(companyCode))
	}
	q.Set("order", "created_at.desc")
	q.Set("limit", "1")

	var rows []models.VerificationCode
	if err := c.do(ctx, request{method: http.MethodGet, path: codesTable, query: q, out: &rows}); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// MarkCodeUsed stamps used_at on the code row, consuming it.
func (c *Client) MarkCodeUsed(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", eq(id))

	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   codesTable,
		query:  q,
		body:   map[string]any{"used_at": time.Now().UTC().Format(time.RFC3339)},
		prefer: "return=minimal",
	})
}

// ResetCodeUnused clears used_at again. Used as a best-effort rollback when
// provisioning fails after a code was consumed.
func (c *Client) ResetCodeUnused(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", eq(id))

	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   codesTable,
		query:  q,
		body:   map[string]any{"used_at": nil},
		prefer: "return=minimal",
	})
}

// DeleteUnusedCodes removes any still-pending codes for the email and purpose.
func (c *Client) DeleteUnusedCodes(ctx context.Context, email string, purpose models.Purpose) error {
	q := url.Values{}
	q.Set("email", eq(email))
	q.Set("purpose", eq(purpose.String()))
	q.Set("used_at", "is.null")

	return c.do(ctx, request{method: http.MethodDelete, path: codesTable, query: q})
}
