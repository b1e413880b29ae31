package models

import "time"

// VerificationCode is one row of the signup_codes table. The raw code is never
// stored; only the salted digest lands in CodeHash.
type VerificationCode struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	CodeHash    string     `json:"code_hash"`
	Purpose     Purpose    `json:"purpose"`
	CompanyCode string     `json:"company_code,omitempty"`
	FullName    string     `json:"full_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at"`
}

// Used reports whether the code has already been consumed.
func (c *VerificationCode) Used() bool {
	return c.UsedAt != nil
}

// Expired reports whether the code's validity window has passed at the given
// instant.
func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
