package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/smartcore/internal/models"
	"github.com/example/smartcore/internal/supabase"
)

// User-correctable failures. The messages are shown verbatim to the caller.
var (
	ErrCodeNotFound  = errors.New("Code not found. Please request a new code.")
	ErrCodeUsed      = errors.New("That code has already been used. Please request a new one.")
	ErrCodeExpired   = errors.New("That code has expired. Please request a new one.")
	ErrCodeIncorrect = errors.New("Incorrect code. Please try again.")

	// ErrRosterNotFound deliberately covers both a bad company code and an
	// unknown name so callers cannot probe which companies or employees exist.
	ErrRosterNotFound = errors.New("We couldn't match your details. Please check your company code and name, or contact your admin.")

	// ErrEmailRegistered surfaces the duplicate-identity case distinctly so the
	// UI can steer the user to sign in instead.
	ErrEmailRegistered = errors.New("An account with this email already exists. Try signing in instead.")

	// ErrConfig means the server-side code secret is unset. Mapped to a 500.
	ErrConfig = errors.New("server misconfigured: verification code secret is not set")
)

// CodeStore persists verification-code rows in the external backend.
type CodeStore interface {
	InsertCode(ctx context.Context, rec models.VerificationCode) error
	LatestCode(ctx context.Context, email string, purpose models.Purpose, companyCode string) (*models.VerificationCode, error)
	MarkCodeUsed(ctx context.Context, id string) error
	ResetCodeUnused(ctx context.Context, id string) error
	DeleteUnusedCodes(ctx context.Context, email string, purpose models.Purpose) error
}

// Directory resolves companies and roster entries for the employee flow.
type Directory interface {
	CompanyByCode(ctx context.Context, code string) (*models.Company, error)
	EmployeeByName(ctx context.Context, companyID, fullName string) (*models.Employee, error)
}

// CodeSender dispatches the raw code to the recipient.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, to string, purpose models.Purpose, code string) error
}

// Account identifies the records created by a successful verification.
type Account struct {
	UserID      string
	CompanyID   string
	CompanyCode string
}

// OwnerSignup carries everything needed to provision a company owner.
type OwnerSignup struct {
	Email            string
	Password         string
	FullName         string
	CompanyName      string
	CompanySize      string
	CompanySizeID    string
	CompanySizeLabel string
	CompanySizePrice float64
	ModuleIDs        []string
	ModulesTotal     float64
	TotalMonthly     float64
}

// EmployeeSignup carries everything needed to join an employee to an existing
// company.
type EmployeeSignup struct {
	Email       string
	Password    string
	FullName    string
	CompanyCode string
}

// Provisioner creates the durable account records after a code is consumed.
type Provisioner interface {
	ProvisionOwner(ctx context.Context, req OwnerSignup) (*Account, error)
	ProvisionEmployee(ctx context.Context, req EmployeeSignup) (*Account, error)
}

// Engine orchestrates the verification-code lifecycle: send issues and stores
// a hashed code, Verify validates and consumes it exactly once and then
// triggers account provisioning.
type Engine struct {
	store  CodeStore
	dir    Directory
	sender CodeSender
	prov   Provisioner
	salt   string
	ttl    time.Duration
	log    zerolog.Logger

	now func() time.Time
}

// NewEngine wires the engine with its collaborators. salt is the server-side
// secret mixed into code digests; ttl is the code validity window.
func NewEngine(store CodeStore, dir Directory, sender CodeSender, prov Provisioner, salt string, ttl time.Duration, log zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		dir:    dir,
		sender: sender,
		prov:   prov,
		salt:   salt,
		ttl:    ttl,
		log:    log.With().Str("component", "verification").Logger(),
		now:    time.Now,
	}
}

// SendRequest is a normalized "send code" command. Email must already be
// trimmed and lower-cased, CompanyCode upper-cased.
type SendRequest struct {
	Email       string
	Purpose     models.Purpose
	CompanyCode string
	FullName    string
}

// SendCode issues a fresh code for (email, purpose), stores its digest and
// emails the raw code. For the employee flow the company and roster entry are
// resolved first so no code is ever issued against an unknown company; both
// lookup misses return the same generic error.
//
// If the email dispatch fails after the row was stored, the pending code stays
// valid for its window; delivery is at-least-attempted, never rolled back.
func (e *Engine) SendCode(ctx context.Context, req SendRequest) error {
	if e.salt == "" {
		return ErrConfig
	}

	if req.Purpose == models.PurposeEmployeeSignup {
		company, err := e.dir.CompanyByCode(ctx, req.CompanyCode)
		if err != nil {
			return e.rosterErr(err)
		}
		if _, err := e.dir.EmployeeByName(ctx, company.ID, req.FullName); err != nil {
			return e.rosterErr(err)
		}
	}

	code, expiresAt, err := GenerateCode(e.ttl)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	rec := models.VerificationCode{
		Email:       req.Email,
		CodeHash:    HashCode(code, e.salt),
		Purpose:     req.Purpose,
		CompanyCode: req.CompanyCode,
		FullName:    req.FullName,
		ExpiresAt:   expiresAt,
	}
	if err := e.store.InsertCode(ctx, rec); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if err := e.sender.SendVerificationCode(ctx, req.Email, req.Purpose, code); err != nil {
		return fmt.Errorf("send code email: %w", err)
	}

	e.log.Info().Str("email", req.Email).Str("purpose", req.Purpose.String()).Msg("verification code issued")
	return nil
}

// VerifyRequest is a normalized "verify code" command. Exactly one of Owner or
// Employee is set, matching Purpose.
type VerifyRequest struct {
	Email    string
	Code     string
	Purpose  models.Purpose
	Owner    *OwnerSignup
	Employee *EmployeeSignup
}

// Verify consumes a pending code and provisions the account in one phase.
//
// The code row is marked used before provisioning starts: two concurrent
// verifies race on that write, and marking early keeps the double-provision
// window as small as the backend allows (this is a best-effort lock, not a
// transactional guarantee). If provisioning then fails, the engine attempts to
// un-use the code so the caller may retry, tolerating a failed reset silently.
func (e *Engine) Verify(ctx context.Context, req VerifyRequest) (*Account, error) {
	if e.salt == "" {
		return nil, ErrConfig
	}

	companyCode := ""
	switch req.Purpose {
	case models.PurposeEmployeeSignup:
		if req.Employee == nil {
			return nil, fmt.Errorf("verify request missing employee payload")
		}
		companyCode = req.Employee.CompanyCode
	default:
		if req.Owner == nil {
			return nil, fmt.Errorf("verify request missing owner payload")
		}
	}

	row, err := e.store.LatestCode(ctx, req.Email, req.Purpose, companyCode)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("look up code: %w", err)
	}

	switch {
	case row.Used():
		return nil, ErrCodeUsed
	case row.Expired(e.now()):
		return nil, ErrCodeExpired
	case row.CodeHash != HashCode(req.Code, e.salt):
		return nil, ErrCodeIncorrect
	}

	if err := e.store.MarkCodeUsed(ctx, row.ID); err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}

	var account *Account
	switch req.Purpose {
	case models.PurposeEmployeeSignup:
		account, err = e.prov.ProvisionEmployee(ctx, *req.Employee)
	default:
		account, err = e.prov.ProvisionOwner(ctx, *req.Owner)
	}
	if err != nil {
		// Give the code back so the user can retry with the same email.
		if resetErr := e.store.ResetCodeUnused(ctx, row.ID); resetErr != nil {
			e.log.Error().Err(resetErr).Str("code_id", row.ID).Msg("failed to un-use code after provisioning failure")
		}
		return nil, err
	}

	e.cleanupCodes(req.Email, req.Purpose)

	e.log.Info().Str("email", req.Email).Str("purpose", req.Purpose.String()).Str("user_id", account.UserID).Msg("verification consumed, account provisioned")
	return account, nil
}

// cleanupCodes deletes any remaining pending codes for the pair. Detached:
// runs on its own context and only ever logs.
func (e *Engine) cleanupCodes(email string, purpose models.Purpose) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.store.DeleteUnusedCodes(ctx, email, purpose); err != nil {
			e.log.Warn().Err(err).Str("email", email).Msg("stale code cleanup failed")
		}
	}()
}

func (e *Engine) rosterErr(err error) error {
	if errors.Is(err, supabase.ErrNotFound) {
		return ErrRosterNotFound
	}
	return fmt.Errorf("resolve roster: %w", err)
}
