// Package provision creates the durable account records that follow a
// successful verification: an auth identity plus company, profile,
// subscription or roster-link rows. The external writes are sequential and
// not transactional; every failed step logs enough context for an operator to
// reconcile the rows created before it.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/smartcore/internal/models"
	"github.com/example/smartcore/internal/supabase"
	"github.com/example/smartcore/internal/verification"
)

// Store is the slice of backend operations provisioning needs.
type Store interface {
	CompanyByCode(ctx context.Context, code string) (*models.Company, error)
	CompanyCodeExists(ctx context.Context, code string) (bool, error)
	InsertCompany(ctx context.Context, company models.Company) (*models.Company, error)
	InsertProfile(ctx context.Context, profile models.Profile) error
	InsertSubscription(ctx context.Context, sub models.Subscription) error
	EmployeeByName(ctx context.Context, companyID, fullName string) (*models.Employee, error)
	EmployeeRosterIDExists(ctx context.Context, companyID, rosterID string) (bool, error)
	LinkEmployeeUser(ctx context.Context, employeeRowID, userID string) error
}

// AuthAdmin creates and removes auth identities.
type AuthAdmin interface {
	CreateUser(ctx context.Context, email, password, fullName string) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Service implements verification.Provisioner against the hosted backend.
type Service struct {
	store Store
	auth  AuthAdmin
	log   zerolog.Logger
	now   func() time.Time
}

// New constructs the provisioning service.
func New(store Store, auth AuthAdmin, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		auth:  auth,
		log:   log.With().Str("component", "provision").Logger(),
		now:   time.Now,
	}
}

// ProvisionOwner runs the owner saga: auth identity, company (with a freshly
// generated unique company code), owner profile, subscription. A failure
// partway leaves the earlier rows in place; the step log is the trail for
// manual replay of the remaining steps.
func (s *Service) ProvisionOwner(ctx context.Context, req verification.OwnerSignup) (*verification.Account, error) {
	userID, err := s.createUser(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	companyCode, err := s.uniqueCompanyCode(ctx, req.CompanyName)
	if err != nil {
		s.failStep("generate_company_code", userID, "", err)
		return nil, fmt.Errorf("generate company code: %w", err)
	}

	company, err := s.store.InsertCompany(ctx, models.Company{
		CompanyName: req.CompanyName,
		OwnerUserID: userID,
		CompanyCode: companyCode,
		CompanySize: req.CompanySize,
	})
	if err != nil {
		s.failStep("create_company", userID, "", err)
		return nil, fmt.Errorf("create company: %w", err)
	}

	if err := s.store.InsertProfile(ctx, models.Profile{
		UserID:      userID,
		Email:       req.Email,
		CompanyID:   company.ID,
		CompanyName: req.CompanyName,
		FullName:    req.FullName,
		Role:        models.RoleOwner,
		IsAdmin:     true,
	}); err != nil {
		s.failStep("create_profile", userID, company.ID, err)
		return nil, fmt.Errorf("create profile: %w", err)
	}

	sizeID := req.CompanySizeID
	if sizeID == "" {
		sizeID = req.CompanySize
	}
	sizeLabel := req.CompanySizeLabel
	if sizeLabel == "" {
		sizeLabel = req.CompanySize
	}
	moduleIDs := req.ModuleIDs
	if moduleIDs == nil {
		moduleIDs = []string{}
	}

	if err := s.store.InsertSubscription(ctx, models.Subscription{
		UserID:            userID,
		CompanySizeID:     sizeID,
		CompanySizeLabel:  sizeLabel,
		CompanySizePrice:  req.CompanySizePrice,
		SelectedModules:   moduleIDs,
		SelectedModuleIDs: moduleIDs,
		ModulesTotal:      req.ModulesTotal,
		TotalMonthly:      req.TotalMonthly,
		Currency:          "GBP",
		Status:            "active",
	}); err != nil {
		s.failStep("create_subscription", userID, company.ID, err)
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	return &verification.Account{
		UserID:      userID,
		CompanyID:   company.ID,
		CompanyCode: company.CompanyCode,
	}, nil
}

// ProvisionEmployee runs the employee saga: auth identity, company lookup,
// roster match, employee profile, and a best-effort link of the roster row to
// the new identity.
func (s *Service) ProvisionEmployee(ctx context.Context, req verification.EmployeeSignup) (*verification.Account, error) {
	userID, err := s.createUser(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	company, err := s.store.CompanyByCode(ctx, req.CompanyCode)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			s.failStep("resolve_company", userID, "", err)
			return nil, verification.ErrRosterNotFound
		}
		return nil, fmt.Errorf("resolve company: %w", err)
	}

	employee, err := s.store.EmployeeByName(ctx, company.ID, req.FullName)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			s.failStep("resolve_roster_entry", userID, company.ID, err)
			return nil, verification.ErrRosterNotFound
		}
		return nil, fmt.Errorf("resolve roster entry: %w", err)
	}

	if err := s.store.InsertProfile(ctx, models.Profile{
		UserID:      userID,
		Email:       req.Email,
		CompanyID:   company.ID,
		CompanyName: company.CompanyName,
		FullName:    req.FullName,
		Role:        models.RoleEmployee,
		IsAdmin:     false,
	}); err != nil {
		s.failStep("create_profile", userID, company.ID, err)
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if err := s.store.LinkEmployeeUser(ctx, employee.ID, userID); err != nil {
		// The account is functional without the link; leave it to reconciliation.
		s.log.Warn().Err(err).Str("employee_row", employee.ID).Str("user_id", userID).Msg("failed to link roster entry to new identity")
	}

	return &verification.Account{
		UserID:      userID,
		CompanyID:   company.ID,
		CompanyCode: company.CompanyCode,
	}, nil
}

func (s *Service) createUser(ctx context.Context, email, password, fullName string) (string, error) {
	userID, err := s.auth.CreateUser(ctx, email, password, fullName)
	if err != nil {
		if errors.Is(err, supabase.ErrUserExists) {
			return "", verification.ErrEmailRegistered
		}
		return "", fmt.Errorf("create auth user: %w", err)
	}
	return userID, nil
}

// failStep records a saga step failure with enough context to replay the
// remaining steps by hand. Earlier writes are never rolled back here.
func (s *Service) failStep(step, userID, companyID string, err error) {
	evt := s.log.Error().Err(err).Str("step", step).Str("user_id", userID)
	if companyID != "" {
		evt = evt.Str("company_id", companyID)
	}
	evt.Msg("provisioning step failed; earlier rows remain and need manual reconciliation")
}
