package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/smartcore/internal/mailer"
	"github.com/example/smartcore/internal/middleware"
	"github.com/example/smartcore/internal/models"
	"github.com/example/smartcore/internal/provision"
	"github.com/example/smartcore/internal/supabase"
)

const inviteTTL = 24 * time.Hour

// EmployeeHandler serves the roster endpoints: HR invites, in-app employee
// creation and deletion.
type EmployeeHandler struct {
	sb                *supabase.Client
	mail              *mailer.Mailer
	prov              *provision.Service
	onboardingBaseURL string
	validate          *validator.Validate
	log               zerolog.Logger
}

// NewEmployeeHandler constructs an EmployeeHandler.
func NewEmployeeHandler(sb *supabase.Client, mail *mailer.Mailer, prov *provision.Service, onboardingBaseURL string, log zerolog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		sb:                sb,
		mail:              mail,
		prov:              prov,
		onboardingBaseURL: onboardingBaseURL,
		validate:          newValidator(),
		log:               log.With().Str("component", "employees").Logger(),
	}
}

type inviteEmployeeRequest struct {
	CompanyID   string `json:"company_id" validate:"required"`
	CompanyName string `json:"company_name"`
	FullName    string `json:"full_name" validate:"required"`

	// email is accepted as a legacy alias for personal_email.
	Email         string `json:"email"`
	PersonalEmail string `json:"personal_email"`
	WorkEmail     string `json:"work_email" validate:"required,email"`

	JobTitle       string `json:"job_title" validate:"required"`
	IsAdmin        bool   `json:"is_admin"`
	Status         string `json:"status"`
	EmploymentType string `json:"employment_type"`
	NoticePeriod   string `json:"notice_period"`
	StartDate      string `json:"start_date"`
	EmployeeCode   string `json:"employee_code" validate:"required"`
}

// Invite creates a roster row for a new hire and emails their personal
// address an invite link that lets them set a password for the work email.
func (h *EmployeeHandler) Invite(c *fiber.Ctx) error {
	var req inviteEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	personalEmail := strings.ToLower(strings.TrimSpace(req.PersonalEmail))
	if personalEmail == "" {
		personalEmail = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if personalEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing personal_email")
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(inviteTTL)

	err := h.sb.InsertEmployee(c.Context(), map[string]any{
		"company_id":         req.CompanyID,
		"full_name":          req.FullName,
		"personal_email":     personalEmail,
		"work_email":         strings.ToLower(strings.TrimSpace(req.WorkEmail)),
		"job_title":          req.JobTitle,
		"is_admin":           req.IsAdmin,
		"status":             models.ParseEmployeeStatus(req.Status),
		"employment_type":    nullable(req.EmploymentType),
		"notice_period":      nullable(req.NoticePeriod),
		"start_date":         nullable(req.StartDate),
		"employee_code":      req.EmployeeCode,
		"onboarding_token":   token,
		"onboarding_expires": expiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("employee insert failed: %w", err)
	}

	redirectTo := fmt.Sprintf("%s?token=%s", h.onboardingBaseURL, url.QueryEscape(token))
	inviteLink, err := h.sb.GenerateInviteLink(c.Context(), req.WorkEmail, redirectTo)
	if err != nil {
		return fmt.Errorf("generate invite link failed: %w", err)
	}

	if err := h.mail.SendEmployeeInvite(c.Context(), personalEmail, req.FullName, req.CompanyName, inviteLink); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

type appEmployeeRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	JobTitle    string `json:"job_title"`
	JobCategory string `json:"job_category"`
}

// Create adds an employee to the caller's company roster from inside the app.
// Requires a bearer token; enforces the plan's employee limit.
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid session")
	}

	var req appEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	profile, err := h.sb.ProfileByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "No company linked to this user.")
		}
		return err
	}
	if profile.CompanyID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "No company linked to this user.")
	}

	company, err := h.sb.CompanyByID(c.Context(), profile.CompanyID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Company not found.")
		}
		return err
	}

	existing, err := h.sb.EmployeesByCompany(c.Context(), company.ID)
	if err != nil {
		return err
	}
	if company.MaxEmployees != nil && *company.MaxEmployees > 0 && len(existing) >= *company.MaxEmployees {
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("Employee limit reached (%d/%d). Please upgrade your plan to add more employees.", len(existing), *company.MaxEmployees))
	}

	rosterID, err := h.prov.NewRosterID(c.Context(), company.ID, company.CompanyName)
	if err != nil {
		return err
	}

	if err := h.sb.InsertEmployee(c.Context(), map[string]any{
		"company_id":   company.ID,
		"full_name":    req.FullName,
		"job_title":    req.JobTitle,
		"job_category": req.JobCategory,
		"employee_id":  rosterID,
		"is_admin":     false,
	}); err != nil {
		return fmt.Errorf("employee insert failed: %w", err)
	}

	employees, err := h.sb.EmployeesByCompany(c.Context(), company.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"company":   company,
		"employees": employees,
	})
}

type deleteEmployeeRequest struct {
	CompanyID  string `json:"company_id" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
}

// Delete removes a roster row and, when the employee had completed signup,
// best-effort cleans up the linked profile and auth identity.
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	var req deleteEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	emp, err := h.sb.EmployeeByID(c.Context(), req.CompanyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Employee not found.")
		}
		return fmt.Errorf("fetch employee failed: %w", err)
	}

	if err := h.sb.DeleteEmployee(c.Context(), req.CompanyID, req.EmployeeID); err != nil {
		return fmt.Errorf("delete employee failed: %w", err)
	}

	if emp.UserID != "" {
		if err := h.sb.DeleteProfileByUser(c.Context(), emp.UserID); err != nil {
			h.log.Warn().Err(err).Str("user_id", emp.UserID).Msg("profile cleanup failed after employee delete")
		}
		if err := h.sb.DeleteUser(c.Context(), emp.UserID); err != nil {
			h.log.Warn().Err(err).Str("user_id", emp.UserID).Msg("auth identity cleanup failed after employee delete")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
