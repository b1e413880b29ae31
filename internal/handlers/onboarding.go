package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/smartcore/internal/models"
	"github.com/example/smartcore/internal/verification"
)

// OnboardingHandler serves the send-code and verify-code endpoints.
type OnboardingHandler struct {
	engine   *verification.Engine
	validate *validator.Validate
}

// NewOnboardingHandler constructs an OnboardingHandler.
func NewOnboardingHandler(engine *verification.Engine) *OnboardingHandler {
	return &OnboardingHandler{engine: engine, validate: newValidator()}
}

type sendCodeRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Purpose     string `json:"purpose"`
	CompanyCode string `json:"company_code"`
	FullName    string `json:"full_name"`
}

// SendCodeHealth answers GET probes so visiting the endpoint in a browser
// shows something useful.
func (h *OnboardingHandler) SendCodeHealth(c *fiber.Ctx) error {
	return c.SendString("send-code ok (POST required)")
}

// SendCode issues a verification code and emails it to the requester.
func (h *OnboardingHandler) SendCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.CompanyCode = strings.ToUpper(strings.TrimSpace(req.CompanyCode))
	req.FullName = strings.TrimSpace(req.FullName)

	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	purpose, err := models.ParsePurpose(req.Purpose)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if purpose == models.PurposeEmployeeSignup {
		if req.CompanyCode == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing company_code")
		}
		if req.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing full_name")
		}
	}

	if err := h.engine.SendCode(c.Context(), verification.SendRequest{
		Email:       req.Email,
		Purpose:     purpose,
		CompanyCode: req.CompanyCode,
		FullName:    req.FullName,
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

type verifyCodeRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
	Purpose string `json:"purpose"`

	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`

	// Owner signup.
	CompanyName      string   `json:"company_name"`
	CompanySize      string   `json:"company_size"`
	CompanySizeID    string   `json:"company_size_id"`
	CompanySizeLabel string   `json:"company_size_label"`
	CompanySizePrice float64  `json:"company_size_price"`
	ModuleIDs        []string `json:"module_ids"`
	ModulesTotal     float64  `json:"modules_total"`
	TotalMonthly     float64  `json:"total_monthly"`

	// Employee signup.
	CompanyCode string `json:"company_code"`
}

// VerifyCode consumes a pending code and provisions the account in one step.
func (h *OnboardingHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	req.FullName = strings.TrimSpace(req.FullName)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.CompanySize = strings.TrimSpace(req.CompanySize)
	req.CompanyCode = strings.ToUpper(strings.TrimSpace(req.CompanyCode))

	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	purpose, err := models.ParsePurpose(req.Purpose)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	vreq := verification.VerifyRequest{
		Email:   req.Email,
		Code:    req.Code,
		Purpose: purpose,
	}

	switch purpose {
	case models.PurposeEmployeeSignup:
		if req.CompanyCode == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing company_code")
		}
		vreq.Employee = &verification.EmployeeSignup{
			Email:       req.Email,
			Password:    req.Password,
			FullName:    req.FullName,
			CompanyCode: req.CompanyCode,
		}
	default:
		if req.CompanyName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing company_name")
		}
		if req.CompanySize == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing company_size")
		}
		vreq.Owner = &verification.OwnerSignup{
			Email:            req.Email,
			Password:         req.Password,
			FullName:         req.FullName,
			CompanyName:      req.CompanyName,
			CompanySize:      req.CompanySize,
			CompanySizeID:    req.CompanySizeID,
			CompanySizeLabel: req.CompanySizeLabel,
			CompanySizePrice: req.CompanySizePrice,
			ModuleIDs:        req.ModuleIDs,
			ModulesTotal:     req.ModulesTotal,
			TotalMonthly:     req.TotalMonthly,
		}
	}

	account, err := h.engine.Verify(c.Context(), vreq)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":           true,
		"created":      true,
		"user_id":      account.UserID,
		"company_id":   account.CompanyID,
		"company_code": account.CompanyCode,
	})
}
