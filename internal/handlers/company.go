package handlers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/smartcore/internal/supabase"
)

// CompanyHandler serves company settings updates.
type CompanyHandler struct {
	sb       *supabase.Client
	validate *validator.Validate
}

// NewCompanyHandler constructs a CompanyHandler.
func NewCompanyHandler(sb *supabase.Client) *CompanyHandler {
	return &CompanyHandler{sb: sb, validate: newValidator()}
}

type updateCompanyRequest struct {
	CompanyID string `json:"company_id" validate:"required"`

	// Pointer fields distinguish "absent" from "set to empty".
	CompanyName    *string `json:"company_name"`
	Address        *string `json:"address"`
	LogoURL        *string `json:"logo_url"`
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	TextColor      *string `json:"text_color"`
}

// Update applies a whitelisted patch to a company row.
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var req updateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	patch := map[string]any{}
	for key, val := range map[string]*string{
		"company_name":    req.CompanyName,
		"address":         req.Address,
		"logo_url":        req.LogoURL,
		"primary_color":   req.PrimaryColor,
		"secondary_color": req.SecondaryColor,
		"text_color":      req.TextColor,
	} {
		if val != nil {
			patch[key] = *val
		}
	}

	if len(patch) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Nothing to update")
	}

	if err := h.sb.UpdateCompany(c.Context(), req.CompanyID, patch); err != nil {
		return fmt.Errorf("update company failed: %w", err)
	}

	return c.JSON(fiber.Map{"ok": true})
}
