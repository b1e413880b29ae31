package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/smartcore/internal/verification"
)

// ErrorHandler renders every error escaping a handler as the JSON envelope
// {ok:false, error:<message>} with a status from the error taxonomy:
// explicit fiber errors keep their code, user-correctable verification
// failures are 400, everything else (store, auth, delivery, config) is 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case errors.Is(err, verification.ErrCodeNotFound),
		errors.Is(err, verification.ErrCodeUsed),
		errors.Is(err, verification.ErrCodeExpired),
		errors.Is(err, verification.ErrCodeIncorrect),
		errors.Is(err, verification.ErrRosterNotFound),
		errors.Is(err, verification.ErrEmailRegistered):
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{"ok": false, "error": err.Error()})
}

// newValidator builds a validator that reports fields by their json names so
// validation messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns the first field error into the user-facing message.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Invalid request body"
	}

	fe := ve[0]
	switch {
	case fe.Field() == "code":
		return "Missing 6-digit code"
	case fe.Field() == "password":
		return "Password must be at least 8 characters"
	case fe.Tag() == "required":
		return "Missing " + fe.Field()
	case fe.Tag() == "email":
		return "Invalid email address"
	default:
		return "Invalid " + fe.Field()
	}
}

// nullable maps empty optional strings to SQL NULL in insert payloads.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
