package models

import "fmt"

// Purpose distinguishes the owner-onboarding flow from the employee-join flow.
// It changes which fields are required and which records get created.
type Purpose string

const (
	PurposeOwnerSignup    Purpose = "owner_signup"
	PurposeEmployeeSignup Purpose = "employee_signup"
)

// ParsePurpose maps a wire value onto a Purpose. An empty value defaults to
// owner signup, matching clients that never send the field.
func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case "":
		return PurposeOwnerSignup, nil
	case PurposeOwnerSignup, PurposeEmployeeSignup:
		return Purpose(s), nil
	default:
		return "", fmt.Errorf("unknown purpose %q", s)
	}
}

func (p Purpose) String() string {
	return string(p)
}

// Role identifies what a profile row represents within a company.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
)

// EmployeeStatus is the roster status of an employee record.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeArchived EmployeeStatus = "archived"
)

// ParseEmployeeStatus normalizes a free-form status value. Anything that is
// not explicitly "archived" counts as active.
func ParseEmployeeStatus(s string) EmployeeStatus {
	if EmployeeStatus(s) == EmployeeArchived {
		return EmployeeArchived
	}
	return EmployeeActive
}
