package models

import "time"

// Employee is one row of the employees roster table. EmployeeID is the
// human-readable roster identifier (PREFIX + digits); UserID is set once the
// employee completes signup and gets an auth identity.
type Employee struct {
	ID                string         `json:"id"`
	CompanyID         string         `json:"company_id"`
	FullName          string         `json:"full_name"`
	PersonalEmail     string         `json:"personal_email,omitempty"`
	WorkEmail         string         `json:"work_email,omitempty"`
	JobTitle          string         `json:"job_title,omitempty"`
	JobCategory       string         `json:"job_category,omitempty"`
	EmployeeID        string         `json:"employee_id,omitempty"`
	EmployeeCode      string         `json:"employee_code,omitempty"`
	IsAdmin           bool           `json:"is_admin"`
	Status            EmployeeStatus `json:"status,omitempty"`
	EmploymentType    string         `json:"employment_type,omitempty"`
	NoticePeriod      string         `json:"notice_period,omitempty"`
	StartDate         string         `json:"start_date,omitempty"`
	UserID            string         `json:"user_id,omitempty"`
	OnboardingToken   string         `json:"onboarding_token,omitempty"`
	OnboardingExpires time.Time      `json:"onboarding_expires,omitzero"`
	CreatedAt         time.Time      `json:"created_at,omitzero"`
}
