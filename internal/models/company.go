package models

import "time"

// Company is one row of the companies table.
type Company struct {
	ID             string    `json:"id"`
	CompanyName    string    `json:"company_name"`
	CompanyCode    string    `json:"company_code"`
	CompanySize    string    `json:"company_size,omitempty"`
	OwnerUserID    string    `json:"owner_user_id,omitempty"`
	MaxEmployees   *int      `json:"max_employees,omitempty"`
	Address        string    `json:"address,omitempty"`
	LogoURL        string    `json:"logo_url,omitempty"`
	PrimaryColor   string    `json:"primary_color,omitempty"`
	SecondaryColor string    `json:"secondary_color,omitempty"`
	TextColor      string    `json:"text_color,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// Profile links an auth identity to a company.
type Profile struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name,omitempty"`
	FullName    string `json:"full_name"`
	Role        Role   `json:"role"`
	IsAdmin     bool   `json:"is_admin"`
}

// Subscription records the plan an owner selected at signup. Payment is
// accepted upstream before this row is created.
type Subscription struct {
	UserID            string   `json:"user_id"`
	CompanySizeID     string   `json:"company_size_id"`
	CompanySizeLabel  string   `json:"company_size_label"`
	CompanySizePrice  float64  `json:"company_size_price"`
	SelectedModules   []string `json:"selected_modules"`
	SelectedModuleIDs []string `json:"selected_module_ids"`
	ModulesTotal      float64  `json:"modules_total"`
	TotalMonthly      float64  `json:"total_monthly"`
	Currency          string   `json:"currency"`
	Status            string   `json:"status"`
}
