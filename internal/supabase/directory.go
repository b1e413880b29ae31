package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/smartcore/internal/models"
)

const (
	companiesTable     = "/rest/v1/companies"
	employeesTable     = "/rest/v1/employees"
	profilesTable      = "/rest/v1/profiles"
	subscriptionsTable = "/rest/v1/subscriptions"
)

// CompanyByCode resolves a company by its shareable join code.
func (c *Client) CompanyByCode(ctx context.Context, code string) (*models.Company, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("company_code", eq(code))
	q.Set("limit", "1")
	return c.oneCompany(ctx, q)
}

// CompanyByID resolves a company by primary key.
func (c *Client) CompanyByID(ctx context.Context, id string) (*models.Company, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", eq(id))
	q.Set("limit", "1")
	return c.oneCompany(ctx, q)
}

func (c *Client) oneCompany(ctx context.Context, q url.Values) (*models.Company, error) {
	var rows []models.Company
	if err := c.do(ctx, request{method: http.MethodGet, path: companiesTable, query: q, out: &rows}); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// CompanyCodeExists reports whether any company already uses the code.
func (c *Client) CompanyCodeExists(ctx context.Context, code string) (bool, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("company_code", eq(code))
	q.Set("limit", "1")

	var rows []struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: companiesTable, query: q, out: &rows}); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// InsertCompany creates a company row and returns the stored representation,
// including the backend-assigned id.
func (c *Client) InsertCompany(ctx context.Context, company models.Company) (*models.Company, error) {
	payload := map[string]any{
		"company_name":  company.CompanyName,
		"owner_user_id": company.OwnerUserID,
		"company_code":  company.CompanyCode,
		"company_size":  company.CompanySize,
	}

	var rows []models.Company
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   companiesTable,
		body:   []map[string]any{payload},
		prefer: "return=representation",
		out:    &rows,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// UpdateCompany applies a pre-whitelisted patch to a company row.
func (c *Client) UpdateCompany(ctx context.Context, id string, patch map[string]any) error {
	q := url.Values{}
	q.Set("id", eq(id))

	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   companiesTable,
		query:  q,
		body:   patch,
		prefer: "return=minimal",
	})
}

// EmployeesByCompany lists the company roster, oldest first.
func (c *Client) EmployeesByCompany(ctx context.Context, companyID string) ([]models.Employee, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("company_id", eq(companyID))
	q.Set("order", "created_at.asc")

	var rows []models.Employee
	if err := c.do(ctx, request{method: http.MethodGet, path: employeesTable, query: q, out: &rows}); err != nil {
		return nil, err
	}
	return rows, nil
}

// EmployeeByName finds a roster entry by case-insensitive full-name match
// within a company.
func (c *Client) EmployeeByName(ctx context.Context, companyID, fullName string) (*models.Employee, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("company_id", eq(companyID))
	q.Set("full_name", "ilike."+fullName)
	q.Set("limit", "1")
	return c.oneEmployee(ctx, q)
}

// EmployeeByID fetches a roster entry by primary key, scoped to its company.
func (c *Client) EmployeeByID(ctx context.Context, companyID, id string) (*models.Employee, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", eq(id))
	q.Set("company_id", eq(companyID))
	q.Set("limit", "1")
	return c.oneEmployee(ctx, q)
}

func (c *Client) oneEmployee(ctx context.Context, q url.Values) (*models.Employee, error) {
	var rows []models.Employee
	if err := c.do(ctx, request{method: http.MethodGet, path: employeesTable, query: q, out: &rows}); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// EmployeeRosterIDExists reports whether a generated roster identifier is
// already taken within the company.
func (c *Client) EmployeeRosterIDExists(ctx context.Context, companyID, rosterID string) (bool, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("company_id", eq(companyID))
	q.Set("employee_id", eq(rosterID))
	q.Set("limit", "1")

	var rows []struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: employeesTable, query: q, out: &rows}); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// InsertEmployee creates a roster row.
func (c *Client) InsertEmployee(ctx context.Context, emp map[string]any) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   employeesTable,
		body:   []map[string]any{emp},
		prefer: "return=minimal",
	})
}

// DeleteEmployee removes a roster row, scoped to its company.
func (c *Client) DeleteEmployee(ctx context.Context, companyID, id string) error {
	q := url.Values{}
	q.Set("id", eq(id))
	q.Set("company_id", eq(companyID))

	return c.do(ctx, request{method: http.MethodDelete, path: employeesTable, query: q})
}

// LinkEmployeeUser stamps the auth identity onto a roster row once the
// employee has completed signup.
func (c *Client) LinkEmployeeUser(ctx context.Context, employeeRowID, userID string) error {
	q := url.Values{}
	q.Set("id", eq(employeeRowID))

	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   employeesTable,
		query:  q,
		body:   map[string]any{"user_id": userID},
		prefer: "return=minimal",
	})
}

// ProfileByUser loads the profile row for an auth identity.
func (c *Client) ProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", eq(userID))
	q.Set("limit", "1")

	var rows []models.Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: profilesTable, query: q, out: &rows}); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// InsertProfile creates the profile row linking an identity to a company.
func (c *Client) InsertProfile(ctx context.Context, profile models.Profile) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   profilesTable,
		body:   []models.Profile{profile},
		prefer: "return=minimal",
	})
}

// DeleteProfileByUser removes the profile row of an auth identity.
func (c *Client) DeleteProfileByUser(ctx context.Context, userID string) error {
	q := url.Values{}
	q.Set("user_id", eq(userID))

	return c.do(ctx, request{method: http.MethodDelete, path: profilesTable, query: q})
}

// InsertSubscription records the plan selected at owner signup.
func (c *Client) InsertSubscription(ctx context.Context, sub models.Subscription) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   subscriptionsTable,
		body:   []models.Subscription{sub},
		prefer: "return=minimal",
	})
}
