package provision

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/example/smartcore/internal/models"
	"github.com/example/smartcore/internal/supabase"
	"github.com/example/smartcore/internal/verification"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CompanyByCode(ctx context.Context, code string) (*models.Company, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockStore) CompanyCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) InsertCompany(ctx context.Context, company models.Company) (*models.Company, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockStore) InsertProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockStore) InsertSubscription(ctx context.Context, sub models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockStore) EmployeeByName(ctx context.Context, companyID, fullName string) (*models.Employee, error) {
	args := m.Called(ctx, companyID, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockStore) EmployeeRosterIDExists(ctx context.Context, companyID, rosterID string) (bool, error) {
	args := m.Called(ctx, companyID, rosterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) LinkEmployeeUser(ctx context.Context, employeeRowID, userID string) error {
	args := m.Called(ctx, employeeRowID, userID)
	return args.Error(0)
}

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) CreateUser(ctx context.Context, email, password, fullName string) (string, error) {
	args := m.Called(ctx, email, password, fullName)
	return args.String(0), args.Error(1)
}

func (m *MockAuth) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newService() (*Service, *MockStore, *MockAuth) {
	store := new(MockStore)
	auth := new(MockAuth)
	return New(store, auth, zerolog.New(io.Discard)), store, auth
}

func ownerReq() verification.OwnerSignup {
	return verification.OwnerSignup{
		Email:            "alice@x.com",
		Password:         "longenough",
		FullName:         "Alice Smith",
		CompanyName:      "Acme Ltd",
		CompanySize:      "1-10",
		CompanySizePrice: 29,
		ModuleIDs:        []string{"rota", "payroll"},
		ModulesTotal:     18,
		TotalMonthly:     47,
	}
}

func TestProvisionOwner_HappyPath(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, "alice@x.com", "longenough", "Alice Smith").Return("u-1", nil)
	store.On("CompanyCodeExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	var inserted models.Company
	store.On("InsertCompany", mock.Anything, mock.AnythingOfType("models.Company")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(models.Company)
		}).
		Return(&models.Company{ID: "c-1", CompanyName: "Acme Ltd", CompanyCode: "ACM123456"}, nil)

	var profile models.Profile
	store.On("InsertProfile", mock.Anything, mock.AnythingOfType("models.Profile")).
		Run(func(args mock.Arguments) {
			profile = args.Get(1).(models.Profile)
		}).Return(nil)

	var sub models.Subscription
	store.On("InsertSubscription", mock.Anything, mock.AnythingOfType("models.Subscription")).
		Run(func(args mock.Arguments) {
			sub = args.Get(1).(models.Subscription)
		}).Return(nil)

	account, err := svc.ProvisionOwner(context.Background(), ownerReq())
	require.NoError(t, err)

	assert.Equal(t, "u-1", account.UserID)
	assert.Equal(t, "c-1", account.CompanyID)
	assert.Equal(t, "ACM123456", account.CompanyCode)

	assert.Equal(t, "Acme Ltd", inserted.CompanyName)
	assert.Equal(t, "u-1", inserted.OwnerUserID)
	assert.Regexp(t, regexp.MustCompile(`^ACM\d{6}$`), inserted.CompanyCode)

	assert.Equal(t, models.RoleOwner, profile.Role)
	assert.True(t, profile.IsAdmin)
	assert.Equal(t, "c-1", profile.CompanyID)

	assert.Equal(t, "1-10", sub.CompanySizeID, "size id defaults to the raw size band")
	assert.Equal(t, []string{"rota", "payroll"}, sub.SelectedModules)
	assert.Equal(t, "GBP", sub.Currency)
	assert.Equal(t, "active", sub.Status)
	assert.InDelta(t, 47, sub.TotalMonthly, 0.001)
}

func TestProvisionOwner_NilModulesBecomeEmptyList(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u-1", nil)
	store.On("CompanyCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	store.On("InsertCompany", mock.Anything, mock.Anything).Return(&models.Company{ID: "c-1", CompanyCode: "ACM000001"}, nil)
	store.On("InsertProfile", mock.Anything, mock.Anything).Return(nil)

	var sub models.Subscription
	store.On("InsertSubscription", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sub = args.Get(1).(models.Subscription)
		}).Return(nil)

	req := ownerReq()
	req.ModuleIDs = nil
	_, err := svc.ProvisionOwner(context.Background(), req)
	require.NoError(t, err)

	assert.NotNil(t, sub.SelectedModules)
	assert.Empty(t, sub.SelectedModules)
}

func TestProvisionOwner_DuplicateEmail(t *testing.T) {
	svc, store, auth := newService()
	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", supabase.ErrUserExists)

	_, err := svc.ProvisionOwner(context.Background(), ownerReq())
	assert.ErrorIs(t, err, verification.ErrEmailRegistered)
	store.AssertNotCalled(t, "InsertCompany", mock.Anything, mock.Anything)
}

func TestProvisionOwner_CompanyCodeCollisionRetries(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u-1", nil)
	store.On("CompanyCodeExists", mock.Anything, mock.Anything).Return(true, nil).Times(3)
	store.On("CompanyCodeExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	store.On("InsertCompany", mock.Anything, mock.Anything).Return(&models.Company{ID: "c-1", CompanyCode: "ACM999999"}, nil)
	store.On("InsertProfile", mock.Anything, mock.Anything).Return(nil)
	store.On("InsertSubscription", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.ProvisionOwner(context.Background(), ownerReq())
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "CompanyCodeExists", 4)
}

func TestProvisionOwner_CompanyCodeExhaustionFallsBackToTimestamp(t *testing.T) {
	svc, store, auth := newService()
	svc.now = func() time.Time { return time.UnixMilli(1724900123456) }

	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u-1", nil)
	store.On("CompanyCodeExists", mock.Anything, mock.Anything).Return(true, nil)

	var inserted models.Company
	store.On("InsertCompany", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(models.Company)
		}).Return(&models.Company{ID: "c-1", CompanyCode: "ACM123456"}, nil)
	store.On("InsertProfile", mock.Anything, mock.Anything).Return(nil)
	store.On("InsertSubscription", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.ProvisionOwner(context.Background(), ownerReq())
	require.NoError(t, err)

	// 1724900123456 % 1000000 = 123456
	assert.Equal(t, "ACM123456", inserted.CompanyCode)
	store.AssertNumberOfCalls(t, "CompanyCodeExists", companyCodeAttempts)
}

func TestProvisionOwner_MidSagaFailureSurfacesStep(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u-1", nil)
	store.On("CompanyCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	store.On("InsertCompany", mock.Anything, mock.Anything).Return(&models.Company{ID: "c-1", CompanyCode: "ACM111111"}, nil)
	store.On("InsertProfile", mock.Anything, mock.Anything).Return(errors.New("backend rejected row"))

	_, err := svc.ProvisionOwner(context.Background(), ownerReq())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create profile")
	store.AssertNotCalled(t, "InsertSubscription", mock.Anything, mock.Anything)
	auth.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestProvisionEmployee_HappyPath(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, "bob@x.com", "longenough", "Bob Jones").Return("u-2", nil)
	store.On("CompanyByCode", mock.Anything, "ACM123456").
		Return(&models.Company{ID: "c-1", CompanyName: "Acme Ltd", CompanyCode: "ACM123456"}, nil)
	store.On("EmployeeByName", mock.Anything, "c-1", "Bob Jones").
		Return(&models.Employee{ID: "e-1", FullName: "Bob Jones"}, nil)

	var profile models.Profile
	store.On("InsertProfile", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			profile = args.Get(1).(models.Profile)
		}).Return(nil)
	store.On("LinkEmployeeUser", mock.Anything, "e-1", "u-2").Return(nil)

	account, err := svc.ProvisionEmployee(context.Background(), verification.EmployeeSignup{
		Email:       "bob@x.com",
		Password:    "longenough",
		FullName:    "Bob Jones",
		CompanyCode: "ACM123456",
	})
	require.NoError(t, err)

	assert.Equal(t, "u-2", account.UserID)
	assert.Equal(t, "c-1", account.CompanyID)
	assert.Equal(t, models.RoleEmployee, profile.Role)
	assert.False(t, profile.IsAdmin)
	assert.Equal(t, "Acme Ltd", profile.CompanyName)
	store.AssertExpectations(t)
}

func TestProvisionEmployee_RosterMissAfterUserCreated(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u-2", nil)
	store.On("CompanyByCode", mock.Anything, "ACM123456").
		Return(&models.Company{ID: "c-1", CompanyName: "Acme Ltd"}, nil)
	store.On("EmployeeByName", mock.Anything, "c-1", "Not Listed").Return(nil, supabase.ErrNotFound)

	_, err := svc.ProvisionEmployee(context.Background(), verification.EmployeeSignup{
		Email:       "bob@x.com",
		Password:    "longenough",
		FullName:    "Not Listed",
		CompanyCode: "ACM123456",
	})
	assert.ErrorIs(t, err, verification.ErrRosterNotFound)
	store.AssertNotCalled(t, "InsertProfile", mock.Anything, mock.Anything)
}

func TestProvisionEmployee_LinkFailureIsNotFatal(t *testing.T) {
	svc, store, auth := newService()

	auth.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("u-2", nil)
	store.On("CompanyByCode", mock.Anything, mock.Anything).
		Return(&models.Company{ID: "c-1", CompanyCode: "ACM123456"}, nil)
	store.On("EmployeeByName", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Employee{ID: "e-1"}, nil)
	store.On("InsertProfile", mock.Anything, mock.Anything).Return(nil)
	store.On("LinkEmployeeUser", mock.Anything, "e-1", "u-2").Return(errors.New("link failed"))

	account, err := svc.ProvisionEmployee(context.Background(), verification.EmployeeSignup{
		Email:       "bob@x.com",
		Password:    "longenough",
		FullName:    "Bob Jones",
		CompanyCode: "ACM123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-2", account.UserID)
}

func TestNewRosterID(t *testing.T) {
	svc, store, _ := newService()

	store.On("EmployeeRosterIDExists", mock.Anything, "c-1", mock.AnythingOfType("string")).Return(false, nil)

	id, err := svc.NewRosterID(context.Background(), "c-1", "Acme Ltd")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ACM\d{9}$`), id)
}

func TestCompanyCodePrefix(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Acme Ltd", "ACM"},
		{"lowercase", "acme", "ACM"},
		{"punctuation skipped", "A.B. Consulting", "ABC"},
		{"digits kept", "3M Company", "3MC"},
		{"short name not padded", "Al", "AL"},
		{"empty defaults", "", "COM"},
		{"symbols only defaults", "!!!", "COM"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CompanyCodePrefix(c.in))
		})
	}
}

func TestRosterIDPrefix(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Acme Ltd", "ACM"},
		{"short name padded", "Al", "ALX"},
		{"single rune padded", "q", "QXX"},
		{"empty defaults", "", "COM"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, RosterIDPrefix(c.in))
		})
	}
}
