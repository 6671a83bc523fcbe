package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/metrics"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	CompanyName string
	Country     string
	Currency    string
	Email       string
	Phone       string
	Password    string
}

// SettingsInput is the company settings form.
type SettingsInput struct {
	Name           string
	Country        string
	Currency       string
	OpeningBalance string
}

// UserInput is the add/edit user form. Password may be empty when editing
// to keep the existing one.
type UserInput struct {
	Email    string
	Phone    string
	Password string
	Role     string
}

// AccountService handles registration, login, company settings and users.
type AccountService struct {
	store         storage.Store
	authenticator auth.Authenticator
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewAccountService creates a new account service. m may be nil.
func NewAccountService(store storage.Store, authenticator auth.Authenticator, m *metrics.Metrics, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:         store,
		authenticator: authenticator,
		metrics:       m,
		logger:        logger,
	}
}

// Register creates a company and its first admin user atomically.
// Duplicate email or phone is rejected before anything is written.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Company, *models.User, error) {
	s.logger.Info("Register request", "email", in.Email)

	company, user, err := s.register(ctx, in)
	switch {
	case err == nil:
		s.metrics.Registration("ok")
		s.logger.Info("Company registered", "company_id", company.ID, "user_id", user.ID)
	case errors.Is(err, ErrValidation):
		s.metrics.Registration("invalid")
	case errors.Is(err, ErrConflict):
		s.metrics.Registration("conflict")
		s.logger.Warn("Registration conflict", "email", in.Email)
	default:
		s.metrics.Registration("error")
		s.logger.Error("Registration failed", "email", in.Email, "error", err)
	}
	return company, user, err
}

func (s *AccountService) register(ctx context.Context, in RegisterInput) (*models.Company, *models.User, error) {
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return nil, nil, invalid("company_name", "Company name is required.")
	}
	currency, err := validCurrency(in.Currency)
	if err != nil {
		return nil, nil, err
	}
	email, err := validEmail(in.Email)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authenticator.ValidateCredential(in.Password); err != nil {
		return nil, nil, invalid("password", capitalize(err.Error())+".")
	}
	phone := strings.TrimSpace(in.Phone)

	exists, err := s.store.UserExists(ctx, email, phone, "")
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrConflict
	}

	hash, err := s.authenticator.HashCredential(in.Password)
	if err != nil {
		return nil, nil, err
	}

	company := &models.Company{
		Name:           name,
		Country:        strings.TrimSpace(in.Country),
		Currency:       currency,
		OpeningBalance: decimal.Zero,
	}
	user := &models.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.store.CreateCompanyWithAdmin(ctx, company, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, nil, ErrConflict
		}
		return nil, nil, fmt.Errorf("failed to register company: %w", err)
	}
	return company, user, nil
}

// Login verifies an email-or-phone and password.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.authenticator.Authenticate(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.metrics.Login("invalid")
			s.logger.Warn("Login failed", "identifier", identifier)
			return nil, err
		}
		s.metrics.Login("error")
		s.logger.Error("Login error", "error", err)
		return nil, err
	}
	s.metrics.Login("ok")
	s.logger.Info("User logged in", "user_id", user.ID, "company_id", user.CompanyID)
	return user, nil
}

// Company returns the caller's company.
func (s *AccountService) Company(ctx context.Context) (*models.Company, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.company(ctx, id.CompanyID)
}

func (s *AccountService) company(ctx context.Context, companyID string) (*models.Company, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return company, err
}

// UpdateSettings changes the caller's company settings. Admin only.
func (s *AccountService) UpdateSettings(ctx context.Context, in SettingsInput) (*models.Company, error) {
	id, err := admin(ctx)
	if err != nil {
		return nil, err
	}
	company, err := s.company(ctx, id.CompanyID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "Company name is required.")
	}
	currency, err := validCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	opening := decimal.Zero
	if v := strings.TrimSpace(in.OpeningBalance); v != "" {
		if opening, err = decimal.NewFromString(v); err != nil {
			return nil, invalid("opening_balance", "Opening balance must be a number.")
		}
	}

	company.Name = name
	company.Country = strings.TrimSpace(in.Country)
	company.Currency = currency
	company.OpeningBalance = opening
	if err := s.store.UpdateCompany(ctx, company); err != nil {
		s.logger.Error("UpdateSettings failed", "company_id", company.ID, "error", err)
		return nil, err
	}
	s.logger.Info("Company settings updated", "company_id", company.ID, "user_id", id.UserID)
	return company, nil
}

// ListUsers returns the users of the caller's company.
func (s *AccountService) ListUsers(ctx context.Context) ([]*models.User, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx, id.CompanyID)
}

// GetUser returns a user of the caller's company. Users of other companies
// and unknown ids are both ErrAccessDenied.
func (s *AccountService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.scopedUser(ctx, id.CompanyID, userID)
}

func (s *AccountService) scopedUser(ctx context.Context, companyID, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	if user.CompanyID != companyID {
		s.logger.Warn("Cross-company user access", "company_id", companyID, "target_user_id", userID)
		return nil, ErrAccessDenied
	}
	return user, nil
}

// CreateUser adds a user to the caller's company. Admin only.
func (s *AccountService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	id, err := admin(ctx)
	if err != nil {
		return nil, err
	}

	email, err := validEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, err := validRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := s.authenticator.ValidateCredential(in.Password); err != nil {
		return nil, invalid("password", capitalize(err.Error())+".")
	}
	phone := strings.TrimSpace(in.Phone)
	if err := s.checkUnique(ctx, email, phone, ""); err != nil {
		return nil, err
	}
	hash, err := s.authenticator.HashCredential(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		CompanyID:    id.CompanyID,
		Role:         role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrConflict
		}
		s.logger.Error("CreateUser failed", "company_id", id.CompanyID, "error", err)
		return nil, err
	}
	s.logger.Info("User created", "company_id", id.CompanyID, "user_id", user.ID, "role", role)
	return user, nil
}

// UpdateUser edits a user of the caller's company. Admin only. An admin
// cannot demote themself.
func (s *AccountService) UpdateUser(ctx context.Context, userID string, in UserInput) (*models.User, error) {
	id, err := admin(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.scopedUser(ctx, id.CompanyID, userID)
	if err != nil {
		return nil, err
	}

	email, err := validEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, err := validRole(in.Role)
	if err != nil {
		return nil, err
	}
	if user.ID == id.UserID && !role.CanManage() {
		return nil, invalid("role", "You cannot remove your own admin role.")
	}
	phone := strings.TrimSpace(in.Phone)
	if err := s.checkUnique(ctx, email, phone, user.ID); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if err := s.authenticator.ValidateCredential(in.Password); err != nil {
			return nil, invalid("password", capitalize(err.Error())+".")
		}
		if user.PasswordHash, err = s.authenticator.HashCredential(in.Password); err != nil {
			return nil, err
		}
	}

	user.Email = email
	user.Phone = phone
	user.Role = role
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrConflict
		}
		s.logger.Error("UpdateUser failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	s.logger.Info("User updated", "company_id", id.CompanyID, "user_id", user.ID)
	return user, nil
}

// DeleteUser removes a user of the caller's company. Admin only. An admin
// cannot delete themself.
func (s *AccountService) DeleteUser(ctx context.Context, userID string) error {
	id, err := admin(ctx)
	if err != nil {
		return err
	}
	user, err := s.scopedUser(ctx, id.CompanyID, userID)
	if err != nil {
		return err
	}
	if user.ID == id.UserID {
		return invalid("user", "You cannot delete your own account.")
	}
	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		s.logger.Error("DeleteUser failed", "user_id", user.ID, "error", err)
		return err
	}
	s.logger.Info("User deleted", "company_id", id.CompanyID, "user_id", user.ID)
	return nil
}

// Demo account created by Seed.
const (
	SeedCompanyName = "Kanakk Pusthakam"
	SeedEmail       = "admin@example.com"
	SeedPassword    = "pass123"
)

// Seed creates a demo company and admin when the database has no company.
// It reports whether anything was created.
func (s *AccountService) Seed(ctx context.Context) (bool, error) {
	n, err := s.store.CountCompanies(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	hash, err := s.authenticator.HashCredential(SeedPassword)
	if err != nil {
		return false, err
	}
	company := &models.Company{Name: SeedCompanyName, Country: "Oman", Currency: "OMR"}
	user := &models.User{Email: SeedEmail, Phone: "0000000000", PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.store.CreateCompanyWithAdmin(ctx, company, user); err != nil {
		return false, fmt.Errorf("failed to seed demo company: %w", err)
	}
	s.logger.Info("Seeded demo company", "company_id", company.ID, "email", SeedEmail)
	return true, nil
}

func (s *AccountService) checkUnique(ctx context.Context, email, phone, excludeID string) error {
	exists, err := s.store.UserExists(ctx, email, phone, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return nil
}

func validEmail(raw string) (string, error) {
	email := models.NormalizeEmail(raw)
	if email == "" {
		return "", invalid("email", "Email is required.")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "Enter a valid email address.")
	}
	return email, nil
}

func validCurrency(raw string) (string, error) {
	code := models.NormalizeCurrency(raw)
	if code != "" && !models.KnownCurrency(code) {
		return "", invalid("currency", "Unknown currency code.")
	}
	return code, nil
}

func validRole(raw string) (models.Role, error) {
	role, err := models.ParseRole(raw)
	if err != nil {
		return 0, invalid("role", "Role must be admin or staff.")
	}
	return role, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
