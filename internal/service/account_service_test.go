package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/models"
)

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	company, user, err := env.accounts.Register(ctx, RegisterInput{
		CompanyName: "  Acme Trading ",
		Country:     "Oman",
		Currency:    "omr",
		Email:       "Owner@Acme.test",
		Phone:       "+968 1234",
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if company.Name != "Acme Trading" {
		t.Errorf("Name = %q, want trimmed", company.Name)
	}
	if company.Currency != "OMR" {
		t.Errorf("Currency = %q, want OMR", company.Currency)
	}
	if !company.OpeningBalance.IsZero() {
		t.Errorf("OpeningBalance = %s, want 0", company.OpeningBalance)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("Role = %v, want admin", user.Role)
	}
	if user.Email != "owner@acme.test" {
		t.Errorf("Email = %q, want lower-cased", user.Email)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}

	t.Run("duplicate email is a conflict with no writes", func(t *testing.T) {
		before, _ := env.store.CountCompanies(ctx)
		_, _, err := env.accounts.Register(ctx, RegisterInput{
			CompanyName: "Copycat",
			Email:       "OWNER@acme.test",
			Password:    "password123",
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("Register() error = %v, want ErrConflict", err)
		}
		after, _ := env.store.CountCompanies(ctx)
		if after != before {
			t.Errorf("company count changed from %d to %d", before, after)
		}
	})

	t.Run("duplicate phone is a conflict", func(t *testing.T) {
		_, _, err := env.accounts.Register(ctx, RegisterInput{
			CompanyName: "Copycat",
			Email:       "other@acme.test",
			Phone:       "+968 1234",
			Password:    "password123",
		})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Register() error = %v, want ErrConflict", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			in    RegisterInput
			field string
		}{
			{"missing company", RegisterInput{Email: "a@b.test", Password: "password123"}, "company_name"},
			{"bad email", RegisterInput{CompanyName: "X", Email: "not-an-email", Password: "password123"}, "email"},
			{"weak password", RegisterInput{CompanyName: "X", Email: "a@b.test", Password: "short"}, "password"},
			{"unknown currency", RegisterInput{CompanyName: "X", Email: "a@b.test", Password: "password123", Currency: "XXQ"}, "currency"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := env.accounts.Register(ctx, tt.in)
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("Register() error = %v, want ValidationError", err)
				}
				if ve.Field != tt.field {
					t.Errorf("Field = %q, want %q", ve.Field, tt.field)
				}
				if !errors.Is(err, ErrValidation) {
					t.Error("ValidationError should match ErrValidation")
				}
			})
		}
	})
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	_, _, err := env.accounts.Register(context.Background(), RegisterInput{
		CompanyName: "Acme",
		Email:       "owner@acme.test",
		Phone:       "5550100",
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, identifier := range []string{"owner@acme.test", " Owner@Acme.test", "5550100"} {
		if _, err := env.accounts.Login(context.Background(), identifier, "password123"); err != nil {
			t.Errorf("Login(%q) failed: %v", identifier, err)
		}
	}

	_, errWrongPassword := env.accounts.Login(context.Background(), "owner@acme.test", "nope")
	_, errUnknownUser := env.accounts.Login(context.Background(), "ghost@acme.test", "password123")
	for _, err := range []error{errWrongPassword, errUnknownUser} {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
		if UserMessage(err) != "Invalid credentials" {
			t.Errorf("UserMessage = %q", UserMessage(err))
		}
	}
}

func TestUpdateSettings(t *testing.T) {
	env := setupTestEnv(t)
	adminCtx, company, _ := env.register(t, "Acme", "owner@acme.test")

	updated, err := env.accounts.UpdateSettings(adminCtx, SettingsInput{
		Name:           "Acme LLC",
		Country:        "Oman",
		Currency:       "USD",
		OpeningBalance: "100.50",
	})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if !updated.OpeningBalance.Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("OpeningBalance = %s", updated.OpeningBalance)
	}

	got, err := env.accounts.Company(adminCtx)
	if err != nil {
		t.Fatalf("Company failed: %v", err)
	}
	if got.ID != company.ID || got.Name != "Acme LLC" || got.Currency != "USD" {
		t.Errorf("Company = %+v", got)
	}

	t.Run("staff is denied", func(t *testing.T) {
		staff, err := env.accounts.CreateUser(adminCtx, UserInput{
			Email: "clerk@acme.test", Password: "password123", Role: "staff",
		})
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		_, err = env.accounts.UpdateSettings(asUser(staff), SettingsInput{Name: "Hijacked"})
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("UpdateSettings() error = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("bad opening balance", func(t *testing.T) {
		_, err := env.accounts.UpdateSettings(adminCtx, SettingsInput{Name: "Acme", OpeningBalance: "lots"})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("UpdateSettings() error = %v, want ErrValidation", err)
		}
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := env.accounts.UpdateSettings(context.Background(), SettingsInput{Name: "x"})
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("UpdateSettings() error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestUserManagement(t *testing.T) {
	env := setupTestEnv(t)
	adminA, _, ownerA := env.register(t, "Company A", "owner@a.test")
	adminB, _, ownerB := env.register(t, "Company B", "owner@b.test")

	clerk, err := env.accounts.CreateUser(adminA, UserInput{
		Email: "clerk@a.test", Phone: "111", Password: "password123", Role: "staff",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if clerk.Role != models.RoleStaff {
		t.Errorf("Role = %v, want staff", clerk.Role)
	}

	t.Run("list is company scoped", func(t *testing.T) {
		users, err := env.accounts.ListUsers(adminA)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("Expected 2 users in company A, got %d", len(users))
		}
		for _, u := range users {
			if u.ID == ownerB.ID {
				t.Error("company B's owner leaked into company A's list")
			}
		}
	})

	t.Run("cross-company access is denied", func(t *testing.T) {
		if _, err := env.accounts.GetUser(adminB, clerk.ID); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("GetUser() error = %v, want ErrAccessDenied", err)
		}
		if _, err := env.accounts.UpdateUser(adminB, clerk.ID, UserInput{Email: "x@b.test", Role: "admin"}); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("UpdateUser() error = %v, want ErrAccessDenied", err)
		}
		if err := env.accounts.DeleteUser(adminB, clerk.ID); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("DeleteUser() error = %v, want ErrAccessDenied", err)
		}
		if _, err := env.accounts.GetUser(adminB, "does-not-exist"); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("GetUser(unknown) error = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("staff cannot manage users", func(t *testing.T) {
		_, err := env.accounts.CreateUser(asUser(clerk), UserInput{Email: "new@a.test", Password: "password123", Role: "admin"})
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("CreateUser() error = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("duplicate email across companies", func(t *testing.T) {
		_, err := env.accounts.CreateUser(adminB, UserInput{Email: "clerk@a.test", Password: "password123", Role: "staff"})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("CreateUser() error = %v, want ErrConflict", err)
		}
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := env.accounts.CreateUser(adminA, UserInput{Email: "x@a.test", Password: "password123", Role: "Admn"})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("CreateUser() error = %v, want ErrValidation", err)
		}
	})

	t.Run("update keeps password when blank", func(t *testing.T) {
		updated, err := env.accounts.UpdateUser(adminA, clerk.ID, UserInput{Email: "clerk2@a.test", Phone: "222", Role: "admin"})
		if err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if updated.Role != models.RoleAdmin || updated.Email != "clerk2@a.test" {
			t.Errorf("UpdateUser result = %+v", updated)
		}
		if _, err := env.accounts.Login(context.Background(), "222", "password123"); err != nil {
			t.Errorf("Login with unchanged password failed: %v", err)
		}
	})

	t.Run("admin cannot demote or delete themself", func(t *testing.T) {
		_, err := env.accounts.UpdateUser(adminA, ownerA.ID, UserInput{Email: ownerA.Email, Role: "staff"})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("UpdateUser(self demote) error = %v, want ErrValidation", err)
		}
		if err := env.accounts.DeleteUser(adminA, ownerA.ID); !errors.Is(err, ErrValidation) {
			t.Errorf("DeleteUser(self) error = %v, want ErrValidation", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := env.accounts.DeleteUser(adminA, clerk.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		if _, err := env.accounts.GetUser(adminA, clerk.ID); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("GetUser(deleted) error = %v, want ErrAccessDenied", err)
		}
	})
}

func TestSeed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.accounts.Seed(ctx)
	if err != nil || !created {
		t.Fatalf("Seed() = %v, %v; want true, nil", created, err)
	}
	if _, err := env.accounts.Login(ctx, SeedEmail, SeedPassword); err != nil {
		t.Errorf("Login as seeded admin failed: %v", err)
	}

	created, err = env.accounts.Seed(ctx)
	if err != nil || created {
		t.Errorf("second Seed() = %v, %v; want false, nil", created, err)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{invalid("title", "Title is required."), "Title is required."},
		{ErrConflict, "A user with that email or phone already exists. Try logging in."},
		{ErrAccessDenied, "Access denied!"},
		{errors.New("pq: connection refused to 10.0.0.1"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
