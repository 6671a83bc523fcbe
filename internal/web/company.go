package web

import (
	"errors"
	"net/http"

	"github.com/mmynk/kanakk/internal/middleware"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/service"
)

var (
	settingsFields = []string{"name", "country", "currency", "opening_balance"}
	userFields     = []string{"email", "phone", "role"}
)

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.ledgers.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, err, "/login")
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", &page{Title: d.Ledger.Company.Name, Data: d})
}

func (s *Server) settingsForm(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		s.redirect(w, r, "/", flashDanger, "Only admin can edit settings")
		return
	}
	company, err := s.accounts.Company(r.Context())
	if err != nil {
		s.fail(w, r, err, "/")
		return
	}
	s.render(w, r, http.StatusOK, "settings.html", &page{Title: "Settings", Form: settingsForm(company)})
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		s.redirect(w, r, "/", flashDanger, "Only admin can edit settings")
		return
	}
	in := service.SettingsInput{
		Name:           r.PostFormValue("name"),
		Country:        r.PostFormValue("country"),
		Currency:       r.PostFormValue("currency"),
		OpeningBalance: r.PostFormValue("opening_balance"),
	}
	if _, err := s.accounts.UpdateSettings(r.Context(), in); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			s.redirect(w, r, "/", flashDanger, "Only admin can edit settings")
			return
		}
		s.render(w, r, s.formStatus(r, err), "settings.html", &page{
			Title: "Settings",
			Form:  formValues(r, settingsFields...),
			Flash: errorFlash(err),
		})
		return
	}
	s.redirect(w, r, "/settings", flashSuccess, "Settings updated successfully!")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accounts.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, err, "/")
		return
	}
	s.render(w, r, http.StatusOK, "users.html", &page{Title: "Users", Data: users})
}

// userFormData is the data of the add/edit user page.
type userFormData struct {
	Heading string
	Action  string
	Editing bool
}

func (s *Server) newUserForm(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		s.redirect(w, r, "/company/users", flashDanger, service.UserMessage(service.ErrAccessDenied))
		return
	}
	s.render(w, r, http.StatusOK, "user_form.html", &page{
		Title: "Add User",
		Form:  map[string]string{"role": models.RoleStaff.String()},
		Data:  userFormData{Heading: "Add User", Action: "/company/users/new"},
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	in := userInput(r)
	if _, err := s.accounts.CreateUser(r.Context(), in); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			s.fail(w, r, err, "/company/users")
			return
		}
		s.render(w, r, s.formStatus(r, err), "user_form.html", &page{
			Title: "Add User",
			Form:  formValues(r, userFields...),
			Flash: errorFlash(err),
			Data:  userFormData{Heading: "Add User", Action: "/company/users/new"},
		})
		return
	}
	s.redirect(w, r, "/company/users", flashSuccess, "User added successfully!")
}

func (s *Server) editUserForm(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		s.redirect(w, r, "/company/users", flashDanger, service.UserMessage(service.ErrAccessDenied))
		return
	}
	user, err := s.accounts.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "/company/users")
		return
	}
	s.render(w, r, http.StatusOK, "user_form.html", &page{
		Title: "Edit User",
		Form:  map[string]string{"email": user.Email, "phone": user.Phone, "role": user.Role.String()},
		Data:  editData(user.ID),
	})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.accounts.UpdateUser(r.Context(), id, userInput(r)); err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			s.fail(w, r, err, "/company/users")
			return
		}
		s.render(w, r, s.formStatus(r, err), "user_form.html", &page{
			Title: "Edit User",
			Form:  formValues(r, userFields...),
			Flash: errorFlash(err),
			Data:  editData(id),
		})
		return
	}
	s.redirect(w, r, "/company/users", flashSuccess, "User updated successfully!")
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err, "/company/users")
		return
	}
	s.redirect(w, r, "/company/users", flashSuccess, "User deleted successfully!")
}

func isAdmin(r *http.Request) bool {
	id, ok := middleware.IdentityFrom(r.Context())
	return ok && id.Role.CanManage()
}

func userInput(r *http.Request) service.UserInput {
	return service.UserInput{
		Email:    r.PostFormValue("email"),
		Phone:    r.PostFormValue("phone"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
}

func editData(id string) userFormData {
	return userFormData{Heading: "Edit User", Action: "/company/users/" + id + "/edit", Editing: true}
}

func settingsForm(c *models.Company) map[string]string {
	return map[string]string{
		"name":            c.Name,
		"country":         c.Country,
		"currency":        c.Currency,
		"opening_balance": c.OpeningBalance.StringFixed(2),
	}
}
