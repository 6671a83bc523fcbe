package web

import (
	"net/http"
	"strings"

	"github.com/mmynk/kanakk/internal/middleware"
	"github.com/mmynk/kanakk/internal/service"
)

var registerFields = []string{"company_name", "country", "currency", "email", "phone"}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &page{Title: "Login"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.PostFormValue("email_or_phone"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	form := map[string]string{"email_or_phone": identifier}

	if identifier == "" || password == "" {
		s.render(w, r, http.StatusBadRequest, "login.html", &page{
			Title: "Login",
			Form:  form,
			Flash: &Flash{Kind: flashDanger, Message: "Email or phone and password are required."},
		})
		return
	}

	user, err := s.accounts.Login(r.Context(), identifier, password)
	if err != nil {
		s.render(w, r, s.formStatus(r, err), "login.html", &page{Title: "Login", Form: form, Flash: errorFlash(err)})
		return
	}

	token, err := s.sessions.Generate(user)
	if err != nil {
		s.logger.Error("Failed to issue session", "user_id", user.ID, "error", err)
		s.render(w, r, http.StatusInternalServerError, "login.html", &page{Title: "Login", Form: form, Flash: errorFlash(err)})
		return
	}
	middleware.SetSessionCookie(w, token, s.sessions.Duration(), s.cookieSecure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, s.cookieSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", &page{Title: "Register"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	in := service.RegisterInput{
		CompanyName: r.PostFormValue("company_name"),
		Country:     r.PostFormValue("country"),
		Currency:    r.PostFormValue("currency"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		Password:    r.PostFormValue("password"),
	}
	if _, _, err := s.accounts.Register(r.Context(), in); err != nil {
		s.render(w, r, s.formStatus(r, err), "register.html", &page{
			Title: "Register",
			Form:  formValues(r, registerFields...),
			Flash: errorFlash(err),
		})
		return
	}
	s.redirect(w, r, "/login", flashSuccess, "Company and admin user created. Please login.")
}
