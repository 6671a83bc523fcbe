package web

import (
	"net/http"

	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/service"
)

var entryFields = []string{"title", "amount", "date", "notes"}

// entryFormData is the data of the new income/expense page.
type entryFormData struct {
	Heading string
	Action  string
}

func entryPage(kind models.EntryKind) entryFormData {
	switch kind {
	case models.KindIncome:
		return entryFormData{Heading: "New Income", Action: "/income/new"}
	case models.KindExpense:
		return entryFormData{Heading: "New Expense", Action: "/expense/new"}
	}
	panic("unknown entry kind")
}

func savedMessage(kind models.EntryKind) string {
	switch kind {
	case models.KindIncome:
		return "Income saved"
	case models.KindExpense:
		return "Expense saved"
	}
	panic("unknown entry kind")
}

func (s *Server) entryForm(kind models.EntryKind) http.HandlerFunc {
	data := entryPage(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "entry_form.html", &page{
			Title: data.Heading,
			Form:  map[string]string{"date": s.today().String()},
			Data:  data,
		})
	}
}

func (s *Server) createEntry(kind models.EntryKind) http.HandlerFunc {
	data := entryPage(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		in := service.EntryInput{
			Title:  r.PostFormValue("title"),
			Amount: r.PostFormValue("amount"),
			Date:   r.PostFormValue("date"),
			Notes:  r.PostFormValue("notes"),
		}
		if _, err := s.entries.Create(r.Context(), kind, in); err != nil {
			s.render(w, r, s.formStatus(r, err), "entry_form.html", &page{
				Title: data.Heading,
				Form:  formValues(r, entryFields...),
				Flash: errorFlash(err),
				Data:  data,
			})
			return
		}
		s.redirect(w, r, "/", flashSuccess, savedMessage(kind))
	}
}
