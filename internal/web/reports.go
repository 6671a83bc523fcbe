package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/mmynk/kanakk/internal/ledger"
	"github.com/mmynk/kanakk/internal/report"
	"github.com/mmynk/kanakk/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportData is the data of the reports page.
type reportData struct {
	View    *report.View
	PDFURL  template.URL
	XLSXURL template.URL
}

func (s *Server) reports(w http.ResponseWriter, r *http.Request) {
	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	form := map[string]string{"start": start, "end": end}

	status := http.StatusOK
	var flash *Flash
	rng, err := service.ParseRange(start, end)
	if err != nil {
		status, flash = http.StatusBadRequest, errorFlash(err)
		rng = ledger.Range{}
	}

	l, err := s.ledgers.CompanyLedger(r.Context(), rng)
	if err != nil {
		s.fail(w, r, err, "/")
		return
	}
	s.metrics.ReportGenerated("html")

	data := reportData{View: report.NewView(l), PDFURL: "/reports/pdf", XLSXURL: "/reports/xlsx"}
	if q := r.URL.Query().Encode(); flash == nil && q != "" {
		data.PDFURL += template.URL("?" + q)
		data.XLSXURL += template.URL("?" + q)
	}
	s.render(w, r, status, "reports.html", &page{Title: "Reports", Form: form, Flash: flash, Data: data})
}

func (s *Server) reportPDF(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "pdf", "application/pdf", func(buf io.Writer, l *ledger.Ledger) error {
		return report.WritePDF(buf, l, s.now())
	})
}

func (s *Server) reportXLSX(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "xlsx", xlsxContentType, report.WriteXLSX)
}

// download renders the filtered ledger into memory and sends it as an
// attachment. Nothing is written to w until rendering has succeeded.
func (s *Server) download(w http.ResponseWriter, r *http.Request, format, contentType string, write func(io.Writer, *ledger.Ledger) error) {
	rng, err := service.ParseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, service.UserMessage(err), http.StatusBadRequest)
		return
	}

	l, err := s.ledgers.CompanyLedger(r.Context(), rng)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, service.UserMessage(err), http.StatusNotFound)
		default:
			s.logger.Error("Failed to load report", "format", format, "error", err)
			http.Error(w, service.UserMessage(err), http.StatusInternalServerError)
		}
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, l); err != nil {
		s.logger.Error("Failed to render report", "format", format, "company_id", l.Company.ID, "error", err)
		http.Error(w, service.UserMessage(err), http.StatusInternalServerError)
		return
	}
	s.metrics.ReportGenerated(format)
	s.logger.Info("Report generated", "format", format, "company_id", l.Company.ID, "bytes", buf.Len())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(report.Filename(l.Company.Name, format)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	buf.WriteTo(w)
}

// contentDisposition builds an attachment header for name. Non-ASCII names
// get an ASCII fallback plus an RFC 6266 filename* parameter.
func contentDisposition(name string) string {
	var ascii strings.Builder
	plain := true
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			ascii.WriteByte('_')
			plain = false
			continue
		}
		ascii.WriteRune(r)
	}
	header := `attachment; filename="` + ascii.String() + `"`
	if plain {
		return header
	}

	var enc strings.Builder
	for _, b := range []byte(name) {
		if isAttrChar(b) {
			enc.WriteByte(b)
			continue
		}
		fmt.Fprintf(&enc, "%%%02X", b)
	}
	return header + "; filename*=UTF-8''" + enc.String()
}

// isAttrChar reports whether b may appear unescaped in an RFC 5987 value.
func isAttrChar(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", b) >= 0
}
