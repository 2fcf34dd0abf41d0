package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"log/slog"

	"github.com/CharlesManalo/CommunitySafe/internal/hazard"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// PagesHandler serves the HTML pages: the public landing and history views
// and the session-gated admin dashboard.
type PagesHandler struct {
	svc hazard.Service
}

func NewPagesHandler(svc hazard.Service) *PagesHandler {
	return &PagesHandler{svc: svc}
}

func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "index.html", nil)
}

func (h *PagesHandler) History(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ListReports(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "list reports", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderPage(w, "history.html", map[string]any{"Reports": reports})
}

func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ListReports(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "list reports", slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	username, _ := r.Context().Value(CtxAdminUser).(string)
	renderPage(w, "admin_dashboard.html", map[string]any{
		"Reports":  reports,
		"Username": username,
	})
}

// renderPage executes into a buffer first so a template error can still
// answer with a clean 500 instead of a half-written page.
func renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("render page", slog.String("template", name), slog.Any("err", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
