package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/atlas-travel/atlas-auth/internal/authmode"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var authTemplate = template.Must(template.ParseFS(templateFS, "templates/*.gohtml"))

// PageHandler serves the auth page. The page never redirects: when the
// query string is not canonical the rendered page rewrites it in place
// with history.replaceState, so refresh and back keep working.
type PageHandler struct {
	logger *slog.Logger
}

func NewPageHandler(logger *slog.Logger) *PageHandler {
	return &PageHandler{logger: logger}
}

type authPageData struct {
	Mode           authmode.Mode
	Notification   *authmode.Notification
	ResetToken     string
	CanonicalQuery string
	Rewrite        bool
}

// AuthPage renders the form for whichever mode the query resolves to.
func (h *PageHandler) AuthPage(w http.ResponseWriter, r *http.Request) {
	res := authmode.Resolve(r.URL.Query())

	data := authPageData{
		Mode:           res.Mode,
		Notification:   res.Notification,
		ResetToken:     res.ResetToken,
		CanonicalQuery: res.Query.Encode(),
		Rewrite:        res.Rewrite,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := authTemplate.ExecuteTemplate(w, "auth.gohtml", data); err != nil {
		h.logger.Error("failed to render auth page", slog.Any("error", err))
	}
}
