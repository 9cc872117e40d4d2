package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"carpa/internal/adapters/http/middleware"
	"carpa/internal/application/orchestrators"
	"carpa/internal/domain/blog"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// The request ID in the log matches the X-Request-Id the client saw.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "request_id", middleware.RequestID(r.Context()), "path", r.URL.Path, "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

// localPath returns next when it is a path on this site, otherwise fallback.
func localPath(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return fallback
}

// markdown renders post content. On a conversion error the escaped source is shown.
func markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentEmail":   func() string { return sess.Email },
		"currentName":    func() string { return sess.FullName },
		"isLoggedIn":     func() bool { return ok },
		"isAdmin":        func() bool { return ok && sess.IsAdmin() },
		"currentPath":    func() string { return r.URL.Path },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": markdown,
		"longDate":       orchestrators.LongDate,
		"slotRange":      orchestrators.SlotRange,
		"excerpt":        func(p blog.Post, n int) string { return p.Excerpt(n) },
		"stars": func(n int) string {
			if n < 0 || n > 5 {
				return ""
			}
			return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
		},
		"shortDate": func(t time.Time) string { return t.In(gymLocation).Format("02/01/2006") },
		"year":      func() int { return timeNow().Year() },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// renderStatus renders a template with a non-200 status.
func renderStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	rec := &statusOverride{ResponseWriter: w, status: status}
	renderTemplate(rec, r, templateName, data)
}

// statusOverride replaces a 200 from renderTemplate with a fixed status.
type statusOverride struct {
	http.ResponseWriter
	status  int
	written bool
}

func (s *statusOverride) WriteHeader(code int) {
	if !s.written && code == http.StatusOK {
		code = s.status
	}
	s.written = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusOverride) Write(b []byte) (int, error) {
	if !s.written {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	renderStatus(w, r, http.StatusNotFound, "not_found.html", nil)
}
