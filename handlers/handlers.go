// Package handlers holds the HTTP handlers: the catalog proxy routes under
// /api and the HTML pages.
package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/icco/moodpick/handlers/templates"
	"github.com/icco/moodpick/lib/middleware"
)

type errorData struct {
	Message string
}

// render executes page through the layout into a buffer first, so a template
// failure can still become an error page.
func render(w http.ResponseWriter, r *http.Request, page string, data any) {
	logger := middleware.LoggerFrom(r.Context())

	tmpl, err := templates.ParseTemplates(page)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to parse template", slog.String("page", page), slog.Any("error", err))
		renderError(w, r, "Something went wrong while loading the page.", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templates.Layout, data); err != nil {
		logger.ErrorContext(r.Context(), "Failed to execute template", slog.String("page", page), slog.Any("error", err))
		renderError(w, r, "Something went wrong while displaying the page.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "Failed to write page", slog.Any("error", err))
	}
}

func renderError(w http.ResponseWriter, r *http.Request, message string, status int) {
	logger := middleware.LoggerFrom(r.Context())

	tmpl, err := templates.ParseTemplates("error.html")
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to parse error template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, templates.Layout, errorData{Message: message}); err != nil {
		logger.ErrorContext(r.Context(), "Failed to execute error template", slog.Any("error", err))
	}
}

// HandleNotFound renders the error page for unknown routes.
func HandleNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, "This page does not exist.", http.StatusNotFound)
	}
}
