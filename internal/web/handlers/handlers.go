package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/foxzi/tweetsift/internal/web/config"
	"github.com/foxzi/tweetsift/internal/web/flow"
	"github.com/foxzi/tweetsift/internal/web/views"
)

// Backend is the part of the classification API the handlers use
type Backend interface {
	flow.SearchSubmitter
	flow.ResultFetcher
	flow.Subscriber
	flow.HistoryFetcher
}

type Handlers struct {
	cfg     *config.Config
	views   *views.Engine
	search  *flow.SearchFlow
	result  *flow.ResultFlow
	email   *flow.EmailFlow
	history *flow.HistoryFlow
	logger  *slog.Logger
}

func New(cfg *config.Config, engine *views.Engine, b Backend, logger *slog.Logger) *Handlers {
	pacer := flow.NewPacer(cfg.Delay())
	return &Handlers{
		cfg:     cfg,
		views:   engine,
		search:  flow.NewSearchFlow(b, pacer, logger),
		result:  flow.NewResultFlow(b, cfg.Labels(), pacer, logger),
		email:   flow.NewEmailFlow(b, pacer, logger),
		history: flow.NewHistoryFlow(b, pacer, logger),
		logger:  logger,
	}
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.cfg.Configured() {
		w.Write([]byte(`{"status":"ok"}`))
		return
	}
	w.Write([]byte(`{"status":"ok","configured":false}`))
}

// page returns the data every page template expects
func (h *Handlers) page(r *http.Request, title, active string) map[string]any {
	return map[string]any{
		"Title":     title,
		"Active":    active,
		"Bare":      false,
		"App":       &h.cfg.App,
		"CSRFField": csrf.TemplateField(r),
	}
}

// Helper to render templates
func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// abandoned reports whether a flow stopped because the client went away.
// Nothing must be written in that case.
func (h *Handlers) abandoned(r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.logger.Debug("client went away, dropping response", "path", r.URL.Path)
	} else {
		h.logger.Error("flow aborted", "path", r.URL.Path, "error", err)
	}
	return true
}

// absoluteURL builds a shareable link to path
func (h *Handlers) absoluteURL(r *http.Request, path string) string {
	if h.cfg.Server.PublicURL != "" {
		return h.cfg.Server.PublicURL + path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host + path
}
