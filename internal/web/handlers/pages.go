package handlers

import (
	"net/http"
)

// NotFoundPath is where unknown pages and searches end up
const NotFoundPath = "/404"

// NotFoundRedirect sends the client to the not found page
func NotFoundRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, NotFoundPath, http.StatusFound)
}

// NotFound renders the not found page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "not_found", h.page(r, "Not found", ""))
}

// Setup renders the first-run notice shown while the application has no
// name or fewer than two labels
func (h *Handlers) Setup(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Setup", "")
	data["Bare"] = true
	data["AdminURL"] = h.cfg.AdminURL()

	h.render(w, http.StatusServiceUnavailable, "setup", data)
}
