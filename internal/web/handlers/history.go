package handlers

import (
	"net/http"

	"github.com/foxzi/tweetsift/internal/web/flow"
)

// History lists previous searches. Backend failures render a retry
// message rather than an error page.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	view, err := h.history.Load(r.Context())
	if h.abandoned(r, err) {
		return
	}

	data := h.page(r, "Latest searches", "history")
	data["History"] = view
	data["FailedMessage"] = flow.MsgHistoryFailed

	h.render(w, http.StatusOK, "history", data)
}
