package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/tweetsift/internal/web/flow"
	"github.com/foxzi/tweetsift/internal/web/models"
)

func searchHandle(r *http.Request) models.SearchHandle {
	return models.SearchHandle(strings.TrimSpace(chi.URLParam(r, "searchId")))
}

// Result shows the state of a search. Unknown searches and backend
// failures redirect to the not found page.
func (h *Handlers) Result(w http.ResponseWriter, r *http.Request) {
	handle := searchHandle(r)
	if handle == "" {
		NotFoundRedirect(w, r)
		return
	}

	view, err := h.result.Load(r.Context(), handle)
	if h.abandoned(r, err) {
		return
	}

	switch view.Status {
	case flow.ResultNotFound:
		NotFoundRedirect(w, r)
		return
	case flow.ResultReady:
		if tab := r.URL.Query().Get("tab"); tab != "" {
			view.Select(tab)
		}
	}

	h.renderResult(w, r, view, flow.NewEmailForm())
}

// Subscribe handles the email form of a collecting result. The result is
// not fetched again; the page is shown as collecting with the form outcome.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	handle := searchHandle(r)
	if handle == "" {
		NotFoundRedirect(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form, err := h.email.Submit(r.Context(), handle, r.FormValue("name"), r.FormValue("email"))
	if h.abandoned(r, err) {
		return
	}

	view := flow.CollectingView(handle)
	h.renderResult(w, r, view, form)
}

func (h *Handlers) renderResult(w http.ResponseWriter, r *http.Request, view *flow.ResultView, email *flow.EmailForm) {
	data := h.page(r, view.Term, "")
	data["View"] = view
	data["EmptyTabMessage"] = flow.MsgEmptyTab

	if view.Status == flow.ResultCollecting {
		data["Email"] = email
		data["CopyURL"] = h.absoluteURL(r, view.Handle.Path())
		data["SavedMessage"] = flow.MsgEmailSaved
		data["FailedMessage"] = flow.MsgEmailFailed
	}

	h.render(w, http.StatusOK, "result", data)
}
