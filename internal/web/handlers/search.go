package handlers

import (
	"net/http"

	"github.com/foxzi/tweetsift/internal/web/flow"
	"github.com/foxzi/tweetsift/internal/web/models"
)

// SearchPage shows the search form
func (h *Handlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	h.renderSearch(w, r, flow.NewSearchForm())
}

// Search submits the search form and redirects to the result page
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	term := r.FormValue("term")
	count := models.ParseTweetCount(r.FormValue("count"))

	form, err := h.search.Submit(r.Context(), term, count)
	if h.abandoned(r, err) {
		return
	}

	if form.Status == flow.SearchNavigateToResult {
		http.Redirect(w, r, form.Handle.Path(), http.StatusSeeOther)
		return
	}
	h.renderSearch(w, r, form)
}

func (h *Handlers) renderSearch(w http.ResponseWriter, r *http.Request, form *flow.SearchForm) {
	data := h.page(r, "", "search")
	data["Labels"] = h.cfg.Labels()
	data["Counts"] = models.TweetCounts()
	data["Form"] = form
	data["FailedMessage"] = flow.MsgSearchFailed

	h.render(w, http.StatusOK, "search", data)
}
