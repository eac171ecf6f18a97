package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/foxzi/tweetsift/internal/web/flow"
	"github.com/foxzi/tweetsift/internal/web/models"
)

func TestRenderSearch(t *testing.T) {
	r := NewRenderer()

	form := flow.NewSearchForm()
	form.Status = flow.SearchNavigateToResult
	form.Handle = "abc"
	out := r.Search(form, "https://sift.example.com/search/abc")
	assert.Contains(t, out, "Search started: abc")
	assert.Contains(t, out, "https://sift.example.com/search/abc")

	form = flow.NewSearchForm()
	form.Errors.Add("term", flow.MsgFieldBlank)
	assert.Contains(t, r.Search(form, ""), flow.MsgFieldBlank)

	form = flow.NewSearchForm()
	form.SubmitFailed = true
	assert.Contains(t, r.Search(form, ""), flow.MsgSearchFailed)
}

func TestRenderResultReady(t *testing.T) {
	r := NewRenderer()
	view := &flow.ResultView{
		Status:   flow.ResultReady,
		Term:     "oxygen",
		Selected: "Help Offer",
		Tabs: []flow.Tab{
			{Label: "Help Offer", Posts: []string{"1", "2"}},
			{Label: "Help Wanted"},
		},
	}

	out := r.Result(view, "")
	assert.Contains(t, out, "Help Offer (2)")
	assert.Contains(t, out, "Help Wanted (0)")
	assert.Contains(t, out, "https://twitter.com/i/web/status/1")
	assert.NotContains(t, out, flow.MsgEmptyTab)

	view.Select("Help Wanted")
	out = r.Result(view, "")
	assert.Contains(t, out, flow.MsgEmptyTab)
	assert.NotContains(t, out, "status/1")
}

func TestRenderResultStates(t *testing.T) {
	r := NewRenderer()

	out := r.Result(&flow.ResultView{Status: flow.ResultCollecting, Term: "x"}, "https://sift.example.com/search/h")
	assert.Contains(t, out, "collecting and classifying")
	assert.Contains(t, out, "https://sift.example.com/search/h")

	out = r.Result(&flow.ResultView{Status: flow.ResultEmptySearch, Term: "x"}, "")
	assert.Contains(t, out, `No tweets were found for "x"`)

	out = r.Result(&flow.ResultView{Status: flow.ResultNotFound}, "")
	assert.Contains(t, out, "does not exist")
}

func TestRenderHistory(t *testing.T) {
	r := NewRenderer()

	out := r.History(&flow.HistoryView{Searches: []models.SearchSummary{
		{Handle: "a1", SearchTerm: "oxygen", Count: 1000, SubmittedAt: time.Date(2021, 5, 2, 14, 5, 0, 0, time.UTC)},
	}}, "https://sift.example.com")
	assert.Contains(t, out, "1,000 tweets about oxygen were classified")
	assert.Contains(t, out, "May 2nd, 2021 · 14:05")
	assert.Contains(t, out, "https://sift.example.com/search/a1")

	assert.Contains(t, r.History(&flow.HistoryView{}, ""), "no searches with results yet")
	assert.Contains(t, r.History(&flow.HistoryView{Failed: true}, ""), flow.MsgHistoryFailed)
}
