package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/foxzi/tweetsift/internal/metrics"
	"github.com/foxzi/tweetsift/internal/web/models"
)

// ResultStatus is the state of the result page for one visit
type ResultStatus int

const (
	ResultLoading ResultStatus = iota
	ResultNotFound
	ResultEmptySearch
	ResultCollecting
	ResultReady
)

func (s ResultStatus) String() string {
	switch s {
	case ResultLoading:
		return "loading"
	case ResultNotFound:
		return "not_found"
	case ResultEmptySearch:
		return "empty"
	case ResultCollecting:
		return "collecting"
	case ResultReady:
		return "ready"
	}
	return "unknown"
}

// Tab is one label of a ready result
type Tab struct {
	Label string
	Color string
	Posts []string
}

// Empty reports whether nothing was classified under the tab's label
func (t Tab) Empty() bool {
	return len(t.Posts) == 0
}

// ResultView is what the result page shows for one visit
type ResultView struct {
	Status   ResultStatus
	Handle   models.SearchHandle
	Term     string
	Tabs     []Tab
	Selected string
	Err      error
}

// transition moves the view out of Loading. Later calls are ignored so a
// view resolves exactly once.
func (v *ResultView) transition(to ResultStatus) bool {
	if v.Status != ResultLoading || to == ResultLoading {
		return false
	}
	v.Status = to
	return true
}

// Select switches the visible tab. Unknown labels leave the selection alone.
func (v *ResultView) Select(label string) bool {
	for _, t := range v.Tabs {
		if t.Label == label {
			v.Selected = label
			return true
		}
	}
	return false
}

// Active returns the selected tab
func (v *ResultView) Active() (Tab, bool) {
	for _, t := range v.Tabs {
		if t.Label == v.Selected {
			return t, true
		}
	}
	return Tab{}, false
}

// IsCollecting reports whether the backend is still working on the search
func (v *ResultView) IsCollecting() bool { return v.Status == ResultCollecting }

// IsEmpty reports whether the search finished without tweets
func (v *ResultView) IsEmpty() bool { return v.Status == ResultEmptySearch }

// IsReady reports whether classified tweets are available
func (v *ResultView) IsReady() bool { return v.Status == ResultReady }

// CollectingView rebuilds the collecting state of handle without asking
// the backend, for pages that only handle the embedded email form. The
// term is unknown there, so the page omits it.
func CollectingView(handle models.SearchHandle) *ResultView {
	v := &ResultView{Status: ResultLoading, Handle: handle}
	v.transition(ResultCollecting)
	return v
}

// ResultFlow loads a search result
type ResultFlow struct {
	backend ResultFetcher
	labels  models.LabelSet
	pacer   Pacer
	logger  *slog.Logger
}

// NewResultFlow creates a new result flow for the configured labels
func NewResultFlow(b ResultFetcher, labels models.LabelSet, pacer Pacer, logger *slog.Logger) *ResultFlow {
	return &ResultFlow{backend: b, labels: labels, pacer: pacer, logger: logger}
}

// Labels returns the configured label set
func (f *ResultFlow) Labels() models.LabelSet {
	return f.labels
}

// Load fetches the result for handle once and resolves the view. Backend
// failures resolve to ResultNotFound with Err set. The returned error is
// only set when ctx ended during the display delay.
func (f *ResultFlow) Load(ctx context.Context, handle models.SearchHandle) (*ResultView, error) {
	view := &ResultView{Status: ResultLoading, Handle: handle}

	state, err := f.backend.FetchResult(ctx, handle)

	if perr := f.pacer.Settle(ctx); perr != nil {
		return nil, perr
	}

	if err != nil {
		f.logger.Warn("result lookup failed", "search_id", handle, "error", err)
		view.Err = err
		view.transition(ResultNotFound)
		metrics.IncResultViews(view.Status.String())
		return view, nil
	}

	view.Term = state.Term()

	switch s := state.(type) {
	case models.Processing:
		view.transition(ResultCollecting)
	case models.EmptyResult:
		view.transition(ResultEmptySearch)
	case models.Ready:
		view.Tabs = f.tabs(handle, s)
		view.Selected = f.labels.First()
		view.transition(ResultReady)
	default:
		view.Err = fmt.Errorf("unexpected result state %T", state)
		view.transition(ResultNotFound)
	}

	metrics.IncResultViews(view.Status.String())
	return view, nil
}

// tabs builds one tab per configured label in configured order
func (f *ResultFlow) tabs(handle models.SearchHandle, ready models.Ready) []Tab {
	kept, dropped := ready.Restrict(f.labels)
	if len(dropped) > 0 {
		sort.Strings(dropped)
		f.logger.Warn("dropping labels missing from configuration",
			"search_id", handle, "labels", dropped)
	}

	tabs := make([]Tab, 0, len(f.labels))
	for i, label := range f.labels {
		tabs = append(tabs, Tab{
			Label: label,
			Color: models.LabelColor(i),
			Posts: kept.Groups[label],
		})
	}
	return tabs
}
