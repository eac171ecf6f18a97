package flow

import (
	"context"
	"log/slog"

	"github.com/foxzi/tweetsift/internal/web/models"
)

// HistoryView lists previous searches
type HistoryView struct {
	Searches []models.SearchSummary
	Failed   bool
}

// Empty reports whether there is nothing to list
func (v *HistoryView) Empty() bool {
	return len(v.Searches) == 0
}

// HistoryFlow loads the search history
type HistoryFlow struct {
	backend HistoryFetcher
	pacer   Pacer
	logger  *slog.Logger
}

// NewHistoryFlow creates a new history flow
func NewHistoryFlow(b HistoryFetcher, pacer Pacer, logger *slog.Logger) *HistoryFlow {
	return &HistoryFlow{backend: b, pacer: pacer, logger: logger}
}

// Load fetches the history once. A backend failure is reported through
// HistoryView.Failed; the returned error is only set when ctx ended during
// the display delay.
func (f *HistoryFlow) Load(ctx context.Context) (*HistoryView, error) {
	searches, err := f.backend.FetchHistory(ctx)

	if perr := f.pacer.Settle(ctx); perr != nil {
		return nil, perr
	}

	if err != nil {
		f.logger.Error("failed to load search history", "error", err)
		return &HistoryView{Failed: true}, nil
	}
	return &HistoryView{Searches: searches}, nil
}
