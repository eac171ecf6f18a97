package flow

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/foxzi/tweetsift/internal/web/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend records calls and returns canned answers
type fakeBackend struct {
	mu sync.Mutex

	handle    models.SearchHandle
	searchErr error
	searches  []models.SearchRequest

	result     models.ResultState
	resultErr  error
	resultHits int

	subErr error
	subs   []models.EmailSubscription

	history    []models.SearchSummary
	historyErr error
}

func (f *fakeBackend) SubmitSearch(ctx context.Context, req models.SearchRequest) (models.SearchHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, req)
	return f.handle, f.searchErr
}

func (f *fakeBackend) FetchResult(ctx context.Context, handle models.SearchHandle) (models.ResultState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultHits++
	return f.result, f.resultErr
}

func (f *fakeBackend) SubmitEmailSubscription(ctx context.Context, sub models.EmailSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	return f.subErr
}

func (f *fakeBackend) FetchHistory(ctx context.Context) ([]models.SearchSummary, error) {
	return f.history, f.historyErr
}
