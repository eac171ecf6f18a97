// Package flow implements the user flows of tweetsift-web: submitting a
// search, loading a result, subscribing to an email notification and
// listing the history. Flows are independent of the presentation layer and
// are shared by the web handlers and the CLI.
package flow

import (
	"context"

	"github.com/foxzi/tweetsift/internal/web/models"
)

// User-facing copy
const (
	MsgSearchFailed  = "Something went wrong when running your search! Try again, later."
	MsgEmailFailed   = "Something went wrong when storing your email! Try again, later."
	MsgEmailSaved    = "We have saved your email! We will notify you when the tweets collection and classification are ready."
	MsgHistoryFailed = "We could not load the latest searches! Try again, later."
	MsgFieldBlank    = "This field cannot be left blank"
	MsgEmailInvalid  = "Make sure you enter a valid email"
	MsgEmptyTab      = "No tweets were classified under this label."
)

// SearchSubmitter starts a search on the backend
type SearchSubmitter interface {
	SubmitSearch(ctx context.Context, req models.SearchRequest) (models.SearchHandle, error)
}

// ResultFetcher looks up the state of a search
type ResultFetcher interface {
	FetchResult(ctx context.Context, handle models.SearchHandle) (models.ResultState, error)
}

// Subscriber registers an email notification for a search
type Subscriber interface {
	SubmitEmailSubscription(ctx context.Context, sub models.EmailSubscription) error
}

// HistoryFetcher lists previous searches
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) ([]models.SearchSummary, error)
}
