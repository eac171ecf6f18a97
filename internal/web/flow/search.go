package flow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/foxzi/tweetsift/internal/metrics"
	"github.com/foxzi/tweetsift/internal/validate"
	"github.com/foxzi/tweetsift/internal/web/backend"
	"github.com/foxzi/tweetsift/internal/web/models"
)

// SearchStatus is the state of the search form
type SearchStatus int

const (
	SearchIdle SearchStatus = iota
	SearchValidating
	SearchSubmitting
	SearchNavigateToResult
)

func (s SearchStatus) String() string {
	switch s {
	case SearchIdle:
		return "idle"
	case SearchValidating:
		return "validating"
	case SearchSubmitting:
		return "submitting"
	case SearchNavigateToResult:
		return "navigate"
	}
	return "unknown"
}

// SearchForm is the outcome of one submission attempt
type SearchForm struct {
	Status       SearchStatus
	Term         string
	Count        models.TweetCount
	Handle       models.SearchHandle
	Errors       validate.Errors
	SubmitFailed bool
}

// TermInvalid reports whether the term was rejected before submission
func (f *SearchForm) TermInvalid() bool {
	return f.Errors.Has("term")
}

// NewSearchForm returns the idle form with the default count preselected
func NewSearchForm() *SearchForm {
	return &SearchForm{Status: SearchIdle, Count: models.DefaultTweetCount, Errors: validate.Errors{}}
}

// SearchFlow validates and submits searches
type SearchFlow struct {
	backend SearchSubmitter
	pacer   Pacer
	logger  *slog.Logger
}

// NewSearchFlow creates a new search flow
func NewSearchFlow(b SearchSubmitter, pacer Pacer, logger *slog.Logger) *SearchFlow {
	return &SearchFlow{backend: b, pacer: pacer, logger: logger}
}

// Submit validates term and, when valid, starts the search. The returned
// error is only set when ctx ended during the display delay.
func (f *SearchFlow) Submit(ctx context.Context, term string, count models.TweetCount) (*SearchForm, error) {
	if !count.Valid() {
		count = models.DefaultTweetCount
	}

	form := NewSearchForm()
	form.Term = term
	form.Count = count
	form.Status = SearchValidating

	if !validate.DisplayName(term) {
		form.Errors.Add("term", MsgFieldBlank)
		form.Status = SearchIdle
		metrics.IncSearches("invalid")
		return form, nil
	}

	form.Status = SearchSubmitting
	handle, err := f.backend.SubmitSearch(ctx, models.SearchRequest{SearchTerm: term, Count: count})

	if perr := f.pacer.Settle(ctx); perr != nil {
		return nil, perr
	}

	if err != nil {
		var verr *backend.ValidationError
		if errors.As(err, &verr) {
			f.logger.Warn("search rejected by backend", "term", term, "error", err)
		} else {
			f.logger.Error("failed to submit search", "term", term, "error", err)
		}
		form.SubmitFailed = true
		form.Status = SearchIdle
		metrics.IncSearches("failed")
		return form, nil
	}

	form.Handle = handle
	form.Status = SearchNavigateToResult
	metrics.IncSearches("submitted")
	return form, nil
}
