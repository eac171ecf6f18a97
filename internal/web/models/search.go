package models

import (
	"strconv"
	"time"
)

// TweetCount is the number of tweets the backend is asked to collect
type TweetCount int

// Offered tweet counts
const (
	TweetCount10   TweetCount = 10
	TweetCount50   TweetCount = 50
	TweetCount100  TweetCount = 100
	TweetCount1000 TweetCount = 1000
)

// DefaultTweetCount is preselected in the search form
const DefaultTweetCount = TweetCount1000

// TweetCounts returns the offered counts in display order
func TweetCounts() []TweetCount {
	return []TweetCount{TweetCount10, TweetCount50, TweetCount100, TweetCount1000}
}

// Valid reports whether c is one of the offered counts
func (c TweetCount) Valid() bool {
	switch c {
	case TweetCount10, TweetCount50, TweetCount100, TweetCount1000:
		return true
	}
	return false
}

// ParseTweetCount parses a form value, falling back to the default for
// anything that is not an offered count.
func ParseTweetCount(s string) TweetCount {
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultTweetCount
	}
	c := TweetCount(n)
	if !c.Valid() {
		return DefaultTweetCount
	}
	return c
}

// SearchHandle identifies a submitted search (the backend's truncated uuid)
type SearchHandle string

// Path returns the result page path for the handle
func (h SearchHandle) Path() string {
	return "/search/" + string(h)
}

// SearchRequest is what the search form submits
type SearchRequest struct {
	SearchTerm string
	Count      TweetCount
}

// EmailSubscription asks the backend to notify name/email when a search is ready
type EmailSubscription struct {
	Name   string
	Email  string
	Search SearchHandle
}

// SearchSummary is one entry of the search history
type SearchSummary struct {
	Handle      SearchHandle
	SearchTerm  string
	SubmittedAt time.Time
	Count       int
}
