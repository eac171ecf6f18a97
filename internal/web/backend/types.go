package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SearchRequest is the body of POST api/search
type SearchRequest struct {
	SearchTerm     string `json:"search_term"`
	NumberOfTweets int    `json:"number_of_tweets"`
}

// SearchResponse is the backend's view of a created search
type SearchResponse struct {
	TruncatedUUID  string `json:"truncated_uuid"`
	SearchTerm     string `json:"search_term,omitempty"`
	NumberOfTweets int    `json:"number_of_tweets,omitempty"`
}

// EmailRequest is the body of POST api/email
type EmailRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Search string `json:"search"`
}

// ResultRequest is the body of POST api/result
type ResultRequest struct {
	SearchID string `json:"search_id"`
}

// HistoryItem is one element of GET api/search_history
type HistoryItem struct {
	TruncatedUUID  string      `json:"truncated_uuid"`
	SearchTerm     string      `json:"search_term"`
	Date           historyDate `json:"date"`
	NumberOfTweets int         `json:"number_of_tweets"`
}

// ErrorResponse is the body of a DRF error reply
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ResultStatus is the explicit discriminator a newer backend may send
type ResultStatus string

// Result statuses
const (
	ResultStatusProcessing ResultStatus = "processing"
	ResultStatusEmpty      ResultStatus = "empty"
	ResultStatusReady      ResultStatus = "ready"
)

// postIDs decodes a list of tweet ids given either as strings or numbers
type postIDs []string

func (p *postIDs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case string:
			ids = append(ids, id)
		case json.Number:
			ids = append(ids, id.String())
		default:
			return fmt.Errorf("unexpected post id %v", v)
		}
	}
	*p = ids
	return nil
}

// historyDateLayouts are tried in order. The naive layouts cover a backend
// running without time zone support; those dates are taken as UTC.
var historyDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// historyDate decodes a submission date leniently. An unparseable or
// missing date leaves the zero time instead of failing the whole list.
type historyDate struct {
	time.Time
}

func (d *historyDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or a non-string value
		return nil
	}
	for _, layout := range historyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return nil
}
