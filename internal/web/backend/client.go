package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/foxzi/tweetsift/internal/metrics"
	"github.com/foxzi/tweetsift/internal/web/models"
)

// Endpoint paths relative to the backend base address
const (
	PathSearch        = "api/search"
	PathEmail         = "api/email"
	PathResult        = "api/result"
	PathSearchHistory = "api/search_history"
)

// Client is a classification backend API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new backend API client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SubmitSearch asks the backend to collect and classify tweets for a term
func (c *Client) SubmitSearch(ctx context.Context, req models.SearchRequest) (models.SearchHandle, error) {
	body := &SearchRequest{
		SearchTerm:     req.SearchTerm,
		NumberOfTweets: int(req.Count),
	}

	var resp SearchResponse
	if err := c.request(ctx, "submit search", http.MethodPost, PathSearch, body, &resp); err != nil {
		return "", err
	}
	if resp.TruncatedUUID == "" {
		return "", &NetworkError{Op: "submit search", Err: errors.New("response has no search id")}
	}
	return models.SearchHandle(resp.TruncatedUUID), nil
}

// SubmitEmailSubscription registers a name/email to be notified when a search completes
func (c *Client) SubmitEmailSubscription(ctx context.Context, sub models.EmailSubscription) error {
	body := &EmailRequest{
		Name:   sub.Name,
		Email:  sub.Email,
		Search: string(sub.Search),
	}
	return c.request(ctx, "submit email", http.MethodPost, PathEmail, body, nil)
}

// FetchResult gets the current state of a search
func (c *Client) FetchResult(ctx context.Context, handle models.SearchHandle) (models.ResultState, error) {
	var raw map[string]json.RawMessage
	body := &ResultRequest{SearchID: string(handle)}
	if err := c.request(ctx, "fetch result", http.MethodPost, PathResult, body, &raw); err != nil {
		return nil, err
	}

	state, err := parseResult(raw)
	if err != nil {
		return nil, &NetworkError{Op: "fetch result", Err: err}
	}
	return state, nil
}

// FetchHistory lists past searches, newest first as ordered by the backend
func (c *Client) FetchHistory(ctx context.Context) ([]models.SearchSummary, error) {
	var items []HistoryItem
	if err := c.request(ctx, "fetch history", http.MethodGet, PathSearchHistory, nil, &items); err != nil {
		return nil, err
	}

	out := make([]models.SearchSummary, 0, len(items))
	for _, item := range items {
		out = append(out, models.SearchSummary{
			Handle:      models.SearchHandle(item.TruncatedUUID),
			SearchTerm:  item.SearchTerm,
			SubmittedAt: item.Date.Time,
			Count:       item.NumberOfTweets,
		})
	}
	return out, nil
}

// request performs one HTTP exchange with the backend
func (c *Client) request(ctx context.Context, op, method, path string, body any, result any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveBackendCall(path, callOutcome(err), time.Since(start))
	}()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		var errResp ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Detail != "" {
			return fmt.Errorf("%s: %w: %s", op, ErrNotFound, errResp.Detail)
		}
		return fmt.Errorf("%s: %w", op, ErrNotFound)

	case resp.StatusCode == http.StatusBadRequest:
		return decodeValidationError(resp.Body)

	case resp.StatusCode >= 400:
		var errResp ErrorResponse
		cause := errors.New(http.StatusText(resp.StatusCode))
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			cause = errors.New(errResp.Detail)
		}
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: cause}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	c.logger.Debug("backend call", "op", op, "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}

// decodeValidationError reads a DRF field error body such as
// {"email": ["Enter a valid email address."]}.
func decodeValidationError(r io.Reader) error {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return &ValidationError{}
	}

	fields := make(map[string][]string, len(raw))
	for name, v := range raw {
		switch msg := v.(type) {
		case string:
			fields[name] = []string{msg}
		case []any:
			for _, m := range msg {
				fields[name] = append(fields[name], fmt.Sprint(m))
			}
		default:
			fields[name] = []string{fmt.Sprint(msg)}
		}
	}
	return &ValidationError{Fields: fields}
}

// requestID reuses the inbound request id so backend logs can be correlated
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func callOutcome(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &validationErr):
		return "rejected"
	default:
		return "error"
	}
}
