// Package gateway is the HTTP client of the remote reminder store.
//
// Every call is a single round trip: no retries, no idempotency keys. Any
// transport error, non-2xx status or undecodable body is reported as an
// error wrapping ErrFailure; callers should not expect anything finer.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/reminder"
)

// ErrFailure is the opaque failure signal of every gateway call.
var ErrFailure = errors.New("remote store request failed")

// Client talks to the remote store.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// Option configures a Client during construction in New.
type Option func(*Client)

// WithTimeout bounds each request. Zero keeps the platform default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithHTTPClient swaps the underlying transport client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.SetTransport(hc.Transport)
	}
}

// New constructs a Client for the store rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.log.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("elapsed", resp.Time()).
			Msg("store response")
		return nil
	})

	return c
}

// ListReminders returns every reminder, pending and completed.
func (c *Client) ListReminders(ctx context.Context) ([]reminder.Reminder, error) {
	var out []reminder.Reminder
	if err := c.do(ctx, http.MethodGet, "/reminders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUpcoming returns the pending reminders due within the next three days,
// as computed by the store.
func (c *Client) ListUpcoming(ctx context.Context) ([]reminder.Reminder, error) {
	var out []reminder.Reminder
	if err := c.do(ctx, http.MethodGet, "/upcoming", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReminder submits a new reminder. A repeated call creates a duplicate.
func (c *Client) CreateReminder(ctx context.Context, f reminder.Fields) error {
	return c.do(ctx, http.MethodPost, "/reminders", f, nil)
}

// CompleteReminder marks a reminder completed.
func (c *Client) CompleteReminder(ctx context.Context, id reminder.ID) error {
	return c.do(ctx, http.MethodPut, "/reminders/"+url.PathEscape(string(id))+"/complete", nil, nil)
}

// DeleteReminder removes a reminder.
func (c *Client) DeleteReminder(ctx context.Context, id reminder.ID) error {
	return c.do(ctx, http.MethodDelete, "/reminders/"+url.PathEscape(string(id)), nil, nil)
}

// ListNotes returns all notes in store order.
func (c *Client) ListNotes(ctx context.Context) ([]reminder.Note, error) {
	var out []reminder.Note
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNote adds a note.
func (c *Client) CreateNote(ctx context.Context, content string) error {
	return c.do(ctx, http.MethodPost, "/notes", map[string]string{"content": content}, nil)
}

// DeleteNote removes the note at index in the store's current list. The
// index comes from whatever snapshot the caller holds and may be stale.
func (c *Client) DeleteNote(ctx context.Context, index int) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+strconv.Itoa(index), nil, nil)
}

// ListHistory returns the store's mutation history.
func (c *Client) ListHistory(ctx context.Context) ([]reminder.HistoryEntry, error) {
	var out []reminder.HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrFailure, method, path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s %s: status %d", ErrFailure, method, path, resp.StatusCode())
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("%w: %s %s: decode response: %w", ErrFailure, method, path, err)
	}
	return nil
}
