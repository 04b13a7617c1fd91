package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/notify"
)

var (
	// ErrNoClient means no client window is connected.
	ErrNoClient = errors.New("no client connected")
	// ErrUnknownNotification means the click names no pending notification.
	ErrUnknownNotification = errors.New("unknown notification")
)

// Displayer shows and closes platform notifications by key.
type Displayer interface {
	Display(ctx context.Context, key string, n notify.Notification) error
	Dismiss(ctx context.Context, key string) error
}

// Focuser brings an existing client window to the front.
type Focuser interface {
	Focus(url string) (clientID string, err error)
}

// Opener opens a new window at a URL.
type Opener interface {
	Open(url string) error
}

// ClickAction tells what a notification click did.
type ClickAction string

const (
	ClickFocused ClickAction = "focused"
	ClickOpened  ClickAction = "opened"
)

// Handler is the push handler state: notifications shown and not yet clicked.
type Handler struct {
	display Displayer
	clients Focuser
	opener  Opener
	appURL  *url.URL
	log     zerolog.Logger
	newID   func() string

	mu      sync.Mutex
	pending map[string]Payload
}

// NewHandler wires a handler. appURL resolves relative notification URLs
// before they are opened; it may be nil.
func NewHandler(display Displayer, clients Focuser, opener Opener, appURL *url.URL, log zerolog.Logger) *Handler {
	return &Handler{
		display: display,
		clients: clients,
		opener:  opener,
		appURL:  appURL,
		log:     log,
		newID:   uuid.NewString,
		pending: make(map[string]Payload),
	}
}

// HandlePush displays raw as a notification and returns its id. A display
// failure is logged and not retried; the id is returned regardless.
func (h *Handler) HandlePush(ctx context.Context, raw []byte) string {
	p, structured := ParsePayload(raw)
	if !structured {
		h.log.Debug().Msg("push payload is not JSON, using text fallback")
	}
	pushesTotal.Inc()

	id := h.newID()
	h.mu.Lock()
	h.pending[id] = p
	h.mu.Unlock()

	err := h.display.Display(ctx, id, notify.Notification{Title: p.Title, Body: p.Body, URL: p.URL})
	if err != nil {
		displayFailuresTotal.Inc()
		h.log.Error().Err(err).Str("notification_id", id).Msg("notification display failed")
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
		return id
	}

	h.log.Info().Str("notification_id", id).Str("title", p.Title).Msg("notification displayed")
	return id
}

// HandleClick closes the clicked notification, then focuses the most recently
// used client or, when none is connected, opens the notification URL.
// Exactly one of the two happens.
func (h *Handler) HandleClick(ctx context.Context, id string) (ClickAction, error) {
	p, ok := h.take(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNotification, id)
	}
	return h.activate(ctx, id, p.URL)
}

// HandleDesktopClick is HandleClick for clicks reported by the notification
// service. A notification the handler no longer tracks still focuses a
// client or opens DefaultURL.
func (h *Handler) HandleDesktopClick(ctx context.Context, id string) (ClickAction, error) {
	p, ok := h.take(id)
	if !ok {
		h.log.Debug().Str("notification_id", id).Msg("untracked notification clicked, using default url")
		p.URL = DefaultURL
	}
	return h.activate(ctx, id, p.URL)
}

func (h *Handler) take(id string) (Payload, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pending[id]
	delete(h.pending, id)
	return p, ok
}

func (h *Handler) activate(ctx context.Context, id, rawURL string) (ClickAction, error) {
	if err := h.display.Dismiss(ctx, id); err != nil {
		h.log.Warn().Err(err).Str("notification_id", id).Msg("failed to close notification")
	}

	target := h.resolve(rawURL)

	clientID, err := h.clients.Focus(target)
	if err == nil {
		clicksTotal.WithLabelValues(string(ClickFocused)).Inc()
		h.log.Info().Str("notification_id", id).Str("client_id", clientID).Msg("focused client")
		return ClickFocused, nil
	}
	if !errors.Is(err, ErrNoClient) {
		h.log.Warn().Err(err).Msg("focus failed, opening a new window")
	}

	if err := h.opener.Open(target); err != nil {
		return "", fmt.Errorf("failed to open %s: %w", target, err)
	}
	clicksTotal.WithLabelValues(string(ClickOpened)).Inc()
	h.log.Info().Str("notification_id", id).Str("url", target).Msg("opened window")
	return ClickOpened, nil
}

// Pending returns how many notifications await a click.
func (h *Handler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

func (h *Handler) resolve(raw string) string {
	if h.appURL == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return h.appURL.ResolveReference(ref).String()
}
