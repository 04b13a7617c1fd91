package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// LinkConfig tunes the reconnect schedule of a Link.
type LinkConfig struct {
	BaseBackoff time.Duration
	MaxInterval time.Duration
}

// DefaultLinkConfig reconnects after 500ms, doubling up to 30s.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		BaseBackoff: 500 * time.Millisecond,
		MaxInterval: 30 * time.Second,
	}
}

// Link is a client window's connection to the push worker. It receives focus
// events and reports user interactions, reconnecting until its context ends.
type Link struct {
	endpoint string
	onFocus  func(url string)
	cfg      LinkConfig
	log      zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewLink connects to the worker at workerURL (http or ws scheme).
func NewLink(workerURL string, onFocus func(url string), cfg LinkConfig, log zerolog.Logger) (*Link, error) {
	endpoint, err := wsEndpoint(workerURL)
	if err != nil {
		return nil, err
	}
	return &Link{endpoint: endpoint, onFocus: onFocus, cfg: cfg, log: log}, nil
}

func wsEndpoint(workerURL string) (string, error) {
	u, err := url.Parse(workerURL)
	if err != nil {
		return "", fmt.Errorf("invalid worker url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid worker url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/clients/ws"
	return u.String(), nil
}

// Connected reports whether the link currently holds a connection.
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// Interact tells the worker this window was just used. It is a no-op while
// disconnected.
func (l *Link) Interact() {
	msg, _ := json.Marshal(Envelope{Type: MessageInteraction, Timestamp: time.Now().Unix()})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return
	}
	l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		l.log.Debug().Err(err).Msg("failed to report interaction")
	}
}

// Run keeps the link connected until ctx is cancelled.
func (l *Link) Run(ctx context.Context) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = l.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = l.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.endpoint, nil)
		if err == nil {
			exp.Reset()
			l.log.Info().Str("endpoint", l.endpoint).Msg("connected to push worker")
			l.serve(ctx, conn)
		} else if ctx.Err() == nil {
			l.log.Debug().Err(err).Msg("push worker unreachable")
		}

		if ctx.Err() != nil {
			return nil
		}

		wait := exp.NextBackOff()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Link) serve(ctx context.Context, conn *websocket.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				l.log.Warn().Err(err).Msg("push worker connection lost")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue
		}
		if env.Type == MessageFocus && l.onFocus != nil {
			l.onFocus(env.URL)
		}
	}
}
