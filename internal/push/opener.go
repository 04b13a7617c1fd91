package push

import (
	"context"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/notify"
)

// BrowserOpener opens URLs with the system browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

// LogDisplay stands in for a notification service on headless hosts: it only
// logs what would have been shown.
type LogDisplay struct {
	Log zerolog.Logger
}

func (d LogDisplay) Display(_ context.Context, key string, n notify.Notification) error {
	d.Log.Info().Str("notification_id", key).Str("title", n.Title).Str("body", n.Body).Str("url", n.URL).Msg("notification")
	return nil
}

func (d LogDisplay) Dismiss(context.Context, string) error {
	return nil
}
