package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/alert"
	"github.com/notexe/task-reminder/internal/reminder"
)

// Permission is the platform's answer to a notification permission request.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification is a platform notification request.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Platform is a notification service outside the terminal.
type Platform interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, n Notification) error
}

// AlertTitle is the platform notification title of a due reminder.
const AlertTitle = "Reminder Due!"

// Bridge routes messages to banners and, when allowed, to the platform.
type Bridge struct {
	banners  *Banners
	platform Platform
	log      zerolog.Logger

	mu        sync.Mutex
	perm      Permission
	requested bool
}

// NewBridge combines the banner channel with a platform backend. platform
// may be nil, in which case only banners are used.
func NewBridge(banners *Banners, platform Platform, log zerolog.Logger) *Bridge {
	return &Bridge{
		banners:  banners,
		platform: platform,
		log:      log,
		perm:     PermissionDefault,
	}
}

// Show displays a transient banner.
func (b *Bridge) Show(message string, sev Severity) {
	b.banners.Show(message, sev)
}

// Permission returns the last known platform permission.
func (b *Bridge) Permission() Permission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.perm
}

// OptIn asks the platform for permission. Only the first call reaches the
// platform; later calls return the cached answer.
func (b *Bridge) OptIn(ctx context.Context) Permission {
	b.mu.Lock()
	if b.requested || b.platform == nil {
		perm := b.perm
		b.mu.Unlock()
		return perm
	}
	b.requested = true
	b.mu.Unlock()

	perm, err := b.platform.RequestPermission(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("notification permission request failed")
		perm = PermissionDenied
	}

	b.mu.Lock()
	b.perm = perm
	b.mu.Unlock()

	b.log.Info().Str("permission", string(perm)).Msg("notification permission")
	if perm == PermissionGranted {
		b.Show("Notifications enabled!", SeveritySuccess)
	}
	return perm
}

// Alert surfaces a due reminder. The banner is always shown; the platform
// notification only when permission was granted. Platform failures are
// logged and otherwise ignored.
func (b *Bridge) Alert(ctx context.Context, ev alert.Event) {
	r := ev.Reminder
	if b.Permission() == PermissionGranted {
		if err := b.platform.Notify(ctx, DueNotification(r)); err != nil {
			b.log.Error().Err(err).Str("reminder_id", string(r.ID)).Msg("platform notification failed")
		}
	}
	b.Show("Reminder due: "+r.Task, SeverityInfo)
}

// DueNotification is the platform notification for a due reminder.
func DueNotification(r reminder.Reminder) Notification {
	return Notification{
		Title: AlertTitle,
		Body:  fmt.Sprintf("%s (%s) at %s", r.Task, r.Category, r.TimeLabel()),
	}
}
