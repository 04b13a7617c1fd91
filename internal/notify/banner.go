// Package notify surfaces messages to the user: transient in-terminal
// banners and, for due reminders, the platform notification service.
package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Severity selects the banner style.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Banner display timings.
const (
	DefaultDisplay = 3 * time.Second
	DefaultExit    = 300 * time.Millisecond
)

// Banner is one transient message.
type Banner struct {
	ID       uint64
	Message  string
	Severity Severity
}

// Sink draws banners. Enter is called when a banner appears, Exit when its
// exit transition starts and Remove when it is gone. Calls for different
// banners may interleave.
type Sink interface {
	Enter(b Banner)
	Exit(b Banner)
	Remove(b Banner)
}

// Banners schedules banner lifecycles. Each banner owns its timers; there is
// no queue and no cap on how many are visible at once.
type Banners struct {
	sink    Sink
	display time.Duration
	exit    time.Duration

	seq    atomic.Uint64
	mu     sync.Mutex
	timers map[uint64]*time.Timer
	closed bool
}

// BannerOption configures Banners.
type BannerOption func(*Banners)

// WithDurations overrides the display and exit durations.
func WithDurations(display, exit time.Duration) BannerOption {
	return func(b *Banners) {
		if display > 0 {
			b.display = display
		}
		if exit >= 0 {
			b.exit = exit
		}
	}
}

// NewBanners returns a scheduler drawing into sink.
func NewBanners(sink Sink, opts ...BannerOption) *Banners {
	b := &Banners{
		sink:    sink,
		display: DefaultDisplay,
		exit:    DefaultExit,
		timers:  make(map[uint64]*time.Timer),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show makes a banner visible now and schedules its dismissal.
func (b *Banners) Show(message string, sev Severity) Banner {
	if sev == "" {
		sev = SeverityInfo
	}
	banner := Banner{ID: b.seq.Add(1), Message: message, Severity: sev}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return banner
	}
	b.sink.Enter(banner)
	b.timers[banner.ID] = time.AfterFunc(b.display, func() { b.startExit(banner) })
	b.mu.Unlock()

	return banner
}

func (b *Banners) startExit(banner Banner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.sink.Exit(banner)
	b.timers[banner.ID] = time.AfterFunc(b.exit, func() { b.remove(banner) })
}

func (b *Banners) remove(banner Banner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	delete(b.timers, banner.ID)
	b.sink.Remove(banner)
}

// Visible returns how many banners have not been removed yet.
func (b *Banners) Visible() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.timers)
}

// Close stops all pending timers. Banners shown afterwards are dropped.
func (b *Banners) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
}
