package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/notexe/task-reminder/internal/notify"
)

// BannerSink prints banners as status lines. A printed line cannot be taken
// back, so the exit transition and removal leave the terminal untouched.
type BannerSink struct {
	out       io.Writer
	formatter *Formatter
	enabled   bool

	mu sync.Mutex
}

func NewBannerSink(out io.Writer, formatter *Formatter, enabled bool) *BannerSink {
	return &BannerSink{
		out:       out,
		formatter: formatter,
		enabled:   enabled,
	}
}

func (s *BannerSink) Enter(b notify.Banner) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r\033[K")
	fmt.Fprintln(s.out, s.formatter.FormatBanner(b))
}

func (s *BannerSink) Exit(notify.Banner) {}

func (s *BannerSink) Remove(notify.Banner) {}
