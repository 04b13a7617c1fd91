// Package cache holds the client's local view of the remote store.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/notexe/task-reminder/internal/reminder"
)

// Source is the subset of the store gateway the cache reads from.
type Source interface {
	ListReminders(ctx context.Context) ([]reminder.Reminder, error)
	ListNotes(ctx context.Context) ([]reminder.Note, error)
	ListHistory(ctx context.Context) ([]reminder.HistoryEntry, error)
}

// Snapshot is a point-in-time copy of the cache. Callers own it.
type Snapshot struct {
	Reminders []reminder.Reminder
	Notes     []reminder.Note
	History   []reminder.HistoryEntry
	FetchedAt time.Time
}

// Active returns the pending reminders of the snapshot.
func (s Snapshot) Active() []reminder.Reminder {
	active, _ := reminder.Partition(s.Reminders)
	return active
}

// Completed returns the completed reminders of the snapshot.
func (s Snapshot) Completed() []reminder.Reminder {
	_, done := reminder.Partition(s.Reminders)
	return done
}

// Cache is the single owned application state of a client session. Every
// refresh replaces one slice wholesale; a failed refresh leaves it as it was.
type Cache struct {
	src Source
	now func() time.Time

	mu        sync.RWMutex
	reminders []reminder.Reminder
	notes     []reminder.Note
	history   []reminder.HistoryEntry
	fetchedAt time.Time
	editMode  bool
}

// New creates an empty cache reading from src.
func New(src Source) *Cache {
	return &Cache{src: src, now: time.Now}
}

// RefreshReminders replaces the reminder slice with the store's current list.
func (c *Cache) RefreshReminders(ctx context.Context) error {
	list, err := c.src.ListReminders(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.reminders = list
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}

// RefreshNotes replaces the note slice with the store's current list.
func (c *Cache) RefreshNotes(ctx context.Context) error {
	list, err := c.src.ListNotes(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.notes = list
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}

// RefreshHistory replaces the history slice with the store's current list.
func (c *Cache) RefreshHistory(ctx context.Context) error {
	list, err := c.src.ListHistory(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.history = list
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Reminders: slices.Clone(c.reminders),
		Notes:     slices.Clone(c.notes),
		History:   slices.Clone(c.history),
		FetchedAt: c.fetchedAt,
	}
}

// EditMode reports whether the list view shows destructive actions.
func (c *Cache) EditMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editMode
}

// ToggleEditMode flips edit mode and returns the new value.
func (c *Cache) ToggleEditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editMode = !c.editMode
	return c.editMode
}
