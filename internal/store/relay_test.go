package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/task-reminder/internal/reminder"
)

func TestRelayForwardsDueRemindersOnce(t *testing.T) {
	var mu sync.Mutex
	var pushed []map[string]string
	worker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/push", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		pushed = append(pushed, body)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer worker.Close()

	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.AddReminder(ctx, reminder.Fields{Task: "Pay bills", Category: "finance", Due: "2025-01-10", DueTime: "09:00", Priority: "high"})
	require.NoError(t, err)
	_, err = s.AddReminder(ctx, reminder.Fields{Task: "Later", Category: "work", Due: "2025-01-10", DueTime: "18:00", Priority: "low"})
	require.NoError(t, err)

	relay := NewRelay(s, worker.URL, time.Minute, zerolog.Nop())
	relay.now = func() time.Time { return time.Date(2025, 1, 10, 8, 59, 30, 0, time.Local) }

	relay.relayDue(ctx)
	relay.relayDue(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, pushed, 1)
	assert.Equal(t, "Reminder Due!", pushed[0]["title"])
	assert.Equal(t, "Pay bills (finance) at 09:00", pushed[0]["body"])
	assert.Equal(t, "/", pushed[0]["url"])
}

func TestRelayRejectsNonPositiveInterval(t *testing.T) {
	relay := NewRelay(openTestStore(t), "http://127.0.0.1:1", 0, zerolog.Nop())
	assert.Error(t, relay.Run(context.Background()))
}
