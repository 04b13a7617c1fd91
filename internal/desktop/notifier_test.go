package desktop

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestParseActionInvoked(t *testing.T) {
	tests := []struct {
		name   string
		sig    *dbus.Signal
		id     uint32
		action string
		ok     bool
	}{
		{"click", &dbus.Signal{Name: iface + ".ActionInvoked", Body: []interface{}{uint32(7), "default"}}, 7, "default", true},
		{"other member", &dbus.Signal{Name: iface + ".NotificationClosed", Body: []interface{}{uint32(7), uint32(2)}}, 0, "", false},
		{"short body", &dbus.Signal{Name: iface + ".ActionInvoked", Body: []interface{}{uint32(7)}}, 0, "", false},
		{"wrong id type", &dbus.Signal{Name: iface + ".ActionInvoked", Body: []interface{}{"7", "default"}}, 0, "", false},
		{"nil", nil, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, action, ok := parseActionInvoked(tt.sig)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.action, action)
		})
	}
}
