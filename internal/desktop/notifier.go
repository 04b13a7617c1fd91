// Package desktop talks to the freedesktop notification service over the
// D-Bus session bus.
package desktop

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/notexe/task-reminder/internal/notify"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	iface      = "org.freedesktop.Notifications"

	// DefaultAction is the action key invoked by clicking the notification body.
	DefaultAction = "default"
)

// Notifier shows desktop notifications and reports clicks on them.
type Notifier struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
	log     zerolog.Logger

	mu   sync.Mutex
	keys map[string]uint32 // caller key -> server id
	ids  map[uint32]string // server id -> caller key
}

// Connect opens a private session bus connection.
func Connect(appName string, log zerolog.Logger) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{
		conn:    conn,
		obj:     conn.Object(busName, objectPath),
		appName: appName,
		log:     log,
		keys:    make(map[string]uint32),
		ids:     make(map[uint32]string),
	}, nil
}

// Close releases the bus connection.
func (n *Notifier) Close() error {
	return n.conn.Close()
}

// RequestPermission probes the notification server. The desktop has no
// permission prompt, so a reachable server means granted.
func (n *Notifier) RequestPermission(ctx context.Context) (notify.Permission, error) {
	var name, vendor, version, spec string
	err := n.obj.CallWithContext(ctx, iface+".GetServerInformation", 0).
		Store(&name, &vendor, &version, &spec)
	if err != nil {
		return notify.PermissionDenied, fmt.Errorf("notification server unavailable: %w", err)
	}
	n.log.Debug().Str("server", name).Str("vendor", vendor).Str("version", version).Msg("notification server")
	return notify.PermissionGranted, nil
}

// Notify shows a fire-and-forget notification.
func (n *Notifier) Notify(ctx context.Context, msg notify.Notification) error {
	_, err := n.show(ctx, msg, false)
	return err
}

// Display shows a clickable notification remembered under key.
func (n *Notifier) Display(ctx context.Context, key string, msg notify.Notification) error {
	id, err := n.show(ctx, msg, true)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.keys[key] = id
	n.ids[id] = key
	n.mu.Unlock()
	return nil
}

// Dismiss closes the notification shown under key. Unknown keys are ignored.
func (n *Notifier) Dismiss(ctx context.Context, key string) error {
	n.mu.Lock()
	id, ok := n.keys[key]
	if ok {
		delete(n.keys, key)
		delete(n.ids, id)
	}
	n.mu.Unlock()
	if !ok {
		return nil
	}
	if err := n.obj.CallWithContext(ctx, iface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("failed to close notification %d: %w", id, err)
	}
	return nil
}

// Clicks delivers the key of every clicked notification until ctx is done.
func (n *Notifier) Clicks(ctx context.Context) (<-chan string, error) {
	if err := n.conn.AddMatchSignal(
		dbus.WithMatchInterface(iface),
		dbus.WithMatchMember("ActionInvoked"),
	); err != nil {
		return nil, fmt.Errorf("failed to subscribe to notification actions: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	n.conn.Signal(signals)

	out := make(chan string)
	go func() {
		defer close(out)
		defer n.conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				id, action, ok := parseActionInvoked(sig)
				if !ok || action != DefaultAction {
					continue
				}
				n.mu.Lock()
				key, known := n.ids[id]
				n.mu.Unlock()
				if !known {
					continue
				}
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (n *Notifier) show(ctx context.Context, msg notify.Notification, clickable bool) (uint32, error) {
	var actions []string
	if clickable {
		actions = []string{DefaultAction, "Open"}
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(1)),
	}
	if clickable {
		hints["resident"] = dbus.MakeVariant(true)
	}

	var id uint32
	err := n.obj.CallWithContext(ctx, iface+".Notify", 0,
		n.appName,
		uint32(0),
		"appointment-soon",
		msg.Title,
		msg.Body,
		actions,
		hints,
		int32(-1),
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to show notification: %w", err)
	}
	return id, nil
}

func parseActionInvoked(sig *dbus.Signal) (uint32, string, bool) {
	if sig == nil || sig.Name != iface+".ActionInvoked" || len(sig.Body) != 2 {
		return 0, "", false
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return 0, "", false
	}
	action, ok := sig.Body[1].(string)
	if !ok {
		return 0, "", false
	}
	return id, action, true
}
