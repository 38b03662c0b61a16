// Package dbus exposes the daemon's command surface on the session bus.
// The UI shell calls these methods and listens for the signals; payloads
// are JSON strings in the db.json schema.
package dbus

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/pasteback"
	"github.com/dooshek/clipd/internal/store"
)

const (
	dbusServiceName = "com.dooshek.clipd"
	dbusObjectPath  = "/com/dooshek/clipd/History"
	dbusInterface   = "com.dooshek.clipd.History"
)

// ErrServiceRunning is returned by Start when another clipd owns the bus name
var ErrServiceRunning = errors.New("clipd D-Bus service is already running")

// Server implements the D-Bus command surface
type Server struct {
	conn  *dbus.Conn
	store *store.Store
	paste *pasteback.Coordinator

	// called after useInternalShortcut changes so the hotkey monitor
	// can be started or stopped
	onShortcutToggle func(enabled bool)

	unsubscribe func()
}

// NewServer creates the command surface around the shared store and the
// paste-back coordinator
func NewServer(st *store.Store, paste *pasteback.Coordinator, onShortcutToggle func(bool)) *Server {
	return &Server{
		store:            st,
		paste:            paste,
		onShortcutToggle: onShortcutToggle,
	}
}

// Start connects to the session bus, claims the service name, exports the
// object and begins forwarding store broadcasts as HistoryChanged signals
func (s *Server) Start() error {
	var err error
	s.conn, err = dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	reply, err := s.conn.RequestName(dbusServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.conn.Close()
		return ErrServiceRunning
	}

	if err := s.conn.Export(s, dbusObjectPath, dbusInterface); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: dbusObjectPath,
		Interfaces: []introspect.Interface{{
			Name: dbusInterface,
			Methods: []introspect.Method{
				{
					Name: "GetHistory",
					Args: []introspect.Arg{
						{Name: "history", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "DeleteItem",
					Args: []introspect.Arg{
						{Name: "id", Type: "s", Direction: "in"},
						{Name: "history", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "ClearAll",
					Args: []introspect.Arg{
						{Name: "history", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "TogglePin",
					Args: []introspect.Arg{
						{Name: "id", Type: "s", Direction: "in"},
						{Name: "history", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "ReorderItems",
					Args: []introspect.Arg{
						{Name: "active_id", Type: "s", Direction: "in"},
						{Name: "over_id", Type: "s", Direction: "in"},
						{Name: "history", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "GetSettings",
					Args: []introspect.Arg{
						{Name: "settings", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "UpdateSetting",
					Args: []introspect.Arg{
						{Name: "key", Type: "s", Direction: "in"},
						{Name: "value_json", Type: "s", Direction: "in"},
						{Name: "settings", Type: "s", Direction: "out"},
					},
				},
				{
					Name: "PasteItem",
					Args: []introspect.Arg{
						{Name: "id", Type: "s", Direction: "in"},
					},
				},
				{
					Name: "PasteContent",
					Args: []introspect.Arg{
						{Name: "text", Type: "s", Direction: "in"},
					},
				},
				{Name: "Activate"},
			},
			Signals: []introspect.Signal{
				{
					Name: "HistoryChanged",
					Args: []introspect.Arg{
						{Name: "history", Type: "s"},
					},
				},
				{Name: "ShowWindow"},
				{Name: "HideWindow"},
			},
		}},
	}

	if err := s.conn.Export(introspect.NewIntrospectable(node), dbusObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	updates, cancel := s.store.Subscribe()
	s.unsubscribe = cancel
	go func() {
		for history := range updates {
			s.emitSignal("HistoryChanged", encodeHistory(history))
		}
	}()

	logger.Infof("🔌 D-Bus service started: %s", dbusServiceName)
	return nil
}

// Stop releases the bus connection
func (s *Server) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	logger.Info("🔌 D-Bus service stopped")
}

// GetHistory returns the full history snapshot (D-Bus method)
func (s *Server) GetHistory() (string, *dbus.Error) {
	return encodeHistory(s.store.History()), nil
}

// DeleteItem removes an entry and returns the resulting history (D-Bus method)
func (s *Server) DeleteItem(id string) (string, *dbus.Error) {
	logger.Debugf("D-Bus: DeleteItem %s", id)
	s.store.Delete(id)
	return encodeHistory(s.store.History()), nil
}

// ClearAll removes all unpinned entries and returns the resulting history
// (D-Bus method)
func (s *Server) ClearAll() (string, *dbus.Error) {
	logger.Debug("D-Bus: ClearAll")
	s.store.ClearAll()
	return encodeHistory(s.store.History()), nil
}

// TogglePin flips an entry's pinned flag and returns the resulting
// history (D-Bus method)
func (s *Server) TogglePin(id string) (string, *dbus.Error) {
	logger.Debugf("D-Bus: TogglePin %s", id)
	s.store.TogglePin(id)
	return encodeHistory(s.store.History()), nil
}

// ReorderItems moves one entry and returns the resulting history (D-Bus method)
func (s *Server) ReorderItems(activeID, overID string) (string, *dbus.Error) {
	logger.Debugf("D-Bus: ReorderItems %s -> %s", activeID, overID)
	s.store.Reorder(activeID, overID)
	return encodeHistory(s.store.History()), nil
}

// GetSettings returns the current settings snapshot (D-Bus method)
func (s *Server) GetSettings() (string, *dbus.Error) {
	return encodeSettings(s.store.Settings()), nil
}

// UpdateSetting applies one settings change and returns the resulting
// snapshot (D-Bus method). Rejected updates are logged, not surfaced: the
// caller sees the unchanged snapshot.
func (s *Server) UpdateSetting(key, valueJSON string) (string, *dbus.Error) {
	logger.Debugf("D-Bus: UpdateSetting %s = %s", key, valueJSON)

	var value interface{}
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		logger.Warnf("D-Bus: UpdateSetting %s carries invalid JSON: %v", key, err)
		return encodeSettings(s.store.Settings()), nil
	}

	if err := s.store.UpdateSetting(key, value); err != nil {
		logger.Warnf("D-Bus: %v", err)
		return encodeSettings(s.store.Settings()), nil
	}

	if key == "useInternalShortcut" && s.onShortcutToggle != nil {
		if enabled, ok := value.(bool); ok {
			s.onShortcutToggle(enabled)
		}
	}

	return encodeSettings(s.store.Settings()), nil
}

// PasteItem triggers paste-back of a stored entry (D-Bus method)
func (s *Server) PasteItem(id string) *dbus.Error {
	logger.Debugf("D-Bus: PasteItem %s", id)
	s.paste.PasteItem(id)
	return nil
}

// PasteContent triggers paste-back of ephemeral text (D-Bus method)
func (s *Server) PasteContent(text string) *dbus.Error {
	logger.Debug("D-Bus: PasteContent")
	s.paste.PasteContent(text)
	return nil
}

// Activate asks the UI to present itself (D-Bus method). A second clipd
// launch calls this on the running instance instead of starting up.
func (s *Server) Activate() *dbus.Error {
	logger.Debug("D-Bus: Activate")
	s.emitSignal("ShowWindow")
	return nil
}

// EmitShowWindow asks the UI to present itself (hotkey path)
func (s *Server) EmitShowWindow() {
	s.emitSignal("ShowWindow")
}

// EmitHideWindow asks the UI to hide before a paste keystroke is sent
func (s *Server) EmitHideWindow() {
	s.emitSignal("HideWindow")
}

// emitSignal emits a D-Bus signal
func (s *Server) emitSignal(name string, args ...interface{}) {
	if s.conn == nil {
		logger.Warnf("D-Bus: Cannot emit signal %s - no connection", name)
		return
	}

	signalName := dbusInterface + "." + name
	if err := s.conn.Emit(dbus.ObjectPath(dbusObjectPath), signalName, args...); err != nil {
		logger.Errorf("D-Bus: Failed to emit signal %s", err, name)
	}
}

// ActivateRunning raises the UI of an already-running daemon
func ActivateRunning() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(dbusServiceName, dbusObjectPath)
	if call := obj.Call(dbusInterface+".Activate", 0); call.Err != nil {
		return fmt.Errorf("failed to activate running instance: %w", call.Err)
	}
	return nil
}

func encodeHistory(history []store.Entry) string {
	data, err := json.Marshal(history)
	if err != nil {
		logger.Error("Failed to encode history", err)
		return "[]"
	}
	return string(data)
}

func encodeSettings(settings store.Settings) string {
	data, err := json.Marshal(settings)
	if err != nil {
		logger.Error("Failed to encode settings", err)
		return "{}"
	}
	return string(data)
}
