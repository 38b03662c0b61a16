// Package hotkey watches evdev for the configured show-window combination
// when the application-owned shortcut is enabled. Reading evdev directly
// works on both X11 and Wayland sessions.
package hotkey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MarinX/keylogger"

	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/types"
)

// debounceInterval absorbs key repeat so one press fires one trigger
const debounceInterval = 200 * time.Millisecond

// modifierState tracks the state of modifier keys (Ctrl, Shift, Alt, Super)
type modifierState struct {
	ctrl  bool
	shift bool
	alt   bool
	super bool
}

// Monitor fires onTrigger whenever the configured combination is pressed.
// Start and Stop may be called repeatedly as the user toggles the
// internal-shortcut setting.
type Monitor struct {
	binding   types.KeyBinding
	onTrigger func()

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// NewMonitor creates a monitor for the given binding
func NewMonitor(binding types.KeyBinding, onTrigger func()) *Monitor {
	return &Monitor{
		binding:   binding,
		onTrigger: onTrigger,
	}
}

// Start begins listening on the keyboard device. A monitor that is
// already running is left alone.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	device := keylogger.FindKeyboardDevice()
	if device == "" {
		return fmt.Errorf("no keyboard device found - check permissions (input group)")
	}

	k, err := keylogger.New(device)
	if err != nil {
		return fmt.Errorf("failed to open keyboard device: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true

	logger.Debugf("hotkey: listening for Ctrl=%v Shift=%v Alt=%v Super=%v Key=%s on %s",
		m.binding.Ctrl, m.binding.Shift, m.binding.Alt, m.binding.Super, m.binding.Key, device)

	go m.watch(ctx, k)
	return nil
}

// Stop ends listening; safe to call when not running
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.cancel()
	m.running = false
	logger.Debug("hotkey: monitor stopped")
}

func (m *Monitor) watch(ctx context.Context, k *keylogger.KeyLogger) {
	defer k.Close()

	events := k.Read()
	var mods modifierState
	lastTrigger := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				logger.Debug("hotkey: keyboard event channel closed")
				return
			}
			if e.Type != keylogger.EvKey {
				continue
			}

			pressed := e.KeyPress()
			released := e.KeyRelease()
			if !pressed && !released {
				continue
			}

			switch e.Code {
			case codeLeftControl, codeRightControl:
				mods.ctrl = pressed
				continue
			case codeLeftShift, codeRightShift:
				mods.shift = pressed
				continue
			case codeLeftAlt, codeRightAlt:
				mods.alt = pressed
				continue
			case codeSuper:
				mods.super = pressed
				continue
			}

			if !pressed {
				continue
			}
			if KeyNames[e.Code] != m.binding.Key {
				continue
			}
			if !m.matchesBinding(mods) {
				continue
			}
			if time.Since(lastTrigger) < debounceInterval {
				continue
			}

			lastTrigger = time.Now()
			logger.Debug("hotkey: combination pressed")
			m.onTrigger()
		}
	}
}

// matchesBinding verifies if current modifier state matches the configuration
func (m *Monitor) matchesBinding(mods modifierState) bool {
	return mods.ctrl == m.binding.Ctrl &&
		mods.shift == m.binding.Shift &&
		mods.alt == m.binding.Alt &&
		mods.super == m.binding.Super
}
