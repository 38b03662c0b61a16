package hotkey

import (
	"fmt"

	"github.com/MarinX/keylogger"
)

// CapturedCombo is one key press together with the modifiers held at
// that moment
type CapturedCombo struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Super bool
}

// CaptureCombo blocks until a non-modifier key is pressed and returns
// the combination. Used by the configuration wizard.
func CaptureCombo() (CapturedCombo, error) {
	device := keylogger.FindKeyboardDevice()
	if device == "" {
		return CapturedCombo{}, fmt.Errorf("no keyboard device found - check permissions (input group)")
	}

	k, err := keylogger.New(device)
	if err != nil {
		return CapturedCombo{}, fmt.Errorf("failed to open keyboard device: %w", err)
	}
	defer k.Close()

	events := k.Read()
	var mods modifierState

	for e := range events {
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
		name, ok := KeyNames[e.Code]
		if !ok || name == "space" || name == "escape" {
			continue
		}

		return CapturedCombo{
			Key:   name,
			Ctrl:  mods.ctrl,
			Shift: mods.shift,
			Alt:   mods.alt,
			Super: mods.super,
		}, nil
	}

	return CapturedCombo{}, fmt.Errorf("keyboard event stream ended before a key was pressed")
}
