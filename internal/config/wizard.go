package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/dooshek/clipd/internal/hotkey"
	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/types"
)

// RunWizard interactively captures the show-window shortcut and saves it
func RunWizard() error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Println("\n📋  Welcome to the clipd configuration wizard!")
	fmt.Println("\nThis wizard sets the shortcut that opens the clipboard history window.")

	var binding types.KeyBinding

	for {
		cyan.Println("\nPress your key combination (Ctrl, Alt, Shift, Super + key)...")
		fmt.Println("You can use combinations like Super+V, Ctrl+Shift+H, Alt+C etc.")
		fmt.Println("Only a-z, 0-9, and `[]\\;',./-= keys are allowed.")
		fmt.Println("(Press Ctrl+C to cancel)")

		combo, err := hotkey.CaptureCombo()
		if err != nil {
			logger.Error("Failed to capture key", err)
			return err
		}

		binding = types.KeyBinding{
			Key:   combo.Key,
			Ctrl:  combo.Ctrl,
			Shift: combo.Shift,
			Alt:   combo.Alt,
			Super: combo.Super,
		}

		green.Printf("\nCaptured: %s\n", FormatKeyCombo(binding))
		fmt.Print("Keep this combination? [Y/n]: ")

		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer == "" || answer == "y" || answer == "yes" {
			break
		}
	}

	if err := SaveConfig(&types.Config{OpenKey: binding}); err != nil {
		logger.Error("Failed to save configuration", err)
		return err
	}

	yellow.Println("\n✅ Configuration saved.")
	fmt.Println("Enable \"internal shortcut\" in the settings to use it, then restart clipd.")
	return nil
}

// FormatKeyCombo formats a key combination into a human-readable string
func FormatKeyCombo(cfg types.KeyBinding) string {
	var parts []string
	if cfg.Ctrl {
		parts = append(parts, "CTRL")
	}
	if cfg.Shift {
		parts = append(parts, "SHIFT")
	}
	if cfg.Alt {
		parts = append(parts, "ALT")
	}
	if cfg.Super {
		parts = append(parts, "SUPER")
	}
	if key := cfg.Key; key != "" {
		parts = append(parts, strings.ToUpper(key))
	}
	return strings.Join(parts, " + ")
}
