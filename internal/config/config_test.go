package config

import (
	"testing"

	"github.com/dooshek/clipd/internal/types"
)

func TestFormatKeyCombo(t *testing.T) {
	cases := []struct {
		binding types.KeyBinding
		want    string
	}{
		{types.KeyBinding{Key: "v", Super: true}, "SUPER + V"},
		{types.KeyBinding{Key: "h", Ctrl: true, Shift: true}, "CTRL + SHIFT + H"},
		{types.KeyBinding{Key: "c", Alt: true}, "ALT + C"},
		{types.KeyBinding{Key: "x", Ctrl: true, Shift: true, Alt: true, Super: true}, "CTRL + SHIFT + ALT + SUPER + X"},
		{types.KeyBinding{Key: "v"}, "V"},
		{types.KeyBinding{Ctrl: true}, "CTRL"},
	}

	for _, tc := range cases {
		if got := FormatKeyCombo(tc.binding); got != tc.want {
			t.Errorf("FormatKeyCombo(%#v) = %q, want %q", tc.binding, got, tc.want)
		}
	}
}

func TestMergeConfigsPrefersNewValues(t *testing.T) {
	existing := &types.Config{
		OpenKey: types.KeyBinding{Key: "v", Super: true},
		Ydotool: types.YdotoolConfig{SocketPath: "/run/ydotool.sock"},
	}
	incoming := &types.Config{
		OpenKey: types.KeyBinding{Key: "h", Ctrl: true, Shift: true},
	}

	mergeConfigs(existing, incoming)

	if existing.OpenKey.Key != "h" || !existing.OpenKey.Ctrl || !existing.OpenKey.Shift {
		t.Fatalf("expected new key binding to win, got %#v", existing.OpenKey)
	}
	if existing.Ydotool.SocketPath != "/run/ydotool.sock" {
		t.Fatalf("expected untouched ydotool config to survive, got %#v", existing.Ydotool)
	}
}
