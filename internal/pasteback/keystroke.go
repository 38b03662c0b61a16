package pasteback

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-vgo/robotgo"

	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/types"
)

// keySynthesizer sends the paste combination with whatever input path the
// session supports: robotgo on X11 and macOS, ydotool on Wayland
type keySynthesizer struct {
	ydotool types.YdotoolConfig
}

// NewKeySynthesizer creates the platform keystroke synthesizer
func NewKeySynthesizer(ydotool types.YdotoolConfig) Synthesizer {
	return &keySynthesizer{ydotool: ydotool}
}

func (k *keySynthesizer) SendPasteKeystroke(target Target) error {
	if runtime.GOOS == "darwin" {
		robotgo.KeyTap("v", "cmd")
		return nil
	}

	if isX11() {
		if target == TargetTerminal {
			robotgo.KeyTap("v", "ctrl", "shift")
		} else {
			robotgo.KeyTap("v", "ctrl")
		}
		return nil
	}

	return k.sendWithYdotool(target)
}

// sendWithYdotool presses the combination as raw evdev key codes
// (29=ctrl, 42=shift, 47=v)
func (k *keySynthesizer) sendWithYdotool(target Target) error {
	args := []string{"key", "29:1", "47:1", "47:0", "29:0"}
	if target == TargetTerminal {
		args = []string{"key", "29:1", "42:1", "47:1", "47:0", "42:0", "29:0"}
	}

	cmd := exec.Command("ydotool", args...)
	if k.ydotool.SocketPath != "" {
		cmd.Env = append(os.Environ(), "YDOTOOL_SOCKET="+k.ydotool.SocketPath)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		logger.Errorf("pasteback: ydotool failed: %s", err, strings.TrimSpace(string(output)))
		return err
	}
	return nil
}

// isX11 checks if the current session is running X11
func isX11() bool {
	session := os.Getenv("XDG_SESSION_TYPE")
	return strings.ToLower(session) == "x11"
}
