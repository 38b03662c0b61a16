package pasteback

import (
	"strings"

	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/windowdetect"
)

// terminalClassHints are lower-case substrings of window class names that
// identify terminal emulators
var terminalClassHints = []string{
	"term",
	"alacritty",
	"kitty",
	"konsole",
}

// windowClassifier classifies the focused window via a window detector.
// A nil detector or any query failure defaults to "not a terminal".
type windowClassifier struct {
	detector windowdetect.Detector
}

// NewWindowClassifier wraps a detector; detector may be nil when window
// introspection is unavailable on this host
func NewWindowClassifier(detector windowdetect.Detector) Classifier {
	return &windowClassifier{detector: detector}
}

func (c *windowClassifier) ClassifyFocusedWindow() Target {
	if c.detector == nil {
		return TargetStandard
	}

	info, err := c.detector.GetFocusedWindow()
	if err != nil {
		logger.Debugf("pasteback: focused window query failed, assuming standard target: %v", err)
		return TargetStandard
	}

	return ClassifyWindowClass(info.Class)
}

// ClassifyWindowClass matches a window class name against the known
// terminal emulator hints
func ClassifyWindowClass(class string) Target {
	class = strings.ToLower(class)
	for _, hint := range terminalClassHints {
		if strings.Contains(class, hint) {
			return TargetTerminal
		}
	}
	return TargetStandard
}
