package windowdetect

import (
	"os/exec"
	"strings"
)

type darwinDetector struct{}

func newDarwinDetector() platformDetector {
	return &darwinDetector{}
}

func (d *darwinDetector) getFocusedWindow() (*WindowInfo, error) {
	script := `
		tell application "System Events"
			set frontApp to first application process whose frontmost is true
			return name of frontApp
		end tell
	`

	output, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return nil, err
	}

	return &WindowInfo{
		Class: strings.TrimSpace(string(output)),
	}, nil
}
