package notification

import (
	"runtime"

	"github.com/dooshek/clipd/internal/logger"
)

// Notifier defines the interface for system notifications
type Notifier interface {
	Notify(title, message string) error
}

// SilentNotifier is a no-op implementation for headless sessions
type SilentNotifier struct{}

func NewSilent() Notifier {
	return &SilentNotifier{}
}

func (s *SilentNotifier) Notify(title, message string) error { return nil }

type baseNotifier struct {
	platform platformNotifier
}

type platformNotifier interface {
	send(title, message string) error
}

// New creates a new platform-specific notification service
func New() Notifier {
	logger.Debug("Initializing notification system")
	var platform platformNotifier
	switch runtime.GOOS {
	case "darwin":
		platform = newDarwinNotifier()
	default:
		platform = newLinuxNotifier()
	}
	return &baseNotifier{platform: platform}
}

func (n *baseNotifier) Notify(title, message string) error {
	return n.platform.send(title, message)
}
