// Package clipboard wraps OS clipboard access for text and PNG images.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/dooshek/clipd/internal/logger"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init prepares the OS clipboard. Safe to call more than once.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("failed to init clipboard: %w", err)
		}
	})
	return initErr
}

// System reads and writes the real OS clipboard. The watcher and the
// paste-back coordinator consume it through their own interfaces so tests
// can substitute doubles.
type System struct{}

// NewSystem returns a System after clipboard initialization
func NewSystem() (*System, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return &System{}, nil
}

// ReadText returns the current clipboard text. An empty result means no
// text content is available.
func (s *System) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// ReadImage returns the current clipboard image as PNG bytes, or nil when
// no image content is available
func (s *System) ReadImage() ([]byte, error) {
	return clipboard.Read(clipboard.FmtImage), nil
}

// WriteText replaces the clipboard with the given text
func (s *System) WriteText(text string) error {
	logger.Debugf("clipboard: writing %d bytes of text", len(text))
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteImage replaces the clipboard with the given PNG bytes
func (s *System) WriteImage(png []byte) error {
	logger.Debugf("clipboard: writing %d bytes of PNG", len(png))
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}
