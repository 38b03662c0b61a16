// Package pasteback writes a chosen entry to the OS clipboard and
// synthesizes the paste keystroke in the previously focused application.
package pasteback

import (
	"time"

	"github.com/dooshek/clipd/internal/imagecodec"
	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/store"
)

// focusSettleDelay gives the window manager time to move focus back to
// the previously focused application after the UI hides
const focusSettleDelay = 100 * time.Millisecond

// Target selects which paste key combination to synthesize
type Target int

const (
	// TargetStandard is ctrl+v (cmd+v on macOS)
	TargetStandard Target = iota
	// TargetTerminal is ctrl+shift+v, terminals treat ctrl+v as a literal
	TargetTerminal
)

func (t Target) String() string {
	if t == TargetTerminal {
		return "terminal"
	}
	return "standard"
}

// Classifier decides which paste combination the focused window expects.
// Implementations must degrade to TargetStandard when the query fails.
type Classifier interface {
	ClassifyFocusedWindow() Target
}

// Synthesizer delivers the paste keystroke. Best-effort: delivery is
// never verified.
type Synthesizer interface {
	SendPasteKeystroke(Target) error
}

// Writer is the clipboard write capability the coordinator needs
type Writer interface {
	WriteText(text string) error
	WriteImage(png []byte) error
}

// Coordinator performs the paste-back protocol. Every external call is
// non-fatal; failures are logged and the operation degrades instead of
// aborting the command.
type Coordinator struct {
	store       *store.Store
	clip        Writer
	classifier  Classifier
	synth       Synthesizer
	hideWindow  func()
	settleDelay time.Duration
}

// New wires a coordinator. hideWindow asks the presenting UI window to
// hide before the keystroke is sent; pass nil when there is no window to
// hide.
func New(st *store.Store, clip Writer, classifier Classifier, synth Synthesizer, hideWindow func()) *Coordinator {
	return &Coordinator{
		store:       st,
		clip:        clip,
		classifier:  classifier,
		synth:       synth,
		hideWindow:  hideWindow,
		settleDelay: focusSettleDelay,
	}
}

// PasteItem looks up the entry by id, writes it to the OS clipboard and
// schedules the paste keystroke. Unknown ids and undecodable image
// payloads abort silently.
func (c *Coordinator) PasteItem(id string) {
	entry, ok := c.store.Find(id)
	if !ok {
		logger.Debugf("pasteback: no entry with id %s", id)
		return
	}

	switch entry.Kind {
	case store.KindImage:
		png, err := imagecodec.Decode(entry.Content)
		if err != nil {
			logger.Warnf("pasteback: image entry %s is undecodable, paste aborted: %v", id, err)
			return
		}
		if err := c.clip.WriteImage(png); err != nil {
			logger.Error("Failed to write image to clipboard", err)
		}
	default:
		if err := c.clip.WriteText(entry.Content); err != nil {
			logger.Error("Failed to write text to clipboard", err)
		}
	}

	go c.deliverKeystroke()
}

// PasteContent writes raw text to the clipboard without a history lookup
// and schedules the paste keystroke. Used for drag/drop or ephemeral
// content that should not be recorded.
func (c *Coordinator) PasteContent(text string) {
	if err := c.clip.WriteText(text); err != nil {
		logger.Error("Failed to write text to clipboard", err)
	}

	go c.deliverKeystroke()
}

// deliverKeystroke runs off the command-handling goroutine so the caller
// gets its response before focus classification starts
func (c *Coordinator) deliverKeystroke() {
	if c.hideWindow != nil {
		c.hideWindow()
	}

	time.Sleep(c.settleDelay)

	target := c.classifier.ClassifyFocusedWindow()
	logger.Debugf("pasteback: focused window classified as %s", target)

	if err := c.synth.SendPasteKeystroke(target); err != nil {
		logger.Error("Failed to send paste keystroke", err)
	}
}
