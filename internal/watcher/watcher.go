// Package watcher polls the OS clipboard and ingests changes into the
// history store. Polling, not subscription: no change notification is
// reliably available across target platforms.
package watcher

import (
	"context"
	"time"

	"github.com/dooshek/clipd/internal/imagecodec"
	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/store"
)

// DefaultInterval trades capture latency for CPU cost. Not user-facing.
const DefaultInterval = 1000 * time.Millisecond

// Source is the clipboard read capability the watcher polls
type Source interface {
	ReadText() (string, error)
	ReadImage() ([]byte, error)
}

// Watcher owns the last-observed text and image for its lifetime; this
// state is never persisted. A single cycle may ingest at most one text
// entry and one image entry.
type Watcher struct {
	source   Source
	store    *store.Store
	interval time.Duration

	lastText  string
	lastImage string
}

// New creates a watcher polling source every interval. A non-positive
// interval selects the default.
func New(source Source, st *store.Store, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		source:   source,
		store:    st,
		interval: interval,
	}
}

// Run polls until ctx is cancelled. Meant to live on its own goroutine
// for the whole process lifetime.
func (w *Watcher) Run(ctx context.Context) {
	logger.Infof("Clipboard watcher started (polling every %s)", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Clipboard watcher stopped")
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

func (w *Watcher) pollOnce() {
	w.pollText()
	w.pollImage()
}

// pollText ingests the clipboard text when it changed since the last
// observation. Read failures count as "no content".
func (w *Watcher) pollText() {
	text, err := w.source.ReadText()
	if err != nil {
		return
	}
	if text == "" || text == w.lastText {
		return
	}

	w.lastText = text
	logger.Debugf("watcher: captured %d bytes of text", len(text))
	w.store.Add(store.NewEntry(store.KindText, text))
}

// pollImage normalizes the clipboard image to base64 PNG and ingests it
// when the encoding changed since the last observation
func (w *Watcher) pollImage() {
	raw, err := w.source.ReadImage()
	if err != nil || len(raw) == 0 {
		return
	}

	encoded, err := imagecodec.Normalize(raw)
	if err != nil {
		logger.Debugf("watcher: ignoring undecodable clipboard image: %v", err)
		return
	}
	if encoded == w.lastImage {
		return
	}

	w.lastImage = encoded
	logger.Debugf("watcher: captured image (%d bytes encoded)", len(encoded))
	w.store.Add(store.NewEntry(store.KindImage, encoded))
}
