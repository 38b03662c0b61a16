package pasteback

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dooshek/clipd/internal/imagecodec"
	"github.com/dooshek/clipd/internal/store"
)

// fakeWriter records clipboard writes
type fakeWriter struct {
	mu     sync.Mutex
	texts  []string
	images [][]byte
	err    error
}

func (f *fakeWriter) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.err
}

func (f *fakeWriter) WriteImage(png []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, png)
	return f.err
}

// fixedClassifier always reports the same target
type fixedClassifier struct {
	target Target
}

func (f *fixedClassifier) ClassifyFocusedWindow() Target { return f.target }

// fakeSynthesizer records delivered keystrokes and signals each one
type fakeSynthesizer struct {
	mu        sync.Mutex
	delivered []Target
	done      chan struct{}
}

func newFakeSynthesizer() *fakeSynthesizer {
	return &fakeSynthesizer{done: make(chan struct{}, 4)}
}

func (f *fakeSynthesizer) SendPasteKeystroke(target Target) error {
	f.mu.Lock()
	f.delivered = append(f.delivered, target)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeSynthesizer) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(time.Second):
		t.Fatalf("expected a paste keystroke to be delivered")
	}
}

func (f *fakeSynthesizer) targets() []Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Target, len(f.delivered))
	copy(out, f.delivered)
	return out
}

func newTestCoordinator(t *testing.T, target Target, hide func()) (*Coordinator, *store.Store, *fakeWriter, *fakeSynthesizer) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "db.json"))
	clip := &fakeWriter{}
	synth := newFakeSynthesizer()
	c := New(st, clip, &fixedClassifier{target: target}, synth, hide)
	c.settleDelay = 0
	return c, st, clip, synth
}

func testEncodedImage(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("failed to build test PNG: %v", err)
	}
	encoded, err := imagecodec.Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return encoded
}

func TestPasteItemTextEntry(t *testing.T) {
	c, st, clip, synth := newTestCoordinator(t, TargetStandard, nil)

	entry := store.NewEntry(store.KindText, "paste me")
	st.Add(entry)

	c.PasteItem(entry.ID)
	synth.wait(t)

	if len(clip.texts) != 1 || clip.texts[0] != "paste me" {
		t.Fatalf("expected text written to clipboard, got %#v", clip.texts)
	}
	if got := synth.targets(); len(got) != 1 || got[0] != TargetStandard {
		t.Fatalf("expected one standard keystroke, got %v", got)
	}
}

func TestPasteItemTerminalTarget(t *testing.T) {
	c, st, _, synth := newTestCoordinator(t, TargetTerminal, nil)

	entry := store.NewEntry(store.KindText, "ls -la")
	st.Add(entry)

	c.PasteItem(entry.ID)
	synth.wait(t)

	if got := synth.targets(); len(got) != 1 || got[0] != TargetTerminal {
		t.Fatalf("expected terminal keystroke, got %v", got)
	}
}

func TestPasteItemUnknownIDNoOp(t *testing.T) {
	c, _, clip, synth := newTestCoordinator(t, TargetStandard, nil)

	c.PasteItem("no-such-id")

	select {
	case <-synth.done:
		t.Fatalf("unknown id must not deliver a keystroke")
	case <-time.After(100 * time.Millisecond):
	}
	if len(clip.texts) != 0 || len(clip.images) != 0 {
		t.Fatalf("unknown id must not touch the clipboard")
	}
}

func TestPasteItemImageEntry(t *testing.T) {
	c, st, clip, synth := newTestCoordinator(t, TargetStandard, nil)

	entry := store.NewEntry(store.KindImage, testEncodedImage(t))
	st.Add(entry)

	c.PasteItem(entry.ID)
	synth.wait(t)

	if len(clip.images) != 1 {
		t.Fatalf("expected image written to clipboard, got %d writes", len(clip.images))
	}
	if _, err := png.Decode(bytes.NewReader(clip.images[0])); err != nil {
		t.Fatalf("clipboard image is not a PNG: %v", err)
	}
}

func TestPasteItemUndecodableImageAborts(t *testing.T) {
	c, st, clip, synth := newTestCoordinator(t, TargetStandard, nil)

	entry := store.NewEntry(store.KindImage, "!!not base64!!")
	st.Add(entry)

	c.PasteItem(entry.ID)

	select {
	case <-synth.done:
		t.Fatalf("undecodable image must abort before the keystroke")
	case <-time.After(100 * time.Millisecond):
	}
	if len(clip.images) != 0 {
		t.Fatalf("undecodable image must not touch the clipboard")
	}
}

func TestPasteContent(t *testing.T) {
	c, st, clip, synth := newTestCoordinator(t, TargetStandard, nil)

	c.PasteContent("ephemeral")
	synth.wait(t)

	if len(clip.texts) != 1 || clip.texts[0] != "ephemeral" {
		t.Fatalf("expected text written to clipboard, got %#v", clip.texts)
	}
	if len(st.History()) != 0 {
		t.Fatalf("PasteContent must not record history")
	}
}

func TestPasteItemClipboardErrorStillDeliversKeystroke(t *testing.T) {
	c, st, clip, synth := newTestCoordinator(t, TargetStandard, nil)
	clip.err = errors.New("clipboard busy")

	entry := store.NewEntry(store.KindText, "best effort")
	st.Add(entry)

	c.PasteItem(entry.ID)
	synth.wait(t)

	if got := synth.targets(); len(got) != 1 {
		t.Fatalf("keystroke delivery must not depend on the clipboard write, got %v", got)
	}
}

// orderSynthesizer appends to a shared log so hide/keystroke ordering is
// observable
type orderSynthesizer struct {
	mu    *sync.Mutex
	order *[]string
	done  chan struct{}
}

func (o *orderSynthesizer) SendPasteKeystroke(Target) error {
	o.mu.Lock()
	*o.order = append(*o.order, "keystroke")
	o.mu.Unlock()
	close(o.done)
	return nil
}

func TestDeliverKeystrokeHidesWindowFirst(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)

	hide := func() {
		mu.Lock()
		order = append(order, "hide")
		mu.Unlock()
	}
	synth := &orderSynthesizer{mu: &mu, order: &order, done: make(chan struct{})}

	st := store.New(filepath.Join(t.TempDir(), "db.json"))
	c := New(st, &fakeWriter{}, &fixedClassifier{}, synth, hide)
	c.settleDelay = 0

	entry := store.NewEntry(store.KindText, "ordered")
	st.Add(entry)

	c.PasteItem(entry.ID)
	select {
	case <-synth.done:
	case <-time.After(time.Second):
		t.Fatalf("expected a paste keystroke to be delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "hide" || order[1] != "keystroke" {
		t.Fatalf("expected hide before keystroke, got %v", order)
	}
}
