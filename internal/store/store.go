package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/dooshek/clipd/internal/fileops"
	"github.com/dooshek/clipd/internal/logger"
)

// maxEntries bounds the history; insertion beyond it truncates the tail
const maxEntries = 100

// SettingError reports why an UpdateSetting call was rejected. The command
// surface swallows it to keep the original silent-ignore contract, but the
// caller can tell "unknown key" from "wrong value type".
type SettingError struct {
	Key    string
	Reason string
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("setting %q rejected: %s", e.Key, e.Reason)
}

// Store is the single shared history+settings document. The watcher
// goroutine and command handlers all hold the same instance; every
// operation takes the lock for its duration, persistence and broadcast
// happen after the lock is released.
type Store struct {
	mu   sync.Mutex
	db   Database
	path string

	subMu   sync.Mutex
	subs    map[int]chan []Entry
	nextSub int
}

// New loads the database at path, or starts from the default document when
// the file is missing or unreadable. A corrupt file never fails startup.
func New(path string) *Store {
	s := &Store{
		db:   DefaultDatabase(),
		path: path,
		subs: make(map[int]chan []Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("Could not read database %s: %v", path, err)
		}
		return s
	}

	db := DefaultDatabase()
	if err := json.Unmarshal(data, &db); err != nil {
		logger.Warnf("Database %s is corrupt, starting with defaults: %v", path, err)
		return s
	}
	if db.History == nil {
		db.History = []Entry{}
	}
	s.db = db
	return s
}

// History returns a snapshot copy in display order, most recent first
func (s *Store) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked()
}

func (s *Store) historyLocked() []Entry {
	history := make([]Entry, len(s.db.History))
	copy(history, s.db.History)
	return history
}

// Add ingests a new entry at the head. A candidate matching the current
// head in kind and content is discarded; older duplicates are kept.
func (s *Store) Add(entry Entry) {
	s.mu.Lock()
	if len(s.db.History) > 0 {
		head := s.db.History[0]
		if head.Kind == entry.Kind && head.Content == entry.Content {
			s.mu.Unlock()
			return
		}
	}
	s.db.History = append([]Entry{entry}, s.db.History...)
	if len(s.db.History) > maxEntries {
		s.db.History = s.db.History[:maxEntries]
	}
	s.mu.Unlock()

	s.persistAndPublish()
}

// Delete removes the entry with the given id; unknown ids are a no-op
func (s *Store) Delete(id string) {
	s.mu.Lock()
	removed := false
	for i, entry := range s.db.History {
		if entry.ID == id {
			s.db.History = append(s.db.History[:i], s.db.History[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.persistAndPublish()
	}
}

// ClearAll removes every unpinned entry, keeping pinned ones in order
func (s *Store) ClearAll() {
	s.mu.Lock()
	kept := s.db.History[:0]
	for _, entry := range s.db.History {
		if entry.IsPinned {
			kept = append(kept, entry)
		}
	}
	s.db.History = kept
	s.mu.Unlock()

	s.persistAndPublish()
}

// TogglePin flips the pinned flag of the entry with the given id
func (s *Store) TogglePin(id string) {
	s.mu.Lock()
	toggled := false
	for i := range s.db.History {
		if s.db.History[i].ID == id {
			s.db.History[i].IsPinned = !s.db.History[i].IsPinned
			toggled = true
			break
		}
	}
	s.mu.Unlock()

	if toggled {
		s.persistAndPublish()
	}
}

// Reorder moves the entry with activeID to the position overID occupies
// after the removal. A single-element move, not a swap; no-op unless both
// ids are present.
func (s *Store) Reorder(activeID, overID string) {
	if activeID == overID {
		return
	}
	s.mu.Lock()
	oldIndex, newIndex := -1, -1
	for i, entry := range s.db.History {
		if entry.ID == activeID {
			oldIndex = i
		}
		if entry.ID == overID {
			newIndex = i
		}
	}
	if oldIndex < 0 || newIndex < 0 {
		s.mu.Unlock()
		return
	}
	entry := s.db.History[oldIndex]
	s.db.History = append(s.db.History[:oldIndex], s.db.History[oldIndex+1:]...)
	newIndex = indexOf(s.db.History, overID)
	s.db.History = append(s.db.History[:newIndex], append([]Entry{entry}, s.db.History[newIndex:]...)...)
	s.mu.Unlock()

	s.persistAndPublish()
}

func indexOf(history []Entry, id string) int {
	for i, entry := range history {
		if entry.ID == id {
			return i
		}
	}
	return 0
}

// Find returns the entry with the given id from the current history
func (s *Store) Find(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.db.History {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Settings returns a snapshot of the current settings
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsLocked()
}

func (s *Store) settingsLocked() Settings {
	settings := s.db.Settings
	if settings.Language != nil {
		lang := *settings.Language
		settings.Language = &lang
	}
	return settings
}

// UpdateSetting applies a recognized-key update. Unknown keys and
// type-mismatched values are rejected with a SettingError and leave the
// settings unchanged.
func (s *Store) UpdateSetting(key string, value interface{}) error {
	s.mu.Lock()
	settings := &s.db.Settings

	apply := func() *SettingError {
		switch key {
		case "position":
			v, ok := value.(string)
			if !ok {
				return &SettingError{Key: key, Reason: "expected string value"}
			}
			settings.Position = v
		case "grouping":
			v, ok := value.(string)
			if !ok {
				return &SettingError{Key: key, Reason: "expected string value"}
			}
			settings.Grouping = v
		case "theme":
			v, ok := value.(string)
			if !ok {
				return &SettingError{Key: key, Reason: "expected string value"}
			}
			settings.Theme = v
		case "zoom":
			switch v := value.(type) {
			case int:
				settings.Zoom = v
			case int64:
				settings.Zoom = int(v)
			case float64:
				// JSON numbers decode as float64
				settings.Zoom = int(v)
			default:
				return &SettingError{Key: key, Reason: "expected integer value"}
			}
		case "language":
			switch v := value.(type) {
			case string:
				settings.Language = &v
			case nil:
				settings.Language = nil
			default:
				return &SettingError{Key: key, Reason: "expected string or null value"}
			}
		case "useInternalShortcut":
			v, ok := value.(bool)
			if !ok {
				return &SettingError{Key: key, Reason: "expected boolean value"}
			}
			settings.UseInternalShortcut = v
		default:
			return &SettingError{Key: key, Reason: "unknown key"}
		}
		return nil
	}

	if err := apply(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.persistAndPublish()
	return nil
}

// Save serializes the whole document and writes it durably, creating the
// parent directory if needed
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(&s.db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode database: %w", err)
	}
	if err := fileops.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	return nil
}

// Subscribe registers a listener that receives the full history after
// every successful mutation. Delivery is best-effort; a subscriber that
// falls behind misses intermediate snapshots. The returned func removes
// the subscription.
func (s *Store) Subscribe() (<-chan []Entry, func()) {
	ch := make(chan []Entry, 8)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

// persistAndPublish runs after a mutating operation has released the
// store lock. A failed save is logged and the in-memory state stays
// authoritative until the next successful write.
func (s *Store) persistAndPublish() {
	if err := s.Save(); err != nil {
		logger.Error("Failed to save database", err)
	}

	history := s.History()
	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- history:
		default:
		}
	}
	s.subMu.Unlock()
}
