package store

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the content type of a history entry
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Entry is one recorded clipboard snapshot. Image content is a
// base64-encoded PNG, optionally carrying a data-URI prefix.
type Entry struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	IsPinned  bool   `json:"isPinned"`
}

// NewEntry constructs an unpinned entry with a fresh id and the current
// timestamp in milliseconds
func NewEntry(kind Kind, content string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		IsPinned:  false,
	}
}

// Settings holds the user-facing preferences the UI reads and writes.
// Language nil means "use system default".
type Settings struct {
	Position            string  `json:"position"`
	Grouping            string  `json:"grouping"`
	Zoom                int     `json:"zoom"`
	Theme               string  `json:"theme"`
	Language            *string `json:"language"`
	UseInternalShortcut bool    `json:"useInternalShortcut"`
}

// DefaultSettings returns the settings used for a fresh or unreadable database
func DefaultSettings() Settings {
	return Settings{
		Position: "cursor",
		Grouping: "categorized",
		Zoom:     100,
		Theme:    "dark",
	}
}

// Database is the persisted document: display-ordered history plus settings
type Database struct {
	History  []Entry  `json:"history"`
	Settings Settings `json:"settings"`
}

// DefaultDatabase returns an empty history with default settings
func DefaultDatabase() Database {
	return Database{
		History:  []Entry{},
		Settings: DefaultSettings(),
	}
}
