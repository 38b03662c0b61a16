package types

import "os"

// KeyBinding represents a keyboard shortcut configuration
type KeyBinding struct {
	Key   string `yaml:"key"`   // The actual key (e.g., "v", "b", "1", etc.)
	Ctrl  bool   `yaml:"ctrl"`  // Control key modifier
	Shift bool   `yaml:"shift"` // Shift key modifier
	Alt   bool   `yaml:"alt"`   // Alt key modifier
	Super bool   `yaml:"super"` // Super (Windows/Command) key modifier
}

// YdotoolConfig holds the ydotool daemon socket used for keystroke
// synthesis on Wayland sessions
type YdotoolConfig struct {
	SocketPath string `yaml:"socket_path"`
}

// ListenConfig holds the local WebSocket endpoint the UI subscribes to
type ListenConfig struct {
	Address string `yaml:"address"`
}

// Config is the daemon process configuration stored in clipd.yaml.
// User-facing settings (theme, zoom, ...) live in db.json instead.
type Config struct {
	OpenKey KeyBinding    `yaml:"open_key"`
	Ydotool YdotoolConfig `yaml:"ydotool"`
	Listen  ListenConfig  `yaml:"listen"`
}

// GetYdotoolConfig returns the ydotool configuration with the
// YDOTOOL_SOCKET environment variable as fallback
func (c *Config) GetYdotoolConfig() YdotoolConfig {
	config := YdotoolConfig{
		SocketPath: c.Ydotool.SocketPath,
	}
	if config.SocketPath == "" {
		config.SocketPath = os.Getenv("YDOTOOL_SOCKET")
	}
	return config
}

// ListenAddress returns the configured WebSocket address or the default
func (c *Config) ListenAddress() string {
	if c.Listen.Address == "" {
		return "127.0.0.1:9453"
	}
	return c.Listen.Address
}
