package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dooshek/clipd/internal/fileops"
	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/types"
)

const configFilename = "clipd.yaml"

// LoadConfig reads the daemon configuration; (nil, nil) means no config
// exists yet and the wizard should run
func LoadConfig() (*types.Config, error) {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file operations: %w", err)
	}

	if err := fileOps.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := fileOps.LoadConfig(configFilename)
	if err != nil {
		if err == fileops.ErrConfigNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config types.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the daemon configuration, merging over any existing
// file so fields the caller left unset are preserved
func SaveConfig(config *types.Config) error {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return fmt.Errorf("failed to initialize file operations: %w", err)
	}

	existingConfig, err := LoadConfig()
	if err != nil {
		logger.Warnf("Failed to load existing config: %v", err)
	} else if existingConfig != nil {
		mergeConfigs(existingConfig, config)
		config = existingConfig
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileOps.SaveConfig(configFilename, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// mergeConfigs merges sourceConfig into targetConfig, preserving existing
// values that are not explicitly set in sourceConfig
func mergeConfigs(targetConfig, sourceConfig *types.Config) {
	if sourceConfig.OpenKey.Key != "" {
		targetConfig.OpenKey = sourceConfig.OpenKey
	}
	if sourceConfig.Ydotool.SocketPath != "" {
		targetConfig.Ydotool.SocketPath = sourceConfig.Ydotool.SocketPath
	}
	if sourceConfig.Listen.Address != "" {
		targetConfig.Listen.Address = sourceConfig.Listen.Address
	}
}
