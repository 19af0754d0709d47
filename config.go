package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataDir holds the document database and the log file.
	DataDir string `yaml:"data_dir"`
	// SaveDirectory is where exports are written. Empty means the working
	// directory.
	SaveDirectory    string        `yaml:"save_directory"`
	Confirmations    bool          `yaml:"confirmations"`
	DefaultEmojiSize int           `yaml:"default_emoji_size"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	MaxImageBytes    int64         `yaml:"max_image_bytes"`
	LogLevel         string        `yaml:"log_level"`
	LogFile          string        `yaml:"log_file"`
	ExportWidth      int           `yaml:"export_width"`
	ExportHeight     int           `yaml:"export_height"`
	// FontPath is a TrueType font used for PNG export. The Go mono font is
	// used when empty or unreadable.
	FontPath string `yaml:"font_path"`
}

func defaultConfig() *Config {
	dataDir := ".emojiart"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".emojiart")
	}
	return &Config{
		DataDir:          dataDir,
		Confirmations:    true,
		DefaultEmojiSize: defaultEmojiSize,
		FetchTimeout:     30 * time.Second,
		MaxImageBytes:    32 << 20,
		LogLevel:         "info",
		ExportWidth:      1024,
		ExportHeight:     768,
	}
}

// defaultConfigPath is ~/.emojiart/config.yaml.
func defaultConfigPath() string {
	return filepath.Join(defaultConfig().DataDir, "config.yaml")
}

// loadConfig reads path over the defaults. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.DataDir = expandHome(config.DataDir)
	config.SaveDirectory = expandHome(config.SaveDirectory)
	config.LogFile = expandHome(config.LogFile)
	config.FontPath = expandHome(config.FontPath)
	if config.DefaultEmojiSize < 1 {
		config.DefaultEmojiSize = defaultEmojiSize
	}
	if config.ExportWidth < 1 || config.ExportHeight < 1 {
		config.ExportWidth, config.ExportHeight = 1024, 768
	}
	return config, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) logPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "emojiart.log")
}

func (c *Config) slogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
