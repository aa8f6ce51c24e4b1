package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// OpenSubtitles
	OpenSubtitlesURL      string
	OpenSubtitlesAPIKey   string
	OpenSubtitlesUsername string
	OpenSubtitlesPassword string

	// Media library
	MediaDir string // Optional; enables scheduled scans when set
	ScanCron string // Cron expression for scheduled scans

	// Probing
	FFprobePath           string
	FFprobeTimeoutSeconds int

	// Server
	ServerPort string

	// Paths
	IgnoreFile   string // $CONFIG_DIR/ignore.txt
	DatabaseFile string // $CONFIG_DIR/subtitlarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("OPENSUBTITLES_URL", "https://api.opensubtitles.com/api/v1")
	viper.SetDefault("SCAN_CRON", "0 */6 * * *")
	viper.SetDefault("FFPROBE_PATH", "ffprobe")
	viper.SetDefault("FFPROBE_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "subtitlarr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// OpenSubtitles
		OpenSubtitlesURL:      viper.GetString("OPENSUBTITLES_URL"),
		OpenSubtitlesAPIKey:   viper.GetString("OPENSUBTITLES_API_KEY"),
		OpenSubtitlesUsername: viper.GetString("OPENSUBTITLES_USERNAME"),
		OpenSubtitlesPassword: viper.GetString("OPENSUBTITLES_PASSWORD"),

		// Media library
		MediaDir: viper.GetString("MEDIA_DIR"),
		ScanCron: viper.GetString("SCAN_CRON"),

		// Probing
		FFprobePath:           viper.GetString("FFPROBE_PATH"),
		FFprobeTimeoutSeconds: viper.GetInt("FFPROBE_TIMEOUT_SECONDS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		IgnoreFile:   filepath.Join(configDir, "ignore.txt"),
		DatabaseFile: filepath.Join(configDir, "subtitlarr.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.OpenSubtitlesAPIKey == "" {
		return nil, fmt.Errorf("OPENSUBTITLES_API_KEY is required")
	}
	if config.OpenSubtitlesUsername == "" {
		return nil, fmt.Errorf("OPENSUBTITLES_USERNAME is required")
	}
	if config.OpenSubtitlesPassword == "" {
		return nil, fmt.Errorf("OPENSUBTITLES_PASSWORD is required")
	}

	return config, nil
}
