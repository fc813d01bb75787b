// Package models defines data structures for configuration and harvest records.
package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is probed in the working directory when --config is not set.
const DefaultConfigFile = "vidgrab.yaml"

// Config is the immutable run configuration. It is loaded once at startup
// and passed into every stage; nothing mutates it afterwards.
type Config struct {
	// Site is the hostname substring used to match tabs, cookies, and links.
	Site string `yaml:"site"`
	// LibraryURL is the page the operator runs the console payloads on.
	LibraryURL string `yaml:"library_url"`
	// APIBase is the prefix probed for JSON endpoints, e.g. https://site/api.
	APIBase string `yaml:"api_base"`

	// FilePrefix names the capture files the browser payloads save, e.g.
	// "<prefix>_videos.json". The unprefixed legacy names are still probed.
	FilePrefix string `yaml:"file_prefix"`

	DataDir     string `yaml:"data_dir"`
	DownloadDir string `yaml:"download_dir"`

	// Tool selects the downloader: "aria2c" (batch) or "yt-dlp" (per item).
	Tool string `yaml:"tool"`
	// SubLang is the yt-dlp subtitle language; a detected page language
	// recorded on the run overrides it.
	SubLang string `yaml:"sub_lang"`
	// CookiesFile, when set, is passed to yt-dlp as --cookies.
	CookiesFile string `yaml:"cookies_file"`

	UserAgent string `yaml:"user_agent"`

	DevToolsPort int `yaml:"devtools_port"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Site:         "training.grantcardone.com",
		LibraryURL:   "https://training.grantcardone.com/library",
		APIBase:      "https://training.grantcardone.com/api",
		FilePrefix:   "grantcardone",
		DataDir:      ".",
		DownloadDir:  "grant-cardone-downloads",
		Tool:         "aria2c",
		SubLang:      "en",
		UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
		DevToolsPort: 9222,
	}
}

// LoadConfig reads a YAML config file, filling unset fields with defaults.
// A missing file is not an error: the defaults are returned as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = DefaultConfig().DownloadDir
	}
	return cfg, nil
}

// DataPath resolves a data file name against the configured data directory.
func (c Config) DataPath(name string) string {
	return filepath.Join(c.DataDir, name)
}
