// Package config loads engine settings from a Settings.ini file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds all tunable settings for the targeting engine.
type Config struct {
	// Targeting
	Timeout       time.Duration
	Interval      time.Duration
	Confidence    float64
	GrayscaleOnly bool

	// OCR
	OCRLanguage string
	TessdataDir string

	// Input
	SettleDelay time.Duration

	// Templates
	TemplateDir      string
	TemplateManifest string

	// History
	HistoryEnabled bool
	HistoryPath    string

	// Logging
	LogLevel       string
	LoggingEnabled bool
}

// LoadFromINI loads configuration from a Settings.ini file.
func LoadFromINI(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := NewDefaultConfig()

	targeting := cfg.Section("Targeting")
	config.Timeout = time.Duration(targeting.Key("timeoutSeconds").MustFloat64(30)) * time.Second
	config.Interval = time.Duration(targeting.Key("intervalMillis").MustInt(1000)) * time.Millisecond
	config.Confidence = targeting.Key("confidence").MustFloat64(0.8)
	config.GrayscaleOnly = targeting.Key("grayscale").MustBool(false)

	ocr := cfg.Section("OCR")
	config.OCRLanguage = ocr.Key("language").MustString("eng")
	config.TessdataDir = ocr.Key("tessdataDir").MustString("")

	input := cfg.Section("Input")
	config.SettleDelay = time.Duration(input.Key("settleDelayMillis").MustInt(50)) * time.Millisecond

	templates := cfg.Section("Templates")
	config.TemplateDir = templates.Key("dir").MustString("templates")
	config.TemplateManifest = templates.Key("manifest").MustString("templates/manifest.yaml")

	history := cfg.Section("History")
	config.HistoryEnabled = history.Key("enabled").MustBool(false)
	config.HistoryPath = history.Key("path").MustString("automagica.db")

	logging := cfg.Section("Logging")
	config.LogLevel = logging.Key("level").MustString("INFO")
	config.LoggingEnabled = logging.Key("enabled").MustBool(true)

	return config, nil
}

// NewDefaultConfig creates a config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		Interval:         time.Second,
		Confidence:       0.8,
		OCRLanguage:      "eng",
		SettleDelay:      50 * time.Millisecond,
		TemplateDir:      "templates",
		TemplateManifest: "templates/manifest.yaml",
		HistoryEnabled:   false,
		HistoryPath:      "automagica.db",
		LogLevel:         "INFO",
		LoggingEnabled:   true,
	}
}

// SaveToINI saves configuration to an INI file.
func SaveToINI(config *Config, path string) error {
	cfg := ini.Empty()

	targeting := cfg.Section("Targeting")
	targeting.Key("timeoutSeconds").SetValue(fmt.Sprintf("%g", config.Timeout.Seconds()))
	targeting.Key("intervalMillis").SetValue(fmt.Sprintf("%d", config.Interval.Milliseconds()))
	targeting.Key("confidence").SetValue(fmt.Sprintf("%g", config.Confidence))
	targeting.Key("grayscale").SetValue(fmt.Sprintf("%t", config.GrayscaleOnly))

	ocr := cfg.Section("OCR")
	ocr.Key("language").SetValue(config.OCRLanguage)
	ocr.Key("tessdataDir").SetValue(config.TessdataDir)

	input := cfg.Section("Input")
	input.Key("settleDelayMillis").SetValue(fmt.Sprintf("%d", config.SettleDelay.Milliseconds()))

	templates := cfg.Section("Templates")
	templates.Key("dir").SetValue(config.TemplateDir)
	templates.Key("manifest").SetValue(config.TemplateManifest)

	history := cfg.Section("History")
	history.Key("enabled").SetValue(fmt.Sprintf("%t", config.HistoryEnabled))
	history.Key("path").SetValue(config.HistoryPath)

	logging := cfg.Section("Logging")
	logging.Key("level").SetValue(config.LogLevel)
	logging.Key("enabled").SetValue(fmt.Sprintf("%t", config.LoggingEnabled))

	return cfg.SaveTo(path)
}
