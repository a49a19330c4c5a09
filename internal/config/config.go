package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. PDF_FORMS_TEMPLATES
	EnvPrefix = "PDF_FORMS"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultTemplateDir = "templates"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Flag names, also used as viper keys
const (
	FlagConfig        = "config"
	FlagTemplates     = "templates"
	FlagFont          = "font"
	FlagSignatureFont = "signature-font"
	FlagOutput        = "output"
	FlagLogLevel      = "loglevel"
	FlagMaxFileSize   = "maxfilesize"
	FlagNoSubset      = "no-subset"
)

// Config holds all configuration for the form filler
type Config struct {
	// Template configuration
	TemplateDirectory string
	OutputDirectory   string

	// Font configuration
	FontPath          string // TrueType font used for field values, optional
	SignatureFontPath string // TrueType handwriting font, bundled font when empty
	SubsetFonts       bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum template and font size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		TemplateDirectory: filepath.Join(currentDir, DefaultTemplateDir),
		OutputDirectory:   currentDir,
		SubsetFonts:       true,
		Version:           "1.0.0",
		ServerName:        "pdf-form-filler",
		LogLevel:          DefaultLogLevel,
		MaxFileSize:       DefaultMaxFileSize,
	}
}

// RegisterFlags defines the configuration flags on flags with defaults from cfg
func RegisterFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String(FlagConfig, "", "Optional configuration file (yaml, json or toml)")
	flags.String(FlagTemplates, cfg.TemplateDirectory, "Directory containing the blank tax form templates")
	flags.String(FlagFont, cfg.FontPath, "TrueType font used to render field values")
	flags.String(FlagSignatureFont, cfg.SignatureFontPath, "TrueType handwriting font used for signatures")
	flags.String(FlagOutput, cfg.OutputDirectory, "Directory filled forms are written to")
	flags.String(FlagLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64(FlagMaxFileSize, cfg.MaxFileSize, "Maximum template and font file size in bytes")
	flags.Bool(FlagNoSubset, !cfg.SubsetFonts, "Embed complete font programs instead of subsets")
}

// Load resolves the configuration from flags, environment variables and an
// optional configuration file, in that order of precedence
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := v.GetString(FlagConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	populateConfigFromViper(v, cfg)

	// Expand paths if needed
	for _, path := range []*string{&cfg.TemplateDirectory, &cfg.OutputDirectory, &cfg.FontPath, &cfg.SignatureFontPath} {
		if *path == "" {
			continue
		}
		if expanded, err := filepath.Abs(*path); err == nil {
			*path = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(FlagTemplates, cfg.TemplateDirectory)
	v.SetDefault(FlagOutput, cfg.OutputDirectory)
	v.SetDefault(FlagFont, cfg.FontPath)
	v.SetDefault(FlagSignatureFont, cfg.SignatureFontPath)
	v.SetDefault(FlagLogLevel, cfg.LogLevel)
	v.SetDefault(FlagMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(FlagNoSubset, !cfg.SubsetFonts)
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.TemplateDirectory = v.GetString(FlagTemplates)
	cfg.OutputDirectory = v.GetString(FlagOutput)
	cfg.FontPath = v.GetString(FlagFont)
	cfg.SignatureFontPath = v.GetString(FlagSignatureFont)
	cfg.LogLevel = v.GetString(FlagLogLevel)
	cfg.MaxFileSize = v.GetInt64(FlagMaxFileSize)
	cfg.SubsetFonts = !v.GetBool(FlagNoSubset)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.TemplateDirectory == "" {
		return errors.New("template directory cannot be empty")
	}

	// Check if output directory exists, create if it doesn't
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}
	if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
	}

	for name, path := range map[string]string{"font": c.FontPath, "signature font": c.SignatureFontPath} {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("cannot access %s %s: %w", name, path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s %s is a directory", name, path)
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{TemplateDirectory: %s, OutputDirectory: %s, FontPath: %s, SignatureFontPath: %s, "+
		"SubsetFonts: %t, LogLevel: %s, MaxFileSize: %d}",
		c.TemplateDirectory, c.OutputDirectory, c.FontPath, c.SignatureFontPath,
		c.SubsetFonts, c.LogLevel, c.MaxFileSize)
}
