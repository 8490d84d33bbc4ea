package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/extraction"
)

const (
	// Mode constants
	ModeBatch = "batch"
	ModeStdio = "stdio"

	// Default values
	DefaultConfigFile  = "config.json"
	DefaultStartPage   = 1
	DefaultEndPage     = 0 // last page
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// EnvPrefix is prepended to every environment override, e.g. ABSTRACT_SCANNER_PDF_PATH
	EnvPrefix = "ABSTRACT_SCANNER"
)

// Configuration keys, as spelled in config.json
const (
	KeyConfig            = "config"
	KeyMode              = "mode"
	KeyPDFPath           = "pdf_path"
	KeyOutputPath        = "output_path"
	KeyStartPage         = "start_page"
	KeyEndPage           = "end_page"
	KeyLogLevel          = "log_level"
	KeyMaxFileSize       = "max_file_size"
	KeyLegacyHeaderMerge = "legacy_header_merge"
	KeyKeywords          = "keywords"
)

// ErrVersionRequested is returned by LoadFromFlags when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the abstract scanner
type Config struct {
	// Run configuration
	Mode       string // "batch" or "stdio"
	ConfigFile string

	// Scan configuration
	PDFPath           string
	OutputPath        string
	StartPage         int
	EndPage           int
	LegacyHeaderMerge bool
	Keywords          []string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:        ModeBatch,
		ConfigFile:  DefaultConfigFile,
		StartPage:   DefaultStartPage,
		EndPage:     DefaultEndPage,
		Version:     "1.0.0",
		ServerName:  "pdf-abstract-scanner",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags, reads the config file they point
// at and returns the merged configuration. Precedence is flags, then
// environment, then the config file, then defaults.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	configFile := viper.GetString(KeyConfig)
	if err := readConfigFile(configFile); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault(KeyConfig, cfg.ConfigFile)
	viper.SetDefault(KeyMode, cfg.Mode)
	viper.SetDefault(KeyStartPage, cfg.StartPage)
	viper.SetDefault(KeyEndPage, cfg.EndPage)
	viper.SetDefault(KeyLogLevel, cfg.LogLevel)
	viper.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)
	viper.SetDefault(KeyLegacyHeaderMerge, cfg.LegacyHeaderMerge)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("config", cfg.ConfigFile, "Path to the JSON configuration file")
	pflag.String("mode", cfg.Mode, "Run mode: 'batch' scans pdf_path into output_path, 'stdio' serves MCP tools")
	pflag.String("pdf", "", "PDF file to scan (overrides pdf_path)")
	pflag.String("output", "", "File results are appended to (overrides output_path)")
	pflag.Int("start", cfg.StartPage, "First page index to scan for abstracts (at least 1)")
	pflag.Int("end", cfg.EndPage, "Page index to stop before, 0 for the last page")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Bool("legacy-header-merge", cfg.LegacyHeaderMerge, "Merge heading runs with the legacy stepping rule")
	pflag.StringSlice("keywords", nil, "Abstract trigger keywords in precedence order (default abstract,summary)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag(KeyConfig, pflag.Lookup("config"))
	_ = viper.BindPFlag(KeyMode, pflag.Lookup("mode"))
	_ = viper.BindPFlag(KeyPDFPath, pflag.Lookup("pdf"))
	_ = viper.BindPFlag(KeyOutputPath, pflag.Lookup("output"))
	_ = viper.BindPFlag(KeyStartPage, pflag.Lookup("start"))
	_ = viper.BindPFlag(KeyEndPage, pflag.Lookup("end"))
	_ = viper.BindPFlag(KeyLogLevel, pflag.Lookup("loglevel"))
	_ = viper.BindPFlag(KeyMaxFileSize, pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag(KeyLegacyHeaderMerge, pflag.Lookup("legacy-header-merge"))
	_ = viper.BindPFlag(KeyKeywords, pflag.Lookup("keywords"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Abstract Scanner - finds abstracts in a PDF and pairs them with the heading on the page before\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                               # batch mode using ./config.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config=/etc/scanner.json    # batch mode with another config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --start=2 --end=40            # scan a page range\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio                  # MCP tools over standard I/O\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_CONFIG               Config file path\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MODE                 Run mode\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PDF_PATH             PDF file to scan\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_OUTPUT_PATH          Output file\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_START_PAGE           First page index\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_END_PAGE             End page index (exclusive)\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOG_LEVEL            Log level\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MAX_FILE_SIZE        Maximum file size\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LEGACY_HEADER_MERGE  Legacy heading merge\n", EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// readConfigFile loads the JSON config file into viper
func readConfigFile(path string) error {
	if path == "" {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeConfig, "config file path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeConfig, "cannot resolve config file path", err).WithFile(path)
	}

	viper.SetConfigFile(abs)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeConfig, "cannot read config file", err).WithFile(abs)
	}
	viper.Set(KeyConfig, abs)
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.ConfigFile = viper.GetString(KeyConfig)
	cfg.Mode = viper.GetString(KeyMode)
	cfg.PDFPath = viper.GetString(KeyPDFPath)
	cfg.OutputPath = viper.GetString(KeyOutputPath)
	cfg.StartPage = viper.GetInt(KeyStartPage)
	cfg.EndPage = viper.GetInt(KeyEndPage)
	cfg.LogLevel = strings.ToLower(viper.GetString(KeyLogLevel))
	cfg.MaxFileSize = viper.GetInt64(KeyMaxFileSize)
	cfg.LegacyHeaderMerge = viper.GetBool(KeyLegacyHeaderMerge)
	if keywords := viper.GetStringSlice(KeyKeywords); len(keywords) > 0 {
		cfg.Keywords = keywords
	}
}

// resolvePaths makes relative paths absolute against the config file's directory
func (c *Config) resolvePaths() {
	base := "."
	if c.ConfigFile != "" {
		base = filepath.Dir(c.ConfigFile)
	}
	c.PDFPath = resolveAgainst(base, c.PDFPath)
	c.OutputPath = resolveAgainst(base, c.OutputPath)
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	joined := filepath.Join(base, path)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeBatch && c.Mode != ModeStdio {
		return configError("mode must be either 'batch' or 'stdio'")
	}

	if c.PDFPath == "" {
		return configError("pdf_path is required")
	}

	if c.Mode == ModeBatch && c.OutputPath == "" {
		return configError("output_path is required in batch mode")
	}

	if c.StartPage < 1 {
		return configError(fmt.Sprintf("start_page must be at least 1, got %d", c.StartPage))
	}

	if c.EndPage < 0 {
		return configError(fmt.Sprintf("end_page cannot be negative, got %d", c.EndPage))
	}

	if c.MaxFileSize <= 0 {
		return configError("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return configError(fmt.Sprintf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel))
	}

	return nil
}

func configError(message string) error {
	return pdferrors.NewPDFError(pdferrors.ErrorTypeConfig, "invalid configuration: "+message)
}

// PDFDirectory returns the directory holding the configured PDF. Tool
// requests in stdio mode are confined to it.
func (c *Config) PDFDirectory() string {
	return filepath.Dir(c.PDFPath)
}

// MergeMode returns the heading merge strategy selected by the configuration
func (c *Config) MergeMode() extraction.MergeMode {
	if c.LegacyHeaderMerge {
		return extraction.MergeLegacyStep
	}
	return extraction.MergePairwise
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFPath: %s, OutputPath: %s, StartPage: %d, EndPage: %d, "+
		"LogLevel: %s, MaxFileSize: %d, LegacyHeaderMerge: %t}",
		c.Mode, c.PDFPath, c.OutputPath, c.StartPage, c.EndPage, c.LogLevel, c.MaxFileSize, c.LegacyHeaderMerge)
}

// IsBatchMode returns true if the scanner runs once over the configured file
func (c *Config) IsBatchMode() bool {
	return c.Mode == ModeBatch
}

// IsStdioMode returns true if the scanner serves MCP tools over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
