package wrapper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultMaxFileSize is the largest file the factory opens unless configured otherwise
const DefaultMaxFileSize int64 = 100 * 1024 * 1024 // 100MB

// FactoryConfig contains configuration options for the factory
type FactoryConfig struct {
	// MaxFileSize limits the file size accepted by Open (in bytes)
	MaxFileSize int64 `json:"max_file_size"`

	// Preflight runs the pdfcpu structure check before text extraction
	Preflight bool `json:"preflight"`

	// Layout tunes how text fragments are grouped into lines and blocks
	Layout LayoutConfig `json:"layout"`
}

// DocumentFactory opens PDF files as Documents
type DocumentFactory struct {
	config FactoryConfig
	logger zerolog.Logger
}

// NewDocumentFactory creates a new factory with default configuration
func NewDocumentFactory(logger zerolog.Logger) *DocumentFactory {
	return NewDocumentFactoryWithConfig(FactoryConfig{
		MaxFileSize: DefaultMaxFileSize,
		Preflight:   true,
		Layout:      DefaultLayoutConfig(),
	}, logger)
}

// NewDocumentFactoryWithConfig creates a factory with custom configuration
func NewDocumentFactoryWithConfig(config FactoryConfig, logger zerolog.Logger) *DocumentFactory {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	if config.Layout == (LayoutConfig{}) {
		config.Layout = DefaultLayoutConfig()
	}
	return &DocumentFactory{config: config, logger: logger}
}

// Config returns the current factory configuration
func (f *DocumentFactory) Config() FactoryConfig {
	return f.config
}

// Open checks the file, optionally inspects it with pdfcpu, and opens it for
// text extraction with ledongthuc/pdf.
func (f *DocumentFactory) Open(filePath string) (Document, error) {
	if err := f.analyzeFile(filePath); err != nil {
		return nil, err
	}

	var inspection *Inspection
	if f.config.Preflight {
		var err error
		inspection, err = Inspect(filePath)
		if err != nil {
			return nil, err
		}
		if inspection.Encrypted {
			f.logger.Warn().
				Str("file", filePath).
				Msg("document is encrypted, text extraction may fail")
		}
	}

	doc, err := OpenLedongthuc(filePath, f.config.Layout, f.logger)
	if err != nil {
		return nil, err
	}

	if inspection != nil {
		count, _ := doc.PageCount()
		if count != inspection.PageCount {
			f.logger.Warn().
				Str("file", filePath).
				Int("pdfcpu_pages", inspection.PageCount).
				Int("ledongthuc_pages", count).
				Msg("page count mismatch between PDF libraries")
		}
		f.logger.Debug().
			Str("file", filePath).
			Str("version", inspection.Version).
			Int("pages", count).
			Msg("document opened")
	}

	return doc, nil
}

// analyzeFile rejects paths that are missing, too large or not PDFs
func (f *DocumentFactory) analyzeFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "analyze",
			Err:     fmt.Errorf("cannot access file: %w", err),
		}
	}

	if info.IsDir() {
		return &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "analyze",
			Err:     fmt.Errorf("path is a directory: %s", filePath),
		}
	}

	if info.Size() > f.config.MaxFileSize {
		return &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "analyze",
			Err:     fmt.Errorf("file size %d exceeds maximum %d", info.Size(), f.config.MaxFileSize),
		}
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".pdf" {
		return &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "analyze",
			Err:     fmt.Errorf("file does not have .pdf extension: %s", ext),
		}
	}

	return nil
}
