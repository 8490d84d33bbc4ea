package pdf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/extraction"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/security"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/wrapper"
)

// maxAllowedFileSize is the ceiling for a configured max file size
const maxAllowedFileSize = 1024 * 1024 * 1024 // 1GB

// ServiceConfig holds the settings shared by batch and tool scans
type ServiceConfig struct {
	// MaxFileSize limits the size of files opened for scanning (in bytes)
	MaxFileSize int64
	// Directory confines paths passed in tool requests
	Directory string
	// MergeMode selects the heading merge strategy
	MergeMode extraction.MergeMode
	// Keywords overrides the abstract trigger keywords when non-nil
	Keywords []string
	// SkipPreflight disables the pdfcpu structure check on open
	SkipPreflight bool
}

// Service handles PDF file operations by orchestrating the validator, the
// document factory and the scanner.
type Service struct {
	config        ServiceConfig
	validator     *Validator
	factory       *wrapper.DocumentFactory
	pathValidator *security.PathValidator
	logger        zerolog.Logger
}

// NewService creates a new PDF service with all components
func NewService(config ServiceConfig, logger zerolog.Logger) (*Service, error) {
	pathValidator, err := security.NewPathValidator(config.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	factory := wrapper.NewDocumentFactoryWithConfig(wrapper.FactoryConfig{
		MaxFileSize: config.MaxFileSize,
		Preflight:   !config.SkipPreflight,
		Layout:      wrapper.DefaultLayoutConfig(),
	}, logger)

	return &Service{
		config:        config,
		validator:     NewValidator(config.MaxFileSize),
		factory:       factory,
		pathValidator: pathValidator,
		logger:        logger,
	}, nil
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.config.MaxFileSize <= 0 {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeConfig, "maxFileSize must be greater than 0")
	}

	if s.config.MaxFileSize > maxAllowedFileSize {
		return pdferrors.NewPDFError(pdferrors.ErrorTypeConfig, "maxFileSize cannot exceed 1GB")
	}

	return nil
}

// GetMaxFileSize returns the configured file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.config.MaxFileSize
}

// Directory returns the absolute directory tool paths are confined to
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// Open validates the file at path and opens it for scanning. The caller
// owns the returned document and must close it.
func (s *Service) Open(path string) (wrapper.Document, error) {
	if err := s.validator.Check(path); err != nil {
		return nil, err
	}

	doc, err := s.factory.Open(path)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "failed to open PDF", err).
			WithFile(path).
			WithContext(filepath.Base(path))
	}
	return doc, nil
}

// NewScanner returns a Scanner over doc configured like the service
func (s *Service) NewScanner(doc wrapper.Document) *Scanner {
	opts := []ScannerOption{
		WithLogger(s.logger),
		WithMergeMode(s.config.MergeMode),
	}
	if s.config.Keywords != nil {
		opts = append(opts, WithKeywords(s.config.Keywords...))
	}
	return NewScanner(doc, opts...)
}

// PDFFindAbstracts scans a file inside the configured directory and collects
// every result.
func (s *Service) PDFFindAbstracts(ctx context.Context, req PDFFindAbstractsRequest) (*PDFFindAbstractsResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	doc, err := s.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages, err := doc.PageCount()
	if err != nil {
		return nil, err
	}

	start := req.StartPage
	if start == 0 {
		start = 1
	}

	scanner := s.NewScanner(doc)
	seq, err := scanner.Scan(ctx, start, req.EndPage)
	if err != nil {
		return nil, err
	}

	result := &PDFFindAbstractsResult{
		Path:    path,
		Pages:   pages,
		Results: []Result{},
	}
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		result.Results = append(result.Results, r)
	}

	scanned := scanner.Range()
	result.StartPage = scanned.Start
	result.EndPage = scanned.End
	result.SkippedPages = scanner.Skipped()
	return result, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}
