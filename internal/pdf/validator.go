package pdf

import (
	"fmt"
	"os"
	"strings"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/wrapper"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks the file and reports what pdfcpu found in it
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	inspection, err := v.validatePDFFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	result.Pages = inspection.PageCount
	result.Version = inspection.Version
	result.Encrypted = inspection.Encrypted
	return result, nil
}

// Check returns an InvalidFile error when the file cannot be scanned
func (v *Validator) Check(filePath string) error {
	_, err := v.validatePDFFile(filePath)
	return err
}

// validatePDFFile performs detailed validation on a PDF file
func (v *Validator) validatePDFFile(filePath string) (*wrapper.Inspection, error) {
	if filePath == "" {
		return nil, invalidFile(filePath, "path cannot be empty", nil)
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, invalidFile(filePath, "file does not exist", err)
	}
	if err != nil {
		return nil, invalidFile(filePath, "cannot access file", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	inspection, err := wrapper.Inspect(filePath)
	if err != nil {
		return nil, invalidFile(filePath, "invalid PDF file", err)
	}
	return inspection, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.Check(filePath) == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return invalidFile(filePath, "path is a directory, not a file", nil)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return invalidFile(filePath, "file is not a PDF", nil)
	}

	if fileInfo.Size() == 0 {
		return invalidFile(filePath, "file is empty", nil)
	}

	if fileInfo.Size() > v.maxFileSize {
		return invalidFile(filePath, fmt.Sprintf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize), nil)
	}

	return nil
}

func invalidFile(filePath, message string, cause error) error {
	return pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, message, cause).
		WithFile(filePath).
		WithContext(filePath)
}
