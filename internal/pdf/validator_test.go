package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit
	validPath := pdftest.Write(t, "valid.pdf", pdftest.Page{pdftest.Body(50, 80, "hello")})

	tests := []struct {
		name        string
		path        string
		expectValid bool
	}{
		{name: "empty path", path: ""},
		{name: "non-existent file", path: "/non/existent/file.pdf"},
		{name: "real PDF", path: validPath, expectValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(PDFValidateFileRequest{Path: tt.path})
			require.NoError(t, err, "ValidateFile doesn't return processing errors")
			require.NotNil(t, result)

			assert.Equal(t, tt.expectValid, result.Valid)
			assert.Equal(t, tt.path, result.Path)
			if tt.expectValid {
				assert.Equal(t, 1, result.Pages)
				assert.Empty(t, result.Message)
			} else {
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}

func TestValidator_ValidateFileInfo(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit
	tempDir := t.TempDir()

	validPDFPath := filepath.Join(tempDir, "valid.pdf")
	largePDFPath := filepath.Join(tempDir, "large.pdf")
	emptyPDFPath := filepath.Join(tempDir, "empty.pdf")
	nonPDFPath := filepath.Join(tempDir, "document.txt")

	require.NoError(t, os.WriteFile(validPDFPath, make([]byte, 1024), 0o644))
	require.NoError(t, os.WriteFile(largePDFPath, make([]byte, 2*1024*1024), 0o644))
	require.NoError(t, os.WriteFile(emptyPDFPath, []byte{}, 0o644))
	require.NoError(t, os.WriteFile(nonPDFPath, []byte("not a pdf"), 0o644))

	tests := []struct {
		name     string
		filePath string
		errorMsg string
	}{
		{name: "plausible PDF file", filePath: validPDFPath},
		{name: "large PDF file", filePath: largePDFPath, errorMsg: "file too large"},
		{name: "empty PDF file", filePath: emptyPDFPath, errorMsg: "file is empty"},
		{name: "non-PDF file", filePath: nonPDFPath, errorMsg: "file is not a PDF"},
		{name: "directory instead of file", filePath: tempDir, errorMsg: "path is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileInfo, err := os.Stat(tt.filePath)
			require.NoError(t, err)

			err = validator.ValidateFileInfo(tt.filePath, fileInfo)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
			assert.True(t, pdferrors.IsInvalidFile(err))
		})
	}
}

func TestValidator_Check(t *testing.T) {
	validator := NewValidator(1024 * 1024)
	dir := t.TempDir()

	fake := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("This is not a PDF file"), 0o644))

	err := validator.Check(fake)
	require.Error(t, err)
	assert.True(t, pdferrors.IsInvalidFile(err))

	var pdfErr *pdferrors.PDFError
	require.ErrorAs(t, err, &pdfErr)
	assert.Equal(t, fake, pdfErr.FilePath)
	assert.NotNil(t, pdfErr.Err, "the pdfcpu failure is kept as the cause")
}

func TestValidator_IsValidPDF(t *testing.T) {
	validator := NewValidator(1024 * 1024)

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{name: "empty path", filePath: ""},
		{name: "non-existent file", filePath: "/non/existent/file.pdf"},
		{name: "non-PDF extension", filePath: "/path/to/document.txt"},
		{
			name:     "generated PDF",
			filePath: pdftest.Write(t, "ok.pdf", pdftest.Page{pdftest.Body(50, 80, "ok")}),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validator.IsValidPDF(tt.filePath))
		})
	}
}

func BenchmarkValidator_ValidateFileInfo(b *testing.B) {
	validator := NewValidator(1024 * 1024)

	testFile := filepath.Join(b.TempDir(), "test.pdf")
	if err := os.WriteFile(testFile, make([]byte, 1024), 0o644); err != nil {
		b.Fatalf("failed to create test file: %v", err)
	}

	fileInfo, err := os.Stat(testFile)
	if err != nil {
		b.Fatalf("failed to stat file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = validator.ValidateFileInfo(testFile, fileInfo)
	}
}
