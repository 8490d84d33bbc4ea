package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/extraction"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf/pdftest"
)

func paperPDF(t *testing.T) string {
	t.Helper()
	return pdftest.Write(t, "paper.pdf",
		pdftest.Page{
			pdftest.Body(50, 80, "Proceedings of Things"),
		},
		pdftest.Page{
			pdftest.Heading(50, 80, "Deep Learning", 14),
			pdftest.Body(50, 120, "Jane Doe"),
		},
		pdftest.Page{
			pdftest.Heading(50, 80, "Abstract", 12),
			pdftest.Body(50, 110, "We study things."),
			pdftest.Body(50, 125, "Results follow."),
			pdftest.Body(50, 140, "See page 4.").Colored(0, 0, 255),
		},
	)
}

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{
		MaxFileSize: 10 * 1024 * 1024,
		Directory:   dir,
	}, zerolog.Nop())
	require.NoError(t, err)
	return service
}

func TestNewService(t *testing.T) {
	dir := t.TempDir()
	service := newTestService(t, dir)

	assert.Equal(t, int64(10*1024*1024), service.GetMaxFileSize())
	assert.Equal(t, dir, service.Directory())

	_, err := NewService(ServiceConfig{MaxFileSize: 1}, zerolog.Nop())
	assert.Error(t, err)
}

func TestService_ValidateConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		maxFileSize   int64
		expectedError bool
	}{
		{name: "valid configuration", maxFileSize: 1024 * 1024},
		{name: "zero max file size", maxFileSize: 0, expectedError: true},
		{name: "negative max file size", maxFileSize: -1, expectedError: true},
		{name: "max file size too large", maxFileSize: 2 * 1024 * 1024 * 1024, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(ServiceConfig{MaxFileSize: tt.maxFileSize, Directory: t.TempDir()}, zerolog.Nop())
			require.NoError(t, err)

			err = service.ValidateConfiguration()
			if tt.expectedError {
				require.Error(t, err)
				assert.True(t, pdferrors.IsConfig(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_OpenAndScan(t *testing.T) {
	path := paperPDF(t)
	service := newTestService(t, filepath.Dir(path))

	doc, err := service.Open(path)
	require.NoError(t, err)
	defer doc.Close()

	seq, err := service.NewScanner(doc).Scan(context.Background(), 1, 0)
	require.NoError(t, err)

	var results []Result
	for r, err := range seq {
		require.NoError(t, err)
		results = append(results, r)
	}

	assert.Equal(t, []Result{{
		Header:     "Deep Learning",
		PageNumber: 2,
		Keyword:    "abstract",
		Abstract:   "We study things. Results follow.",
	}}, results)
}

func TestService_OpenRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	service := newTestService(t, dir)

	fake := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("This is not a PDF file"), 0o644))

	for _, path := range []string{fake, filepath.Join(dir, "missing.pdf"), ""} {
		doc, err := service.Open(path)
		require.Error(t, err, path)
		assert.Nil(t, doc)
		assert.True(t, pdferrors.IsInvalidFile(err), "path %q: %v", path, err)
	}
}

func TestService_PDFFindAbstracts(t *testing.T) {
	path := paperPDF(t)
	service := newTestService(t, filepath.Dir(path))

	result, err := service.PDFFindAbstracts(context.Background(), PDFFindAbstractsRequest{Path: "paper.pdf"})
	require.NoError(t, err)

	assert.Equal(t, path, result.Path)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 1, result.StartPage)
	assert.Equal(t, 3, result.EndPage)
	assert.Empty(t, result.SkippedPages)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Deep Learning", result.Results[0].Header)
}

func TestService_PDFFindAbstracts_Errors(t *testing.T) {
	path := paperPDF(t)
	service := newTestService(t, filepath.Dir(path))

	tests := []struct {
		name  string
		req   PDFFindAbstractsRequest
		check func(error) bool
	}{
		{
			name:  "outside directory",
			req:   PDFFindAbstractsRequest{Path: "../elsewhere/paper.pdf"},
			check: pdferrors.IsInvalidFile,
		},
		{
			name:  "missing file",
			req:   PDFFindAbstractsRequest{Path: "missing.pdf"},
			check: pdferrors.IsInvalidFile,
		},
		{
			name:  "start past last page",
			req:   PDFFindAbstractsRequest{Path: "paper.pdf", StartPage: 3},
			check: pdferrors.IsInvalidRange,
		},
		{
			name:  "empty range",
			req:   PDFFindAbstractsRequest{Path: "paper.pdf", StartPage: 2, EndPage: 2},
			check: pdferrors.IsInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.PDFFindAbstracts(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
		})
	}
}

func TestService_LegacyMergeMode(t *testing.T) {
	path := pdftest.Write(t, "legacy.pdf",
		pdftest.Page{
			pdftest.Heading(50, 80, "One", 12),
			pdftest.Heading(50, 100, "Two", 12),
			pdftest.Heading(50, 120, "Three", 12),
			pdftest.Heading(50, 140, "Four", 12),
		},
		pdftest.Page{
			pdftest.Body(50, 80, "Abstract"),
			pdftest.Body(50, 100, "Text."),
		},
	)

	service, err := NewService(ServiceConfig{
		MaxFileSize: 10 * 1024 * 1024,
		Directory:   filepath.Dir(path),
		MergeMode:   extraction.MergeLegacyStep,
	}, zerolog.Nop())
	require.NoError(t, err)

	result, err := service.PDFFindAbstracts(context.Background(), PDFFindAbstractsRequest{Path: path})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "One Two Four", result.Results[0].Header)
}

func TestService_PDFValidateFile(t *testing.T) {
	path := paperPDF(t)
	dir := filepath.Dir(path)
	service := newTestService(t, dir)

	fake := filepath.Join(dir, "test.pdf")
	require.NoError(t, os.WriteFile(fake, make([]byte, 1024), 0o644))

	valid, err := service.PDFValidateFile(PDFValidateFileRequest{Path: "paper.pdf"})
	require.NoError(t, err)
	assert.True(t, valid.Valid)
	assert.Equal(t, path, valid.Path)
	assert.Equal(t, 3, valid.Pages)
	assert.NotEmpty(t, valid.Version)
	assert.False(t, valid.Encrypted)

	invalid, err := service.PDFValidateFile(PDFValidateFileRequest{Path: fake})
	require.NoError(t, err)
	assert.False(t, invalid.Valid)
	assert.NotEmpty(t, invalid.Message)

	_, err = service.PDFValidateFile(PDFValidateFileRequest{Path: "/etc/passwd"})
	assert.Error(t, err)

	assert.True(t, service.IsValidPDF(path))
	assert.False(t, service.IsValidPDF(fake))
}
