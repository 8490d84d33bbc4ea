package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/a3tai/pdf-abstract-scanner/internal/config"
	"github.com/a3tai/pdf-abstract-scanner/internal/mcp"
	"github.com/a3tai/pdf-abstract-scanner/internal/output"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. In stdio mode stdout carries the
// MCP protocol, so logs stay off unless debug is enabled.
func setupLogging(cfg *config.Config, w io.Writer) zerolog.Logger {
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		return zerolog.Nop()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// newService builds the PDF service from the loaded configuration
func newService(cfg *config.Config, logger zerolog.Logger) (*pdf.Service, error) {
	pdfService, err := pdf.NewService(pdf.ServiceConfig{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.PDFDirectory(),
		MergeMode:   cfg.MergeMode(),
		Keywords:    cfg.Keywords,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := pdfService.ValidateConfiguration(); err != nil {
		return nil, err
	}
	return pdfService, nil
}

// runBatchMode scans the configured page range and appends every result to
// the output file as soon as it is found.
func runBatchMode(ctx context.Context, cfg *config.Config, pdfService *pdf.Service, logger zerolog.Logger) error {
	doc, err := pdfService.Open(cfg.PDFPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	scanner := pdfService.NewScanner(doc)
	seq, err := scanner.Scan(ctx, cfg.StartPage, cfg.EndPage)
	if err != nil {
		return err
	}

	writer := output.NewWriter(cfg.OutputPath)
	found := 0
	for result, err := range seq {
		if err != nil {
			return err
		}
		if err := writer.Write(result); err != nil {
			return err
		}
		found++
		logger.Debug().Int("page", result.PageNumber).Str("output", writer.Path()).Msg("result written")
	}

	logger.Info().
		Str("output", writer.Path()).
		Msg(output.Summary(found, len(scanner.Skipped()), cfg.PDFPath))
	return nil
}

// runStdioMode serves the MCP tools until stdin closes or ctx is cancelled
func runStdioMode(ctx context.Context, cfg *config.Config, pdfService *pdf.Service, logger zerolog.Logger) error {
	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	err = server.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := setupLogging(cfg, os.Stderr)
	logger.Debug().Str("config", cfg.String()).Msg("starting")

	pdfService, err := newService(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create PDF service: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsStdioMode() {
		err = runStdioMode(ctx, cfg, pdfService, logger)
	} else {
		err = runBatchMode(ctx, cfg, pdfService, logger)
	}
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Abstract Scanner\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
