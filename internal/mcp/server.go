package mcp

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/a3tai/pdf-abstract-scanner/internal/config"
	"github.com/a3tai/pdf-abstract-scanner/internal/descriptions"
	"github.com/a3tai/pdf-abstract-scanner/internal/output"
	"github.com/a3tai/pdf-abstract-scanner/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	findAbstractsTool := mcp.NewTool(
		descriptions.ToolFindAbstracts,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolFindAbstracts)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the PDF directory"),
		),
		mcp.WithNumber("start_page",
			mcp.Description("First page index to examine, at least 1 (default 1)"),
		),
		mcp.WithNumber("end_page",
			mcp.Description("Page index to stop before, 0 for the last page (default 0)"),
		),
	)
	s.mcpServer.AddTool(findAbstractsTool, s.handlePDFFindAbstracts)

	validateFileTool := mcp.NewTool(
		descriptions.ToolValidateFile,
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.ToolValidateFile)),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the PDF directory"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handlePDFValidateFile)
}

// Handler functions

func (s *Server) handlePDFFindAbstracts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	start, err := intArgument(args, "start_page", config.DefaultStartPage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := intArgument(args, "end_page", config.DefaultEndPage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Debug().
		Str("tool", descriptions.ToolFindAbstracts).
		Str("path", path).
		Int("start_page", start).
		Int("end_page", end).
		Msg("tool call")

	result, err := s.pdfService.PDFFindAbstracts(ctx, pdf.PDFFindAbstractsRequest{
		Path:      path,
		StartPage: start,
		EndPage:   end,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFFindAbstractsResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFValidateFileResult(result)), nil
}

// Formatting methods

func (s *Server) formatPDFFindAbstractsResult(result *pdf.PDFFindAbstractsResult) string {
	var b strings.Builder
	b.WriteString(output.Summary(len(result.Results), len(result.SkippedPages), result.Path))
	fmt.Fprintf(&b, "\nPages scanned: [%d, %d) of %d\n", result.StartPage, result.EndPage, result.Pages)
	if len(result.SkippedPages) > 0 {
		skipped := make([]string, len(result.SkippedPages))
		for i, p := range result.SkippedPages {
			skipped[i] = strconv.Itoa(p)
		}
		fmt.Fprintf(&b, "Skipped pages: %s\n", strings.Join(skipped, ", "))
	}
	if len(result.Results) > 0 {
		b.WriteString("\n")
		b.WriteString(output.FormatAll(result.Results))
	}
	return b.String()
}

func (s *Server) formatPDFValidateFileResult(result *pdf.PDFValidateFileResult) string {
	if !result.Valid {
		return fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	text := fmt.Sprintf("PDF file %s is valid and readable\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	if result.Version != "" {
		text += fmt.Sprintf("Version: %s\n", result.Version)
	}
	if result.Encrypted {
		text += "Encrypted: yes, text extraction may fail\n"
	}
	return text
}

// intArgument reads an optional integer tool argument. JSON numbers arrive as float64.
func intArgument(args map[string]any, key string, fallback int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return fallback, nil
	}

	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, raw)
	}
}

// Run serves MCP over the process's standard input and output until ctx is
// cancelled or input ends.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Debug().
		Str("pdf_directory", s.pdfService.Directory()).
		Msg("starting MCP server in stdio mode")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(stdlog.New(s.logger, "", 0))

	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
