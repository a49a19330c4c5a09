package mcp

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/a3tai/pdf-form-filler/internal/config"
	"github.com/a3tai/pdf-form-filler/internal/descriptions"
	"github.com/a3tai/pdf-form-filler/internal/fielddef"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *taxforms.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *taxforms.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	fillTool := mcp.NewTool(
		"taxform_fill",
		mcp.WithDescription(descriptions.GetToolDescription("taxform_fill")),
		mcp.WithString("form_type",
			mcp.Required(),
			mcp.Description("Form type: W9, W8_BEN or W8_BEN_E"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description("JSON object with the form values"),
		),
		mcp.WithString("output",
			mcp.Description("Output file name below the output directory (generated if empty)"),
		),
		mcp.WithBoolean("field_names",
			mcp.Description("Fill every text field with its own name instead of the values, to locate fields on the template"),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFill)

	checkTool := mcp.NewTool(
		"taxform_check",
		mcp.WithDescription(descriptions.GetToolDescription("taxform_check")),
		mcp.WithString("form_type",
			mcp.Description("Form type to check (all forms if empty)"),
		),
	)
	s.mcpServer.AddTool(checkTool, s.handleCheck)

	fieldsTool := mcp.NewTool(
		"taxform_fields",
		mcp.WithDescription(descriptions.GetToolDescription("taxform_fields")),
		mcp.WithString("form_type",
			mcp.Required(),
			mcp.Description("Form type: W9, W8_BEN or W8_BEN_E"),
		),
		mcp.WithBoolean("include_text",
			mcp.Description("Also return the plain text of every template page"),
		),
	)
	s.mcpServer.AddTool(fieldsTool, s.handleFields)

	listTool := mcp.NewTool(
		"taxform_list",
		mcp.WithDescription(descriptions.GetToolDescription("taxform_list")),
	)
	s.mcpServer.AddTool(listTool, s.handleList)
}

// Handler functions
func (s *Server) handleFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formType, err := request.RequireString("form_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := request.RequireString("values")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output := ""
	if o, ok := request.GetArguments()["output"].(string); ok {
		output = o
	}
	fieldNames := false
	if b, ok := request.GetArguments()["field_names"].(bool); ok {
		fieldNames = b
	}

	result, err := s.service.FillFile(ctx, taxforms.FillRequest{
		FormType:   formType,
		Values:     []byte(values),
		Output:     output,
		FieldNames: fieldNames,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Successfully filled %s: %s\n", result.FormType, result.Path)
	responseText += fmt.Sprintf("Pages: %d\n", result.Pages)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.Size)
	responseText += fmt.Sprintf("Request ID: %s\n", result.RequestID)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var formTypes []string
	if t, ok := request.GetArguments()["form_type"].(string); ok && t != "" {
		formTypes = append(formTypes, t)
	}

	results, err := s.service.Check(ctx, formTypes...)
	if results == nil && err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(taxforms.FormatCheck(results, err)), nil
}

func (s *Server) handleFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formType, err := request.RequireString("form_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	includeText := false
	if b, ok := request.GetArguments()["include_text"].(bool); ok {
		includeText = b
	}

	result, err := s.service.Fields(taxforms.FieldsRequest{FormType: formType, IncludeText: includeText})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(taxforms.FormatFields(result)), nil
}

func (s *Server) handleList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s %s\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Template directory: %s\n", s.service.Templates().Directory())
	text += fmt.Sprintf("Output directory: %s\n\nForms:\n", s.config.OutputDirectory)

	for _, form := range taxforms.All() {
		status := "installed"
		path, err := s.service.Templates().Path(form)
		if err != nil {
			status = err.Error()
		} else if _, err := os.Stat(path); err != nil {
			status = "missing"
		}

		text += fmt.Sprintf("• %s: %s\n", form.Type, form.Title)
		text += fmt.Sprintf("  Template: %s (%s)\n", form.Template, status)
		text += fmt.Sprintf("  Fields: %d attributes, %d PDF fields\n",
			len(form.Fields), len(fielddef.AllPaths(form.Fields)))
		if form.UseFallbackReadonly {
			text += "  Finalized by marking fields read-only\n"
		}
	}

	return mcp.NewToolResultText(text), nil
}

// Run serves MCP over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting tax form MCP server in stdio mode")
		log.Printf("Template directory: %s", s.config.TemplateDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
