// Package mcpserver registers flexible tools with a mark3labs/mcp-go server.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/flex"
	"github.com/i2y/smsbridge/internal/usecase"
)

// Host adapts *server.MCPServer to usecase.ToolHost.
type Host struct {
	server *server.MCPServer
	logger *slog.Logger
}

// NewHost creates a Host backed by srv.
func NewHost(srv *server.MCPServer, logger *slog.Logger) *Host {
	return &Host{
		server: srv,
		logger: logger.With("component", "mcp_host"),
	}
}

// AddTool registers tool on the MCP server with a handler that forwards the
// raw argument mapping to handler.
func (h *Host) AddTool(tool domain.Tool, handler usecase.ToolHandler) {
	h.server.AddTool(ToMCPTool(tool), HandlerFunc(handler, h.logger))
	h.logger.Debug("Registered MCP tool", slog.String("tool_name", tool.Name))
}

// ToMCPTool converts a domain descriptor into mcp-go's tool type.
func ToMCPTool(tool domain.Tool) mcp.Tool {
	props := make(map[string]any, len(tool.InputSchema.Properties))
	for name, p := range tool.InputSchema.Properties {
		props[name] = schemaMap(p)
	}
	return mcp.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   tool.InputSchema.Required,
		},
	}
}

func schemaMap(p domain.JSONSchemaProps) map[string]any {
	out := map[string]any{"type": p.Type}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Default != nil {
		out["default"] = p.Default
	}
	if p.Items != nil {
		out["items"] = schemaMap(*p.Items)
	}
	if len(p.Properties) > 0 {
		nested := make(map[string]any, len(p.Properties))
		for name, child := range p.Properties {
			nested[name] = schemaMap(child)
		}
		out["properties"] = nested
	}
	if len(p.Required) > 0 {
		out["required"] = p.Required
	}
	return out
}

// HandlerFunc bridges an MCP tools/call request to handler. A structured
// rejection is returned as an error result carrying {"error": ...}; domain
// failures become error results with the error text.
func HandlerFunc(handler usecase.ToolHandler, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		result, err := handler.Call(ctx, args)
		if err != nil {
			logger.Warn("Tool call failed", slog.String("tool_name", request.Params.Name), slog.Any("error", err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		if rejected, ok := flex.AsErrorResult(result); ok {
			text, _ := json.Marshal(rejected)
			return mcp.NewToolResultError(string(text)), nil
		}
		text, err := renderResult(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func renderResult(result interface{}) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
