package usecase

import (
	"context"
	"errors"

	"github.com/i2y/smsbridge/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("tool already registered")
)

// --- Tool Handling ---

// ToolHandler is a callable tool: a descriptor for discovery plus a single
// flexible-mapping entry point. flex.Wrapper is the production implementation.
type ToolHandler interface {
	Descriptor() domain.Tool
	Call(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// ToolRepository defines the contract for storing and retrieving registered
// tools and their handlers.
type ToolRepository interface {
	// Save stores a list of tools and their associated handlers.
	// The two slices correspond by index and must have the same length.
	Save(ctx context.Context, tools []domain.Tool, handlers []ToolHandler) error

	// List retrieves all currently stored tools.
	List(ctx context.Context) ([]domain.Tool, error)

	// FindToolByName retrieves a specific tool definition by its unique name.
	FindToolByName(ctx context.Context, name string) (*domain.Tool, error)

	// FindHandlerByName retrieves the callable handler for a specific tool by name.
	FindHandlerByName(ctx context.Context, name string) (ToolHandler, error)
}

// --- Host Agent Abstraction ---

// ToolHost is the host agent tools are registered with (an MCP server in
// production). Keeping it behind an interface keeps mcp-go out of the use cases.
type ToolHost interface {
	AddTool(tool domain.Tool, handler ToolHandler)
}
