package mcpjsonrpc

// Based on JSON-RPC 2.0: https://www.jsonrpc.org/specification

import "github.com/i2y/smsbridge/internal/domain"

// Version is the only protocol version accepted.
const Version = "2.0"

// Admin methods.
const (
	MethodListTools  = "listTools"
	MethodInvokeTool = "invokeTool"
)

// Request represents a JSON-RPC request object.
type Request struct {
	Version string      `json:"jsonrpc"`          // MUST be "2.0"
	Method  string      `json:"method"`           // Method to be invoked
	Params  interface{} `json:"params,omitempty"` // Parameters (structured value or array)
	ID      interface{} `json:"id,omitempty"`     // Request identifier (string, number, or null)
}

// Response represents a JSON-RPC response object.
type Response struct {
	Version string      `json:"jsonrpc"`          // MUST be "2.0"
	Result  interface{} `json:"result,omitempty"` // Required on success
	Error   *Error      `json:"error,omitempty"`  // Required on error
	ID      interface{} `json:"id"`               // Must match request ID (or null if could not be determined)
}

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`           // Error code
	Message string      `json:"message"`        // Error message
	Data    interface{} `json:"data,omitempty"` // Additional data about the error
}

// Error codes (a subset of JSON-RPC 2.0 plus application errors)
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	// -32000 to -32099: Server error (implementation-defined)
	CodeServerErrorToolNotFound = -32000
	CodeServerErrorToolFailed   = -32001
)

// InvokeToolParams defines the structure for the "params" field
// when the method is "invokeTool".
type InvokeToolParams struct {
	ToolName   string                 `json:"toolName" mapstructure:"toolName"`
	Parameters map[string]interface{} `json:"parameters" mapstructure:"parameters"`
}

// ListToolsResult is the "result" of a successful "listTools" call.
type ListToolsResult struct {
	Tools []domain.Tool `json:"tools"`
}

// NewResultResponse builds a success response for id.
func NewResultResponse(id, result interface{}) Response {
	return Response{Version: Version, Result: result, ID: id}
}

// NewErrorResponse builds an error response for id.
func NewErrorResponse(id interface{}, code int, message string) Response {
	return Response{Version: Version, Error: &Error{Code: code, Message: message}, ID: id}
}
