package mcphttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/usecase"
	"github.com/i2y/smsbridge/pkg/shared/mcpjsonrpc"
)

// ToolLister lists the registered tool descriptors.
type ToolLister interface {
	Execute(ctx context.Context) ([]domain.Tool, error)
}

// ToolInvoker calls one registered tool by name.
type ToolInvoker interface {
	Execute(ctx context.Context, toolName string, params map[string]interface{}) (interface{}, error)
}

// Handlers struct holds dependencies for the HTTP handlers.
type Handlers struct {
	serveTools ToolLister
	invokeTool ToolInvoker
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(serveUC ToolLister, invokeUC ToolInvoker, logger *slog.Logger) *Handlers {
	return &Handlers{
		serveTools: serveUC,
		invokeTool: invokeUC,
		logger:     logger.With("component", "mcphttp_handler"),
	}
}

// RegisterAdminRoutes sets up the HTTP routes for admin endpoints.
func (h *Handlers) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/rpc", h.handleRPC)
}

// handleRPC implements POST /admin/rpc. Protocol-level failures are reported
// in the JSON-RPC error object with HTTP 200, as JSON-RPC over HTTP expects.
func (h *Handlers) handleRPC(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req mcpjsonrpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode RPC request body", slog.Any("error", err))
		h.writeResponse(w, mcpjsonrpc.NewErrorResponse(nil, mcpjsonrpc.CodeParseError, "parse error: "+err.Error()))
		return
	}
	if req.Version != mcpjsonrpc.Version || req.Method == "" {
		h.writeResponse(w, mcpjsonrpc.NewErrorResponse(req.ID, mcpjsonrpc.CodeInvalidRequest, "invalid JSON-RPC 2.0 request"))
		return
	}

	log := h.logger.With(slog.String("rpc_method", req.Method))
	log.Info("Received admin RPC")

	switch req.Method {
	case mcpjsonrpc.MethodListTools:
		tools, err := h.serveTools.Execute(r.Context())
		if err != nil {
			log.Error("Failed to list tools", slog.Any("error", err))
			h.writeResponse(w, mcpjsonrpc.NewErrorResponse(req.ID, mcpjsonrpc.CodeInternalError, err.Error()))
			return
		}
		h.writeResponse(w, mcpjsonrpc.NewResultResponse(req.ID, mcpjsonrpc.ListToolsResult{Tools: tools}))

	case mcpjsonrpc.MethodInvokeTool:
		var params mcpjsonrpc.InvokeToolParams
		if err := mapstructure.Decode(req.Params, &params); err != nil || params.ToolName == "" {
			log.Warn("Invalid invokeTool params", slog.Any("error", err))
			h.writeResponse(w, mcpjsonrpc.NewErrorResponse(req.ID, mcpjsonrpc.CodeInvalidParams, "params must carry a non-empty toolName"))
			return
		}
		if params.Parameters == nil {
			params.Parameters = map[string]interface{}{}
		}

		result, err := h.invokeTool.Execute(r.Context(), params.ToolName, params.Parameters)
		switch {
		case errors.Is(err, usecase.ErrToolNotFound):
			h.writeResponse(w, mcpjsonrpc.NewErrorResponse(req.ID, mcpjsonrpc.CodeServerErrorToolNotFound, err.Error()))
		case err != nil:
			h.writeResponse(w, mcpjsonrpc.NewErrorResponse(req.ID, mcpjsonrpc.CodeServerErrorToolFailed, err.Error()))
		default:
			h.writeResponse(w, mcpjsonrpc.NewResultResponse(req.ID, result))
		}

	default:
		log.Warn("Unknown RPC method")
		h.writeResponse(w, mcpjsonrpc.NewErrorResponse(req.ID, mcpjsonrpc.CodeMethodNotFound, "method not found: "+req.Method))
	}
}

func (h *Handlers) writeResponse(w http.ResponseWriter, resp mcpjsonrpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to write RPC response", slog.Any("error", err))
	}
}
