package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i2y/smsbridge/internal/flex"
)

// InvokeToolUseCase handles receiving a tool invocation request and executing it.
type InvokeToolUseCase struct {
	repository ToolRepository
	logger     *slog.Logger
}

// NewInvokeToolUseCase creates a new InvokeToolUseCase.
func NewInvokeToolUseCase(repo ToolRepository, logger *slog.Logger) *InvokeToolUseCase {
	return &InvokeToolUseCase{
		repository: repo,
		logger:     logger.With("usecase", "InvokeTool"),
	}
}

// Execute finds the handler registered under toolName and calls it with params.
// A structured validation error is a successful result, not an error.
func (uc *InvokeToolUseCase) Execute(ctx context.Context, toolName string, params map[string]interface{}) (interface{}, error) {
	log := uc.logger.With(slog.String("tool_name", toolName))
	log.Info("Executing tool invocation")

	handler, err := uc.repository.FindHandlerByName(ctx, toolName)
	if err != nil {
		log.Warn("Tool handler not found", slog.Any("error", err))
		return nil, fmt.Errorf("tool '%s' not found: %w", toolName, err)
	}

	result, err := handler.Call(ctx, params)
	if err != nil {
		log.Error("Failed to invoke tool", slog.Any("error", err))
		return nil, fmt.Errorf("failed to invoke tool %s: %w", toolName, err)
	}

	if rejected, ok := flex.AsErrorResult(result); ok {
		log.Info("Tool invocation rejected", slog.String("reason", rejected.Error))
		return result, nil
	}
	log.Info("Tool invocation successful")
	log.Debug("Invocation result", slog.Any("result", result))
	return result, nil
}
