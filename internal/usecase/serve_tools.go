package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/i2y/smsbridge/internal/domain"
)

// ServeToolsUseCase lists the descriptors of every MNotify function the
// registration step exposed, for the admin listTools method.
type ServeToolsUseCase struct {
	repository ToolRepository
	logger     *slog.Logger
}

// NewServeToolsUseCase creates a new ServeToolsUseCase.
func NewServeToolsUseCase(repository ToolRepository, logger *slog.Logger) *ServeToolsUseCase {
	return &ServeToolsUseCase{
		repository: repository,
		logger:     logger.With("usecase", "ServeTools"),
	}
}

// Execute returns the registered tool descriptors ordered by name, so listings
// are stable across restarts.
func (uc *ServeToolsUseCase) Execute(ctx context.Context) ([]domain.Tool, error) {
	uc.logger.Debug("Listing registered tools")
	tools, err := uc.repository.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list tools from repository", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list tools from repository: %w", err)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	uc.logger.Info("Listed registered tools", slog.Int("count", len(tools)))
	return tools, nil
}
