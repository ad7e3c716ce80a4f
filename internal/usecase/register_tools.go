package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/flex"
)

// DefaultPrivatePrefix marks functions that are never exposed as tools.
const DefaultPrivatePrefix = "_"

// RegistryConfig is the static configuration a registry is built from.
// It is owned by the use case instance; nothing here is process-global.
type RegistryConfig struct {
	// Overrides holds the per-function rule sets. Functions without an entry
	// get an empty override.
	Overrides map[string]flex.Override
	// Aliases holds per-function alias tables merged under each override's
	// own aliases (override entries win).
	Aliases map[string]map[string]string
	// Exclude lists helper functions that must not be registered.
	Exclude []string
	// PrivatePrefix defaults to DefaultPrivatePrefix when empty.
	PrivatePrefix string
}

// RegisterToolsUseCase turns a collection of domain functions into validated,
// callable tools and registers them with the host agent.
type RegisterToolsUseCase struct {
	config     RegistryConfig
	host       ToolHost
	repository ToolRepository
	logger     *slog.Logger
}

// NewRegisterToolsUseCase creates a new RegisterToolsUseCase.
func NewRegisterToolsUseCase(
	config RegistryConfig,
	host ToolHost,
	repository ToolRepository,
	logger *slog.Logger,
) *RegisterToolsUseCase {
	if config.PrivatePrefix == "" {
		config.PrivatePrefix = DefaultPrivatePrefix
	}
	return &RegisterToolsUseCase{
		config:     config,
		host:       host,
		repository: repository,
		logger:     logger.With("usecase", "RegisterTools"),
	}
}

// Execute builds one wrapper per public, non-excluded function and registers it.
// It returns the registered names in sorted order. It is meant to run once at
// startup, before any tool is invoked.
func (uc *RegisterToolsUseCase) Execute(ctx context.Context, functions []domain.Function) ([]string, error) {
	uc.logger.Info("Registering tools", slog.Int("candidate_count", len(functions)))

	sorted := append([]domain.Function(nil), functions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	excluded := make(map[string]struct{}, len(uc.config.Exclude))
	for _, name := range uc.config.Exclude {
		excluded[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(sorted))
	tools := make([]domain.Tool, 0, len(sorted))
	handlers := make([]ToolHandler, 0, len(sorted))
	for _, fn := range sorted {
		log := uc.logger.With(slog.String("tool_name", fn.Name))
		if strings.HasPrefix(fn.Name, uc.config.PrivatePrefix) {
			log.Debug("Skipping private function")
			continue
		}
		if _, skip := excluded[fn.Name]; skip {
			log.Debug("Skipping excluded function")
			continue
		}
		if _, dup := seen[fn.Name]; dup {
			log.Error("Duplicate function name")
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, fn.Name)
		}
		seen[fn.Name] = struct{}{}

		override := uc.config.Overrides[fn.Name].WithAliases(uc.config.Aliases[fn.Name])
		wrapper, err := flex.NewWrapper(fn, override, uc.logger)
		if err != nil {
			log.Error("Failed to build tool wrapper", slog.Any("error", err))
			return nil, fmt.Errorf("failed to build wrapper for %s: %w", fn.Name, err)
		}
		tools = append(tools, wrapper.Descriptor())
		handlers = append(handlers, wrapper)
	}

	if err := uc.repository.Save(ctx, tools, handlers); err != nil {
		uc.logger.Error("Failed to save registered tools", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save registered tools: %w", err)
	}

	names := make([]string, 0, len(tools))
	for i, tool := range tools {
		uc.host.AddTool(tool, handlers[i])
		names = append(names, tool.Name)
	}
	uc.logger.Info("Successfully registered tools", slog.Int("tool_count", len(names)))
	return names, nil
}
