package memrepo_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/smsbridge/internal/adapter/outbound/memrepo"
	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/usecase"
)

// stubHandler is a minimal usecase.ToolHandler identified by label.
type stubHandler struct {
	label string
}

func (h stubHandler) Descriptor() domain.Tool { return domain.Tool{Name: h.label} }

func (h stubHandler) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return h.label, nil
}

func newTestRepo(t *testing.T) *memrepo.InMemoryToolRepository {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return memrepo.NewInMemoryToolRepository(logger)
}

func TestInMemoryToolRepository_SaveAndList(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	tool1 := domain.Tool{Name: "tool1", Description: "T1"}
	handler1 := stubHandler{label: "h1"}
	tool2 := domain.Tool{Name: "tool2", Description: "T2"}
	handler2 := stubHandler{label: "h2"}

	tests := []struct {
		name        string
		inTools     []domain.Tool
		inHandlers  []usecase.ToolHandler
		wantSaveErr bool
		wantList    []domain.Tool // Expected state after save
	}{
		{
			name:        "Save single tool",
			inTools:     []domain.Tool{tool1},
			inHandlers:  []usecase.ToolHandler{handler1},
			wantSaveErr: false,
			wantList:    []domain.Tool{tool1},
		},
		{
			name:        "Save multiple tools",
			inTools:     []domain.Tool{tool1, tool2},
			inHandlers:  []usecase.ToolHandler{handler1, handler2},
			wantSaveErr: false,
			wantList:    []domain.Tool{tool1, tool2}, // Order might vary in List
		},
		{
			name:        "Save empty list",
			inTools:     []domain.Tool{},
			inHandlers:  []usecase.ToolHandler{},
			wantSaveErr: false,
			wantList:    []domain.Tool{},
		},
		{
			name:        "Save with empty tool name (skipped)",
			inTools:     []domain.Tool{{Name: "", Description: "Empty"}, tool1},
			inHandlers:  []usecase.ToolHandler{handler2, handler1},
			wantSaveErr: false,
			wantList:    []domain.Tool{tool1}, // Only tool1 should be saved
		},
		{
			name:        "Error on mismatch length",
			inTools:     []domain.Tool{tool1},
			inHandlers:  []usecase.ToolHandler{handler1, handler2}, // Mismatch
			wantSaveErr: true,
			wantList:    []domain.Tool{}, // Expect state to be unchanged on error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset repo for each test case focusing on save->list
			repo := newTestRepo(t)

			err := repo.Save(ctx, tt.inTools, tt.inHandlers)

			if tt.wantSaveErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}

			listedTools, listErr := repo.List(ctx)
			require.NoError(listErr) // List should not error here

			// Use ElementsMatch because the order from List is not guaranteed
			assert.ElementsMatch(tt.wantList, listedTools)
		})
	}
}

func TestInMemoryToolRepository_FindByName(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newTestRepo(t)

	tool1 := domain.Tool{Name: "tool1", Description: "T1"}
	handler1 := stubHandler{label: "h1"}
	tool2 := domain.Tool{Name: "tool2", Description: "T2"}
	handler2 := stubHandler{label: "h2"}

	// Pre-populate the repo
	err := repo.Save(ctx, []domain.Tool{tool1, tool2}, []usecase.ToolHandler{handler1, handler2})
	require.NoError(err)

	tests := []struct {
		name        string
		inName      string
		wantTool    *domain.Tool
		wantHandler usecase.ToolHandler
		wantErr     bool // Expecting ErrToolNotFound from both lookups
	}{
		{
			name:        "Find existing tool1",
			inName:      "tool1",
			wantTool:    &tool1,
			wantHandler: handler1,
		},
		{
			name:        "Find existing tool2",
			inName:      "tool2",
			wantTool:    &tool2,
			wantHandler: handler2,
		},
		{
			name:    "Find non-existent tool",
			inName:  "tool3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualTool, err := repo.FindToolByName(ctx, tt.inName)
			if tt.wantErr {
				assert.ErrorIs(err, usecase.ErrToolNotFound, "Expected ErrToolNotFound for FindToolByName")
				assert.Nil(actualTool)
			} else {
				assert.NoError(err)
				assert.Equal(tt.wantTool, actualTool)
			}

			actualHandler, err := repo.FindHandlerByName(ctx, tt.inName)
			if tt.wantErr {
				assert.ErrorIs(err, usecase.ErrToolNotFound, "Expected ErrToolNotFound for FindHandlerByName")
				assert.Nil(actualHandler)
			} else {
				assert.NoError(err)
				assert.Equal(tt.wantHandler, actualHandler)
			}
		})
	}
}

func TestInMemoryToolRepository_SaveOverwrite(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newTestRepo(t)

	toolV1 := domain.Tool{Name: "overwrite", Description: "V1"}
	handlerV1 := stubHandler{label: "v1"}
	toolV2 := domain.Tool{Name: "overwrite", Description: "V2"}
	handlerV2 := stubHandler{label: "v2"}

	// Save V1
	err := repo.Save(ctx, []domain.Tool{toolV1}, []usecase.ToolHandler{handlerV1})
	require.NoError(err)

	foundTool, err := repo.FindToolByName(ctx, "overwrite")
	require.NoError(err)
	assert.Equal(&toolV1, foundTool)
	foundHandler, err := repo.FindHandlerByName(ctx, "overwrite")
	require.NoError(err)
	assert.Equal(handlerV1, foundHandler)

	// Save V2 (same name)
	err = repo.Save(ctx, []domain.Tool{toolV2}, []usecase.ToolHandler{handlerV2})
	require.NoError(err)

	// Check if V2 overwrote V1
	foundTool, err = repo.FindToolByName(ctx, "overwrite")
	require.NoError(err)
	assert.Equal(&toolV2, foundTool)
	foundHandler, err = repo.FindHandlerByName(ctx, "overwrite")
	require.NoError(err)
	assert.Equal(handlerV2, foundHandler)

	// List should only contain V2
	list, err := repo.List(ctx)
	require.NoError(err)
	assert.Len(list, 1)
	assert.Equal(toolV2, list[0])
}

func TestInMemoryToolRepository_SkipsNilHandler(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.Save(ctx,
		[]domain.Tool{{Name: "orphan"}, {Name: "kept"}},
		[]usecase.ToolHandler{nil, stubHandler{label: "kept"}})
	require.NoError(t, err)

	_, err = repo.FindToolByName(ctx, "orphan")
	assert.ErrorIs(t, err, usecase.ErrToolNotFound)
	_, err = repo.FindHandlerByName(ctx, "kept")
	assert.NoError(t, err)
}
