package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i2y/smsbridge/internal/adapter/outbound/memrepo"
	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/flex"
	"github.com/i2y/smsbridge/internal/usecase"
)

// MockToolHost is a mock implementation of the ToolHost interface.
type MockToolHost struct {
	mock.Mock
}

func (m *MockToolHost) AddTool(tool domain.Tool, handler usecase.ToolHandler) {
	m.Called(tool, handler)
}

// recordingHost keeps every registered handler so tests can call them.
type recordingHost struct {
	names    []string
	handlers map[string]usecase.ToolHandler
}

func (h *recordingHost) AddTool(tool domain.Tool, handler usecase.ToolHandler) {
	if h.handlers == nil {
		h.handlers = map[string]usecase.ToolHandler{}
	}
	h.names = append(h.names, tool.Name)
	h.handlers[tool.Name] = handler
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoFunction(name string, params ...domain.Param) domain.Function {
	return domain.Function{
		Name:        name,
		Description: "echo " + name,
		Params:      params,
		Call: func(ctx context.Context, args domain.Binding) (interface{}, error) {
			return map[string]interface{}(args), nil
		},
	}
}

func TestRegisterToolsUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	host := &recordingHost{}
	repo := memrepo.NewInMemoryToolRepository(quietLogger())

	uc := usecase.NewRegisterToolsUseCase(usecase.RegistryConfig{
		Exclude: []string{"main", "safe_api_call"},
	}, host, repo, quietLogger())

	names, err := uc.Execute(ctx, []domain.Function{
		echoFunction("send_quick_bulk_sms"),
		echoFunction("_format_phone"),
		echoFunction("main"),
		echoFunction("add_contact"),
		echoFunction("safe_api_call"),
		echoFunction("check_sms_balance"),
	})
	require.NoError(t, err)

	want := []string{"add_contact", "check_sms_balance", "send_quick_bulk_sms"}
	assert.Equal(t, want, names)
	assert.Equal(t, want, host.names)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
	for _, name := range want {
		handler, err := repo.FindHandlerByName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, handler.Descriptor().Name)
	}
}

func TestRegisterToolsUseCase_AppliesOverridesAndAliases(t *testing.T) {
	ctx := context.Background()
	host := &recordingHost{}

	uc := usecase.NewRegisterToolsUseCase(usecase.RegistryConfig{
		Overrides: map[string]flex.Override{
			"send_bulk_group_sms": {
				ExpectedTypes: map[string]domain.ParamKind{"group_id": domain.KindStringList},
				Required:      []string{"group_id", "message"},
				Defaults:      map[string]interface{}{"schedule": false},
				Aliases:       map[string]string{"grp": "group_id"},
			},
		},
		Aliases: map[string]map[string]string{
			"send_bulk_group_sms": {"groups": "group_id", "grp": "ignored"},
		},
	}, host, memrepo.NewInMemoryToolRepository(quietLogger()), quietLogger())

	_, err := uc.Execute(ctx, []domain.Function{
		echoFunction("send_bulk_group_sms",
			domain.Param{Name: "group_id", Kind: domain.KindStringList, Required: true},
			domain.Param{Name: "message", Kind: domain.KindString, Required: true},
			domain.Param{Name: "schedule", Kind: domain.KindBoolean, Default: false},
		),
	})
	require.NoError(t, err)
	handler := host.handlers["send_bulk_group_sms"]
	require.NotNil(t, handler)

	// Registry-level alias.
	result, err := handler.Call(ctx, map[string]interface{}{"groups": "g1,g2", "message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"group_id": []string{"g1", "g2"},
		"message":  "hi",
		"schedule": false,
	}, result)

	// The override's own alias wins over the registry table.
	result, err = handler.Call(ctx, map[string]interface{}{"grp": []interface{}{"g3"}, "message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"g3"}, result.(map[string]interface{})["group_id"])

	// Missing parameters are reported together.
	result, err = handler.Call(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, flex.ErrorResult{Error: "Missing required parameter(s): group_id, message"}, result)
}

func TestRegisterToolsUseCase_Failures(t *testing.T) {
	ctx := context.Background()
	saveErr := errors.New("disk full")

	tests := []struct {
		name      string
		functions []domain.Function
		mockSetup func(*MockToolRepository, *MockToolHost)
		wantErrIs error
		wantText  string
	}{
		{
			name:      "Duplicate function name",
			functions: []domain.Function{echoFunction("add_group"), echoFunction("add_group")},
			mockSetup: func(repo *MockToolRepository, host *MockToolHost) {},
			wantErrIs: usecase.ErrDuplicateTool,
			wantText:  "tool already registered: add_group",
		},
		{
			name:      "Function without implementation",
			functions: []domain.Function{{Name: "add_group"}},
			mockSetup: func(repo *MockToolRepository, host *MockToolHost) {},
			wantText:  "failed to build wrapper for add_group: function add_group has no implementation",
		},
		{
			name:      "Repository save fails",
			functions: []domain.Function{echoFunction("add_group")},
			mockSetup: func(repo *MockToolRepository, host *MockToolHost) {
				repo.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(saveErr).Once()
			},
			wantErrIs: saveErr,
			wantText:  "failed to save registered tools: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockToolRepository)
			host := new(MockToolHost)
			tt.mockSetup(repo, host)

			uc := usecase.NewRegisterToolsUseCase(usecase.RegistryConfig{}, host, repo, quietLogger())
			names, err := uc.Execute(ctx, tt.functions)

			require.Error(t, err)
			assert.Nil(t, names)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			assert.EqualError(t, err, tt.wantText)
			repo.AssertExpectations(t)
			host.AssertNotCalled(t, "AddTool", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterToolsUseCase_SavesDescriptorsAndHandlers(t *testing.T) {
	repo := new(MockToolRepository)
	host := new(MockToolHost)

	fn := echoFunction("check_sms_balance")
	repo.On("Save", mock.Anything, []domain.Tool{fn.Tool()}, mock.MatchedBy(func(handlers []usecase.ToolHandler) bool {
		return len(handlers) == 1 && handlers[0].Descriptor().Name == "check_sms_balance"
	})).Return(nil).Once()
	host.On("AddTool", fn.Tool(), mock.Anything).Once()

	uc := usecase.NewRegisterToolsUseCase(usecase.RegistryConfig{}, host, repo, quietLogger())
	names, err := uc.Execute(context.Background(), []domain.Function{fn})

	require.NoError(t, err)
	assert.Equal(t, []string{"check_sms_balance"}, names)
	repo.AssertExpectations(t)
	host.AssertExpectations(t)
}
