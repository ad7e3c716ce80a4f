package mcpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i2y/smsbridge/internal/adapter/inbound/mcpserver"
	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/flex"
)

// MockToolHandler is a mock implementation of usecase.ToolHandler.
type MockToolHandler struct {
	mock.Mock
}

func (m *MockToolHandler) Descriptor() domain.Tool {
	return m.Called().Get(0).(domain.Tool)
}

func (m *MockToolHandler) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	a := m.Called(ctx, args)
	return a.Get(0), a.Error(1)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestToMCPTool(t *testing.T) {
	fn := domain.Function{
		Name:        "send_quick_bulk_sms",
		Description: "Send an SMS",
		Params: []domain.Param{
			{Name: "recipient", Kind: domain.KindStringList, Required: true, Description: "Numbers"},
			{Name: "schedule", Kind: domain.KindBoolean, Default: false},
		},
	}

	tool := mcpserver.ToMCPTool(fn.Tool())

	assert.Equal(t, "send_quick_bulk_sms", tool.Name)
	assert.Equal(t, "Send an SMS", tool.Description)
	assert.Equal(t, "object", tool.InputSchema.Type)
	assert.Equal(t, []string{"recipient"}, tool.InputSchema.Required)
	assert.Equal(t, map[string]any{
		"type":        "array",
		"description": "Numbers",
		"items":       map[string]any{"type": "string"},
	}, tool.InputSchema.Properties["recipient"])
	assert.Equal(t, map[string]any{
		"type":    "boolean",
		"default": false,
	}, tool.InputSchema.Properties["schedule"])
}

func TestHandlerFunc(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	args := map[string]any{"message": "hi"}

	tests := []struct {
		name        string
		result      interface{}
		err         error
		wantIsError bool
		wantText    string
	}{
		{
			name:     "Map result is rendered as JSON",
			result:   map[string]interface{}{"status": "success"},
			wantText: `{"status":"success"}`,
		},
		{
			name:     "String result is passed through",
			result:   "queued",
			wantText: "queued",
		},
		{
			name:        "Structured rejection keeps the error shape",
			result:      flex.ErrorResult{Error: "Missing required parameter(s): sender_id"},
			wantIsError: true,
			wantText:    `{"error":"Missing required parameter(s): sender_id"}`,
		},
		{
			name:        "Domain failure becomes an error result",
			err:         errors.New("HTTP 401: invalid key"),
			wantIsError: true,
			wantText:    "HTTP 401: invalid key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := new(MockToolHandler)
			handler.On("Call", mock.Anything, args).Return(tt.result, tt.err).Once()

			res, err := mcpserver.HandlerFunc(handler, logger)(ctx, callRequest("send_quick_bulk_sms", args))

			require.NoError(t, err)
			assert.Equal(t, tt.wantIsError, res.IsError)
			assert.Equal(t, tt.wantText, resultText(t, res))
			handler.AssertExpectations(t)
		})
	}
}

func TestHandlerFunc_NilArgumentsBecomeEmptyMap(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := new(MockToolHandler)
	handler.On("Call", mock.Anything, map[string]interface{}{}).Return("ok", nil).Once()

	res, err := mcpserver.HandlerFunc(handler, logger)(context.Background(), callRequest("check_sms_balance", nil))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	handler.AssertExpectations(t)
}
