package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/i2y/smsbridge/internal/domain"
	"github.com/i2y/smsbridge/internal/flex"
	"github.com/i2y/smsbridge/internal/usecase"
)

// MockToolRepository defined in serve_tools_test.go

// MockToolHandler is a mock implementation of the ToolHandler interface.
type MockToolHandler struct {
	mock.Mock
}

func (m *MockToolHandler) Descriptor() domain.Tool {
	args := m.Called()
	return args.Get(0).(domain.Tool)
}

func (m *MockToolHandler) Call(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	args := m.Called(ctx, params)
	// Return the first argument directly as interface{} and the error
	return args.Get(0), args.Error(1)
}

func TestInvokeToolUseCase_Execute(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Prepare mock data
	toolName := "send_quick_bulk_sms"
	inputParams := map[string]interface{}{"recipient": "0241234567", "sender_id": "ACME", "message": "hi"}
	expectedResult := map[string]interface{}{"status": "success"}
	rejection := flex.ErrorResult{Error: "Missing required parameter(s): message"}
	handlerErr := errors.New("HTTP 500: upstream down")

	tests := []struct {
		name          string
		mockSetup     func(*MockToolRepository, *MockToolHandler)
		wantErr       bool
		wantErrIs     error
		wantResult    interface{}
		expectErrText string // Optional: check specific error text
	}{
		{
			name: "Success - tool invoked",
			mockSetup: func(repo *MockToolRepository, handler *MockToolHandler) {
				repo.On("FindHandlerByName", mock.Anything, toolName).Return(handler, nil).Once()
				handler.On("Call", mock.Anything, inputParams).Return(expectedResult, nil).Once()
			},
			wantResult: expectedResult,
		},
		{
			name: "Success - structured rejection is a result",
			mockSetup: func(repo *MockToolRepository, handler *MockToolHandler) {
				repo.On("FindHandlerByName", mock.Anything, toolName).Return(handler, nil).Once()
				handler.On("Call", mock.Anything, inputParams).Return(rejection, nil).Once()
			},
			wantResult: rejection,
		},
		{
			name: "Failure - tool not found",
			mockSetup: func(repo *MockToolRepository, handler *MockToolHandler) {
				repo.On("FindHandlerByName", mock.Anything, toolName).Return(nil, usecase.ErrToolNotFound).Once()
				// Call should not be invoked
			},
			wantErr:       true,
			wantErrIs:     usecase.ErrToolNotFound,
			expectErrText: "tool 'send_quick_bulk_sms' not found: tool not found",
		},
		{
			name: "Failure - handler error",
			mockSetup: func(repo *MockToolRepository, handler *MockToolHandler) {
				repo.On("FindHandlerByName", mock.Anything, toolName).Return(handler, nil).Once()
				handler.On("Call", mock.Anything, inputParams).Return(nil, handlerErr).Once()
			},
			wantErr:       true,
			wantErrIs:     handlerErr,
			expectErrText: "failed to invoke tool send_quick_bulk_sms: HTTP 500: upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockToolRepository)
			mockHandler := new(MockToolHandler)
			tt.mockSetup(mockRepo, mockHandler)

			uc := usecase.NewInvokeToolUseCase(mockRepo, logger)
			actualResult, err := uc.Execute(ctx, toolName, inputParams)

			if tt.wantErr {
				assert.Error(err)
				assert.ErrorIs(err, tt.wantErrIs)
				if tt.expectErrText != "" {
					assert.EqualError(err, tt.expectErrText)
				}
				assert.Nil(actualResult)
			} else {
				assert.NoError(err)
				assert.Equal(tt.wantResult, actualResult)
			}

			mockRepo.AssertExpectations(t)
			mockHandler.AssertExpectations(t)
		})
	}
}
