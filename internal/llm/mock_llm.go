package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock implementation of Generator using testify/mock.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.Get(0).(Response), args.Error(1)
}

func (m *MockGenerator) Close() error {
	args := m.Called()
	return args.Error(0)
}
