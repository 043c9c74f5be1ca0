package models

import (
	"context"

	"github.com/stretchr/testify/mock"
)

var _ Interface = &MockModel{}

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Name() string { return "mock" }

func (m *MockModel) Close() error { return nil }

func (m *MockModel) Think(ctx context.Context, messages []Message, temp float64, maxTokens int) (string, error) {
	args := m.Called(ctx, messages, temp, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *MockModel) EmbedText(ctx context.Context, input string) ([]float32, error) {
	args := m.Called(ctx, input)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}
