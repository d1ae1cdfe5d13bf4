package service

import (
	"context"

	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/domain"
	"github.com/ganeshsriprasad/Groq-LLM-chatbot/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockSessionStore mocks the domain.SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) Append(ctx context.Context, id string, msg domain.Message) error {
	args := m.Called(ctx, id, msg)
	return args.Error(0)
}

func (m *MockSessionStore) List(ctx context.Context) ([]domain.SessionSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionSummary), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// StubProvider is a canned-response LLM provider for tests
type StubProvider struct {
	Reply       string
	Err         error
	LastRequest llm.Request
}

func (p *StubProvider) Name() string              { return "stub" }
func (p *StubProvider) AvailableModels() []string { return []string{"stub-model"} }
func (p *StubProvider) DefaultModel() string      { return "stub-model" }
func (p *StubProvider) IsConfigured() bool        { return true }

func (p *StubProvider) Complete(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	p.LastRequest = req
	if p.Err != nil {
		return nil, p.Err
	}
	return &llm.Response{Text: p.Reply, Model: "stub-model"}, nil
}
