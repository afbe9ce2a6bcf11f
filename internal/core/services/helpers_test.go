package services

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// mockLLM implements driven.LLMService with testify/mock.
type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	args := m.Called(ctx, messages, opts)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) ModelName() string { return "mock-model" }

func (m *mockLLM) Ping(context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// blockingLLM waits for the context to end, simulating a timeout.
type blockingLLM struct{}

func (blockingLLM) Chat(ctx context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingLLM) ModelName() string          { return "blocking" }
func (blockingLLM) Ping(context.Context) error { return nil }
func (blockingLLM) Close() error               { return nil }

// fakeAutocomplete returns a fixed response and records seeds.
type fakeAutocomplete struct {
	resp  domain.ParsedResponse[[]string]
	seeds []string
}

func (f *fakeAutocomplete) Complete(_ context.Context, seed string) domain.ParsedResponse[[]string] {
	f.seeds = append(f.seeds, seed)
	return f.resp
}

// fakeIdeaSource returns fixed ideas or an error.
type fakeIdeaSource struct {
	name  domain.IdeaSource
	ideas []domain.KeywordIdea
	err   error
	calls int
}

func (f *fakeIdeaSource) Name() domain.IdeaSource { return f.name }

func (f *fakeIdeaSource) Ideas(context.Context, string, int) ([]domain.KeywordIdea, error) {
	f.calls++
	return f.ideas, f.err
}

// fakeNouns splits on spaces.
type fakeNouns struct {
	nouns []string
}

func (f fakeNouns) Nouns(string) []string { return f.nouns }

// fakePrompts serves prompts from a map.
type fakePrompts map[string]string

func (f fakePrompts) Load(name string) (string, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return "", errors.New("missing prompt")
}

func (f fakePrompts) Reload() {}
