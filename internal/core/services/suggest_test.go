package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

func testSuggestSettings() domain.SuggestSettings {
	s := domain.DefaultAppSettings().Suggest
	s.BatchDelay = 0
	return s
}

func TestFallbackSuggestions(t *testing.T) {
	assert.Equal(t, []string{
		"エアコン とは", "エアコン メリット", "エアコン デメリット", "エアコン 方法", "エアコン 効果",
		"初心者 エアコン", "簡単 エアコン", "無料 エアコン",
	}, FallbackSuggestions("エアコン"))
}

func TestSuggestionService_Autocomplete(t *testing.T) {
	var upstream []string
	for i := range 12 {
		upstream = append(upstream, fmt.Sprintf("エアコン 候補%d", i))
	}
	client := &fakeAutocomplete{resp: domain.Success(upstream)}
	s := NewSuggestionService(client, testSuggestSettings())

	got, err := s.Suggest(context.Background(), "  エアコン ")
	require.NoError(t, err)
	assert.Equal(t, upstream[:8], got, "primary results are capped")
	assert.Equal(t, []string{"エアコン"}, client.seeds)
}

func TestSuggestionService_FewResultsArePadded(t *testing.T) {
	client := &fakeAutocomplete{resp: domain.Success([]string{"エアコン 掃除", "エアコン とは"})}
	s := NewSuggestionService(client, testSuggestSettings())

	got, err := s.Suggest(context.Background(), "エアコン")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"エアコン 掃除", "エアコン とは", "エアコン メリット", "エアコン デメリット",
		"エアコン 方法", "エアコン 効果", "初心者 エアコン", "簡単 エアコン", "無料 エアコン",
	}, got)
}

func TestSuggestionService_UpstreamFailureUsesPatterns(t *testing.T) {
	tests := []struct {
		name string
		resp domain.ParsedResponse[[]string]
	}{
		{"upstream", domain.UpstreamFailure[[]string]("status 503")},
		{"malformed", domain.Malformed[[]string]("not a JSON array")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSuggestionService(&fakeAutocomplete{resp: tt.resp}, testSuggestSettings())

			got, err := s.Suggest(context.Background(), "エアコン")
			require.NoError(t, err)
			assert.Equal(t, FallbackSuggestions("エアコン"), got)
		})
	}
}

func TestSuggestionService_NoClient(t *testing.T) {
	s := NewSuggestionService(nil, testSuggestSettings())

	got, err := s.Suggest(context.Background(), "エアコン")
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

func TestSuggestionService_MaxResults(t *testing.T) {
	settings := testSuggestSettings()
	settings.MaxResults = 4
	s := NewSuggestionService(&fakeAutocomplete{resp: domain.Success([]string{"a"})}, settings)

	got, err := s.Suggest(context.Background(), "エアコン")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "エアコン とは", "エアコン メリット", "エアコン デメリット"}, got)
}

func TestSuggestionService_EmptySeed(t *testing.T) {
	s := NewSuggestionService(nil, testSuggestSettings())

	_, err := s.Suggest(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggestionService_SuggestBatch(t *testing.T) {
	client := &fakeAutocomplete{resp: domain.Success([]string{"x 1", "x 2", "x 3"})}
	s := NewSuggestionService(client, testSuggestSettings())

	got, err := s.SuggestBatch(context.Background(), "エアコン、冷蔵庫, エアコン 洗濯機")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "エアコン", got[0].Seed)
	assert.Equal(t, "冷蔵庫", got[1].Seed)
	assert.Equal(t, "洗濯機", got[2].Seed)
	assert.Equal(t, []string{"エアコン", "冷蔵庫", "洗濯機"}, client.seeds)
}

func TestSuggestionService_SuggestBatchPacing(t *testing.T) {
	settings := testSuggestSettings()
	settings.BatchDelay = 30 * time.Millisecond
	s := NewSuggestionService(&fakeAutocomplete{resp: domain.Success([]string{"a", "b", "c"})}, settings)

	start := time.Now()
	got, err := s.SuggestBatch(context.Background(), "一 二 三")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSuggestionService_SuggestBatchCancelled(t *testing.T) {
	settings := testSuggestSettings()
	settings.BatchDelay = time.Hour
	s := NewSuggestionService(&fakeAutocomplete{resp: domain.Success([]string{"a", "b", "c"})}, settings)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	got, err := s.SuggestBatch(ctx, "一 二")
	require.Error(t, err)
	assert.Len(t, got, 1, "partial results are returned")
}

func TestSuggestionService_SuggestBatchNoSeeds(t *testing.T) {
	s := NewSuggestionService(nil, testSuggestSettings())

	_, err := s.SuggestBatch(context.Background(), " 、,")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
