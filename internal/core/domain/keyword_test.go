package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseCompetition tests normalisation of upstream competition values
func TestParseCompetition(t *testing.T) {
	tests := []struct {
		input    string
		expected Competition
	}{
		{"LOW", CompetitionLow},
		{"1", CompetitionLow},
		{"低", CompetitionLow},
		{"MEDIUM", CompetitionMedium},
		{"2", CompetitionMedium},
		{"中", CompetitionMedium},
		{"HIGH", CompetitionHigh},
		{" 3 ", CompetitionHigh},
		{"高め", CompetitionHigh},
		{"やや低い", CompetitionLow},
		{"", CompetitionUnknown},
		{"UNSPECIFIED", CompetitionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCompetition(tt.input))
		})
	}
}

// TestCompetition_Label tests Japanese labels
func TestCompetition_Label(t *testing.T) {
	assert.Equal(t, "低", CompetitionLow.Label())
	assert.Equal(t, "中", CompetitionMedium.Label())
	assert.Equal(t, "高", CompetitionHigh.Label())
	assert.Equal(t, "-", CompetitionUnknown.Label())
}

// TestDetectIntent tests cue-word intent detection
func TestDetectIntent(t *testing.T) {
	tests := []struct {
		keyword  string
		expected SearchIntent
	}{
		{"エアコン 修理 料金", IntentTransactional},
		{"エアコン 予約", IntentTransactional},
		{"エアコン おすすめ", IntentCommercial},
		{"エアコン 比較", IntentCommercial},
		{"エアコン とは", IntentInformational},
		{"エアコン", IntentInformational},
		{"Best air conditioner", IntentCommercial},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectIntent(tt.keyword))
		})
	}
}

// TestParseIntent tests free-text intent labels
func TestParseIntent(t *testing.T) {
	assert.Equal(t, IntentTransactional, ParseIntent("購入意図", "x"))
	assert.Equal(t, IntentCommercial, ParseIntent("比較検討", "x"))
	assert.Equal(t, IntentInformational, ParseIntent("情報収集", "x 料金"))
	assert.Equal(t, IntentCommercial, ParseIntent("Commercial", "x"))
	assert.Equal(t, IntentTransactional, ParseIntent("", "x 料金"), "falls back to cue words")
}

// TestRelevance tests pillar keyword relevance scoring
func TestRelevance(t *testing.T) {
	assert.Equal(t, 90, Relevance("エアコン 修理 費用", "エアコン 修理"))
	assert.Equal(t, 80, Relevance("エアコン 掃除", "エアコン 修理"))
	assert.Equal(t, 70, Relevance("冷蔵庫", "エアコン 修理"))
	assert.Equal(t, 70, Relevance("冷蔵庫", ""))
	assert.Equal(t, 90, Relevance("Aircon Repair Cost", "aircon repair"))
}
