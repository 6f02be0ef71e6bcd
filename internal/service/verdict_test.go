package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	policy := DefaultPassPolicy()

	tests := []struct {
		name       string
		pron       float64
		grammar    float64
		makesSense bool
		used       int
		target     int
		want       Verdict
	}{
		{"all dimensions hold", 71, 71, true, 3, 3, VerdictPass},
		{"pronunciation exactly at threshold fails", 70.0, 71, true, 3, 3, VerdictFail},
		{"grammar exactly at threshold fails", 71, 70.0, true, 3, 3, VerdictFail},
		{"answer does not make sense", 71, 71, false, 3, 3, VerdictFail},
		{"one of three words used", 71, 71, true, 1, 3, VerdictFail},
		{"two of three words used", 71, 71, true, 2, 3, VerdictPass},
		{"one of one word used", 71, 71, true, 1, 1, VerdictPass},
		{"zero of one word used", 71, 71, true, 0, 1, VerdictFail},
		{"zero of zero words still needs one", 71, 71, true, 0, 0, VerdictFail},
		{"pronunciation just below", 69.9, 99, true, 3, 3, VerdictFail},
		{"grammar just below", 99, 69.9, true, 3, 3, VerdictFail},
		{"barely above both thresholds", 70.01, 70.01, true, 3, 3, VerdictPass},
		{"everything failing", 10, 10, false, 0, 5, VerdictFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Decide(tt.pron, tt.grammar, tt.makesSense, tt.used, tt.target)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMinVocabWordsUsed(t *testing.T) {
	policy := DefaultPassPolicy()

	require.Equal(t, 1, policy.MinVocabWordsUsed(0))
	require.Equal(t, 1, policy.MinVocabWordsUsed(1))
	require.Equal(t, 1, policy.MinVocabWordsUsed(2))
	require.Equal(t, 2, policy.MinVocabWordsUsed(3))
	require.Equal(t, 4, policy.MinVocabWordsUsed(5))
}

func TestMinVocabWordsUsedWiderTolerance(t *testing.T) {
	policy := PassPolicy{PronunciationThreshold: 70, GrammarThreshold: 70, VocabularyTolerance: 2}

	require.Equal(t, 1, policy.MinVocabWordsUsed(3))
	require.Equal(t, 3, policy.MinVocabWordsUsed(5))
}

func TestDecideUsesConfiguredThresholds(t *testing.T) {
	policy := PassPolicy{PronunciationThreshold: 50, GrammarThreshold: 80, VocabularyTolerance: 1}

	require.Equal(t, VerdictPass, policy.Decide(51, 81, true, 2, 3))
	require.Equal(t, VerdictFail, policy.Decide(51, 80, true, 2, 3))
	require.Equal(t, VerdictFail, policy.Decide(50, 81, true, 2, 3))
}
