package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var targetVocab = []VocabWord{
	{Word: "maison", Meaning: "house"},
	{Word: "jardin", Meaning: "garden"},
	{Word: "chat", Meaning: "cat"},
}

func TestParseSemanticEvaluation(t *testing.T) {
	raw := `{"vocab_words_used":["maison","chat"],"answer_makes_sense":true,"grammatical_score":82.5,"grammar_notes":"minor gender agreement slips"}`

	sem, err := parseSemanticEvaluation(raw, targetVocab)
	require.NoError(t, err)
	require.Equal(t, []string{"maison", "chat"}, sem.VocabWordsUsed)
	require.True(t, sem.AnswerMakesSense)
	require.Equal(t, 82.5, sem.GrammaticalScore)
	require.Equal(t, "minor gender agreement slips", sem.GrammarNotes)
}

func TestParseSemanticEvaluationDropsUnknownWords(t *testing.T) {
	// The model claims words that are not in the target list; the claim is
	// not trusted.
	raw := `{"vocab_words_used":["maison","voiture","chien"],"answer_makes_sense":true,"grammatical_score":90,"grammar_notes":""}`

	sem, err := parseSemanticEvaluation(raw, targetVocab)
	require.NoError(t, err)
	require.Equal(t, []string{"maison"}, sem.VocabWordsUsed)
}

func TestParseSemanticEvaluationDeduplicatesAndTrims(t *testing.T) {
	raw := `{"vocab_words_used":[" maison","maison ","jardin"],"answer_makes_sense":false,"grammatical_score":40,"grammar_notes":""}`

	sem, err := parseSemanticEvaluation(raw, targetVocab)
	require.NoError(t, err)
	require.Equal(t, []string{"maison", "jardin"}, sem.VocabWordsUsed)
	require.False(t, sem.AnswerMakesSense)
}

func TestParseSemanticEvaluationStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"vocab_words_used\":[],\"answer_makes_sense\":true,\"grammatical_score\":75,\"grammar_notes\":\"\"}\n```"

	sem, err := parseSemanticEvaluation(raw, targetVocab)
	require.NoError(t, err)
	require.Empty(t, sem.VocabWordsUsed)
	require.Equal(t, 75.0, sem.GrammaticalScore)
}

func TestParseSemanticEvaluationRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I think the answer was pretty good overall."},
		{"missing vocab_words_used", `{"answer_makes_sense":true,"grammatical_score":80}`},
		{"missing answer_makes_sense", `{"vocab_words_used":[],"grammatical_score":80}`},
		{"missing grammatical_score", `{"vocab_words_used":[],"answer_makes_sense":true}`},
		{"score above range", `{"vocab_words_used":[],"answer_makes_sense":true,"grammatical_score":140}`},
		{"score below range", `{"vocab_words_used":[],"answer_makes_sense":true,"grammatical_score":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSemanticEvaluation(tt.raw, targetVocab)
			require.Error(t, err)
		})
	}
}
