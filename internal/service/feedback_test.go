package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFeedback(t *testing.T) {
	raw := `{"feedback_text":"Well done! Try adding the word jardin next time.","performance_summary":"2/3 vocab, pron 88, grammar 82, coherent."}`

	text, summary, err := parseFeedback(raw)
	require.NoError(t, err)
	require.Equal(t, "Well done! Try adding the word jardin next time.", text)
	require.Equal(t, "2/3 vocab, pron 88, grammar 82, coherent.", summary)
}

func TestParseFeedbackStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"feedback_text\":\"Keep going!\",\"performance_summary\":\"summary\"}\n```"

	text, _, err := parseFeedback(raw)
	require.NoError(t, err)
	require.Equal(t, "Keep going!", text)
}

func TestParseFeedbackRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Nice answer!"},
		{"missing feedback_text", `{"performance_summary":"s"}`},
		{"empty feedback_text", `{"feedback_text":"","performance_summary":"s"}`},
		{"missing performance_summary", `{"feedback_text":"Nice!"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseFeedback(tt.raw)
			require.Error(t, err)
		})
	}
}
