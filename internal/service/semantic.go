package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// semanticEvalPayload is the raw model output shape for the semantic
// evaluation call. Required fields are pointers so a missing key is
// distinguishable from a zero value.
type semanticEvalPayload struct {
	VocabWordsUsed   *[]string `json:"vocab_words_used"`
	AnswerMakesSense *bool     `json:"answer_makes_sense"`
	GrammaticalScore *float64  `json:"grammatical_score"`
	GrammarNotes     string    `json:"grammar_notes"`
}

// parseSemanticEvaluation parses and validates one semantic-evaluation model
// response. The model's set-membership claims are not trusted: any reported
// word that is not in the target vocabulary is silently dropped.
func parseSemanticEvaluation(raw string, targetVocab []VocabWord) (SemanticEvaluation, error) {
	var payload semanticEvalPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return SemanticEvaluation{}, fmt.Errorf("unparseable model output: %w", err)
	}

	if payload.VocabWordsUsed == nil {
		return SemanticEvaluation{}, fmt.Errorf("model output missing vocab_words_used")
	}
	if payload.AnswerMakesSense == nil {
		return SemanticEvaluation{}, fmt.Errorf("model output missing answer_makes_sense")
	}
	if payload.GrammaticalScore == nil {
		return SemanticEvaluation{}, fmt.Errorf("model output missing grammatical_score")
	}
	if *payload.GrammaticalScore < 0 || *payload.GrammaticalScore > 100 {
		return SemanticEvaluation{}, fmt.Errorf("grammatical_score %.1f out of range [0,100]", *payload.GrammaticalScore)
	}

	return SemanticEvaluation{
		VocabWordsUsed:   intersectVocabWords(*payload.VocabWordsUsed, targetVocab),
		AnswerMakesSense: *payload.AnswerMakesSense,
		GrammaticalScore: *payload.GrammaticalScore,
		GrammarNotes:     payload.GrammarNotes,
	}, nil
}

// intersectVocabWords returns the claimed words that actually appear in the
// target vocabulary, deduplicated, in claim order.
func intersectVocabWords(claimed []string, target []VocabWord) []string {
	targetSet := make(map[string]struct{}, len(target))
	for _, w := range target {
		targetSet[strings.TrimSpace(w.Word)] = struct{}{}
	}

	used := make([]string, 0, len(claimed))
	seen := make(map[string]struct{}, len(claimed))
	for _, w := range claimed {
		w = strings.TrimSpace(w)
		if _, ok := targetSet[w]; !ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		used = append(used, w)
	}
	return used
}

// stripCodeFence removes a markdown code fence if the model wrapped its JSON
// in one despite instructions.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
