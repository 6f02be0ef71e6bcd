package service

// PassPolicy holds the thresholds that fuse the independent scoring
// dimensions into a verdict. All values come from configuration.
type PassPolicy struct {
	// PronunciationThreshold is the overall pronunciation score a response
	// must exceed (strictly) to pass.
	PronunciationThreshold float64
	// GrammarThreshold is the grammatical score a response must exceed
	// (strictly) to pass.
	GrammarThreshold float64
	// VocabularyTolerance is how many target words the learner may omit and
	// still pass. At least one target word must always be used.
	VocabularyTolerance int
}

// DefaultPassPolicy mirrors the configuration defaults.
func DefaultPassPolicy() PassPolicy {
	return PassPolicy{
		PronunciationThreshold: 70.0,
		GrammarThreshold:       70.0,
		VocabularyTolerance:    1,
	}
}

// MinVocabWordsUsed returns the vocabulary-coverage floor for a target list
// of the given size: the learner may omit up to VocabularyTolerance words,
// but must use at least one.
func (p PassPolicy) MinVocabWordsUsed(targetCount int) int {
	min := targetCount - p.VocabularyTolerance
	if min < 1 {
		min = 1
	}
	return min
}

// Decide fuses the scoring dimensions into a verdict. Pure function, no I/O:
// pass requires every dimension to hold simultaneously, with strict
// inequality on both score thresholds.
func (p PassPolicy) Decide(overallPronunciation, grammaticalScore float64, answerMakesSense bool, vocabWordsUsed, targetVocabCount int) Verdict {
	if overallPronunciation > p.PronunciationThreshold &&
		grammaticalScore > p.GrammarThreshold &&
		answerMakesSense &&
		vocabWordsUsed >= p.MinVocabWordsUsed(targetVocabCount) {
		return VerdictPass
	}
	return VerdictFail
}
