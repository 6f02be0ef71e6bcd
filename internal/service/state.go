package service

import (
	"github.com/windfall/kalam_service/internal/client"
	"github.com/windfall/kalam_service/internal/language"
)

// VocabWord is one target vocabulary item the learner is expected to draw
// from when answering the prompt.
type VocabWord struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// EvaluationRequest carries everything needed to evaluate one recorded
// spoken answer. Immutable once built.
type EvaluationRequest struct {
	Question   string
	Language   language.Language
	Dialect    language.Dialect
	VocabWords []VocabWord
	Audio      []byte
}

// Verdict is the binary pass/fail outcome of one speaking evaluation.
// Pending until the verdict stage runs, terminal thereafter.
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
)

// Stage identifies one step of the speaking-evaluation pipeline. Stages are
// linear with no branching; a failure at any stage moves the run to the
// absorbing StageFailed.
type Stage int

const (
	StageInit Stage = iota
	StageTranscribing
	StageScoringPronunciation
	StageEvaluatingSemantics
	StageDecidingVerdict
	StageComposingFeedback
	StageSynthesizingSpeech
	StageDone
	StageFailed
)

// String returns the stage name used in logs and error details.
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageTranscribing:
		return "transcribing"
	case StageScoringPronunciation:
		return "scoring_pronunciation"
	case StageEvaluatingSemantics:
		return "evaluating_semantics"
	case StageDecidingVerdict:
		return "deciding_verdict"
	case StageComposingFeedback:
		return "composing_feedback"
	case StageSynthesizingSpeech:
		return "synthesizing_speech"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// next returns the stage that follows s in the pipeline.
func (s Stage) next() Stage {
	switch s {
	case StageInit:
		return StageTranscribing
	case StageTranscribing:
		return StageScoringPronunciation
	case StageScoringPronunciation:
		return StageEvaluatingSemantics
	case StageEvaluatingSemantics:
		return StageDecidingVerdict
	case StageDecidingVerdict:
		return StageComposingFeedback
	case StageComposingFeedback:
		return StageSynthesizingSpeech
	case StageSynthesizingSpeech:
		return StageDone
	default:
		return StageFailed
	}
}

// SemanticEvaluation is the language model's judgment of the transcript.
type SemanticEvaluation struct {
	VocabWordsUsed   []string `json:"vocab_words_used"`
	AnswerMakesSense bool     `json:"answer_makes_sense"`
	GrammaticalScore float64  `json:"grammatical_score"`
	GrammarNotes     string   `json:"grammar_notes"`
}

// StageFailure records the first (and only) stage failure of a run.
type StageFailure struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// EvaluationState is the orchestrator-owned mutable state of one evaluation
// run. Fields are append-only: no stage rewrites a field set by an earlier
// stage, and the orchestrator is the sole mutator.
type EvaluationState struct {
	Stage   Stage
	Request EvaluationRequest

	// Resolved before any network call.
	LocaleCode string

	// Accumulated stage by stage.
	NormalizedAudio    []byte
	Transcript         string
	Pronunciation      client.PronunciationScores
	Semantic           SemanticEvaluation
	Verdict            Verdict
	FeedbackText       string
	PerformanceSummary string
	FeedbackAudio      []byte

	Failure *StageFailure
}

func newEvaluationState(req EvaluationRequest) *EvaluationState {
	return &EvaluationState{
		Stage:   StageInit,
		Request: req,
		Verdict: VerdictPending,
	}
}

// fail moves the state to StageFailed, recording the first failure.
// Once set, no further stage executes.
func (st *EvaluationState) fail(stage Stage, message string) {
	if st.Failure == nil {
		st.Failure = &StageFailure{Stage: stage.String(), Message: message}
	}
	st.Stage = StageFailed
}

// EvaluationResult is the immutable output of one completed evaluation. It
// echoes the request fields the explain flow needs so a follow-up never
// re-runs transcription or scoring.
type EvaluationResult struct {
	ID                 string                     `json:"evaluation_id"`
	Question           string                     `json:"question"`
	Language           language.Language          `json:"language"`
	Dialect            language.Dialect           `json:"dialect,omitempty"`
	VocabWords         []VocabWord                `json:"vocab_words"`
	Transcript         string                     `json:"transcript"`
	Pronunciation      client.PronunciationScores `json:"pronunciation_scores"`
	Semantic           SemanticEvaluation         `json:"semantic_evaluation"`
	Verdict            Verdict                    `json:"verdict"`
	PerformanceSummary string                     `json:"performance_summary"`
	FeedbackText       string                     `json:"feedback_text"`
	FeedbackAudio      string                     `json:"feedback_audio,omitempty"`
	FeedbackAudioURL   string                     `json:"feedback_audio_url,omitempty"`
}

// result builds the EvaluationResult from a terminal StageDone state.
func (st *EvaluationState) result(id, feedbackAudioDataURL string) *EvaluationResult {
	return &EvaluationResult{
		ID:                 id,
		Question:           st.Request.Question,
		Language:           st.Request.Language,
		Dialect:            st.Request.Dialect,
		VocabWords:         st.Request.VocabWords,
		Transcript:         st.Transcript,
		Pronunciation:      st.Pronunciation,
		Semantic:           st.Semantic,
		Verdict:            st.Verdict,
		PerformanceSummary: st.PerformanceSummary,
		FeedbackText:       st.FeedbackText,
		FeedbackAudio:      feedbackAudioDataURL,
	}
}
