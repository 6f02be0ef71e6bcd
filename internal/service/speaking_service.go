package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/windfall/kalam_service/internal/client"
	"github.com/windfall/kalam_service/internal/errors"
	"github.com/windfall/kalam_service/internal/language"
)

const (
	// Redis key prefixes for stored evaluation results and their explain
	// conversation histories.
	speakingResultKeyPrefix  = "speaking:result:"
	speakingHistoryKeyPrefix = "speaking:history:"
)

func resultKey(evaluationID string) string  { return speakingResultKeyPrefix + evaluationID }
func historyKey(evaluationID string) string { return speakingHistoryKeyPrefix + evaluationID }

// AudioNormalizer decodes uploaded audio into 16 kHz mono PCM WAV.
type AudioNormalizer interface {
	Normalize(ctx context.Context, raw []byte) ([]byte, error)
}

// SpeechRecognizer is the remote speech-to-text and pronunciation-assessment
// backend.
type SpeechRecognizer interface {
	Transcribe(ctx context.Context, wavAudio []byte, locale string) (string, error)
	ScorePronunciation(ctx context.Context, wavAudio []byte, referenceText, locale string) (client.PronunciationScores, error)
}

// ChatModel is a chat-completion backend constrained to structured JSON
// output.
type ChatModel interface {
	ChatJSON(ctx context.Context, system, user string) (string, error)
}

// SpeechSynthesizer converts text into playable audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ResultStore is the transient hand-off store for completed evaluations and
// explain histories.
type ResultStore interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	RPush(ctx context.Context, key string, value interface{}) error
	LRangeAll(ctx context.Context, key string) ([][]byte, error)
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error
}

// MediaUploader stores feedback audio for direct playback.
type MediaUploader interface {
	UploadR2Object(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SpeakingService runs the speaking-evaluation pipeline: a linear state
// machine over one EvaluationState, fail-fast across the chained remote
// calls. One service instance serves many concurrent evaluations; each run
// exclusively owns its state.
type SpeakingService struct {
	normalizer AudioNormalizer
	speech     SpeechRecognizer
	chat       ChatModel
	tts        SpeechSynthesizer
	store      ResultStore   // optional
	media      MediaUploader // optional
	policy     PassPolicy
	resultTTL  time.Duration
	log        zerolog.Logger
}

// NewSpeakingService creates a new Speaking service. store and media may be
// nil; results are then returned to the caller only.
func NewSpeakingService(
	normalizer AudioNormalizer,
	speech SpeechRecognizer,
	chat ChatModel,
	tts SpeechSynthesizer,
	store ResultStore,
	media MediaUploader,
	policy PassPolicy,
	resultTTL time.Duration,
	log zerolog.Logger,
) *SpeakingService {
	return &SpeakingService{
		normalizer: normalizer,
		speech:     speech,
		chat:       chat,
		tts:        tts,
		store:      store,
		media:      media,
		policy:     policy,
		resultTTL:  resultTTL,
		log:        log,
	}
}

// Evaluate runs the full pipeline on one recorded answer. On any stage
// failure the run stops immediately and a single stage-tagged error is
// returned; no partial result is ever produced.
func (s *SpeakingService) Evaluate(ctx context.Context, req EvaluationRequest) (*EvaluationResult, error) {
	st := newEvaluationState(req)

	for st.Stage != StageDone {
		stage := st.Stage

		// Cancellation aborts before the next stage starts; a stage already
		// in flight is interrupted through its own context.
		err := ctx.Err()
		if err == nil {
			err = s.runStage(ctx, st)
		}
		if err != nil {
			appErr := stageError(stage, err)
			st.fail(stage, appErr.Message)

			s.log.Error().
				Err(err).
				Str("stage", stage.String()).
				Str("language", string(req.Language)).
				Msg("Speaking evaluation failed")

			return nil, appErr
		}
		st.Stage = stage.next()
	}

	evaluationID := fmt.Sprintf("eval_%s", uuid.New().String())
	dataURL := "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(st.FeedbackAudio)
	result := st.result(evaluationID, dataURL)

	// Hand-off storage and audio upload are best-effort: the evaluation
	// itself succeeded and is returned regardless.
	if s.media != nil {
		key := fmt.Sprintf("speaking/feedback-%s.mp3", evaluationID)
		if url, err := s.media.UploadR2Object(ctx, key, st.FeedbackAudio, "audio/mpeg"); err != nil {
			s.log.Error().Err(err).Str("evaluation_id", evaluationID).Msg("Failed to upload feedback audio")
		} else {
			result.FeedbackAudioURL = url
		}
	}
	if s.store != nil {
		if err := s.store.SetJSON(ctx, resultKey(evaluationID), result, s.resultTTL); err != nil {
			s.log.Error().Err(err).Str("evaluation_id", evaluationID).Msg("Failed to store evaluation result")
		}
	}

	s.log.Info().
		Str("evaluation_id", evaluationID).
		Str("verdict", string(result.Verdict)).
		Float64("pronunciation_overall", result.Pronunciation.Overall).
		Float64("grammatical_score", result.Semantic.GrammaticalScore).
		Int("vocab_words_used", len(result.Semantic.VocabWordsUsed)).
		Msg("Speaking evaluation complete")

	return result, nil
}

// runStage executes exactly one component operation for the current stage.
// The mapping is exhaustive; terminal stages are no-ops.
func (s *SpeakingService) runStage(ctx context.Context, st *EvaluationState) error {
	switch st.Stage {
	case StageInit:
		return s.prepare(ctx, st)
	case StageTranscribing:
		return s.transcribe(ctx, st)
	case StageScoringPronunciation:
		return s.scorePronunciation(ctx, st)
	case StageEvaluatingSemantics:
		return s.evaluateSemantics(ctx, st)
	case StageDecidingVerdict:
		s.decideVerdict(st)
		return nil
	case StageComposingFeedback:
		return s.composeFeedback(ctx, st)
	case StageSynthesizingSpeech:
		return s.synthesizeSpeech(ctx, st)
	case StageDone, StageFailed:
		return nil
	default:
		return fmt.Errorf("unknown pipeline stage %d", st.Stage)
	}
}

// prepare resolves the backend locale (pure validation, before any I/O) and
// normalizes the uploaded audio.
func (s *SpeakingService) prepare(ctx context.Context, st *EvaluationState) error {
	locale, err := language.Code(st.Request.Language, st.Request.Dialect)
	if err != nil {
		return err
	}
	st.LocaleCode = locale

	wav, err := s.normalizer.Normalize(ctx, st.Request.Audio)
	if err != nil {
		return err
	}
	st.NormalizedAudio = wav
	return nil
}

// transcribe obtains the learner's transcript. An empty transcript is a
// failure, not a valid "said nothing" result: downstream scoring needs
// non-empty reference text.
func (s *SpeakingService) transcribe(ctx context.Context, st *EvaluationState) error {
	transcript, err := s.speech.Transcribe(ctx, st.NormalizedAudio, st.LocaleCode)
	if err != nil {
		return err
	}
	if transcript == "" {
		return fmt.Errorf("transcription returned an empty transcript")
	}
	st.Transcript = transcript
	return nil
}

// scorePronunciation grades the audio against the learner's own transcript.
func (s *SpeakingService) scorePronunciation(ctx context.Context, st *EvaluationState) error {
	scores, err := s.speech.ScorePronunciation(ctx, st.NormalizedAudio, st.Transcript, st.LocaleCode)
	if err != nil {
		return err
	}
	st.Pronunciation = scores
	return nil
}

func (s *SpeakingService) evaluateSemantics(ctx context.Context, st *EvaluationState) error {
	system, user := buildSemanticEvalPrompt(
		string(st.Request.Language), string(st.Request.Dialect),
		st.Request.Question, st.Request.VocabWords, st.Transcript)

	raw, err := s.chat.ChatJSON(ctx, system, user)
	if err != nil {
		return err
	}

	semantic, err := parseSemanticEvaluation(raw, st.Request.VocabWords)
	if err != nil {
		return err
	}
	st.Semantic = semantic
	return nil
}

func (s *SpeakingService) decideVerdict(st *EvaluationState) {
	st.Verdict = s.policy.Decide(
		st.Pronunciation.Overall,
		st.Semantic.GrammaticalScore,
		st.Semantic.AnswerMakesSense,
		len(st.Semantic.VocabWordsUsed),
		len(st.Request.VocabWords),
	)
}

func (s *SpeakingService) composeFeedback(ctx context.Context, st *EvaluationState) error {
	system, user := buildFeedbackPrompt(
		st.Verdict, string(st.Request.Language), string(st.Request.Dialect),
		st.Request.Question, st.Request.VocabWords, st,
		s.policy.MinVocabWordsUsed(len(st.Request.VocabWords)))

	raw, err := s.chat.ChatJSON(ctx, system, user)
	if err != nil {
		return err
	}

	feedbackText, performanceSummary, err := parseFeedback(raw)
	if err != nil {
		return err
	}
	st.FeedbackText = feedbackText
	st.PerformanceSummary = performanceSummary
	return nil
}

func (s *SpeakingService) synthesizeSpeech(ctx context.Context, st *EvaluationState) error {
	audio, err := s.tts.Synthesize(ctx, st.FeedbackText)
	if err != nil {
		return err
	}
	st.FeedbackAudio = audio
	return nil
}

// SpeakText synthesizes arbitrary text (the standalone "speak this question"
// use case) and returns a browser-playable data URL.
func (s *SpeakingService) SpeakText(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", errors.Validation("text is required")
	}

	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return "", errors.Wrap(errors.ErrSpeechSynthesis, "speech synthesis failed", err)
	}

	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio), nil
}

// stageError maps a stage failure to its error kind. Errors already carrying
// an application code (dialect validation, audio decode) keep it; everything
// else gets the stage's code.
func stageError(stage Stage, err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.WithStage(stage.String())
	}

	var code errors.ErrorCode
	switch stage {
	case StageInit:
		code = errors.ErrAudioDecode
	case StageTranscribing:
		code = errors.ErrTranscription
	case StageScoringPronunciation:
		code = errors.ErrPronunciationScoring
	case StageEvaluatingSemantics:
		code = errors.ErrSemanticEvaluation
	case StageComposingFeedback:
		code = errors.ErrFeedbackGeneration
	case StageSynthesizingSpeech:
		code = errors.ErrSpeechSynthesis
	default:
		code = errors.ErrInternal
	}

	return errors.Wrap(code, fmt.Sprintf("stage %s failed", stage), err).WithStage(stage.String())
}
