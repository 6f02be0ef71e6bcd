package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/windfall/kalam_service/internal/errors"
	"github.com/windfall/kalam_service/internal/language"
	"github.com/windfall/kalam_service/internal/service"
	"github.com/windfall/kalam_service/pkg/response"
)

// SpeakingHandler handles the speaking-evaluation endpoints.
type SpeakingHandler struct {
	log             zerolog.Logger
	speakingService *service.SpeakingService
}

// NewSpeakingHandler creates a new Speaking handler.
func NewSpeakingHandler(log zerolog.Logger, speakingService *service.SpeakingService) *SpeakingHandler {
	return &SpeakingHandler{
		log:             log,
		speakingService: speakingService,
	}
}

// Evaluate handles POST /api/v1/speaking/evaluate
//
// Request: multipart/form-data with fields
//
//	question    - the prompt the learner answered
//	language    - "Arabic" | "French" | "Spanish"
//	dialect     - required for Arabic ("MSA" | "Levantine" | "Egyptian")
//	vocab_words - JSON array of {"word","meaning"} objects
//	audio_file  - the recorded answer
//
// Response: the full evaluation result, including verdict, scores, feedback
// text and feedback audio as a data URL.
func (h *SpeakingHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse multipart form (10 MB max)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.handleError(w, errors.Validation("failed to parse multipart form"))
		return
	}

	question := r.FormValue("question")
	if question == "" {
		h.handleError(w, errors.Validation("question is required"))
		return
	}

	lang := language.Language(r.FormValue("language"))
	dialect := language.Dialect(r.FormValue("dialect"))

	var vocabWords []service.VocabWord
	if raw := r.FormValue("vocab_words"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &vocabWords); err != nil {
			h.handleError(w, errors.Validation("vocab_words must be a JSON array of {word, meaning} objects"))
			return
		}
	}

	file, _, err := r.FormFile("audio_file")
	if err != nil {
		h.handleError(w, errors.Validation("audio_file is required"))
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		h.handleError(w, errors.Validation("failed to read audio file"))
		return
	}

	result, err := h.speakingService.Evaluate(ctx, service.EvaluationRequest{
		Question:   question,
		Language:   lang,
		Dialect:    dialect,
		VocabWords: vocabWords,
		Audio:      audioData,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

type explainRequest struct {
	EvaluationID string                    `json:"evaluation_id"`
	Query        string                    `json:"query"`
	Result       *service.EvaluationResult `json:"result,omitempty"`
	History      []service.Exchange        `json:"history,omitempty"`
}

type explainResponse struct {
	ResponseText string `json:"response_text"`
}

// Explain handles POST /api/v1/speaking/explain
//
// Request: JSON with "query" and either "evaluation_id" (stored result,
// history managed server-side) or an inline "result" with optional
// "history".
func (h *SpeakingHandler) Explain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, errors.Validation("invalid JSON body"))
		return
	}
	if req.Query == "" {
		h.handleError(w, errors.Validation("query is required"))
		return
	}

	var (
		text string
		err  error
	)
	switch {
	case req.EvaluationID != "":
		text, err = h.speakingService.ExplainByID(ctx, req.EvaluationID, req.Query)
	case req.Result != nil:
		text, err = h.speakingService.Explain(ctx, service.ExplainRequest{
			Query:   req.Query,
			Result:  req.Result,
			History: req.History,
		})
	default:
		err = errors.Validation("either evaluation_id or result is required")
	}
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, explainResponse{ResponseText: text})
}

type speakRequest struct {
	Text string `json:"text"`
}

type speakResponse struct {
	Audio string `json:"audio"`
}

// SpeakQuestion handles POST /api/v1/speaking/speak-question
//
// Request: JSON with "text". Response: the synthesized audio as a
// data:audio/mpeg;base64 URL.
func (h *SpeakingHandler) SpeakQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, errors.Validation("invalid JSON body"))
		return
	}

	audio, err := h.speakingService.SpeakText(ctx, req.Text)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, speakResponse{Audio: audio})
}

func (h *SpeakingHandler) handleError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(w, appErr.HTTPStatus(), &response.ErrorBody{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}
	response.Error(w, http.StatusInternalServerError, errors.Internal("internal server error"))
}
