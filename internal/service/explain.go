package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/windfall/kalam_service/internal/errors"
)

// Exchange is one (learner query, system response) pair of an explain
// conversation. History is append-only and strictly chronological.
type Exchange struct {
	Query    string `json:"query"`
	Response string `json:"response"`
}

// ExplainRequest asks a free-text question about a previously computed
// evaluation. The result and history are supplied by the caller; nothing is
// recomputed.
type ExplainRequest struct {
	Query   string
	Result  *EvaluationResult
	History []Exchange
}

type explainPayload struct {
	ResponseText *string `json:"response_text"`
}

// Explain answers a learner's question about a prior evaluation with a
// single generative call, grounded strictly in the supplied performance
// summary and scores. It never touches transcription, scoring, the verdict
// engine, or speech synthesis.
func (s *SpeakingService) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	if req.Result == nil {
		return "", errors.Validation("explain requires a prior evaluation result")
	}
	if req.Query == "" {
		return "", errors.Validation("query is required")
	}

	system, user := buildExplainPrompt(req.Query, req.Result, req.History)

	raw, err := s.chat.ChatJSON(ctx, system, user)
	if err != nil {
		return "", errors.Wrap(errors.ErrExplainGeneration, "explain call failed", err)
	}

	var payload explainPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return "", errors.Wrap(errors.ErrExplainGeneration, "unparseable model output", err)
	}
	if payload.ResponseText == nil || *payload.ResponseText == "" {
		return "", errors.New(errors.ErrExplainGeneration, "model output missing response_text")
	}

	s.log.Info().
		Str("evaluation_id", req.Result.ID).
		Int("history_len", len(req.History)).
		Msg("Explain response generated")

	return *payload.ResponseText, nil
}

// ExplainByID loads the stored result and conversation history for an
// evaluation, answers the query, and appends the exchange to the history.
func (s *SpeakingService) ExplainByID(ctx context.Context, evaluationID, query string) (string, error) {
	if s.store == nil {
		return "", errors.Internal("result store not configured")
	}

	var result EvaluationResult
	if err := s.store.GetJSON(ctx, resultKey(evaluationID), &result); err != nil {
		if err == redis.Nil {
			return "", errors.NotFound(fmt.Sprintf("evaluation %s", evaluationID))
		}
		return "", errors.InternalWrap("failed to load evaluation result", err)
	}

	history, err := s.loadHistory(ctx, evaluationID)
	if err != nil {
		return "", errors.InternalWrap("failed to load conversation history", err)
	}

	response, err := s.Explain(ctx, ExplainRequest{
		Query:   query,
		Result:  &result,
		History: history,
	})
	if err != nil {
		return "", err
	}

	historyKey := historyKey(evaluationID)
	if err := s.store.RPush(ctx, historyKey, Exchange{Query: query, Response: response}); err != nil {
		s.log.Error().Err(err).Str("evaluation_id", evaluationID).Msg("Failed to append explain history")
	} else if err := s.store.SetExpiry(ctx, historyKey, s.resultTTL); err != nil {
		s.log.Error().Err(err).Str("evaluation_id", evaluationID).Msg("Failed to refresh history TTL")
	}

	return response, nil
}

func (s *SpeakingService) loadHistory(ctx context.Context, evaluationID string) ([]Exchange, error) {
	raw, err := s.store.LRangeAll(ctx, historyKey(evaluationID))
	if err != nil && err != redis.Nil {
		return nil, err
	}

	history := make([]Exchange, 0, len(raw))
	for _, item := range raw {
		var ex Exchange
		if err := json.Unmarshal(item, &ex); err != nil {
			return nil, fmt.Errorf("corrupt history entry: %w", err)
		}
		history = append(history, ex)
	}
	return history, nil
}
