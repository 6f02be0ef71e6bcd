package service

import (
	"encoding/json"
	"fmt"
)

// feedbackPayload is the raw model output shape for the feedback call.
// feedback_text is written for the learner (second person, encouraging);
// performance_summary is a dense teacher-facing note reused by follow-ups.
type feedbackPayload struct {
	FeedbackText       *string `json:"feedback_text"`
	PerformanceSummary *string `json:"performance_summary"`
}

// parseFeedback parses and validates one feedback-generation model response.
// An empty feedback_text is a failure: the learner must never receive a
// blank coaching message dressed up as success.
func parseFeedback(raw string) (feedbackText, performanceSummary string, err error) {
	var payload feedbackPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return "", "", fmt.Errorf("unparseable model output: %w", err)
	}

	if payload.FeedbackText == nil || *payload.FeedbackText == "" {
		return "", "", fmt.Errorf("model output missing feedback_text")
	}
	if payload.PerformanceSummary == nil {
		return "", "", fmt.Errorf("model output missing performance_summary")
	}

	return *payload.FeedbackText, *payload.PerformanceSummary, nil
}
