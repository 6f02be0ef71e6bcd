package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabsClient wraps the ElevenLabs text-to-speech REST API.
type ElevenLabsClient struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
}

// voiceSettings mirrors the ElevenLabs voice_settings object. These are
// configuration constants, not request-level inputs.
type voiceSettings struct {
	Stability       float64 `json:"stability"`        // how emotive the voice is
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	SimilarityBoost float64 `json:"similarity_boost"` // closeness to the selected voice
	Style           float64 `json:"style"`            // how exaggerated the delivery is
	Speed           float64 `json:"speed"`
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewElevenLabsClient creates a new ElevenLabs TTS client for the given voice.
func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: elevenLabsBaseURL,
		client: &http.Client{
			Timeout: remoteCallTimeout,
		},
	}
}

// WithBaseURL overrides the API base URL. Used in tests.
func (c *ElevenLabsClient) WithBaseURL(baseURL string) *ElevenLabsClient {
	c.baseURL = baseURL
	return c
}

// Synthesize converts text into MP3 audio suitable for direct playback.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" || c.voiceID == "" {
		return nil, fmt.Errorf("elevenlabs credentials not configured")
	}

	payload := synthesizeRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			UseSpeakerBoost: true,
			SimilarityBoost: 0.75,
			Style:           0.3,
			Speed:           0.8,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("elevenlabs api error %d: %s", resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs returned empty audio")
	}

	return audio, nil
}
