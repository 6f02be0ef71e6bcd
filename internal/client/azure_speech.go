package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// remoteCallTimeout is the fixed budget for every remote call the pipeline
// makes. Exceeding it is treated the same as a remote error.
const remoteCallTimeout = 30 * time.Second

// AzureSpeechClient wraps the Azure AI Speech REST API: short-audio
// speech-to-text plus pronunciation assessment.
// Docs: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/rest-speech-to-text-short
type AzureSpeechClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// PronunciationScores are the phonetic quality scores returned by the
// pronunciation assessment, each on a 0-100 scale.
type PronunciationScores struct {
	Accuracy     float64 `json:"accuracy"`
	Completeness float64 `json:"completeness"`
	Overall      float64 `json:"overall"`
}

// recognitionResponse is the detailed-format response shape we rely on.
type recognitionResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	NBest             []struct {
		AccuracyScore     float64 `json:"AccuracyScore"`
		CompletenessScore float64 `json:"CompletenessScore"`
		PronScore         float64 `json:"PronScore"`
		Display           string  `json:"Display"`
	} `json:"NBest"`
}

// NewAzureSpeechClient creates a new Azure Speech client for the given region.
func NewAzureSpeechClient(apiKey, region string) *AzureSpeechClient {
	return &AzureSpeechClient{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("https://%s.stt.speech.microsoft.com", region),
		client: &http.Client{
			Timeout: remoteCallTimeout,
		},
	}
}

// WithBaseURL overrides the API base URL. Used in tests.
func (c *AzureSpeechClient) WithBaseURL(baseURL string) *AzureSpeechClient {
	c.baseURL = baseURL
	return c
}

// Transcribe sends 16 kHz mono PCM WAV audio to Azure STT and returns the
// display-form transcript. The transcript may be empty; callers decide
// whether that is an error.
func (c *AzureSpeechClient) Transcribe(ctx context.Context, wavAudio []byte, locale string) (string, error) {
	result, err := c.recognize(ctx, wavAudio, locale, nil)
	if err != nil {
		return "", err
	}
	return result.DisplayText, nil
}

// ScorePronunciation grades the audio against referenceText at word-level
// granularity on the HundredMark scale. referenceText is the learner's own
// transcript, not the original question.
func (c *AzureSpeechClient) ScorePronunciation(ctx context.Context, wavAudio []byte, referenceText, locale string) (PronunciationScores, error) {
	assessment := map[string]interface{}{
		"ReferenceText": referenceText,
		"GradingSystem": "HundredMark",
		"Granularity":   "Word",
		"Dimension":     "Comprehensive",
	}

	result, err := c.recognize(ctx, wavAudio, locale, assessment)
	if err != nil {
		return PronunciationScores{}, err
	}

	if len(result.NBest) == 0 {
		return PronunciationScores{}, fmt.Errorf("azure speech returned no NBest results")
	}

	best := result.NBest[0]
	return PronunciationScores{
		Accuracy:     best.AccuracyScore,
		Completeness: best.CompletenessScore,
		Overall:      best.PronScore,
	}, nil
}

// recognize performs one short-audio recognition call. When assessment is
// non-nil it is base64-encoded into the Pronunciation-Assessment header and
// the detailed output format is requested.
func (c *AzureSpeechClient) recognize(ctx context.Context, wavAudio []byte, locale string, assessment map[string]interface{}) (*recognitionResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("azure speech credentials not configured")
	}

	u, err := url.Parse(c.baseURL + "/speech/recognition/conversation/cognitiveservices/v1")
	if err != nil {
		return nil, fmt.Errorf("invalid azure speech base url: %w", err)
	}

	q := u.Query()
	q.Set("language", locale)
	q.Set("format", "detailed")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(wavAudio))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if assessment != nil {
		jsonBytes, err := json.Marshal(assessment)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal assessment params: %w", err)
		}
		req.Header.Set("Pronunciation-Assessment", base64.StdEncoding.EncodeToString(jsonBytes))
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "audio/wav; codecs=audio/pcm; samplerate=16000")
	req.Header.Set("Accept", "application/json;text/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure speech api error %d: %s", resp.StatusCode, string(body))
	}

	var result recognitionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
