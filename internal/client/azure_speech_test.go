package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "ar-SA", r.URL.Query().Get("language"))
		require.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		require.Empty(t, r.Header.Get("Pronunciation-Assessment"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"RecognitionStatus": "Success",
			"DisplayText":       "مرحبا بالعالم",
		})
	}))
	defer srv.Close()

	c := NewAzureSpeechClient("test-key", "eastus").WithBaseURL(srv.URL)
	transcript, err := c.Transcribe(context.Background(), []byte("fake-wav"), "ar-SA")
	require.NoError(t, err)
	require.Equal(t, "مرحبا بالعالم", transcript)
}

func TestScorePronunciationSendsAssessmentHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Pronunciation-Assessment")
		require.NotEmpty(t, raw)

		decoded, err := base64.StdEncoding.DecodeString(raw)
		require.NoError(t, err)

		var params map[string]interface{}
		require.NoError(t, json.Unmarshal(decoded, &params))
		require.Equal(t, "مرحبا", params["ReferenceText"])
		require.Equal(t, "HundredMark", params["GradingSystem"])
		require.Equal(t, "Word", params["Granularity"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"RecognitionStatus": "Success",
			"DisplayText":       "مرحبا",
			"NBest": []map[string]interface{}{
				{"AccuracyScore": 88.5, "CompletenessScore": 100.0, "PronScore": 91.2},
			},
		})
	}))
	defer srv.Close()

	c := NewAzureSpeechClient("test-key", "eastus").WithBaseURL(srv.URL)
	scores, err := c.ScorePronunciation(context.Background(), []byte("fake-wav"), "مرحبا", "ar-SA")
	require.NoError(t, err)
	require.Equal(t, 88.5, scores.Accuracy)
	require.Equal(t, 100.0, scores.Completeness)
	require.Equal(t, 91.2, scores.Overall)
}

func TestScorePronunciationEmptyNBest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"RecognitionStatus": "Success"})
	}))
	defer srv.Close()

	c := NewAzureSpeechClient("test-key", "eastus").WithBaseURL(srv.URL)
	_, err := c.ScorePronunciation(context.Background(), []byte("fake-wav"), "ref", "fr-FR")
	require.Error(t, err)
	require.Contains(t, err.Error(), "NBest")
}

func TestRecognizeRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAzureSpeechClient("test-key", "eastus").WithBaseURL(srv.URL)
	_, err := c.Transcribe(context.Background(), []byte("fake-wav"), "fr-FR")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestRecognizeMissingCredentials(t *testing.T) {
	c := NewAzureSpeechClient("", "eastus")
	_, err := c.Transcribe(context.Background(), []byte("fake-wav"), "fr-FR")
	require.Error(t, err)
}
