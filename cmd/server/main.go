package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/windfall/kalam_service/internal/client"
	"github.com/windfall/kalam_service/internal/config"
	"github.com/windfall/kalam_service/internal/handler/http"
	"github.com/windfall/kalam_service/internal/logger"
	"github.com/windfall/kalam_service/internal/server"
	"github.com/windfall/kalam_service/internal/service"
	"github.com/windfall/kalam_service/pkg/audio"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting kalam_service")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The evaluation pipeline cannot run without its three remote backends.
	if cfg.AzureAISpeechKey == "" {
		log.Fatal().Msg("AZURE_AI_SPEECH_KEY is required")
	}
	if cfg.ElevenLabsKey == "" || cfg.ElevenLabsVoiceID == "" {
		log.Fatal().Msg("ELEVEN_LABS_KEY and ELEVEN_LABS_VOICE_ID are required")
	}

	azureSpeechClient := client.NewAzureSpeechClient(cfg.AzureAISpeechKey, cfg.AzureServiceRegion)

	// Chat model backend: OpenAI by default, Vertex Gemini as alternative.
	var chatModel service.ChatModel
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GCPProjectID == "" {
			log.Fatal().Msg("GCP_PROJECT_ID is required when LLM_PROVIDER=gemini")
		}
		geminiClient, err := client.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Gemini client")
		}
		chatModel = geminiClient.WithModel(cfg.GeminiModel)
		log.Info().Str("model", cfg.GeminiModel).Msg("Gemini chat model initialized")
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatal().Msg("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		chatModel = client.NewOpenAIClient(cfg.OpenAIAPIKey).WithModel(cfg.OpenAIModel)
		log.Info().Str("model", cfg.OpenAIModel).Msg("OpenAI chat model initialized")
	default:
		log.Fatal().Str("provider", cfg.LLMProvider).Msg("Unknown LLM_PROVIDER")
	}

	elevenLabsClient := client.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)

	// Redis is optional; without it results are returned to the caller only
	// and explain follow-ups must inline the prior result.
	var resultStore service.ResultStore
	if cfg.RedisURL != "" {
		redisClient, err := client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			defer redisClient.Close()
			resultStore = redisClient
			log.Info().Msg("Redis client initialized")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set, evaluation results will not be stored")
	}

	// Cloudflare R2 is optional; without it feedback audio ships inline only.
	var mediaUploader service.MediaUploader
	if cfg.CloudflareAccessKeyID != "" && cfg.CloudflareSecretKey != "" && cfg.CloudflareR2Endpoint != "" && cfg.CloudflareBucketName != "" {
		cloudflareClient, err := client.NewCloudflareClient(ctx,
			cfg.CloudflareAccessKeyID,
			cfg.CloudflareSecretKey,
			cfg.CloudflareR2Endpoint,
			cfg.CloudflareBucketName,
			cfg.CloudflarePublicURL,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Cloudflare client")
		} else {
			mediaUploader = cloudflareClient
			log.Info().Msg("Cloudflare R2 client initialized")
		}
	} else {
		log.Warn().Msg("Cloudflare configuration missing, skipping R2 initialization")
	}

	// Initialize service
	speakingService := service.NewSpeakingService(
		audio.NewNormalizer(),
		azureSpeechClient,
		chatModel,
		elevenLabsClient,
		resultStore,
		mediaUploader,
		service.PassPolicy{
			PronunciationThreshold: cfg.PronunciationPassThreshold,
			GrammarThreshold:       cfg.GrammarPassThreshold,
			VocabularyTolerance:    cfg.VocabularyTolerance,
		},
		cfg.EvaluationTTL,
		log,
	)

	// Initialize handlers
	healthHandler := http.NewHealthHandler()
	speakingHandler := http.NewSpeakingHandler(log, speakingService)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(cfg, log, healthHandler, speakingHandler)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	log.Info().
		Str("http_addr", cfg.HTTPAddress()).
		Msg("Server started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
