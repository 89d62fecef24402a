package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/swetalanaparida/EchoTranslate/internal/artifacts"
	"github.com/swetalanaparida/EchoTranslate/internal/config"
	"github.com/swetalanaparida/EchoTranslate/internal/delivery"
	"github.com/swetalanaparida/EchoTranslate/internal/error_notificator"
	"github.com/swetalanaparida/EchoTranslate/internal/pipeline"
	"github.com/swetalanaparida/EchoTranslate/internal/ports"
	"github.com/swetalanaparida/EchoTranslate/internal/retry"
	"github.com/swetalanaparida/EchoTranslate/internal/speech"
	"github.com/swetalanaparida/EchoTranslate/internal/telegram"
	"github.com/swetalanaparida/EchoTranslate/internal/transcription"
	"github.com/swetalanaparida/EchoTranslate/internal/translation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// CLIENTS (STT / TRANSLATOR / TTS)
	// =========================================================================

	var sttClient transcription.Client
	switch cfg.STTProvider {
	case config.STTDeepgram:
		sttClient = transcription.NewDeepgramClient(cfg.DeepgramKey, cfg.SourceLanguage)
	default:
		sttClient = transcription.NewAssemblyAIClient(cfg.AssemblyAIKey, cfg.SourceLanguage, cfg.STTPollEvery)
	}

	var trClient translation.Translator
	switch cfg.Translator {
	case config.TranslatorOpenAI:
		trClient = translation.NewOpenAITranslator(cfg.OpenAIKey, cfg.OpenAIModel)
	default:
		trClient = translation.NewMyMemoryTranslator(cfg.MyMemoryEmail)
	}

	ttsClient := speech.NewElevenLabsClient(cfg.ElevenLabsKey)

	// =========================================================================
	// ARTIFACT STORAGE
	// =========================================================================

	var store ports.ArtifactStore
	artifactDir := ""

	if cfg.S3.Enabled() {
		s3Client, err := artifacts.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		store = artifacts.NewS3Store(s3Client)
	} else {
		local, err := artifacts.NewLocalStore(cfg.ArtifactDir, cfg.PublicBaseURL)
		if err != nil {
			log.Fatalf("failed to init artifact dir: %v", err)
		}
		store = local
		artifactDir = local.Dir()
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	policy := retry.Fixed(cfg.RetryMaxAttempts, cfg.RetryDelay)

	transcriber := transcription.NewService(sttClient, baseLogger)
	translator := translation.NewService(trClient, cfg.SourceLanguage, policy, cfg.Concurrency, baseLogger)
	synthesizer := speech.NewService(ttsClient, store, speech.VoiceConfig{
		VoiceID:         cfg.Voice.VoiceID,
		ModelID:         cfg.Voice.ModelID,
		OutputFormat:    cfg.Voice.OutputFormat,
		Stability:       cfg.Voice.Stability,
		SimilarityBoost: cfg.Voice.SimilarityBoost,
		Style:           cfg.Voice.Style,
		SpeakerBoost:    cfg.Voice.SpeakerBoost,
		OptimizeLatency: cfg.Voice.OptimizeLatency,
	}, policy, baseLogger)

	orchestrator := pipeline.NewOrchestrator(
		transcriber,
		translator,
		synthesizer,
		cfg.Concurrency,
		cfg.PipelineTimeout,
		baseLogger,
	)

	targets := cfg.LanguageTargets()

	// =========================================================================
	// TELEGRAM BOT (optional)
	// =========================================================================

	if cfg.TelegramToken != "" {
		errInfra := error_notificator.NewInfra(nil, cfg.TelegramAdminChatID)
		errService := error_notificator.NewService(errInfra)

		botApp := telegram.NewBotApp(orchestrator, targets, cfg.PartialResults, errService)
		bot, err := botApp.InitBot(ctx, cfg.TelegramToken)
		if err != nil {
			log.Fatalf("failed to init telegram bot: %v", err)
		}

		errInfra.SetBot(bot)
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	translateHandler := delivery.NewTranslateHandler(orchestrator, targets, cfg.PartialResults, zl)
	delivery.RegisterRoutes(r, translateHandler, artifactDir)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "echotranslate",
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
