// Package bootstrap wires the application together: configuration, logging,
// the transcript store, the voice pipeline and the HTTP server, with graceful
// shutdown on SIGINT/SIGTERM.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	asropenai "voicerag-server-go/internal/domain/asr/openai"
	"voicerag-server-go/internal/domain/audio"
	"voicerag-server-go/internal/domain/eventbus"
	llmopenai "voicerag-server-go/internal/domain/llm/openai"
	"voicerag-server-go/internal/domain/pipeline"
	transcriptstore "voicerag-server-go/internal/domain/transcript/store"
	ttsedge "voicerag-server-go/internal/domain/tts/edge"
	platformconfig "voicerag-server-go/internal/platform/config"
	platformerrors "voicerag-server-go/internal/platform/errors"
	platformlogging "voicerag-server-go/internal/platform/logging"
	httptransport "voicerag-server-go/internal/transport/http"
	httpvoice "voicerag-server-go/internal/transport/http/voice"
	"voicerag-server-go/internal/util/work"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	store      transcriptstore.Store
	bus        *eventbus.Bus
	pool       *work.Pool
	pipeline   *pipeline.Pipeline
}

// Run starts the whole service lifecycle: init steps, HTTP serving and
// graceful teardown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.pipeline == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"pipeline not initialised",
		)
	}

	defer func() {
		state.pool.Stop()
		state.bus.WaitAsync()
		if err := state.store.Close(); err != nil {
			logger.Error("transcript store did not close cleanly", "error", err)
		}
		logger.Close()
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, state, group); err != nil {
		return err
	}

	logger.Info("service stopped cleanly")
	return nil
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "transcript:init-store",
			Title:     "Initialise transcript store",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindStorage,
			Execute:   initTranscriptStoreStep,
		},
		{
			ID:        "eventbus:init",
			Title:     "Initialise event bus",
			DependsOn: []string{"logging:init", "transcript:init-store"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "pipeline:init",
			Title:     "Initialise voice pipeline",
			DependsOn: []string{"config:load", "logging:init", "eventbus:init"},
			Kind:      platformerrors.KindPipeline,
			Execute:   initPipelineStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "logging:init", "missing config")
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger

	if state.configPath != "" {
		logger.Info("configuration loaded", "path", state.configPath)
	} else {
		logger.Info("configuration loaded from defaults and environment")
	}
	return nil
}

func initTranscriptStoreStep(_ context.Context, state *appState) error {
	store, err := transcriptstore.New(state.config.Transcript)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "transcript:init-store",
			"failed to create transcript store", err)
	}
	state.store = store

	state.logger.Info("transcript store ready", "type", state.config.Transcript.Type)
	return nil
}

// initEventBusStep subscribes the transcript store to completed pipeline runs
// so every answered question is persisted without the pipeline knowing about
// storage.
func initEventBusStep(_ context.Context, state *appState) error {
	bus := eventbus.New()
	logger := state.logger
	store := state.store

	err := bus.SubscribeAsync(eventbus.EventPipelineCompleted, func(data eventbus.PipelineCompletedData) {
		record := transcriptstore.Record{
			Question:  data.Question,
			Answer:    data.Answer,
			CreatedAt: time.Now().UTC(),
			Metadata:  map[string]string{"request_id": data.RequestID},
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Append(ctx, record); err != nil {
			logger.Error("failed to append transcript", "error", err)
		}
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "eventbus:init",
			"failed to subscribe transcript sink", err)
	}

	state.bus = bus
	return nil
}

func initPipelineStep(_ context.Context, state *appState) error {
	cfg := state.config
	logger := state.logger

	asrProvider, err := asropenai.NewProvider(asropenai.Config{
		APIKey:        cfg.ASR.APIKey,
		BaseURL:       cfg.ASR.BaseURL,
		PrimaryModel:  cfg.ASR.PrimaryModel,
		FallbackModel: cfg.ASR.FallbackModel,
		Timeout:       cfg.ASR.Timeout.Std(),
	}, logger.Logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindASR, "pipeline:init",
			"failed to create transcription provider", err)
	}

	llmProvider, err := llmopenai.NewProvider(llmopenai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout.Std(),
	}, logger.Logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindLLM, "pipeline:init",
			"failed to create answer provider", err)
	}

	ttsProvider := ttsedge.NewProvider(ttsedge.Config{
		Voice:    cfg.TTS.Voice,
		Language: cfg.TTS.Language,
		Timeout:  cfg.TTS.Timeout.Std(),
	}, logger.Logger)

	pool := work.NewPool(cfg.Pool.Workers, cfg.Pool.QueueDepth)

	p, err := pipeline.New(pipeline.Options{
		Normalizer:         audio.NewFFmpegNormalizer(cfg.Audio.FFmpegPath, logger.Logger),
		ASR:                asrProvider,
		LLM:                llmProvider,
		TTS:                ttsProvider,
		Pool:               pool,
		Bus:                state.bus,
		Logger:             logger.Logger,
		MaxDurationSeconds: cfg.Audio.MaxDurationSeconds,
		TempDir:            cfg.Audio.TempDir,
	})
	if err != nil {
		pool.Stop()
		return platformerrors.Wrap(platformerrors.KindPipeline, "pipeline:init",
			"failed to create pipeline", err)
	}

	state.pool = pool
	state.pipeline = p
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) error {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger.Logger,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "http:build-router",
			"failed to build http router", err)
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			httptransport.RespondError(c, http.StatusNotFound, "api not found", gin.H{})
			return
		}
		c.Status(http.StatusNotFound)
	})

	voiceService, err := httpvoice.NewService(config, state.pipeline, logger.Logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "voice:new-service",
			"failed to create voice service", err)
	}
	if err := voiceService.Register(groupCtx, httpRouter.API); err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "voice:register",
			"failed to register voice routes", err)
	}

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.Info("http server listening", "addr", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown failed", "error", err)
			} else {
				logger.Info("http server shut down")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			return err
		}
		return nil
	})

	return nil
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, state *appState, g *errgroup.Group) error {
	logger := state.logger

	<-ctx.Done()
	logger.Info("shutdown signal received, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("error during shutdown", "error", err)
			return err
		}
		logger.Info("all services stopped")
	case <-time.After(15 * time.Second):
		logger.Error("shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
