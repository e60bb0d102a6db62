package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appservices "carevoice/internal/app/services"
	"carevoice/internal/domain/assist"
	"carevoice/internal/domain/availability"
	availstore "carevoice/internal/domain/availability/store"
	"carevoice/internal/domain/capture"
	captureinter "carevoice/internal/domain/capture/inter"
	capturecloud "carevoice/internal/domain/capture/infrastructure/adapters/cloud"
	capturenative "carevoice/internal/domain/capture/infrastructure/adapters/native"
	"carevoice/internal/domain/eventbus"
	"carevoice/internal/domain/probe"
	"carevoice/internal/domain/synthesis"
	synthesiscloud "carevoice/internal/domain/synthesis/infrastructure/adapters/cloud"
	synthesisedge "carevoice/internal/domain/synthesis/infrastructure/adapters/edge"
	synthinter "carevoice/internal/domain/synthesis/inter"
	"carevoice/internal/domain/synthesis/playback"
	platformconfig "carevoice/internal/platform/config"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
	platformstorage "carevoice/internal/platform/storage"
	httptransport "carevoice/internal/transport/http"
	"carevoice/internal/transport/http/voiceapi"
	"carevoice/internal/transport/ws"
)

type appState struct {
	config *platformconfig.Config
	logger *logging.Logger

	availability *availability.Availability
	availStore   availstore.Store
	turns        platformstorage.TurnRepository

	bridge      *ws.Bridge
	capture     *capture.Coordinator
	transcriber voiceapi.Transcriber
	speech      *synthesis.Coordinator
	voices      synthinter.VoiceLister
	prober      *probe.Prober
	panel       *appservices.PanelService
	stream      *ws.EventStream
}

// Run starts the voice service: configuration, wiring, HTTP serving and
// graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	initSteps := []struct {
		title string
		run   func(context.Context, *appState) error
	}{
		{"config", initConfig},
		{"logging", initLogging},
		{"storage", initStorage},
		{"availability", initAvailability},
		{"voice domain", initVoiceDomain},
		{"panel", initPanel},
	}
	for _, step := range initSteps {
		if err := step.run(ctx, state); err != nil {
			return platformerrors.Wrap(platformerrors.KindConfig,
				"bootstrap."+step.title, "initialization failed", err)
		}
	}

	logger := state.logger
	defer logger.Close()
	defer state.panel.Close()
	defer state.stream.Close()
	if state.availStore != nil {
		defer state.availStore.Close(context.Background())
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	server, err := buildServer(state)
	if err != nil {
		return err
	}

	group.Go(func() error {
		logger.Slog().Info("voice service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logger.Slog().Info("voice service stopped")
	return nil
}

func initConfig(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	return nil
}

func initLogging(_ context.Context, state *appState) error {
	logger, err := logging.New(logging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger
	return nil
}

func initStorage(_ context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Storage.DSN)
	if err != nil {
		return err
	}
	state.turns = platformstorage.NewTurnRepository(db)
	return nil
}

func initAvailability(ctx context.Context, state *appState) error {
	storeCfg := state.config.Availability.Store
	st, err := availstore.New(availstore.Config{
		Driver:    storeCfg.Type,
		Namespace: "carevoice",
		Redis: &availstore.RedisConfig{
			Addr:     storeCfg.Redis.Addr,
			Username: storeCfg.Redis.Username,
			Password: storeCfg.Redis.Password,
			DB:       storeCfg.Redis.DB,
			Prefix:   storeCfg.Redis.Prefix,
		},
	})
	if err != nil {
		return err
	}
	state.availStore = st
	state.availability = availability.NewWithStore(ctx, st, state.logger)
	return nil
}

func initVoiceDomain(_ context.Context, state *appState) error {
	cfg := state.config
	logger := state.logger
	bus := eventbus.Get()

	state.bridge = ws.NewBridge(logger)

	native := capturenative.NewRecognizer(state.bridge, logger)
	var cloudRecognizer captureinter.Recognizer
	if cfg.Capture.Cloud.BaseURL != "" {
		recognizer, err := capturecloud.NewRecognizer(capturecloud.Config{
			BaseURL:           cfg.Capture.Cloud.BaseURL,
			APIKey:            cfg.Capture.Cloud.APIKey,
			Timeout:           cfg.Capture.Cloud.Timeout,
			SampleRate:        cfg.Capture.SampleRate,
			MaxRecordDuration: time.Duration(cfg.Capture.MaxRecordSeconds) * time.Second,
		}, ws.AudioSource{Bridge: state.bridge}, state.availability, logger)
		if err != nil {
			return err
		}
		cloudRecognizer = recognizer
		state.transcriber = recognizer
	}

	state.capture = capture.NewCoordinator(captureinter.Config{
		Language:          cfg.Capture.Language,
		SampleRate:        cfg.Capture.SampleRate,
		MaxRecordDuration: time.Duration(cfg.Capture.MaxRecordSeconds) * time.Second,
	}, capture.Dependencies{
		Native:       native,
		Cloud:        cloudRecognizer,
		Availability: state.availability,
		Logger:       logger,
		Bus:          bus,
	})

	var cloudSynthesizer synthinter.Synthesizer
	if cfg.Synthesis.Cloud.BaseURL != "" {
		synthesizer, err := synthesiscloud.NewSynthesizer(synthesiscloud.Config{
			BaseURL: cfg.Synthesis.Cloud.BaseURL,
			APIKey:  cfg.Synthesis.Cloud.APIKey,
			Timeout: cfg.Synthesis.Cloud.Timeout,
		}, logger)
		if err != nil {
			return err
		}
		cloudSynthesizer = synthesizer
	}
	nativeSynthesizer := synthesisedge.NewSynthesizer(synthesisedge.Config{
		DefaultLanguage: cfg.Synthesis.Voice.Language,
	}, logger)
	state.voices = nativeSynthesizer

	player := playback.NewPlayer(playback.Config{SampleRate: cfg.Capture.SampleRate},
		ws.PlaybackSink{Bridge: state.bridge}, logger)

	state.speech = synthesis.NewCoordinator(synthinter.Config{
		DefaultProfile: synthinter.VoiceProfile{
			Gender:       cfg.Synthesis.Voice.Gender,
			LanguageCode: cfg.Synthesis.Voice.Language,
		},
		DefaultLanguage: cfg.Synthesis.Voice.Language,
	}, synthesis.Dependencies{
		Cloud:        cloudSynthesizer,
		Native:       nativeSynthesizer,
		Player:       player,
		Availability: state.availability,
		Logger:       logger,
		Bus:          bus,
	})

	state.prober = probe.New(probe.Config{
		Speech: probe.Endpoint{
			Name:       "cloud-speech",
			BaseURL:    cfg.Capture.Cloud.BaseURL,
			StatusPath: cfg.Capture.Cloud.StatusPath,
			APIKey:     cfg.Capture.Cloud.APIKey,
		},
		Synthesis: probe.Endpoint{
			Name:       "cloud-synthesis",
			BaseURL:    cfg.Synthesis.Cloud.BaseURL,
			StatusPath: cfg.Synthesis.Cloud.StatusPath,
			APIKey:     cfg.Synthesis.Cloud.APIKey,
		},
	}, logger)

	return nil
}

func initPanel(_ context.Context, state *appState) error {
	cfg := state.config
	bus := eventbus.Get()

	stream, err := ws.NewEventStream(bus, state.logger)
	if err != nil {
		return err
	}
	state.stream = stream

	assistClient := assist.NewClient(assist.Config{
		BaseURL:     cfg.Assist.BaseURL,
		APIKey:      cfg.Assist.APIKey,
		Model:       cfg.Assist.ModelName,
		Temperature: cfg.Assist.Temperature,
		MaxTokens:   cfg.Assist.MaxTokens,
	}, state.logger)

	panel, err := appservices.NewPanelService(appservices.PanelConfig{
		Language: cfg.Capture.Language,
		Profile: synthinter.VoiceProfile{
			Gender:       cfg.Synthesis.Voice.Gender,
			LanguageCode: cfg.Synthesis.Voice.Language,
		},
	}, appservices.PanelDependencies{
		Capture: state.capture,
		Speech:  state.speech,
		Assist:  assistClient,
		Turns:   state.turns,
		Voices:  state.voices,
		Bus:     bus,
		Logger:  state.logger,
	})
	if err != nil {
		return err
	}
	state.panel = panel
	return nil
}

func buildServer(state *appState) (*http.Server, error) {
	router, err := httptransport.Build(httptransport.Options{
		Config: state.config,
		Logger: state.logger,
	})
	if err != nil {
		return nil, err
	}

	voiceService, err := voiceapi.NewService(state.panel, state.prober, state.transcriber, state.turns, state.logger)
	if err != nil {
		return nil, err
	}
	if err := voiceService.Register(context.Background(), router.API); err != nil {
		return nil, err
	}
	state.stream.Register(router.API)
	state.bridge.Register(router.API)

	addr := fmt.Sprintf("%s:%d", state.config.Server.IP, state.config.Server.Port)
	return &http.Server{
		Addr:    addr,
		Handler: router.Engine,
	}, nil
}
