package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/liv-ai/liv-backend/pkg/ai"
	"github.com/liv-ai/liv-backend/pkg/chat"
	"github.com/liv-ai/liv-backend/pkg/chat/repository"
	"github.com/liv-ai/liv-backend/pkg/config"
	"github.com/liv-ai/liv-backend/pkg/logging"
	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/nudge"
	"github.com/liv-ai/liv-backend/pkg/profile"
	"github.com/liv-ai/liv-backend/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		TimeFormat:      time.Kitchen,
	})
	factory := logging.NewFactory(logger)

	envs, err := config.LoadConfig(true)
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	profiles, err := profile.NewRegistry(envs.ProfilesPath)
	if err != nil {
		logger.Fatal("Failed to load user profiles", "error", err)
	}
	logger.Info("Loaded user profiles", "count", len(profiles.IDs()))

	var nc *nats.Conn
	if envs.NatsURL != "" {
		nc, err = nats.Connect(envs.NatsURL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", "url", envs.NatsURL, "error", err)
		}
		defer nc.Close()
		logger.Info("Connected to NATS", "url", envs.NatsURL)
	}

	historyStore, cleanup, err := bootstrapHistory(logger, envs)
	if err != nil {
		logger.Fatal("Failed to set up history store", "error", err)
	}
	defer cleanup()

	memoryClient := memory.NewClient(factory.ForClient("memory"), envs.MemoryAPIURL, envs.MemoryAPIKey)
	aiService := ai.NewOpenAIService(factory.ForClient("openai"), envs.CompletionsAPIKey, envs.CompletionsAPIURL)

	chatService := chat.NewService(chat.Config{
		Logger:        factory.ForService("chat"),
		Completions:   aiService,
		Memory:        memoryClient,
		History:       historyStore,
		Profiles:      profiles,
		Nats:          nc,
		Model:         envs.CompletionsModel,
		HistoryWindow: envs.HistoryWindow,
		MemoryLimit:   envs.MemorySearchLimit,
		Timeout:       envs.CompletionsTimeout,
	})

	nudgeService := nudge.NewService(nudge.Config{
		Logger:      factory.ForService("nudge"),
		Completions: aiService,
		Memory:      memoryClient,
		Profiles:    profiles,
		Nats:        nc,
		Model:       envs.CompletionsModel,
		MemoryLimit: envs.MemorySearchLimit,
		Timeout:     envs.CompletionsTimeout,
	})

	nudgeRunner := nudge.NewRunner(factory.ForWorker("nudge"), nudgeService, profiles)
	if err := nudgeRunner.Start(envs.NudgeCron); err != nil {
		logger.Fatal("Failed to start nudge runner", "error", err)
	}
	defer nudgeRunner.Stop()

	handlers := server.NewHandlers(factory.ForHandler("api"), chatService, nudgeService)
	router := server.NewRouter(handlers, envs.AllowedOrigins)

	go func() {
		logger.Info("Starting HTTP server", "address", "http://localhost:"+envs.ServerPort)
		err := http.ListenAndServe(":"+envs.ServerPort, router)
		if err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			panic(errors.Wrap(err, "unable to start server"))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	<-signalChan
	logger.Info("Server shutting down...")
}

func bootstrapHistory(logger *log.Logger, envs *config.Config) (chat.Storage, func(), error) {
	switch envs.HistoryBackend {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(envs.HistoryDBPath), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "creating history db directory")
		}
		store, err := repository.NewSQLite(envs.HistoryDBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite history store", "path", envs.HistoryDBPath)
		return store, func() { _ = store.Close() }, nil
	case "memory":
		logger.Info("Using in-memory history store")
		return repository.NewInMemory(), func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown history backend %q", envs.HistoryBackend)
	}
}
