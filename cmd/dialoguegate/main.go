package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"dialoguegate/internal/cache"
	"dialoguegate/internal/catalog"
	"dialoguegate/internal/config"
	"dialoguegate/internal/coordinator"
	"dialoguegate/internal/handlers"
	"dialoguegate/internal/host"
	"dialoguegate/internal/httpserver"
	"dialoguegate/internal/llm"
	"dialoguegate/internal/metrics"
	"dialoguegate/internal/prompt"
	"dialoguegate/pkg/logging/logging"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a config file (yaml, json or toml)")
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before the environment is read")
	pflag.Parse()

	// Variables already set in the environment take precedence.
	_ = godotenv.Load(*envFile)

	if err := run(*configPath); err != nil {
		log.Fatalf("dialoguegate exited with error: %v", err)
	}
}

func run(configPath string) error {
	// ----- Config -----
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ----- Logger -----
	logger, err := logging.NewLogger(logging.Options{Env: cfg.Log.Env, Level: cfg.Log.Level})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logging.SetDefault(logger)
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	logger.Info("loaded config",
		zap.String("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_base_url", cfg.LLM.BaseURL),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("llm_enabled", cfg.LLM.Enabled()),
		zap.Duration("wait_budget", cfg.Dialogue.WaitBudget),
		zap.String("redis_addr", cfg.Cache.RedisAddr),
	)

	// ----- Redis client (only if a journal is wanted) -----
	var redisClient *redis.Client
	if cfg.Cache.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
		})
		defer redisClient.Close()
	}

	// ----- Cache + journal -----
	dialogueCache, journal := cache.New(cache.Config{
		RedisPrefix: cfg.Cache.RedisPrefix,
		JournalTTL:  cfg.Cache.JournalTTL,
	}, redisClient, logger)
	if rj, ok := journal.(*cache.RedisJournal); ok {
		// Fail fast if Redis is misconfigured
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rj.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("journaling generated lines",
			zap.String("addr", cfg.Cache.RedisAddr),
			zap.String("key", rj.Key()),
		)
	}

	// ----- LLM client -----
	var llmClient llm.Client
	if cfg.LLM.Enabled() {
		llmClient, err = llm.NewClient(llm.Config{
			BaseURL:         cfg.LLM.BaseURL,
			APIKey:          cfg.LLM.APIKey,
			Provider:        cfg.LLM.Provider,
			UpstreamTimeout: cfg.LLM.UpstreamTimeout,
		}, logger)
		if err != nil {
			return err
		}
		if closer, ok := llmClient.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	} else {
		logger.Warn("no API key configured; serving fallback lines only")
	}
	generator := llm.NewGenerator(llmClient, cfg.LLM.UpstreamTimeout, logger)

	// ----- Coordinator + foreground session -----
	screen := host.NewScreen()
	coord := coordinator.New(coordinator.Deps{
		Cache:     dialogueCache,
		Journal:   journal,
		Generator: generator,
		Fallback:  catalog.Catalog{},
		Personas:  catalog.NewPersonas(cfg.Characters),
		Builder: prompt.Builder{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		},
		Presenter: screen,
		Logger:    logger,
	}, coordinator.Options{
		WaitBudget:    cfg.Dialogue.WaitBudget,
		Placeholder:   cfg.Dialogue.Placeholder,
		PlayerContext: cfg.Player.Description,
		WorldName:     cfg.Dialogue.WorldName,
	})
	session := host.NewSession(screen, coord, cfg.Dialogue.TickInterval, logger)

	tickCtx, stopTicks := context.WithCancel(context.Background())
	defer stopTicks()
	go session.Run(tickCtx)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, handlers.NewDialogueHandler(session, journal), httpserver.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting dialoguegate", zap.String("addr", srv.Addr))

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	stopTicks()
	// In-flight generations still commit so their lines reach the journal.
	coord.Close()

	logger.Info("server shutdown complete")
	return nil
}
