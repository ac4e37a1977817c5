package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/philipposk/ThatJob/internal/analyze"
	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/chat"
	"github.com/philipposk/ThatJob/internal/config"
	"github.com/philipposk/ThatJob/internal/db"
	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/logger"
	"github.com/philipposk/ThatJob/internal/profile"
	"github.com/philipposk/ThatJob/internal/queue"
	"github.com/philipposk/ThatJob/internal/research"
	"github.com/philipposk/ThatJob/internal/server"
	"github.com/philipposk/ThatJob/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for materials, job analysis, matching scores, document generation and the chat assistant.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_PRETTY") == "true")
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	store, err := newCacheStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	chain, err := newProviderChain(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := chain.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close provider chain")
		}
	}()

	blobs, err := newBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	extractor := profile.New(chain, store, profile.DefaultTTL, log)
	researcher := research.New(chain, store, research.DefaultTTL, log)

	srv := server.New(cfg.Port, server.Deps{
		Store:      database,
		Extractor:  extractor,
		Researcher: researcher,
		Generator:  generation.New(chain, extractor, nil, researcher, log),
		Analyzer:   analyze.New(chain, cfg.UseBrowser, log).WithCache(store, analyze.DefaultTTL),
		Assistant:  chat.New(chain, database, log),
		Queue:      queue.New(log),
		JWT:        server.NewJWTService(jwtConfig),
		Passwords:  passwordConfig,
		Blobs:      blobs,
		Logger:     log,
	})

	log.Info().Int("port", cfg.Port).Msg("starting server")
	return srv.Start()
}

// newCacheStore selects Redis when configured and falls back to the
// in-process store otherwise.
func newCacheStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("using in-memory cache")
		return cache.NewMemory(), nil
	}
	store, err := cache.NewRedis(ctx, cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	return store, nil
}

// newProviderChain builds the model fallback chain: the OpenAI-compatible
// endpoint first, Gemini second, each behind a circuit breaker.
func newProviderChain(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*llm.Chain, error) {
	var providers []llm.Provider

	if cfg.OpenAIKey != "" {
		p, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		providers = append(providers, llm.WithBreaker(p, llm.DefaultBreakerConfig(), log))
	}

	if cfg.GeminiKey != "" {
		p, err := llm.NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		providers = append(providers, llm.WithBreaker(p, llm.DefaultBreakerConfig(), log))
	}

	return llm.NewChain(log, llm.DefaultCallTimeout, providers...)
}

func newBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.BlobStore, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, nil
	}
	blobs, err := storage.NewMinIO(ctx, storage.MinIOConfig{
		Endpoint:        cfg.MinIOEndpoint,
		AccessKeyID:     cfg.MinIOAccessKey,
		SecretAccessKey: cfg.MinIOSecretKey,
		UseSSL:          cfg.MinIOUseSSL,
		Bucket:          cfg.MinIOBucket,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}
	return blobs, nil
}
