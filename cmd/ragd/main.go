// Ragd is the document question-answering daemon.
//
// It ingests documents into a chunk store, answers questions grounded in
// retrieved chunks, and generates summaries, all over an HTTP API.
//
// Configuration is loaded from ~/.config/ragd/config.yaml and RAGD_*
// environment variables. A .env file in the working directory is read first.
//
// Usage:
//
//	# Start server with defaults
//	ragd
//
//	# Configure via environment
//	RAGD_SERVER_PORT=9000 RAGD_STORE_BACKEND=chromem ragd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/chunkstore"
	"github.com/fyrsmithlabs/ragd/internal/config"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/extraction"
	httpapi "github.com/fyrsmithlabs/ragd/internal/http"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/logging"
	"github.com/fyrsmithlabs/ragd/internal/rag"
	"github.com/fyrsmithlabs/ragd/internal/summarizer"
	"github.com/fyrsmithlabs/ragd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/ragd/config.yaml)")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  ragd           Start the ragd daemon\n")
			fmt.Fprintf(os.Stderr, "  ragd version   Show version information\n")
			os.Exit(1)
		}
	}

	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("ragd failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	tel, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	var embedder embeddings.Embedder
	if cfg.Embeddings.APIKey.IsSet() {
		svc, err := embeddings.NewService(embeddings.Config{
			BaseURL: cfg.Embeddings.BaseURL,
			Model:   cfg.Embeddings.Model,
			APIKey:  cfg.Embeddings.APIKey.Value(),
			Timeout: cfg.Embeddings.Timeout.Duration(),
		}, logger)
		if err != nil {
			return fmt.Errorf("creating embedding service: %w", err)
		}
		embedder = svc
	} else {
		logger.Warn("no embeddings API key configured, retrieval degrades to keyword matching")
	}

	store, err := chunkstore.New(ctx, cfg.Store, embedder, logger)
	if err != nil {
		return fmt.Errorf("creating chunk store: %w", err)
	}
	defer store.Close()

	registry := buildRegistry(cfg, logger)
	if cfg.Providers.Probe {
		probeCtx, probeCancel := context.WithTimeout(ctx, 30*time.Second)
		registry.ProbeAll(probeCtx)
		probeCancel()
	}
	if names := registry.AvailableNames(); len(names) == 0 {
		logger.Warn("no answer providers configured, question answering will fail")
	} else {
		logger.Info("answer providers ready", zap.Strings("providers", names))
	}

	ragService, err := rag.NewService(cfg.RAG, store, embedder, registry, logger)
	if err != nil {
		return fmt.Errorf("creating rag service: %w", err)
	}

	server, err := httpapi.NewServer(
		ragService,
		summarizer.New(registry, logger),
		extraction.NewTextExtractor(logger),
		registry,
		logger,
		&httpapi.Config{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
			WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		},
	)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) *llm.Registry {
	p := cfg.Providers
	return llm.NewRegistry(logger,
		llm.NewGemini(llm.GeminiConfig{
			BaseURL: p.Gemini.BaseURL,
			Model:   p.Gemini.Model,
			APIKey:  p.Gemini.APIKey.Value(),
			Timeout: p.Gemini.Timeout.Duration(),
		}),
		llm.NewOpenAI(llm.OpenAIConfig{
			BaseURL: p.OpenAI.BaseURL,
			Model:   p.OpenAI.Model,
			APIKey:  p.OpenAI.APIKey.Value(),
			Timeout: p.OpenAI.Timeout.Duration(),
		}),
		llm.NewClaude(llm.ClaudeConfig{
			BaseURL: p.Claude.BaseURL,
			Model:   p.Claude.Model,
			APIKey:  p.Claude.APIKey.Value(),
			Timeout: p.Claude.Timeout.Duration(),
		}),
		llm.NewMistral(llm.MistralConfig{
			BaseURL: p.Mistral.BaseURL,
			Model:   p.Mistral.Model,
			APIKey:  p.Mistral.APIKey.Value(),
			Timeout: p.Mistral.Timeout.Duration(),
		}),
	)
}

func printVersion() {
	fmt.Printf("ragd %s\n", version)
	fmt.Printf("  commit: %s\n", gitCommit)
	fmt.Printf("  built:  %s\n", buildDate)
}
