package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cartwise/backend/config"
	httpDelivery "github.com/cartwise/backend/internal/delivery/http"
	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/infrastructure/ark"
	"github.com/cartwise/backend/internal/infrastructure/cache"
	"github.com/cartwise/backend/internal/infrastructure/cartfile"
	"github.com/cartwise/backend/internal/infrastructure/catalogfile"
	"github.com/cartwise/backend/internal/infrastructure/gemini"
	"github.com/cartwise/backend/internal/infrastructure/vectorstore"
	"github.com/cartwise/backend/internal/infrastructure/whisper"
	"github.com/cartwise/backend/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// openIndex builds the embedding-backed retrieval index. The caller closes
// the returned cleanup.
func openIndex(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*vectorstore.Index, func(), error) {
	embedder, err := gemini.NewEmbedder(ctx, cfg.Embedding.APIKey, cfg.Embedding.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	collection, err := vectorstore.OpenCollection(cfg.Index.Dir, cfg.Index.Collection)
	if err != nil {
		return nil, nil, err
	}

	queryCache := cache.NewMemoryCache(0)
	index := vectorstore.NewIndex(collection, embedder, queryCache,
		vectorstore.IndexConfig{QueryCacheTTL: cfg.Index.QueryCacheTTL}, logger)

	cleanup := func() {
		queryCache.Close()
		if err := collection.Close(); err != nil {
			logger.Warn("failed to close index", zap.Error(err))
		}
	}
	return index, cleanup, nil
}

func newChatModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.ChatModel, error) {
	switch cfg.LLM.Provider {
	case "ark":
		model, err := ark.NewChatModel(ctx, ark.Config{
			APIKey:            cfg.LLM.APIKey,
			Model:             cfg.LLM.Model,
			BaseURL:           cfg.LLM.BaseURL,
			Temperature:       cfg.LLM.Temperature,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		}, logger)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		model, err := gemini.NewChatModel(ctx, gemini.ChatConfig{
			APIKey:            cfg.LLM.APIKey,
			Model:             cfg.LLM.Model,
			BaseURL:           cfg.LLM.BaseURL,
			Temperature:       cfg.LLM.Temperature,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		}, logger)
		if err != nil {
			return nil, err
		}
		return model, nil
	}
}

func newTranscriptionService(cfg *config.Config, logger *zap.Logger) *usecase.TranscriptionService {
	speech := whisper.NewClient(whisper.Config{
		BaseURL:           cfg.Speech.BaseURL,
		Timeout:           cfg.Speech.Timeout,
		RequestsPerSecond: cfg.Speech.RequestsPerSecond,
	}, logger)

	return usecase.NewTranscriptionService(speech, usecase.TranscriptionConfig{
		Language: cfg.Speech.Language,
		BeamSize: cfg.Speech.BeamSize,
	}, logger)
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting cartwise backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	// The catalog is required; nothing works without it
	catalog, err := catalogfile.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		return err
	}
	logger.Info("catalog loaded", zap.Int("categories", len(catalog.Categories)), zap.Int("products", catalog.Size()))

	carts, err := cartfile.NewStore(cfg.Cart.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open cart store: %w", err)
	}

	index, closeIndex, err := openIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeIndex()

	// Search degrades to an empty context, so a failed seed is not fatal
	if seeded, err := index.SeedIfEmpty(ctx, catalog); err != nil {
		logger.Warn("failed to seed retrieval index", zap.Error(err))
	} else if seeded > 0 {
		logger.Info("retrieval index seeded", zap.Int("documents", seeded))
	}

	model, err := newChatModel(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create chat model: %w", err)
	}

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(catalog)
	cartService := usecase.NewCartService(carts, catalogService)
	assistant := usecase.NewAssistantService(index, model, carts, catalogService, usecase.AssistantConfig{
		TopK:        cfg.Index.TopK,
		HistorySize: cfg.Conversation.HistorySize,
	}, logger)
	sessions := usecase.NewSessionStore(cfg.Conversation.HistorySize)

	handler := httpDelivery.NewHandler(catalogService, cartService, assistant,
		newTranscriptionService(cfg, logger), sessions, logger)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSeed(cmd *cobra.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, err := catalogfile.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	index, closeIndex, err := openIndex(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeIndex()

	seeded, err := index.SeedIfEmpty(cmd.Context(), catalog)
	if err != nil {
		return fmt.Errorf("failed to seed index: %w", err)
	}
	if seeded == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "index already populated")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", seeded)
	return nil
}

func runTranscribe(cmd *cobra.Command, path string, raw bool, sampleRate int) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	svc := newTranscriptionService(cfg, logger)

	var (
		text string
		ok   bool
	)
	if raw {
		pcm, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		text, ok = svc.Transcribe(cmd.Context(), pcm, sampleRate)
	} else {
		text, ok = svc.TranscribeFile(cmd.Context(), path)
	}
	if !ok {
		return errors.New("no speech recognized")
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
