package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agri-advisor/internal/api"
	"agri-advisor/internal/api/handlers"
	"agri-advisor/internal/cache"
	"agri-advisor/internal/commodity"
	"agri-advisor/internal/knowledge"
	"agri-advisor/internal/provider"
	"agri-advisor/internal/repository"
	"agri-advisor/internal/service"
	"agri-advisor/internal/synthetic"
	"agri-advisor/pkg/config"
	"agri-advisor/pkg/logger"
	"agri-advisor/pkg/postgres"

	"go.uber.org/zap"
)

// @title Agri Advisor API
// @version 1.0
// @description Advisory context engine for farmers: live mandi prices, weather and agronomy knowledge in English, Hindi and Marathi
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@agri-advisor.in

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Encoding); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting agri advisor service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolver, err := commodity.NewResolver()
	if err != nil {
		appLogger.Fatal("Failed to load commodity synonyms", zap.Error(err))
	}
	generator, err := synthetic.New()
	if err != nil {
		appLogger.Fatal("Failed to load regional price table", zap.Error(err))
	}

	// Quote cache
	store := newCacheStore(ctx, cfg, appLogger)
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	quoteCache := cache.NewQuoteCache(store, cfg.Cache.LiveTTL, logger.Named("cache"))

	// Live providers
	client := provider.NewHTTPClient(&cfg.Providers)
	marketProviders := provider.MarketProviders(&cfg.Providers, client, resolver)
	weatherProviders := provider.WeatherProviders(&cfg.Weather, cfg.Providers.DisabledSource, client)
	appLogger.Info("Providers configured",
		zap.Int("market", len(marketProviders)),
		zap.Int("weather", len(weatherProviders)),
	)

	marketService := service.NewMarketService(
		marketProviders, generator, resolver, quoteCache,
		cfg.Providers.Timeout, cfg.Advisory.QuoteLimit, logger.Named("market"),
	)
	weatherService := service.NewWeatherService(weatherProviders, cfg.Providers.Timeout, logger.Named("weather"))

	// Knowledge base
	docs, err := knowledge.Documents()
	if err != nil {
		appLogger.Fatal("Failed to load knowledge base", zap.Error(err))
	}
	embedder := service.NewEmbedder(&cfg.RAG, appLogger)
	ragService := service.NewRAGService(knowledge.NewStore(docs), embedder, &cfg.RAG, logger.Named("rag"))

	// Embeddings are attached in the background; retrieval runs in keyword
	// mode until indexing finishes.
	if embedder != nil {
		var repo service.EmbeddingRepository
		if cfg.Database.Enabled {
			db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
			if err != nil {
				appLogger.Warn("Failed to connect to database, embeddings will not persist", zap.Error(err))
			} else {
				defer db.Close()
				knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
				if err := knowledgeRepo.EnsureSchema(ctx); err != nil {
					appLogger.Warn("Failed to prepare embeddings table", zap.Error(err))
				} else {
					repo = knowledgeRepo
				}
			}
		}

		indexer := service.NewIndexer(embedder, repo, cfg.RAG.EmbeddingModel, logger.Named("indexer"))
		go func() {
			indexed, err := indexer.Index(ctx, ragService.Store())
			if err != nil {
				appLogger.Warn("Knowledge base partially indexed", zap.Error(err))
			}
			ragService.SetStore(indexed)
		}()
	}

	// LLM
	completer, closeLLM, err := service.NewCompleter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer closeLLM()

	advisoryService := service.NewAdvisoryService(
		ragService, marketService, weatherService, completer, resolver, cfg, logger.Named("advisory"),
	)

	// Initialize handlers
	adviceHandler := handlers.NewAdviceHandler(advisoryService, resolver, appLogger)
	marketHandler := handlers.NewMarketHandler(marketService, resolver, appLogger)
	knowledgeHandler := handlers.NewKnowledgeHandler(ragService, appLogger)

	// Setup router
	app := api.SetupRouter(adviceHandler, marketHandler, knowledgeHandler, &cfg.Server, cfg.JWT.SecretKey, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	cancel()
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// newCacheStore returns the configured quote cache backend. An unreachable
// Redis degrades to the in-process store.
func newCacheStore(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) cache.Store {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemoryStore()
	}

	store := cache.NewRedisStore(&cfg.Redis)
	if err := store.Ping(ctx); err != nil {
		appLogger.Warn("Redis unavailable, using in-memory quote cache",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
		_ = store.Close()
		return cache.NewMemoryStore()
	}
	appLogger.Info("Using Redis quote cache", zap.String("addr", cfg.Redis.Addr))
	return store
}
