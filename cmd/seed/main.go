package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"agri-advisor/internal/knowledge"
	"agri-advisor/internal/repository"
	"agri-advisor/internal/service"
	"agri-advisor/pkg/config"
	"agri-advisor/pkg/logger"
	"agri-advisor/pkg/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkQuery string
	checkLang  string
	checkTopK  int
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Embed the agronomy knowledge base into Postgres",
	Long: `Chunks the built-in knowledge base, embeds every chunk whose content
changed since the last run and stores the vectors in the pgvector table the
advisor loads at startup.

With --check the stored vectors are queried afterwards and the nearest
documents for the given question are printed.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&checkQuery, "check", "", "Question to search the stored vectors with after seeding")
	rootCmd.Flags().StringVar(&checkLang, "lang", "", "Language of the --check question (en, hi, mr); detected when empty")
	rootCmd.Flags().IntVar(&checkTopK, "k", 3, "Number of documents printed by --check")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Encoding); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	embedder := service.NewEmbedder(&cfg.RAG, appLogger)
	if embedder == nil {
		return errors.New("RAG_EMBEDDING_API_KEY (or OPENAI_API_KEY) is required for seeding")
	}
	if !cfg.Database.Enabled {
		appLogger.Warn("DB_ENABLED is false, the advisor will not read what is seeded now")
	}

	// Connect to database
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	if err := knowledgeRepo.EnsureSchema(ctx); err != nil {
		return err
	}

	docs, err := knowledge.Documents()
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	appLogger.Info("Starting knowledge base seeding...", zap.Int("documents", len(docs)))

	indexer := service.NewIndexer(embedder, knowledgeRepo, cfg.RAG.EmbeddingModel, appLogger)
	indexed, err := indexer.Index(ctx, knowledge.NewStore(docs))
	if err != nil {
		return fmt.Errorf("failed to seed knowledge base (%d of %d embedded): %w", indexed.Embedded(), indexed.Len(), err)
	}

	appLogger.Info("Knowledge base seeding completed successfully!", zap.Int("embedded", indexed.Embedded()))

	if checkQuery == "" {
		return nil
	}
	return runCheck(ctx, cmd, embedder, knowledgeRepo, indexed, cfg.RAG.DefaultLanguage)
}

// runCheck prints the stored documents nearest to --check.
func runCheck(
	ctx context.Context,
	cmd *cobra.Command,
	embedder service.Embedder,
	repo *repository.KnowledgeRepository,
	store *knowledge.Store,
	defaultLang string,
) error {
	lang := service.DetectLanguage(checkQuery, checkLang)

	vecs, err := embedder.Embed(ctx, []string{checkQuery})
	if err != nil {
		return fmt.Errorf("failed to embed check query: %w", err)
	}
	if len(vecs) != 1 {
		return fmt.Errorf("embedder returned %d vectors for the check query", len(vecs))
	}

	languages := []string{lang}
	if defaultLang != "" && defaultLang != lang {
		languages = append(languages, defaultLang)
	}
	ids, err := repo.SimilarIDs(ctx, vecs[0], languages, checkTopK)
	if err != nil {
		return err
	}

	byID := make(map[string]string, store.Len())
	for _, d := range store.Documents() {
		byID[d.ID] = d.Content
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%q (%s): %d match(es)\n", checkQuery, lang, len(ids))
	for i, id := range ids {
		fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, id, preview(byID[id], 120))
	}
	return nil
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
