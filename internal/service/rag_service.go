package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"agri-advisor/internal/knowledge"
	"agri-advisor/internal/models"
	"agri-advisor/pkg/config"
	"agri-advisor/pkg/metrics"

	"go.uber.org/zap"
)

const (
	ModeSimilarity = "similarity"
	ModeKeyword    = "keyword"
)

const defaultEmbeddingTimeout = 3 * time.Second

// RAGService retrieves knowledge snippets for a query. It ranks by embedding
// similarity when it can and by keyword overlap otherwise.
type RAGService struct {
	store   atomic.Pointer[knowledge.Store]
	queries *QueryEmbeddingCache // nil without an embedder
	config  *config.RAGConfig
	logger  *zap.Logger
}

func NewRAGService(store *knowledge.Store, embedder Embedder, cfg *config.RAGConfig, logger *zap.Logger) *RAGService {
	s := &RAGService{
		config: cfg,
		logger: logger,
	}
	if embedder != nil {
		s.queries = NewQueryEmbeddingCache(embedder, 1024)
	}
	s.store.Store(store)
	return s
}

// SetStore swaps in a new document set, e.g. once background indexing ends.
func (s *RAGService) SetStore(store *knowledge.Store) {
	s.store.Store(store)
}

func (s *RAGService) Store() *knowledge.Store {
	return s.store.Load()
}

// Retrieve returns at most k documents in language or the default language.
// An empty result is valid and never an error.
func (s *RAGService) Retrieve(ctx context.Context, query, language string, k int) []models.KnowledgeDocument {
	docs, _ := s.RetrieveWithMode(ctx, query, language, k)
	return docs
}

// RetrieveWithMode is Retrieve that also reports which ranking produced the result.
func (s *RAGService) RetrieveWithMode(ctx context.Context, query, language string, k int) ([]models.KnowledgeDocument, string) {
	if k <= 0 {
		k = s.config.TopK
	}
	if language == "" {
		language = s.config.DefaultLanguage
	}
	store := s.store.Load()

	if s.queries != nil && store.Embedded() > 0 {
		vec, err := s.embedQuery(ctx, query)
		if err != nil {
			s.logger.Warn("Query embedding failed, using keyword ranking", zap.Error(err))
		} else if docs := store.RankBySimilarity(vec, language, s.config.DefaultLanguage, k); len(docs) > 0 {
			s.logRetrieval(query, language, ModeSimilarity, len(docs))
			return docs, ModeSimilarity
		}
	}

	docs := store.RankByKeyword(query, language, s.config.DefaultLanguage, k)
	s.logRetrieval(query, language, ModeKeyword, len(docs))
	return docs, ModeKeyword
}

func (s *RAGService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	timeout := s.config.EmbeddingTimeout
	if timeout <= 0 {
		timeout = defaultEmbeddingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.queries.Embed(ctx, query)
}

func (s *RAGService) logRetrieval(query, language, mode string, n int) {
	metrics.RetrievalMode.WithLabelValues(mode).Inc()
	s.logger.Info("Knowledge search completed",
		zap.String("query", query),
		zap.String("language", language),
		zap.String("mode", mode),
		zap.Int("results", n),
	)
}

// BuildContext renders retrieved documents for the prompt, newline-joined.
func (s *RAGService) BuildContext(docs []models.KnowledgeDocument) string {
	return renderSnippets(docs)
}

func renderSnippets(docs []models.KnowledgeDocument) string {
	var builder strings.Builder
	for i, d := range docs {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("[%s] %s", d.Category, d.Content))
	}
	return builder.String()
}
