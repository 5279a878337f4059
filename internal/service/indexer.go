package service

import (
	"context"
	"fmt"
	"time"

	"agri-advisor/internal/knowledge"
	"agri-advisor/internal/models"
	"agri-advisor/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// EmbeddingRepository persists document vectors between restarts.
type EmbeddingRepository interface {
	LoadEmbeddings(ctx context.Context, model string) (map[string]repository.StoredEmbedding, error)
	UpsertEmbeddings(ctx context.Context, model string, docs []models.KnowledgeDocument) error
}

// Indexer attaches embeddings to a knowledge store.
type Indexer struct {
	embedder   Embedder
	repo       EmbeddingRepository // optional
	model      string
	batchSize  int
	maxRetries uint64
	logger     *zap.Logger
}

func NewIndexer(embedder Embedder, repo EmbeddingRepository, model string, logger *zap.Logger) *Indexer {
	return &Indexer{
		embedder:   embedder,
		repo:       repo,
		model:      model,
		batchSize:  32,
		maxRetries: 3,
		logger:     logger,
	}
}

// Index returns a copy of store with every document it could embed. Vectors
// already persisted for unchanged content are reused. A failed batch leaves
// its documents without vectors; the returned error describes the first
// failure and the returned store is still usable.
func (ix *Indexer) Index(ctx context.Context, store *knowledge.Store) (*knowledge.Store, error) {
	docs := store.Documents()
	vectors := make(map[string][]float32, len(docs))

	if ix.repo != nil {
		stored, err := ix.repo.LoadEmbeddings(ctx, ix.model)
		if err != nil {
			ix.logger.Warn("Failed to load stored embeddings, re-embedding everything", zap.Error(err))
		}
		for i := range docs {
			if e, ok := stored[docs[i].ID]; ok && e.ContentHash == repository.ContentHash(&docs[i]) {
				vectors[docs[i].ID] = e.Vector
			}
		}
	}

	var pending []models.KnowledgeDocument
	for _, d := range docs {
		if _, ok := vectors[d.ID]; !ok {
			pending = append(pending, d)
		}
	}

	var firstErr error
	var fresh []models.KnowledgeDocument
	for start := 0; start < len(pending); start += ix.batchSize {
		end := min(start+ix.batchSize, len(pending))
		batch := pending[start:end]

		vecs, err := ix.embedBatch(ctx, batch)
		if err != nil {
			ix.logger.Warn("Embedding batch failed",
				zap.Int("from", start),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		for i := range batch {
			batch[i].Embedding = vecs[i]
			vectors[batch[i].ID] = vecs[i]
			fresh = append(fresh, batch[i])
		}
	}

	if ix.repo != nil && len(fresh) > 0 {
		if err := ix.repo.UpsertEmbeddings(ctx, ix.model, fresh); err != nil {
			ix.logger.Warn("Failed to persist embeddings", zap.Error(err))
		}
	}

	indexed := store.WithEmbeddings(vectors)
	ix.logger.Info("Knowledge base indexed",
		zap.Int("documents", indexed.Len()),
		zap.Int("embedded", indexed.Embedded()),
		zap.Int("reused", len(vectors)-len(fresh)),
	)
	return indexed, firstErr
}

func (ix *Indexer) embedBatch(ctx context.Context, batch []models.KnowledgeDocument) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].Content
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second

	var vecs [][]float32
	op := func() error {
		var err error
		vecs, err = ix.embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if len(vecs) != len(texts) {
			return backoff.Permanent(fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts)))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, ix.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	return vecs, nil
}
