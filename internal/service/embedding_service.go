package service

import (
	"context"
	"fmt"
	"sync"

	"agri-advisor/pkg/config"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder is the external embedding service.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder returns nil when no embedding key is configured; retrieval then
// runs in keyword mode.
func NewEmbedder(cfg *config.RAGConfig, logger *zap.Logger) Embedder {
	if cfg.EmbeddingAPIKey == "" {
		logger.Warn("No embedding API key configured, knowledge retrieval will use keyword ranking")
		return nil
	}
	return NewOpenAIEmbedder(cfg)
}

type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(cfg *config.RAGConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.EmbeddingAPIKey)
	if cfg.EmbeddingBaseURL != "" {
		clientCfg.BaseURL = cfg.EmbeddingBaseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.EmbeddingModel),
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response mismatch: got %d vectors, want %d", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// QueryEmbeddingCache memoizes query vectors for the process lifetime.
// Farmers repeat the same handful of questions, so the hit rate is high.
type QueryEmbeddingCache struct {
	embedder Embedder
	maxSize  int

	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewQueryEmbeddingCache(embedder Embedder, maxSize int) *QueryEmbeddingCache {
	return &QueryEmbeddingCache{
		embedder: embedder,
		maxSize:  maxSize,
		vectors:  make(map[string][]float32),
	}
}

func (c *QueryEmbeddingCache) Embed(ctx context.Context, query string) ([]float32, error) {
	c.mu.RLock()
	v, ok := c.vectors[query]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	vecs, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	c.mu.Lock()
	if len(c.vectors) >= c.maxSize {
		// Reset wholesale when full.
		c.vectors = make(map[string][]float32)
	}
	c.vectors[query] = vecs[0]
	c.mu.Unlock()
	return vecs[0], nil
}
