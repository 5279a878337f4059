package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"agri-advisor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const embeddingsTable = "knowledge_embeddings"

// StoredEmbedding is a persisted vector and the content it was computed from.
type StoredEmbedding struct {
	ID          string
	ContentHash string
	Model       string
	Vector      []float32
}

// KnowledgeRepository persists document embeddings so restarts do not
// re-embed unchanged documents. Documents themselves live in memory.
type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

// ContentHash fingerprints a document's content for change detection.
func ContentHash(doc *models.KnowledgeDocument) string {
	sum := sha256.Sum256([]byte(doc.Language + "\x00" + doc.Content))
	return hex.EncodeToString(sum[:])
}

func (r *KnowledgeRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS `+embeddingsTable+` (
	id           TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	category     TEXT NOT NULL,
	language     TEXT NOT NULL,
	model        TEXT NOT NULL,
	embedding    vector NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create %s table: %w", embeddingsTable, err)
	}
	return nil
}

// LoadEmbeddings returns every stored vector computed with model, keyed by document ID.
func (r *KnowledgeRepository) LoadEmbeddings(ctx context.Context, model string) (map[string]StoredEmbedding, error) {
	query := squirrel.Select("id", "content_hash", "model", "embedding").
		From(embeddingsTable).
		Where(squirrel.Eq{"model": model}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]StoredEmbedding)
	for rows.Next() {
		var (
			e   StoredEmbedding
			vec pgvector.Vector
		)
		if err := rows.Scan(&e.ID, &e.ContentHash, &e.Model, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		e.Vector = vec.Slice()
		out[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	r.logger.Info("Embeddings loaded", zap.Int("count", len(out)), zap.String("model", model))
	return out, nil
}

// UpsertEmbeddings stores the vectors of docs that carry one.
func (r *KnowledgeRepository) UpsertEmbeddings(ctx context.Context, model string, docs []models.KnowledgeDocument) error {
	now := time.Now()
	query := squirrel.Insert(embeddingsTable).
		Columns("id", "content_hash", "category", "language", "model", "embedding", "updated_at").
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			category     = EXCLUDED.category,
			language     = EXCLUDED.language,
			model        = EXCLUDED.model,
			embedding    = EXCLUDED.embedding,
			updated_at   = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	n := 0
	for i := range docs {
		d := &docs[i]
		if !d.HasEmbedding() {
			continue
		}
		query = query.Values(d.ID, ContentHash(d), d.Category, d.Language, model, pgvector.NewVector(d.Embedding), now)
		n++
	}
	if n == 0 {
		return nil
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to upsert embeddings: %w", err)
	}

	r.logger.Info("Embeddings stored", zap.Int("count", n), zap.String("model", model))
	return nil
}

// SimilarIDs ranks stored documents by cosine distance to vec using the
// pgvector <=> operator, restricted to the given languages.
func (r *KnowledgeRepository) SimilarIDs(ctx context.Context, vec []float32, languages []string, topK int) ([]string, error) {
	query := squirrel.Select("id").
		From(embeddingsTable).
		Where(squirrel.Eq{"language": languages}).
		OrderByClause("embedding <=> ?", pgvector.NewVector(vec)).
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
