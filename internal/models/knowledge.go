package models

// KnowledgeMetadata carries source information that survives chunking.
// Reliability is informational only and does not influence ranking.
type KnowledgeMetadata struct {
	Reliability float64 `json:"reliability" yaml:"reliability"`
	Source      string  `json:"source,omitempty" yaml:"source"`
}

// KnowledgeDocument is one (topic, aspect, language) chunk of the knowledge
// base. The same advice in several languages is several documents sharing
// Category.
type KnowledgeDocument struct {
	ID        string            `json:"id" db:"id"`
	Content   string            `json:"content" db:"content"`
	Category  string            `json:"category" db:"category"`
	Language  string            `json:"language" db:"language"`
	Embedding []float32         `json:"-" db:"embedding"` // nil until an embedder has succeeded
	Metadata  KnowledgeMetadata `json:"metadata" db:"metadata"`
}

// HasEmbedding reports whether the document can take part in similarity ranking.
func (d *KnowledgeDocument) HasEmbedding() bool {
	return len(d.Embedding) > 0
}
