package knowledge

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
)

// Store is an immutable document set. Attaching embeddings returns a new Store,
// so readers holding the old one are never affected.
type Store struct {
	docs     []models.KnowledgeDocument
	embedded int
}

func NewStore(docs []models.KnowledgeDocument) *Store {
	s := &Store{docs: make([]models.KnowledgeDocument, len(docs))}
	copy(s.docs, docs)
	for i := range s.docs {
		if s.docs[i].HasEmbedding() {
			s.embedded++
		}
	}
	return s
}

func (s *Store) Len() int { return len(s.docs) }

// Embedded is the number of documents with a vector.
func (s *Store) Embedded() int { return s.embedded }

// Documents returns a copy of the document set.
func (s *Store) Documents() []models.KnowledgeDocument {
	out := make([]models.KnowledgeDocument, len(s.docs))
	copy(out, s.docs)
	return out
}

// WithEmbeddings returns a copy of the store with vectors attached by document ID.
// Documents missing from vectors keep whatever embedding they already had.
func (s *Store) WithEmbeddings(vectors map[string][]float32) *Store {
	docs := make([]models.KnowledgeDocument, len(s.docs))
	copy(docs, s.docs)
	for i := range docs {
		if v, ok := vectors[docs[i].ID]; ok && len(v) > 0 {
			docs[i].Embedding = v
		}
	}
	return NewStore(docs)
}

type scored struct {
	idx   int
	score float64
}

// RankBySimilarity returns the top k documents by cosine similarity to query,
// considering only documents in lang or defaultLang that carry an embedding.
func (s *Store) RankBySimilarity(query []float32, lang, defaultLang string, k int) []models.KnowledgeDocument {
	if len(query) == 0 || k <= 0 {
		return nil
	}
	var hits []scored
	for i := range s.docs {
		d := &s.docs[i]
		if !eligible(d, lang, defaultLang) || !d.HasEmbedding() {
			continue
		}
		score := CosineSimilarity(query, d.Embedding)
		if math.IsNaN(score) {
			continue
		}
		hits = append(hits, scored{idx: i, score: score})
	}
	return s.top(hits, k)
}

// RankByKeyword scores eligible documents by the share of query tokens longer
// than two runes that occur in their content. Zero scores are dropped.
func (s *Store) RankByKeyword(query, lang, defaultLang string, k int) []models.KnowledgeDocument {
	if k <= 0 {
		return nil
	}
	tokens := keywordTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var hits []scored
	for i := range s.docs {
		d := &s.docs[i]
		if !eligible(d, lang, defaultLang) {
			continue
		}
		content := commodity.Normalize(d.Content)
		matched := 0
		for _, t := range tokens {
			if strings.Contains(content, t) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, scored{idx: i, score: float64(matched) / float64(len(tokens))})
	}
	return s.top(hits, k)
}

// top sorts by score descending, ties broken by document order.
func (s *Store) top(hits []scored, k int) []models.KnowledgeDocument {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]models.KnowledgeDocument, 0, len(hits))
	for _, h := range hits {
		out = append(out, s.docs[h.idx])
	}
	return out
}

func eligible(d *models.KnowledgeDocument, lang, defaultLang string) bool {
	return d.Language == lang || d.Language == defaultLang
}

func keywordTokens(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(commodity.Normalize(query)) {
		if utf8.RuneCountInString(t) > 2 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// CosineSimilarity is dot(a,b)/(|a||b|); mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
