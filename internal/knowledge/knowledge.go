// Package knowledge holds the agronomy knowledge base and the pure functions
// that turn it into retrievable documents.
package knowledge

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"agri-advisor/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultBase []byte

type Base struct {
	Topics []Topic `yaml:"topics"`
}

type Topic struct {
	Key         string   `yaml:"key"`
	Source      string   `yaml:"source"`
	Reliability float64  `yaml:"reliability"`
	Aspects     []Aspect `yaml:"aspects"`
}

type Aspect struct {
	Name string            `yaml:"name"`
	Text map[string]string `yaml:"text"` // language tag -> advice
}

// Load parses the embedded knowledge base.
func Load() (*Base, error) {
	return Parse(defaultBase)
}

func Parse(data []byte) (*Base, error) {
	var base Base
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	for _, t := range base.Topics {
		if t.Key == "" {
			return nil, fmt.Errorf("knowledge topic without key")
		}
		if t.Reliability < 0 || t.Reliability > 1 {
			return nil, fmt.Errorf("topic %q: reliability %v outside [0,1]", t.Key, t.Reliability)
		}
	}
	return &base, nil
}

// Chunk flattens the base into one document per (topic, aspect, language).
// Output order is deterministic: topics and aspects in file order, languages
// sorted. Empty texts are skipped. IDs must be unique.
func Chunk(base *Base) ([]models.KnowledgeDocument, error) {
	var docs []models.KnowledgeDocument
	seen := make(map[string]struct{})

	for _, topic := range base.Topics {
		for _, aspect := range topic.Aspects {
			category := topic.Key + "." + aspect.Name

			langs := make([]string, 0, len(aspect.Text))
			for lang := range aspect.Text {
				langs = append(langs, lang)
			}
			sort.Strings(langs)

			for _, lang := range langs {
				content := strings.TrimSpace(aspect.Text[lang])
				if content == "" {
					continue
				}
				id := category + "." + lang
				if _, dup := seen[id]; dup {
					return nil, fmt.Errorf("duplicate knowledge document %q", id)
				}
				seen[id] = struct{}{}

				docs = append(docs, models.KnowledgeDocument{
					ID:       id,
					Content:  content,
					Category: category,
					Language: lang,
					Metadata: models.KnowledgeMetadata{
						Reliability: topic.Reliability,
						Source:      topic.Source,
					},
				})
			}
		}
	}

	return docs, nil
}

// Documents loads and chunks the embedded knowledge base.
func Documents() ([]models.KnowledgeDocument, error) {
	base, err := Load()
	if err != nil {
		return nil, err
	}
	return Chunk(base)
}
