package dto

type SnippetResponse struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	Language    string  `json:"language"`
	Content     string  `json:"content"`
	Source      string  `json:"source,omitempty"`
	Reliability float64 `json:"reliability"`
}

type KnowledgeSearchResponse struct {
	Query    string            `json:"query"`
	Language string            `json:"language"`
	Mode     string            `json:"mode"`
	Results  []SnippetResponse `json:"results"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Embedded  int    `json:"embedded"`
}
