package dto

type QuoteResponse struct {
	Commodity     string  `json:"commodity"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Unit          string  `json:"unit"`
	Market        string  `json:"market"`
	District      string  `json:"district"`
	State         string  `json:"state"`
	Trend         string  `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
	Date          string  `json:"date"`
	Source        string  `json:"source"`
	Synthetic     bool    `json:"synthetic"`
}

type QuotesResponse struct {
	Location    string          `json:"location"`
	Commodities []string        `json:"commodities"`
	Synthetic   bool            `json:"synthetic"`
	Quotes      []QuoteResponse `json:"quotes"`
}

type CommodityMatch struct {
	Token    string `json:"token"`
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	Method   string `json:"method"`
	Distance int    `json:"distance,omitempty"`
}

type ResolveResponse struct {
	Text    string           `json:"text"`
	Keys    []string         `json:"keys"`
	Matches []CommodityMatch `json:"matches"`
}
