package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
)

// MandiBoard reads a state agricultural marketing board's daily rate feed.
// Boards publish free-text rates ("₹2,450/qtl"), local commodity names and
// arrow or sign trends, so every field goes through normalization.
type MandiBoard struct {
	normalizer
	baseURL string
	client  *http.Client
}

func NewMandiBoard(baseURL string, client *http.Client, resolver *commodity.Resolver) *MandiBoard {
	return &MandiBoard{
		normalizer: newNormalizer(resolver),
		baseURL:    baseURL,
		client:     client,
	}
}

func (p *MandiBoard) Name() string  { return "mandi_board" }
func (p *MandiBoard) Priority() int { return 2 }

func (p *MandiBoard) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if p.baseURL == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	if req.Commodity != "" {
		q.Set("commodity", req.Commodity)
	}
	if req.Location.City != "" {
		q.Set("city", req.Location.City)
	}
	if req.Location.State != "" {
		q.Set("state", req.Location.State)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	target := p.baseURL
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mandi board request: %w", err)
	}
	return doRequest(p.client, p.Name(), httpReq)
}

type mandiBoardResponse struct {
	Data []struct {
		Commodity string          `json:"commodity"`
		Rate      json.RawMessage `json:"rate"`
		Unit      string          `json:"unit"`
		Market    string          `json:"market"`
		District  string          `json:"district"`
		State     string          `json:"state"`
		Trend     string          `json:"trend"`
		Change    json.RawMessage `json:"change"`
		Date      string          `json:"date"`
	} `json:"data"`
}

func (p *MandiBoard) Parse(raw []byte) ([]models.MarketQuote, error) {
	var resp mandiBoardResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode mandi board response: %w", err)
	}

	day := p.now()
	quotes := make([]models.MarketQuote, 0, len(resp.Data))
	for _, r := range resp.Data {
		q, ok := p.quote(models.MarketQuote{
			Commodity:     r.Commodity,
			Price:         ParsePrice(rawString(r.Rate)),
			Unit:          NormalizeUnit(r.Unit),
			Market:        r.Market,
			District:      r.District,
			State:         r.State,
			Trend:         models.ParseTrend(r.Trend),
			ChangePercent: ParsePrice(rawString(r.Change)),
			Date:          NormalizeDate(r.Date, day),
			Source:        p.Name(),
		})
		if ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// rawString reads a JSON value that may be a number or a string.
func rawString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}
