package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
)

// ENAM reads trade summaries from an eNAM-style national market feed. Prices
// are numeric and the previous session's modal price gives the trend.
type ENAM struct {
	normalizer
	baseURL string
	token   string
	client  *http.Client
}

func NewENAM(baseURL, token string, client *http.Client, resolver *commodity.Resolver) *ENAM {
	return &ENAM{
		normalizer: newNormalizer(resolver),
		baseURL:    baseURL,
		token:      token,
		client:     client,
	}
}

func (p *ENAM) Name() string  { return "enam" }
func (p *ENAM) Priority() int { return 3 }

func (p *ENAM) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if p.baseURL == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("date", req.Day.Format("2006-01-02"))
	if req.Commodity != "" {
		q.Set("commodity", strings.ToUpper(req.Commodity))
	}
	if req.Location.State != "" {
		q.Set("state", strings.ToUpper(req.Location.State))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create enam request: %w", err)
	}
	if p.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.token)
	}
	return doRequest(p.client, p.Name(), httpReq)
}

type enamResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		CommodityName  string  `json:"commodity_name"`
		APMC           string  `json:"apmc"`
		District       string  `json:"district"`
		StateName      string  `json:"state_name"`
		ModalPrice     float64 `json:"modal_price"`
		PrevModalPrice float64 `json:"prev_modal_price"`
		PriceUnit      string  `json:"price_unit"`
		CreatedAt      string  `json:"created_at"`
	} `json:"rows"`
}

func (p *ENAM) Parse(raw []byte) ([]models.MarketQuote, error) {
	var resp enamResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode enam response: %w", err)
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "ok") && !strings.EqualFold(resp.Status, "success") {
		return nil, fmt.Errorf("enam status %q", resp.Status)
	}

	day := p.now()
	quotes := make([]models.MarketQuote, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		trend, change := TrendFromPrevious(r.PrevModalPrice, r.ModalPrice)
		q, ok := p.quote(models.MarketQuote{
			Commodity:     r.CommodityName,
			Price:         r.ModalPrice,
			Unit:          NormalizeUnit(r.PriceUnit),
			Market:        titleCase(r.APMC),
			District:      titleCase(r.District),
			State:         titleCase(r.StateName),
			Trend:         trend,
			ChangePercent: change,
			Date:          NormalizeDate(r.CreatedAt, day),
			Source:        p.Name(),
		})
		if ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// titleCase turns the feed's upper-case labels ("PUNE APMC") into "Pune Apmc".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
