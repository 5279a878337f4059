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

// agmarknetLabels are the commodity names the data.gov.in daily price dataset
// uses where they differ from the English display name.
var agmarknetLabels = map[string]string{
	"rice":      "Paddy(Dhan)(Common)",
	"chana":     "Bengal Gram(Gram)(Whole)",
	"tur":       "Arhar (Tur/Red Gram)(Whole)",
	"moong":     "Green Gram (Moong)(Whole)",
	"urad":      "Black Gram (Urd Beans)(Whole)",
	"okra":      "Bhindi(Ladies Finger)",
	"chilli":    "Green Chilli",
	"jowar":     "Jowar(Sorghum)",
	"bajra":     "Bajra(Pearl Millet/Cumbu)",
	"mustard":   "Mustard",
	"groundnut": "Groundnut",
	"peas":      "Peas Wet",
	"grapes":    "Grapes",
}

// Agmarknet reads the "current daily price of various commodities" dataset
// published on data.gov.in.
type Agmarknet struct {
	normalizer
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAgmarknet(baseURL, apiKey string, client *http.Client, resolver *commodity.Resolver) *Agmarknet {
	return &Agmarknet{
		normalizer: newNormalizer(resolver),
		baseURL:    baseURL,
		apiKey:     apiKey,
		client:     client,
	}
}

func (p *Agmarknet) Name() string  { return "agmarknet" }
func (p *Agmarknet) Priority() int { return 1 }

func (p *Agmarknet) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if p.baseURL == "" || p.apiKey == "" {
		return nil, ErrNotConfigured
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("api-key", p.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	if state := strings.TrimSpace(req.Location.State); state != "" {
		q.Set("filters[state]", state)
	}
	if city := strings.TrimSpace(req.Location.City); city != "" {
		q.Set("filters[district]", city)
	}
	if req.Commodity != "" {
		q.Set("filters[commodity]", p.label(req.Commodity))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create agmarknet request: %w", err)
	}
	return doRequest(p.client, p.Name(), httpReq)
}

func (p *Agmarknet) label(key string) string {
	if l, ok := agmarknetLabels[key]; ok {
		return l
	}
	return p.resolver.DisplayName(key, "en")
}

type agmarknetResponse struct {
	Records []struct {
		State       string `json:"state"`
		District    string `json:"district"`
		Market      string `json:"market"`
		Commodity   string `json:"commodity"`
		Variety     string `json:"variety"`
		ArrivalDate string `json:"arrival_date"`
		MinPrice    string `json:"min_price"`
		MaxPrice    string `json:"max_price"`
		ModalPrice  string `json:"modal_price"`
	} `json:"records"`
}

func (p *Agmarknet) Parse(raw []byte) ([]models.MarketQuote, error) {
	var resp agmarknetResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode agmarknet response: %w", err)
	}

	day := p.now()
	quotes := make([]models.MarketQuote, 0, len(resp.Records))
	for _, r := range resp.Records {
		modal := ParsePrice(r.ModalPrice)
		trend, change := TrendFromRange(ParsePrice(r.MinPrice), ParsePrice(r.MaxPrice), modal)

		q, ok := p.quote(models.MarketQuote{
			Commodity:     r.Commodity,
			Price:         modal,
			Unit:          "quintal",
			Market:        r.Market,
			District:      r.District,
			State:         r.State,
			Trend:         trend,
			ChangePercent: change,
			Date:          NormalizeDate(r.ArrivalDate, day),
			Source:        p.Name(),
		})
		if ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
