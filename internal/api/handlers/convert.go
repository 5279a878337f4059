package handlers

import (
	"strings"
	"time"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/dto"
	"agri-advisor/internal/models"
)

func toQuoteResponses(quotes []models.MarketQuote, resolver *commodity.Resolver, lang string) []dto.QuoteResponse {
	out := make([]dto.QuoteResponse, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		out[i] = dto.QuoteResponse{
			Commodity:     q.Commodity,
			Name:          resolver.DisplayName(q.Commodity, lang),
			Price:         q.Price,
			Unit:          q.Unit,
			Market:        q.Market,
			District:      q.District,
			State:         q.State,
			Trend:         string(q.Trend),
			ChangePercent: q.ChangePercent,
			Date:          q.Date,
			Source:        q.Source,
			Synthetic:     q.IsSynthetic(),
		}
	}
	return out
}

func toSnippetResponses(docs []models.KnowledgeDocument) []dto.SnippetResponse {
	out := make([]dto.SnippetResponse, len(docs))
	for i, d := range docs {
		out[i] = dto.SnippetResponse{
			ID:          d.ID,
			Category:    d.Category,
			Language:    d.Language,
			Content:     d.Content,
			Source:      d.Metadata.Source,
			Reliability: d.Metadata.Reliability,
		}
	}
	return out
}

func toWeatherResponse(w models.WeatherSnapshot) dto.WeatherResponse {
	return dto.WeatherResponse{
		TemperatureC: w.TemperatureC,
		HumidityPct:  w.HumidityPct,
		RainfallMM:   w.RainfallMM,
		WindKph:      w.WindKph,
		Condition:    w.Condition,
		ObservedAt:   w.ObservedAt.Format(time.RFC3339),
		Source:       w.Source,
		Synthetic:    w.Synthetic,
	}
}

// splitList parses "a, b,,c" into [a b c].
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
