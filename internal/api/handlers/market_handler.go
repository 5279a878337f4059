package handlers

import (
	"agri-advisor/internal/commodity"
	"agri-advisor/internal/dto"
	"agri-advisor/internal/models"
	"agri-advisor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MarketHandler struct {
	market   *service.MarketService
	resolver *commodity.Resolver
	logger   *zap.Logger
}

func NewMarketHandler(market *service.MarketService, resolver *commodity.Resolver, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		market:   market,
		resolver: resolver,
		logger:   logger,
	}
}

// GetQuotes godoc
// @Summary Market quotes
// @Description Aggregated mandi prices for a location. Crops come from the commodities list and from crop names found in q. Never empty: regional estimates replace missing live data.
// @Tags market
// @Produce json
// @Param city query string false "City"
// @Param state query string false "State"
// @Param commodities query string false "Comma-separated crop names in any supported language"
// @Param q query string false "Free text to extract crop names from"
// @Param lang query string false "Language for display names" default(en)
// @Param limit query int false "Maximum number of quotes" default(10)
// @Security Bearer
// @Success 200 {object} dto.QuotesResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/quotes [get]
func (h *MarketHandler) GetQuotes(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	names := splitList(c.Query("commodities"))
	if text := c.Query("q"); text != "" {
		for _, m := range h.resolver.ResolveDetailed(text) {
			if m.Known() {
				names = append(names, m.Key)
			}
		}
	}

	var keys []string
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key, _ := h.resolver.Canonical(name)
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	loc := models.Location{City: c.Query("city"), State: c.Query("state")}
	quotes := h.market.FetchQuotes(c.Context(), loc, keys, limit)

	synthetic := len(quotes) > 0
	for i := range quotes {
		if !quotes[i].IsSynthetic() {
			synthetic = false
			break
		}
	}
	if keys == nil {
		keys = []string{}
	}

	return c.JSON(dto.QuotesResponse{
		Location:    loc.Label(),
		Commodities: keys,
		Synthetic:   synthetic,
		Quotes:      toQuoteResponses(quotes, h.resolver, c.Query("lang", "en")),
	})
}

// ResolveCommodities godoc
// @Summary Resolve crop names
// @Description Maps spoken or typed crop names in any supported language to canonical commodity keys. Unknown words are returned unchanged.
// @Tags market
// @Produce json
// @Param text query string true "Free text"
// @Param lang query string false "Language for display names" default(en)
// @Success 200 {object} dto.ResolveResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/commodities/resolve [get]
func (h *MarketHandler) ResolveCommodities(c *fiber.Ctx) error {
	text := c.Query("text")
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}
	lang := c.Query("lang", "en")

	matches := h.resolver.ResolveDetailed(text)
	out := make([]dto.CommodityMatch, len(matches))
	for i, m := range matches {
		out[i] = dto.CommodityMatch{
			Token:    m.Token,
			Key:      m.Key,
			Method:   string(m.Method),
			Distance: m.Distance,
		}
		if m.Known() {
			out[i].Name = h.resolver.DisplayName(m.Key, lang)
		}
	}

	return c.JSON(dto.ResolveResponse{
		Text:    text,
		Keys:    h.resolver.Resolve(text),
		Matches: out,
	})
}
