package handlers

import (
	"errors"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/dto"
	"agri-advisor/internal/models"
	"agri-advisor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdviceHandler struct {
	advisory *service.AdvisoryService
	resolver *commodity.Resolver
	logger   *zap.Logger
}

func NewAdviceHandler(advisory *service.AdvisoryService, resolver *commodity.Resolver, logger *zap.Logger) *AdviceHandler {
	return &AdviceHandler{
		advisory: advisory,
		resolver: resolver,
		logger:   logger,
	}
}

// Advise godoc
// @Summary Answer a farmer's question
// @Description Retrieves knowledge, market quotes and weather for the question and asks the LLM for advice. Falls back to a rule-based answer when the LLM is unavailable.
// @Tags advice
// @Accept json
// @Produce json
// @Param request body dto.AdviceRequest true "Question"
// @Security Bearer
// @Success 200 {object} dto.AdviceResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/advice [post]
func (h *AdviceHandler) Advise(c *fiber.Ctx) error {
	var req dto.AdviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	advice, err := h.advisory.Advise(c.Context(), service.AdviceRequest{
		Query:       req.Query,
		Language:    req.Language,
		Location:    models.Location{City: req.City, State: req.State},
		Commodities: req.Commodities,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required",
			})
		}
		h.logger.Error("Advice failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate advice",
		})
	}

	commodities := advice.Commodities
	if commodities == nil {
		commodities = []string{}
	}

	return c.JSON(dto.AdviceResponse{
		ID:         advice.ID.String(),
		Answer:     advice.Answer,
		Language:   advice.Language,
		Confidence: advice.Confidence,
		Source:     advice.Source,
		Season: dto.SeasonResponse{
			Name:   advice.Season.Name,
			Months: advice.Season.Months,
			Crops:  advice.Season.Crops,
		},
		Commodities: commodities,
		Quotes:      toQuoteResponses(advice.Quotes, h.resolver, advice.Language),
		Weather:     toWeatherResponse(advice.Weather),
		Snippets:    toSnippetResponses(advice.Snippets),
	})
}
