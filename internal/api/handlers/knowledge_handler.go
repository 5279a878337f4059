package handlers

import (
	"agri-advisor/internal/dto"
	"agri-advisor/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type KnowledgeHandler struct {
	rag    *service.RAGService
	logger *zap.Logger
}

func NewKnowledgeHandler(rag *service.RAGService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		rag:    rag,
		logger: logger,
	}
}

// Search godoc
// @Summary Search the knowledge base
// @Description Ranks snippets by embedding similarity, or by keyword overlap when embeddings are unavailable.
// @Tags knowledge
// @Produce json
// @Param q query string true "Query"
// @Param lang query string false "Language; detected from the query when empty"
// @Param k query int false "Maximum number of snippets"
// @Security Bearer
// @Success 200 {object} dto.KnowledgeSearchResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/knowledge/search [get]
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}
	lang := service.DetectLanguage(query, c.Query("lang"))

	docs, mode := h.rag.RetrieveWithMode(c.Context(), query, lang, c.QueryInt("k", 0))

	return c.JSON(dto.KnowledgeSearchResponse{
		Query:    query,
		Language: lang,
		Mode:     mode,
		Results:  toSnippetResponses(docs),
	})
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *KnowledgeHandler) Health(c *fiber.Ctx) error {
	store := h.rag.Store()
	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Documents: store.Len(),
		Embedded:  store.Embedded(),
	})
}
