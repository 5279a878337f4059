package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"agri-advisor/internal/api/handlers"
	"agri-advisor/internal/cache"
	"agri-advisor/internal/commodity"
	"agri-advisor/internal/dto"
	"agri-advisor/internal/knowledge"
	"agri-advisor/internal/service"
	"agri-advisor/internal/synthetic"
	"agri-advisor/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestApp wires the real services with no live providers and no LLM, so
// every answer comes from the synthetic and rule-based paths.
func newTestApp(t *testing.T, jwtSecret string) *fiber.App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Server:   config.ServerConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 7 * time.Second},
		LLM:      config.LLMConfig{Timeout: time.Second},
		RAG:      config.RAGConfig{TopK: 3, DefaultLanguage: "en"},
		Advisory: config.AdvisoryConfig{QuoteLimit: 10, PromptQuotes: 5},
	}

	resolver := commodity.MustResolver()
	gen, err := synthetic.New()
	require.NoError(t, err)
	docs, err := knowledge.Documents()
	require.NoError(t, err)

	quoteCache := cache.NewQuoteCache(cache.NewMemoryStore(), 30*time.Minute, logger)
	market := service.NewMarketService(nil, gen, resolver, quoteCache, time.Second, cfg.Advisory.QuoteLimit, logger)
	weather := service.NewWeatherService(nil, time.Second, logger)
	rag := service.NewRAGService(knowledge.NewStore(docs), nil, &cfg.RAG, logger)
	advisory := service.NewAdvisoryService(rag, market, weather, nil, resolver, cfg, logger)

	return SetupRouter(
		handlers.NewAdviceHandler(advisory, resolver, logger),
		handlers.NewMarketHandler(market, resolver, logger),
		handlers.NewKnowledgeHandler(rag, logger),
		&cfg.Server,
		jwtSecret,
		logger,
	)
}

func do(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "")

	var health dto.HealthResponse
	code := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil), &health)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", health.Status)
	assert.Positive(t, health.Documents)
	assert.Zero(t, health.Embedded)
}

func TestAdvice_TomatoPriceInPune(t *testing.T) {
	app := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/advice",
		strings.NewReader(`{"query":"tomato price","city":"Pune","state":"Maharashtra"}`))
	req.Header.Set("Content-Type", "application/json")

	var advice dto.AdviceResponse
	code := do(t, app, req, &advice)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, service.SourceFallback, advice.Source)
	assert.Equal(t, []string{"tomato"}, advice.Commodities)
	require.Len(t, advice.Quotes, 1)
	assert.Equal(t, "tomato", advice.Quotes[0].Commodity)
	assert.True(t, advice.Quotes[0].Synthetic)
	assert.Positive(t, advice.Quotes[0].Price)
	assert.Contains(t, advice.Answer, "regional estimate")
	assert.True(t, advice.Weather.Synthetic)
	assert.NotEmpty(t, advice.ID)
}

func TestAdvice_EmptyQuery(t *testing.T) {
	app := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", strings.NewReader(`{"query":"  "}`))
	req.Header.Set("Content-Type", "application/json")

	assert.Equal(t, http.StatusBadRequest, do(t, app, req, nil))
}

func TestAdvice_InvalidBody(t *testing.T) {
	app := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", strings.NewReader(`{"query":`))
	req.Header.Set("Content-Type", "application/json")

	assert.Equal(t, http.StatusBadRequest, do(t, app, req, nil))
}

func TestQuotes_OnlyRequestedCommodities(t *testing.T) {
	app := newTestApp(t, "")
	q := url.Values{"city": {"Pune"}, "state": {"Maharashtra"}, "commodities": {"gehun, kanda"}}

	var resp dto.QuotesResponse
	code := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/quotes?"+q.Encode(), nil), &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"wheat", "onion"}, resp.Commodities)
	assert.True(t, resp.Synthetic)
	assert.Equal(t, "Pune, Maharashtra", resp.Location)

	got := map[string]bool{}
	for _, quote := range resp.Quotes {
		got[quote.Commodity] = true
	}
	assert.Equal(t, map[string]bool{"wheat": true, "onion": true}, got)
}

func TestQuotes_RejectsBadLimit(t *testing.T) {
	app := newTestApp(t, "")

	code := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/quotes?limit=1000", nil), nil)

	assert.Equal(t, http.StatusBadRequest, code)
}

func TestResolveCommodities(t *testing.T) {
	app := newTestApp(t, "")
	q := url.Values{"text": {"tamatar aur xyzxyz"}, "lang": {"hi"}}

	var resp dto.ResolveResponse
	code := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/commodities/resolve?"+q.Encode(), nil), &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"tomato", "xyzxyz"}, resp.Keys)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "passthrough", resp.Matches[1].Method)
	assert.NotEmpty(t, resp.Matches[0].Name)
}

func TestKnowledgeSearch_DetectsLanguage(t *testing.T) {
	app := newTestApp(t, "")
	q := url.Values{"q": {"pani kab dein"}}

	var resp dto.KnowledgeSearchResponse
	code := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/search?"+q.Encode(), nil), &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hi", resp.Language)
	assert.Equal(t, service.ModeKeyword, resp.Mode)
	assert.NotEmpty(t, resp.Results)
}

func TestJWTGuard(t *testing.T) {
	const secret = "test-secret"
	app := newTestApp(t, secret)
	path := "/api/v1/commodities/resolve?text=onion"

	assert.Equal(t, http.StatusUnauthorized, do(t, app, httptest.NewRequest(http.MethodGet, path, nil), nil))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "voice-ui",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, do(t, app, req, nil))

	// Health stays public.
	assert.Equal(t, http.StatusOK, do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil), nil))
}

func TestServerTimeoutsReachFiber(t *testing.T) {
	app := newTestApp(t, "")

	assert.Equal(t, 5*time.Second, app.Config().ReadTimeout)
	assert.Equal(t, 7*time.Second, app.Config().WriteTimeout)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, "")

	assert.Equal(t, http.StatusOK, do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil), nil))
}
