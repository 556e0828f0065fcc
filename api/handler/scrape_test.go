package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscan/shelfscan/cache"
	"github.com/shelfscan/shelfscan/config"
	"github.com/shelfscan/shelfscan/models"
	"github.com/shelfscan/shelfscan/normalize"
	"github.com/shelfscan/shelfscan/scrape"
)

type stubPrimary struct {
	cand  *models.RawCandidate
	err   error
	calls int
}

func (s *stubPrimary) Extract(ctx context.Context, url string) (*models.RawCandidate, error) {
	s.calls++
	return s.cand, s.err
}

type stubFetcher struct{}

func (stubFetcher) FetchHTML(ctx context.Context, url string) (string, int, error) {
	return "", 0, nil
}

func price(v float64) *float64 { return &v }

func newTestRouter(primary *stubPrimary) (*gin.Engine, *cache.Cache) {
	gin.SetMode(gin.TestMode)

	cfg := config.Load()
	cfg.Auth.Enabled = false
	cfg.Server.RequestTimeout = 5 * time.Second

	svc := scrape.NewService(primary, stubFetcher{}, nil, normalize.DefaultImageFilter(), 0.55)
	cc := cache.New(10)

	r := gin.New()
	r.POST("/api/v1/scrape", Scrape(svc, cc, cfg))
	return r, cc
}

func doScrape(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, models.ScrapeResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestScrapeHandler_Success(t *testing.T) {
	primary := &stubPrimary{cand: &models.RawCandidate{
		Title:    "Trailrunner GTX",
		Price:    price(129.95),
		Currency: "EUR",
		Images:   []string{"https://cdn.shop.nl/a.jpg"},
		Strategy: models.SourceJSONLD,
	}}
	r, _ := newTestRouter(primary)

	w, resp := doScrape(t, r, `{"url":"https://shop.nl/p/1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "Trailrunner GTX", resp.Result.Title)
	assert.Equal(t, models.SourceJSONLD, resp.Result.Source)
	assert.Equal(t, "https://shop.nl/p/1", resp.Result.URL)
}

func TestScrapeHandler_BadJSON(t *testing.T) {
	r, _ := newTestRouter(&stubPrimary{})

	w, resp := doScrape(t, r, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
}

func TestScrapeHandler_InvalidURL(t *testing.T) {
	primary := &stubPrimary{}
	r, _ := newTestRouter(primary)

	w, resp := doScrape(t, r, `{"url":"ftp://shop.nl/p/1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
	assert.Equal(t, 0, primary.calls, "invalid URL must not reach the extractor")
}

func TestScrapeHandler_UpstreamFailure(t *testing.T) {
	primary := &stubPrimary{err: &models.UpstreamStatusError{Status: 404}}
	r, _ := newTestRouter(primary)

	w, resp := doScrape(t, r, `{"url":"https://shop.nl/p/404"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, models.ErrCodeUpstream, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "HTTP error! status: 404")
}

func TestScrapeHandler_CacheHit(t *testing.T) {
	primary := &stubPrimary{cand: &models.RawCandidate{
		Title:    "Trailrunner GTX",
		Price:    price(129.95),
		Strategy: models.SourceJSONLD,
	}}
	r, _ := newTestRouter(primary)

	body := `{"url":"https://shop.nl/p/1","max_age_ms":60000}`

	_, first := doScrape(t, r, body)
	assert.Equal(t, "miss", first.CacheStatus)

	_, second := doScrape(t, r, body)
	assert.Equal(t, "hit", second.CacheStatus)
	assert.Equal(t, 1, primary.calls, "second request must be served from cache")
}

func TestScrapeHandler_NoCacheWithoutMaxAge(t *testing.T) {
	primary := &stubPrimary{cand: &models.RawCandidate{
		Title:    "Trailrunner GTX",
		Price:    price(129.95),
		Strategy: models.SourceJSONLD,
	}}
	r, _ := newTestRouter(primary)

	doScrape(t, r, `{"url":"https://shop.nl/p/1"}`)
	_, resp := doScrape(t, r, `{"url":"https://shop.nl/p/1"}`)
	assert.Empty(t, resp.CacheStatus)
	assert.Equal(t, 2, primary.calls)
}
