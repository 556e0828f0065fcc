package scrape

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfscan/shelfscan/models"
	"github.com/shelfscan/shelfscan/normalize"
	"github.com/shelfscan/shelfscan/product"
)

// PrimaryExtractor produces a product candidate from a URL via structured
// data and DOM heuristics. Implemented by product.Extractor.
type PrimaryExtractor interface {
	Extract(ctx context.Context, url string) (*models.RawCandidate, error)
}

// HTMLFetcher retrieves raw page HTML for the AI fallback, reporting how many
// retries were needed. Implemented by fetcher.Fetcher.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, int, error)
}

// AIExtractor extracts a product candidate from page HTML using a language
// model. It never fails: any problem yields an empty candidate.
type AIExtractor interface {
	Extract(ctx context.Context, html, pageURL string) models.RawCandidate
}

// Options carries per-request scrape parameters.
type Options struct {
	Locale       string
	CurrencyHint string

	// AIEnabled allows the AI fallback for this request. Callers OR the
	// request flag with the process-level configuration flag.
	AIEnabled bool
}

// Service orchestrates a scrape: validate, extract, normalize, score and,
// when confidence is too low or the page is blocked, escalate to the AI
// extractor.
type Service struct {
	primary PrimaryExtractor
	fetcher HTMLFetcher
	ai      AIExtractor
	filter  normalize.ImageFilter

	// confidenceThreshold is the score below which a successful extraction
	// still escalates to AI.
	confidenceThreshold float64
}

// NewService wires the orchestrator. ai may be nil, which disables
// escalation regardless of request flags.
func NewService(primary PrimaryExtractor, fetcher HTMLFetcher, ai AIExtractor, filter normalize.ImageFilter, confidenceThreshold float64) *Service {
	return &Service{
		primary:             primary,
		fetcher:             fetcher,
		ai:                  ai,
		filter:              filter,
		confidenceThreshold: confidenceThreshold,
	}
}

// blockedStatusEligible reports whether a primary extraction failure is worth
// an AI rescue attempt. Anti-bot walls (403), rate limiting (429) and
// temporary unavailability (503) often still serve usable HTML; definitive
// answers like 404 or 410 do not, so those errors propagate unchanged.
// An error with no recoverable status counts as unknown and stays eligible.
func blockedStatusEligible(err error) (status int, eligible bool) {
	status, ok := models.StatusFromError(err)
	if !ok {
		return 0, true
	}
	switch status {
	case 403, 429, 503:
		return status, true
	}
	return status, false
}

// Scrape runs the full pipeline for one product URL.
//
// The URL is validated before anything touches the network; an invalid URL
// always comes back as an error, never as a rescued result.
// On primary success the candidate is normalized and scored; a low score or a
// missing price escalates to the AI extractor, whose fields are merged over
// the originals. On primary failure the AI extractor is the only remaining
// path, and only for blocked-looking errors; everything else is returned to
// the caller untouched.
func (s *Service) Scrape(ctx context.Context, url string, opts Options) (*models.ScrapeResult, error) {
	if err := product.ValidateURL(url); err != nil {
		return nil, err
	}

	candidate, err := s.primary.Extract(ctx, url)
	if err != nil {
		return s.rescueFromError(ctx, url, opts, err)
	}
	if candidate == nil {
		candidate = &models.RawCandidate{}
	}

	result := s.buildResult(url, *candidate, opts)

	if opts.AIEnabled && s.ai != nil && (result.Confidence < s.confidenceThreshold || result.Price == nil) {
		// The note records what triggered the escalation, so it stays even
		// when the AI goes on to supply a price.
		if result.Price == nil {
			result.Notes = append(result.Notes, "no_price")
		}
		s.escalate(ctx, url, opts, result)
	}

	return result, nil
}

// buildResult normalizes a candidate into a scored result.
func (s *Service) buildResult(url string, c models.RawCandidate, opts Options) *models.ScrapeResult {
	price := c.Price
	if price == nil && c.PriceRaw != "" {
		price, _ = normalize.ParsePrice(c.PriceRaw, opts.CurrencyHint)
	}

	currency := c.Currency
	if currency == "" {
		currency = opts.CurrencyHint
	}
	if currency == "" {
		currency = models.DefaultCurrency
	}

	images := s.filter.Filter(c.Images, url)

	source := c.Strategy
	if source == "" {
		source = models.SourceDOM
	}

	return &models.ScrapeResult{
		Title:      c.Title,
		PriceRaw:   c.PriceRaw,
		Price:      price,
		Currency:   currency,
		Images:     images,
		Source:     source,
		Confidence: normalize.Confidence(c.Title, price, images),
		URL:        url,
	}
}

// escalate fetches the page HTML and merges the AI candidate over the
// provisional result. The AI can only improve the result: merged fields
// override, the confidence never drops, and the source flips to "ai" only
// when the AI actually contributed product data.
func (s *Service) escalate(ctx context.Context, url string, opts Options, result *models.ScrapeResult) {
	html, retries, fetchErr := s.fetcher.FetchHTML(ctx, url)
	if fetchErr != nil {
		slog.Warn("scrape: fallback fetch failed, running AI on empty input", "url", url, "error", fetchErr)
		html = ""
	}
	if retries > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("retries:%d", retries))
	}

	aiCand := s.ai.Extract(ctx, html, url)
	s.mergeAI(url, aiCand, opts, result)
}

// mergeAI overlays AI-extracted fields onto the result.
func (s *Service) mergeAI(url string, c models.RawCandidate, opts Options, result *models.ScrapeResult) {
	contributed := false

	if c.Title != "" {
		result.Title = c.Title
		contributed = true
	}

	price := c.Price
	if price == nil && c.PriceRaw != "" {
		price, _ = normalize.ParsePrice(c.PriceRaw, opts.CurrencyHint)
	}
	if price != nil {
		result.Price = price
		if c.PriceRaw != "" {
			result.PriceRaw = c.PriceRaw
		}
		contributed = true
	}

	if c.Currency != "" {
		result.Currency = c.Currency
	}

	// AI images replace the originals only when something survives the same
	// filter; a worse AI answer never erases a usable image set.
	if len(c.Images) > 0 {
		if filtered := s.filter.Filter(c.Images, url); len(filtered) > 0 {
			result.Images = filtered
			contributed = true
		}
	}

	if contributed {
		result.Source = models.SourceAI
	}

	if rescored := normalize.Confidence(result.Title, result.Price, result.Images); rescored > result.Confidence {
		result.Confidence = rescored
	}
}

// rescueFromError handles a failed primary extraction. If AI is enabled and
// the failure looks like a block rather than a definitive answer, the AI
// extractor gets one attempt on a freshly fetched copy of the page.
// Otherwise the original error is returned unchanged.
func (s *Service) rescueFromError(ctx context.Context, url string, opts Options, primaryErr error) (*models.ScrapeResult, error) {
	if !opts.AIEnabled || s.ai == nil {
		return nil, primaryErr
	}
	status, eligible := blockedStatusEligible(primaryErr)
	if !eligible {
		return nil, primaryErr
	}

	blockedNote := "blocked_status:unknown"
	if status != 0 {
		blockedNote = fmt.Sprintf("blocked_status:%d", status)
	}
	slog.Info("scrape: primary extraction blocked, attempting AI rescue",
		"url", url, "status", status, "error", primaryErr)

	html, retries, fetchErr := s.fetcher.FetchHTML(ctx, url)
	if fetchErr != nil {
		slog.Warn("scrape: rescue fetch failed, running AI on empty input", "url", url, "error", fetchErr)
		html = ""
	}

	aiCand := s.ai.Extract(ctx, html, url)
	result := s.buildResult(url, aiCand, opts)

	// An empty rescue keeps the default "dom" label; "ai" is reserved for
	// results the model actually contributed to.
	result.Source = models.SourceDOM
	if !aiCand.Empty() {
		result.Source = models.SourceAI
	}

	// A rescue that produced anything at all is worth a minimum score; the
	// caller can still see the low confidence and the notes explain why.
	if result.Confidence < 0.3 {
		result.Confidence = 0.3
	}

	result.Notes = append(result.Notes, "ai_on_error:true", blockedNote)
	if retries > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("retries:%d", retries))
	}
	return result, nil
}
