package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shelfscan/shelfscan/fetcher"
	"github.com/shelfscan/shelfscan/models"
)

// maxBody caps product page reads at 10 MB.
const maxBody = 10 << 20

// Renderer renders a client-side page to HTML. Satisfied by browser.Renderer.
type Renderer interface {
	RenderHTML(ctx context.Context, pageURL string) (string, error)
}

// Extractor fetches a product page once and runs the structured-data cascade
// over it: JSON-LD first, then meta tags, then DOM heuristics.
type Extractor struct {
	client   *http.Client
	renderer Renderer
}

// NewExtractor creates the primary extractor. renderer may be nil; when set,
// pages that look like empty application shells are re-rendered in the
// browser before parsing.
func NewExtractor(renderer Renderer) *Extractor {
	return &Extractor{
		client:   fetcher.NewClient(),
		renderer: renderer,
	}
}

// Extract fetches the URL and parses a product candidate out of the document.
// Non-2xx responses fail with an UpstreamStatusError carrying the status
// code; callers inspect it to decide whether a fallback is worthwhile.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*models.RawCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("product: build request: %w", err)
	}
	req.Header.Set("User-Agent", fetcher.DesktopUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "nl-NL,nl;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("product: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.UpstreamStatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("product: read body: %w", err)
	}
	doc := string(body)

	if e.renderer != nil && fetcher.LooksLikeShell(doc) {
		slog.Debug("product: page looks like an application shell, rendering", "url", pageURL)
		rendered, renderErr := e.renderer.RenderHTML(ctx, pageURL)
		if renderErr != nil {
			slog.Warn("product: render failed, parsing static document", "url", pageURL, "error", renderErr)
		} else {
			doc = rendered
		}
	}

	return Parse(doc, pageURL)
}
