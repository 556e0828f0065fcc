package scrape

import (
	"context"
	"log/slog"

	"github.com/shelfscan/shelfscan/llm"
	"github.com/shelfscan/shelfscan/models"
)

// ContentPreparer reduces raw HTML to compact LLM input. Implemented by
// content.Preparer.
type ContentPreparer interface {
	Prepare(rawHTML, pageURL string) (string, bool)
}

// AIFallback adapts the LLM client to the orchestrator's AIExtractor
// interface. It degrades silently: a disabled client, empty input, provider
// error or malformed answer all produce an empty candidate, never an error.
type AIFallback struct {
	client   *llm.Client
	preparer ContentPreparer
	inputCap int
}

// NewAIFallback builds the fallback extractor. preparer may be nil to send
// raw HTML; inputCap truncates the input character count before sending.
func NewAIFallback(client *llm.Client, preparer ContentPreparer, inputCap int) *AIFallback {
	return &AIFallback{client: client, preparer: preparer, inputCap: inputCap}
}

// Extract runs the language model over the page HTML.
func (f *AIFallback) Extract(ctx context.Context, html, pageURL string) models.RawCandidate {
	if !f.client.Enabled() || html == "" {
		return models.RawCandidate{}
	}

	input := html
	if f.preparer != nil {
		input, _ = f.preparer.Prepare(html, pageURL)
	}
	if f.inputCap > 0 && len(input) > f.inputCap {
		input = input[:f.inputCap]
	}

	raw, usage, err := f.client.ExtractProduct(ctx, input)
	if err != nil {
		slog.Warn("ai fallback: extraction failed", "url", pageURL, "error", err)
		return models.RawCandidate{}
	}
	if usage != nil {
		slog.Debug("ai fallback: extraction complete", "url", pageURL, "totalTokens", usage.TotalTokens)
	}

	return llm.CandidateFromJSON(raw)
}
