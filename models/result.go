package models

// Extraction sources, in cascade order. Source reflects which stage supplied
// the dominant data of a result, not which stage ran last.
const (
	SourceJSONLD = "jsonld"
	SourceMeta   = "meta"
	SourceDOM    = "dom"
	SourceAI     = "ai"
)

// DefaultCurrency is used whenever no currency could be determined.
const DefaultCurrency = "EUR"

// RawCandidate is a partial product record produced by the primary or AI
// extractor. Any field may be absent. It lives only for the duration of one
// scrape call and is never persisted.
type RawCandidate struct {
	Title       string
	PriceRaw    string
	Price       *float64
	Currency    string
	Images      []string
	Brand       string
	Description string

	// Strategy is the cascade stage that supplied the candidate's dominant
	// data ("jsonld", "meta", "dom"). Optional; extractors that don't track
	// it leave it empty and the orchestrator labels the result "dom".
	Strategy string
}

// Empty reports whether the candidate carries none of the fields the
// orchestrator merges (title, price, images).
func (c RawCandidate) Empty() bool {
	return c.Title == "" && c.Price == nil && len(c.Images) == 0
}

// ScrapeResult is the normalized product record returned by a scrape.
type ScrapeResult struct {
	Title    string   `json:"title,omitempty"`
	PriceRaw string   `json:"price_raw,omitempty"`
	Price    *float64 `json:"price,omitempty"`

	// Currency is always populated; falls back to "EUR" when undetermined.
	Currency string `json:"currency"`

	// Images holds absolute, deduplicated, filtered URLs, capped at 12.
	Images []string `json:"images"`

	// Source is one of "jsonld", "meta", "dom", "ai".
	Source string `json:"source"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence"`

	// URL is the originally requested URL, not a redirect target.
	URL string `json:"url"`

	// Notes carries diagnostic annotations such as retry counts and
	// fallback reasons.
	Notes []string `json:"notes,omitempty"`
}
