package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the product page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Locale hints at the page's language/region (e.g. "nl-NL").
	Locale string `json:"locale,omitempty"`

	// CurrencyHint is the ISO currency code to attach to a parsed price
	// (price strings are not mapped from their symbol).
	CurrencyHint string `json:"currency_hint,omitempty"`

	// AIEnabled requests the AI fallback for this call. It is OR-ed with the
	// process-wide flag, so it can enable but never disable the fallback.
	AIEnabled bool `json:"ai_enabled,omitempty"`

	// MaxAge enables the result cache: a cached result younger than this many
	// milliseconds is returned without scraping. 0 disables caching.
	MaxAge int `json:"max_age_ms,omitempty" binding:"omitempty,min=0"`
}
