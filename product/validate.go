package product

import (
	"net/url"
	"strings"

	"github.com/shelfscan/shelfscan/models"
)

// ValidateURL rejects URLs the scraper will not fetch: empty strings,
// non-absolute URLs and schemes other than http/https.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "url is not parseable", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "url scheme must be http or https", nil)
	}
	if u.Host == "" {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "url has no host", nil)
	}
	return nil
}
