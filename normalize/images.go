package normalize

import (
	"net/url"
	"strings"
)

// ImageFilter cleans a list of raw image URLs. The extension and blocklist
// tables are data, not code, so deployments can extend them via config.
type ImageFilter struct {
	// Extensions lists the recognized image file extensions (with leading dot).
	Extensions []string

	// Blocklist lists substrings marking non-product imagery (icons, logos,
	// placeholders). Matched case-insensitively anywhere in the URL.
	Blocklist []string

	// MaxImages caps the output length.
	MaxImages int
}

// DefaultImageFilter returns the stock filter configuration.
func DefaultImageFilter() ImageFilter {
	return ImageFilter{
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp", ".avif"},
		Blocklist:  []string{"sprite", "logo", "icon", "banner", "placeholder", "avatar", "generic", "thumb"},
		MaxImages:  12,
	}
}

// Filter resolves raw image URLs to absolute form against pageURL,
// deduplicates preserving first-occurrence order, keeps only recognized image
// extensions, drops blocklisted URLs, and truncates to MaxImages.
func (f ImageFilter) Filter(raw []string, pageURL string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, img := range raw {
		if img == "" {
			continue
		}
		abs := resolveAgainstPage(img, pageURL)

		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}

		// Resolution can pass a relative URL through unchanged when the page
		// URL is malformed; only absolute URLs survive.
		if !strings.HasPrefix(abs, "http://") && !strings.HasPrefix(abs, "https://") {
			continue
		}
		if !f.hasImageExtension(abs) {
			continue
		}
		if f.blocked(abs) {
			continue
		}

		out = append(out, abs)
		if len(out) >= f.MaxImages {
			break
		}
	}
	return out
}

// resolveAgainstPage converts a possibly relative image URL to absolute form
// using the page's scheme and host. A malformed page URL silently yields the
// original string; downstream extension filtering then rejects it.
func resolveAgainstPage(img, pageURL string) string {
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return img
	}

	if strings.HasPrefix(img, "//") {
		return base.Scheme + ":" + img
	}
	if !strings.HasPrefix(img, "/") {
		img = "/" + img
	}
	return base.Scheme + "://" + base.Host + img
}

func (f ImageFilter) hasImageExtension(raw string) bool {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, ext := range f.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (f ImageFilter) blocked(raw string) bool {
	lower := strings.ToLower(raw)
	for _, pattern := range f.Blocklist {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
