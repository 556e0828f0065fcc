package product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shelfscan/shelfscan/models"
	"github.com/shelfscan/shelfscan/normalize"
)

// Parse runs the extraction cascade over a fetched document. Strategies are
// tried in order of trustworthiness: JSON-LD structured data, Open Graph and
// product meta tags, then plain DOM heuristics. Later strategies only fill
// fields the earlier ones left empty.
func Parse(doc, pageURL string) (*models.RawCandidate, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("product: parse document: %w", err)
	}

	candidate := &models.RawCandidate{}

	merge(candidate, parseJSONLD(d), models.SourceJSONLD)
	merge(candidate, parseMeta(d), models.SourceMeta)
	merge(candidate, parseDOM(d), models.SourceDOM)

	if candidate.PriceRaw != "" && candidate.Price == nil {
		candidate.Price, _ = normalize.ParsePrice(candidate.PriceRaw, "")
	}
	return candidate, nil
}

// merge copies fields from src that dst does not have yet. The first strategy
// that contributes anything stamps the candidate's Strategy.
func merge(dst, src *models.RawCandidate, strategy string) {
	if src == nil {
		return
	}
	contributed := false
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
		contributed = true
	}
	if dst.PriceRaw == "" && src.PriceRaw != "" {
		dst.PriceRaw = src.PriceRaw
		dst.Price = src.Price
		contributed = true
	}
	if dst.Currency == "" && src.Currency != "" {
		dst.Currency = src.Currency
	}
	if len(dst.Images) == 0 && len(src.Images) > 0 {
		dst.Images = src.Images
		contributed = true
	}
	if dst.Brand == "" {
		dst.Brand = src.Brand
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if contributed && dst.Strategy == "" {
		dst.Strategy = strategy
	}
}

// ── JSON-LD ─────────────────────────────────────────────────────────

func parseJSONLD(d *goquery.Document) *models.RawCandidate {
	var candidate *models.RawCandidate
	d.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if product := findProductNode(payload); product != nil {
			candidate = candidateFromProduct(product)
			return false
		}
		return true
	})
	return candidate
}

// findProductNode walks a decoded JSON-LD payload looking for an object with
// @type Product. Handles top-level arrays and @graph containers.
func findProductNode(payload any) map[string]any {
	switch node := payload.(type) {
	case map[string]any:
		if isProductType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findProductNode(graph)
		}
	case []any:
		for _, item := range node {
			if product := findProductNode(item); product != nil {
				return product
			}
		}
	}
	return nil
}

func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Product"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func candidateFromProduct(node map[string]any) *models.RawCandidate {
	c := &models.RawCandidate{}
	c.Title, _ = node["name"].(string)
	c.Description, _ = node["description"].(string)
	c.Images = jsonldImages(node["image"])

	if brand, ok := node["brand"].(map[string]any); ok {
		c.Brand, _ = brand["name"].(string)
	} else if brand, ok := node["brand"].(string); ok {
		c.Brand = brand
	}

	offer := firstOffer(node["offers"])
	if offer != nil {
		switch price := offer["price"].(type) {
		case float64:
			c.Price = &price
			c.PriceRaw = strconv.FormatFloat(price, 'f', -1, 64)
		case string:
			c.PriceRaw = price
			c.Price, _ = normalize.ParsePrice(price, "")
		}
		c.Currency, _ = offer["priceCurrency"].(string)
	}
	return c
}

func firstOffer(v any) map[string]any {
	switch offers := v.(type) {
	case map[string]any:
		return offers
	case []any:
		for _, item := range offers {
			if offer, ok := item.(map[string]any); ok {
				return offer
			}
		}
	}
	return nil
}

func jsonldImages(v any) []string {
	switch img := v.(type) {
	case string:
		return []string{img}
	case map[string]any:
		if u, ok := img["url"].(string); ok {
			return []string{u}
		}
	case []any:
		var out []string
		for _, item := range img {
			switch i := item.(type) {
			case string:
				out = append(out, i)
			case map[string]any:
				if u, ok := i["url"].(string); ok {
					out = append(out, u)
				}
			}
		}
		return out
	}
	return nil
}

// ── Meta tags ───────────────────────────────────────────────────────

func parseMeta(d *goquery.Document) *models.RawCandidate {
	c := &models.RawCandidate{}
	c.Title = metaContent(d, `meta[property="og:title"]`)
	c.Description = metaContent(d, `meta[property="og:description"]`)
	c.Brand = metaContent(d, `meta[property="product:brand"]`)

	d.Find(`meta[property="og:image"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok && content != "" {
			c.Images = append(c.Images, content)
		}
	})

	for _, sel := range []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
		`meta[itemprop="price"]`,
	} {
		if amount := metaContent(d, sel); amount != "" {
			c.PriceRaw = amount
			c.Price, _ = normalize.ParsePrice(amount, "")
			break
		}
	}
	for _, sel := range []string{
		`meta[property="product:price:currency"]`,
		`meta[property="og:price:currency"]`,
		`meta[itemprop="priceCurrency"]`,
	} {
		if cur := metaContent(d, sel); cur != "" {
			c.Currency = strings.ToUpper(cur)
			break
		}
	}
	return c
}

func metaContent(d *goquery.Document, selector string) string {
	content, _ := d.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// ── DOM heuristics ──────────────────────────────────────────────────

var domPriceSelectors = []string{
	`[itemprop="price"]`,
	`.product-price`,
	`.price__current`,
	`.price-current`,
	`.price`,
	`[data-price]`,
	`[class*="price"]`,
}

func parseDOM(d *goquery.Document) *models.RawCandidate {
	c := &models.RawCandidate{}
	c.Title = strings.TrimSpace(d.Find("h1").First().Text())
	if c.Title == "" {
		c.Title = strings.TrimSpace(d.Find("title").First().Text())
	}

	for _, sel := range domPriceSelectors {
		node := d.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		raw, ok := node.Attr("content")
		if !ok || raw == "" {
			raw, ok = node.Attr("data-price")
		}
		if !ok || strings.TrimSpace(raw) == "" {
			raw = node.Text()
		}
		raw = strings.TrimSpace(raw)
		if price, _ := normalize.ParsePrice(raw, ""); price != nil {
			c.PriceRaw = raw
			c.Price = price
			break
		}
	}

	d.Find("main img, [class*='product'] img, [id*='product'] img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, _ = s.Attr("data-src")
		}
		if src != "" {
			c.Images = append(c.Images, src)
		}
	})
	return c
}
