package product

import (
	"testing"

	"github.com/shelfscan/shelfscan/models"
)

const jsonldPage = `<!doctype html>
<html><head>
<title>Shop</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "BreadcrumbList"},
    {
      "@type": "Product",
      "name": "Trailrunner GTX",
      "description": "Waterproof trail shoe",
      "brand": {"@type": "Brand", "name": "Northpeak"},
      "image": ["https://cdn.shop.nl/trail-1.jpg", {"url": "https://cdn.shop.nl/trail-2.jpg"}],
      "offers": {"@type": "Offer", "price": "129.95", "priceCurrency": "EUR"}
    }
  ]
}
</script>
</head><body><h1>Ignored heading</h1></body></html>`

const metaPage = `<!doctype html>
<html><head>
<meta property="og:title" content="Wool Sweater">
<meta property="og:image" content="https://cdn.shop.nl/sweater.jpg">
<meta property="product:price:amount" content="59,99">
<meta property="product:price:currency" content="eur">
</head><body></body></html>`

const domPage = `<!doctype html>
<html><head><title>Shop | Canvas Tote</title></head>
<body>
<h1> Canvas Tote </h1>
<span class="price">€ 24,50</span>
<main><img src="/img/tote.jpg"><img data-src="/img/tote-side.jpg"></main>
</body></html>`

func TestParse_JSONLD(t *testing.T) {
	c, err := Parse(jsonldPage, "https://shop.nl/p/1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Strategy != models.SourceJSONLD {
		t.Errorf("Strategy = %q, want %q", c.Strategy, models.SourceJSONLD)
	}
	if c.Title != "Trailrunner GTX" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.Price == nil || *c.Price != 129.95 {
		t.Errorf("Price = %v, want 129.95", c.Price)
	}
	if c.Currency != "EUR" {
		t.Errorf("Currency = %q", c.Currency)
	}
	if len(c.Images) != 2 {
		t.Errorf("Images = %v, want 2 entries", c.Images)
	}
	if c.Brand != "Northpeak" {
		t.Errorf("Brand = %q", c.Brand)
	}
}

func TestParse_MetaFallback(t *testing.T) {
	c, err := Parse(metaPage, "https://shop.nl/p/2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Strategy != models.SourceMeta {
		t.Errorf("Strategy = %q, want %q", c.Strategy, models.SourceMeta)
	}
	if c.Title != "Wool Sweater" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.Price == nil || *c.Price != 59.99 {
		t.Errorf("Price = %v, want 59.99", c.Price)
	}
	if c.Currency != "EUR" {
		t.Errorf("Currency = %q, want uppercased EUR", c.Currency)
	}
}

func TestParse_DOMHeuristics(t *testing.T) {
	c, err := Parse(domPage, "https://shop.nl/p/3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Strategy != models.SourceDOM {
		t.Errorf("Strategy = %q, want %q", c.Strategy, models.SourceDOM)
	}
	if c.Title != "Canvas Tote" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.PriceRaw != "€ 24,50" {
		t.Errorf("PriceRaw = %q", c.PriceRaw)
	}
	if c.Price == nil || *c.Price != 24.50 {
		t.Errorf("Price = %v, want 24.5", c.Price)
	}
	if len(c.Images) != 2 {
		t.Errorf("Images = %v, want src and data-src picked up", c.Images)
	}
}

func TestParse_LaterStrategiesFillGaps(t *testing.T) {
	// JSON-LD has no image; the meta tag supplies one without changing the
	// winning strategy.
	page := `<html><head>
<script type="application/ld+json">{"@type":"Product","name":"Desk Lamp","offers":{"price":35.0,"priceCurrency":"EUR"}}</script>
<meta property="og:image" content="https://cdn.shop.nl/lamp.jpg">
</head><body></body></html>`

	c, err := Parse(page, "https://shop.nl/p/4")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Strategy != models.SourceJSONLD {
		t.Errorf("Strategy = %q, want %q", c.Strategy, models.SourceJSONLD)
	}
	if len(c.Images) != 1 || c.Images[0] != "https://cdn.shop.nl/lamp.jpg" {
		t.Errorf("Images = %v", c.Images)
	}
	if c.Price == nil || *c.Price != 35.0 {
		t.Errorf("Price = %v, want 35", c.Price)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	c, err := Parse("<html><head></head><body></body></html>", "https://shop.nl/p/5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.Empty() {
		t.Errorf("expected empty candidate, got %+v", c)
	}
}

func TestParse_MalformedJSONLDIgnored(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{not json</script>
<meta property="og:title" content="Fallback Product">
</head><body></body></html>`

	c, err := Parse(page, "https://shop.nl/p/6")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Title != "Fallback Product" {
		t.Errorf("Title = %q, want meta fallback", c.Title)
	}
}
