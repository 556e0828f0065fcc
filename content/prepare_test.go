package content

import (
	"strings"
	"testing"
)

func TestPrepare_ReducesProductPage(t *testing.T) {
	page := `<html><head>
<script>window.tracker = {};</script>
<style>.x{color:red}</style>
</head><body>
<nav>Home / Shoes</nav>
<article>
<h1>Trailrunner GTX</h1>
<p>` + strings.Repeat("A waterproof trail shoe with a grippy outsole. ", 10) + `</p>
<table><tr><td>Size</td><td>42</td></tr><tr><td>Color</td><td>Black</td></tr></table>
</article>
</body></html>`

	out, reduced := NewPreparer().Prepare(page, "https://shop.nl/p/1")
	if !reduced {
		t.Fatal("expected reduction to apply")
	}
	if strings.Contains(out, "window.tracker") {
		t.Error("script content leaked into output")
	}
	if !strings.Contains(out, "waterproof trail shoe") {
		t.Error("main content missing from output")
	}
	if EstimateTokens(out) >= EstimateTokens(page) {
		t.Errorf("output not smaller: %d vs %d tokens", EstimateTokens(out), EstimateTokens(page))
	}
}

func TestPrepare_FallsBackOnThinContent(t *testing.T) {
	page := `<html><body><div id="root"></div></body></html>`
	out, reduced := NewPreparer().Prepare(page, "https://shop.nl/p/1")
	if reduced {
		t.Error("thin shell should not count as reduced")
	}
	if out != page {
		t.Errorf("fallback should return raw HTML, got %q", out)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty = %d, want 0", got)
	}
	if got := EstimateTokens("ab"); got != 1 {
		t.Errorf("short = %d, want 1", got)
	}
	if got := EstimateTokens(strings.Repeat("x", 300)); got != 100 {
		t.Errorf("300 chars = %d, want 100", got)
	}
}
