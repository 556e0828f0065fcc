package content

import (
	"log/slog"
	nurl "net/url"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum readability TextContent length for the
// extraction to be considered valid. Below this the algorithm probably missed
// the product content and we keep the raw HTML.
const minContentLength = 50

// Preparer reduces raw product pages to compact Markdown before they are fed
// to the language model. Reduction is best effort: any failure falls back to
// the raw HTML so the caller always has something to send.
type Preparer struct {
	conv *converter.Converter
}

// NewPreparer builds a Preparer with a reusable, goroutine-safe converter.
// The base plugin strips script, style, head and other LLM noise; the table
// plugin keeps pricing and spec tables readable with minimal cell padding.
func NewPreparer() *Preparer {
	return &Preparer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Prepare runs readability over the document and converts the main content to
// Markdown. Returns the reduced text and whether reduction was applied.
func (p *Preparer) Prepare(rawHTML, pageURL string) (string, bool) {
	parsedURL, err := nurl.Parse(pageURL)
	if err != nil {
		slog.Warn("content: invalid page URL, keeping raw HTML", "url", pageURL, "error", err)
		return rawHTML, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("content: readability failed, keeping raw HTML", "url", pageURL, "error", err)
		return rawHTML, false
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("content: extracted content too short, keeping raw HTML",
			"url", pageURL, "length", len(article.TextContent))
		return rawHTML, false
	}

	markdown, err := p.conv.ConvertString(article.Content, converter.WithDomain(parsedURL.Host))
	if err != nil {
		slog.Warn("content: markdown conversion failed, keeping raw HTML", "url", pageURL, "error", err)
		return rawHTML, false
	}

	slog.Debug("content: reduced page for LLM input",
		"url", pageURL,
		"rawTokens", EstimateTokens(rawHTML),
		"reducedTokens", EstimateTokens(markdown))
	return markdown, true
}

// EstimateTokens is a fast token count estimate: utf8 rune count / 3. A
// middle ground between ~4 chars/token English and ~1.5 chars/token CJK.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		est = 1
	}
	return est
}
