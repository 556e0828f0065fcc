package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractTitle returns the text content of the first <title> element, or ""
// if the document has none.
func ExtractTitle(doc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				return ""
			}
		}
	}
}

// VisibleTextLen estimates the amount of user-visible text in the document,
// skipping script and style content.
func VisibleTextLen(doc string) int {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	skip := 0
	total := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return total
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skip++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip == 0 {
				total += len(strings.TrimSpace(string(tokenizer.Text())))
			}
		}
	}
}

// shellMarkers are strings typical of client-rendered application shells.
var shellMarkers = []string{
	`id="root"`,
	`id="app"`,
	`id="__next"`,
	`data-reactroot`,
	"window.__NUXT__",
	"window.__INITIAL_STATE__",
}

// LooksLikeShell reports whether the document appears to be an empty SPA
// shell that needs JavaScript to render its product content. The signal is a
// framework mount point combined with very little visible text.
func LooksLikeShell(doc string) bool {
	if doc == "" {
		return true
	}
	hasMarker := false
	for _, marker := range shellMarkers {
		if strings.Contains(doc, marker) {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return false
	}
	return VisibleTextLen(doc) < 200
}
