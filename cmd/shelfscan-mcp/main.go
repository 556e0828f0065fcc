package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the shelfscan API request model.
type scrapeRequest struct {
	URL          string `json:"url"`
	Locale       string `json:"locale,omitempty"`
	CurrencyHint string `json:"currency_hint,omitempty"`
	AIEnabled    bool   `json:"ai_enabled,omitempty"`
	MaxAge       int    `json:"max_age_ms,omitempty"`
}

// scrapeResponse mirrors the shelfscan API response model.
type scrapeResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("SHELFSCAN_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SHELFSCAN_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SHELFSCAN_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"shelfscan",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeProductTool := mcp.NewTool("scrape_product",
		mcp.WithDescription("Scrape a retail product page and return a normalized product record: title, price, currency, images, extraction source and a confidence score."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the product page to scrape"),
		),
		mcp.WithString("currency_hint",
			mcp.Description("ISO 4217 currency code to attach to a parsed price, e.g. 'EUR'"),
		),
		mcp.WithBoolean("ai_enabled",
			mcp.Description("Allow the AI fallback extractor when structured extraction is weak or blocked"),
		),
	)
	s.AddTool(scrapeProductTool, handleScrapeProduct(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeProduct(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := scrapeRequest{
			URL:          url,
			CurrencyHint: request.GetString("currency_hint", ""),
			AIEnabled:    request.GetBool("ai_enabled", false),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape", reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp scrapeResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse API response: %v", err)), nil
		}
		if !resp.Success {
			msg := "scrape failed"
			if resp.Error != nil {
				msg = fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(msg), nil
		}

		return mcp.NewToolResultText(string(resp.Result)), nil
	}
}

// apiPost sends a POST request to the shelfscan API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
