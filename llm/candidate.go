package llm

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shelfscan/shelfscan/models"
)

// CandidateFromJSON converts a model response into a product candidate.
// Every field is validated individually; anything with the wrong type or an
// unusable value is dropped rather than failing the whole response. A payload
// that is not a JSON object yields an empty candidate.
func CandidateFromJSON(raw json.RawMessage) models.RawCandidate {
	var c models.RawCandidate

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return c
	}

	if title, ok := payload["title"].(string); ok {
		c.Title = strings.TrimSpace(title)
	}

	switch price := payload["price"].(type) {
	case float64:
		if !math.IsNaN(price) && !math.IsInf(price, 0) && price > 0 {
			c.Price = &price
		}
	case string:
		// Some models return the price quoted despite instructions.
		c.PriceRaw = strings.TrimSpace(price)
	}

	if currency, ok := payload["currency"].(string); ok {
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if len(currency) == 3 {
			c.Currency = currency
		}
	}

	if images, ok := payload["images"].([]any); ok {
		for _, item := range images {
			if u, ok := item.(string); ok && u != "" {
				c.Images = append(c.Images, u)
			}
		}
	}

	c.Strategy = models.SourceAI
	return c
}
