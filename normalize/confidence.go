package normalize

import (
	"math"
	"strings"
)

// Confidence computes a coarse 0..1 extraction quality signal:
//
//	+0.5  title present and longer than 3 characters after trimming
//	+0.4  price is a finite number > 0
//	+0.1  at least one image
//
// There is no partial credit; this is a deliberately blunt escalation signal,
// not a calibrated probability.
func Confidence(title string, price *float64, images []string) float64 {
	score := 0.0
	if len(strings.TrimSpace(title)) > 3 {
		score += 0.5
	}
	if price != nil && !math.IsNaN(*price) && !math.IsInf(*price, 0) && *price > 0 {
		score += 0.4
	}
	if len(images) > 0 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
