package normalize

import (
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		price  *float64
		images []string
		want   float64
	}{
		{"all signals", "Nice Shoe", ptr(49.95), []string{"a.jpg"}, 1.0},
		{"short title no images", "Hi", ptr(49.95), nil, 0.4},
		{"images only", "", nil, []string{"a.jpg"}, 0.1},
		{"title only", "Leather boots", nil, nil, 0.5},
		{"nothing", "", nil, nil, 0.0},
		{"title exactly 3 chars", "abc", ptr(10), nil, 0.4},
		{"whitespace-padded short title", "  Hi  ", ptr(10), nil, 0.4},
		{"zero price", "Nice Shoe", ptr(0), nil, 0.5},
		{"negative price", "Nice Shoe", ptr(-5), nil, 0.5},
		{"infinite price", "Nice Shoe", ptr(math.Inf(1)), nil, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.title, tt.price, tt.images)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Confidence = %v, out of [0,1]", got)
			}
		})
	}
}
