package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/acquire/internal/models"
)

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical ignoring case", "Casa Palermo", "casa palermo ", 1, 1},
		{"one letter off", "PH en Palermo con terraza", "PH en Palermo con terrazas", 0.95, 0.99},
		{"unrelated", "Monoambiente", "Casa quinta", 0, 0.5},
		{"empty", "", "Casa", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestFindDuplicates_SkipsSelf(t *testing.T) {
	self := models.Property{ID: "p-1", Title: "Casa", URL: "https://x.example/1"}

	hints := FindDuplicates(self, []models.Property{self})

	assert.Empty(t, hints)
}
