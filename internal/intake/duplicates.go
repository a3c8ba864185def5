package intake

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/stwalsh4118/acquire/internal/models"
)

// DuplicateThreshold is the title similarity at or above which an existing
// property is flagged.
const DuplicateThreshold = 0.85

// DuplicateHint points at an existing property that looks like the draft.
// Hints are informational and never block a commit.
type DuplicateHint struct {
	PropertyID string  `json:"propertyId"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
	SameURL    bool    `json:"sameUrl"`
}

// FindDuplicates returns the properties in existing that share the
// candidate's URL or have a title at least DuplicateThreshold similar.
// The candidate itself is skipped by ID.
func FindDuplicates(candidate models.Property, existing []models.Property) []DuplicateHint {
	hints := []DuplicateHint{}
	url := normalizeURL(candidate.URL)
	for _, p := range existing {
		if candidate.ID != "" && p.ID == candidate.ID {
			continue
		}
		sameURL := url != "" && normalizeURL(p.URL) == url
		sim := TitleSimilarity(candidate.Title, p.Title)
		if !sameURL && sim < DuplicateThreshold {
			continue
		}
		hints = append(hints, DuplicateHint{
			PropertyID: p.ID,
			Title:      p.Title,
			URL:        p.URL,
			Similarity: sim,
			SameURL:    sameURL,
		})
	}
	return hints
}

// TitleSimilarity is 1 minus the normalized edit distance of the
// lowercased, trimmed titles. Empty titles are never similar.
func TitleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func normalizeURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	return strings.TrimSuffix(u, "/")
}
