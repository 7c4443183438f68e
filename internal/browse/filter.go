// internal/browse/filter.go
package browse

import (
	"strings"

	"github.com/soukcraft/soukcraft-web/internal/models"
)

// Filter narrows the public feed with the listing page's predicate:
// case-insensitive substring match on title or description, exact match on
// category. Empty query and empty category each mean "no constraint".
// The input slice is never mutated.
func Filter(ads []models.Ad, query string, category models.Category) []models.Ad {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]models.Ad, 0, len(ads))
	for _, ad := range ads {
		if category != "" && ad.Category != category {
			continue
		}
		if query != "" && !matchesQuery(ad, query) {
			continue
		}
		filtered = append(filtered, ad)
	}
	return filtered
}

func matchesQuery(ad models.Ad, query string) bool {
	return strings.Contains(strings.ToLower(ad.Title), query) ||
		strings.Contains(strings.ToLower(ad.Description), query)
}
