package aggregation

import (
	"strings"

	"cytodash/domain/taxonomy"
)

// FilterAnalytes composes the category filter with the search filter.
//
// Category "All" keeps every ingested analyte in header order. A named group
// keeps its declared analytes, in declaration order, that were actually
// ingested. "Uncategorized" keeps ingested analytes no group declares. Any
// other category matches nothing. A non-blank search term then keeps analytes
// whose display name contains it, ignoring case.
func FilterAnalytes(ingested []string, tax *taxonomy.Taxonomy, category, search string) []string {
	var candidates []string

	switch category {
	case "", taxonomy.CategoryAll:
		candidates = ingested
	case taxonomy.Uncategorized:
		for _, a := range ingested {
			if tax.CategoryOf(a) == taxonomy.Uncategorized {
				candidates = append(candidates, a)
			}
		}
	default:
		members, _ := tax.Members(category)
		present := make(map[string]bool, len(ingested))
		for _, a := range ingested {
			present[a] = true
		}
		for _, a := range members {
			if present[a] {
				candidates = append(candidates, a)
			}
		}
	}

	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]string, 0, len(candidates))
	for _, a := range candidates {
		if term == "" || strings.Contains(strings.ToLower(taxonomy.DisplayName(a)), term) {
			out = append(out, a)
		}
	}
	return out
}
