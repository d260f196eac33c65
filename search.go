package optd

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxFuzzyDistance caps FuzzyDistance to prevent expensive O(N) scans
// across the entire name index with high edit distances.
const maxFuzzyDistance = 3

// maxSearchInputLen limits the query length fed to Levenshtein distance
// calculations.
const maxSearchInputLen = 256

// SearchOptions configures name search.
type SearchOptions struct {
	FuzzyDistance int // Max edit distance for typo tolerance (0 = exact, 1-2 recommended)
	Limit         int // Max results, 0 for all
}

// buildNameIndex creates the inverted index from lowercase POR name to
// geoname ids.
func (x *Index) buildNameIndex() {
	x.nameIndex = make(map[string][]int)
	for id, rec := range x.byGeoID {
		key := strings.ToLower(strings.TrimSpace(rec.Name))
		if key == "" {
			continue
		}
		x.nameIndex[key] = append(x.nameIndex[key], id)
	}
}

// fuzzyMatch compares two strings with optional Levenshtein distance tolerance.
// If maxDist is 0, performs exact case-insensitive match.
func fuzzyMatch(query, candidate string, maxDist int) bool {
	if maxDist == 0 {
		return strings.EqualFold(query, candidate)
	}
	return levenshtein.ComputeDistance(query, candidate) <= maxDist
}

// Search returns the records whose name matches query, ignoring case.
// With a FuzzyDistance above zero, names within that edit distance match
// too. Results are ordered by page rank (highest first), then geoname id.
func (x *Index) Search(query string, opts SearchOptions) []PORRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if runes := []rune(query); len(runes) > maxSearchInputLen {
		query = string(runes[:maxSearchInputLen])
	}
	if opts.FuzzyDistance > maxFuzzyDistance {
		opts.FuzzyDistance = maxFuzzyDistance
	}

	candidates := make(map[int]bool)
	for _, id := range x.nameIndex[query] {
		candidates[id] = true
	}
	if opts.FuzzyDistance > 0 && len([]rune(query)) > 2 {
		for key, ids := range x.nameIndex {
			if fuzzyMatch(query, key, opts.FuzzyDistance) {
				for _, id := range ids {
					candidates[id] = true
				}
			}
		}
	}

	recs := make([]PORRecord, 0, len(candidates))
	for id := range candidates {
		recs = append(recs, x.byGeoID[id])
	}
	sort.Slice(recs, func(i, j int) bool {
		pi, pj := pageRank(recs[i]), pageRank(recs[j])
		if pi != pj {
			return pi > pj
		}
		return recs[i].GeonameID < recs[j].GeonameID
	})
	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs
}
