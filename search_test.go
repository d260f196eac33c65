package optd

import "testing"

func TestSearch(t *testing.T) {
	x, err := sampleIndex()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		opts  SearchOptions
		want  []int
	}{
		{"exact", "Baku", SearchOptions{}, []int{587084}},
		{"case and spaces", "  kyiv ", SearchOptions{}, []int{703448}},
		{"typo without fuzzy", "Bakku", SearchOptions{}, nil},
		{"typo with fuzzy", "Bakku", SearchOptions{FuzzyDistance: 1}, []int{587084}},
		{"short query is never fuzzy", "ba", SearchOptions{FuzzyDistance: 3}, nil},
		{"empty", "   ", SearchOptions{FuzzyDistance: 1}, nil},
		{"fuzzy distance capped", "Paris", SearchOptions{FuzzyDistance: 100}, []int{2988507}},
		{"limit", "Kyiv", SearchOptions{FuzzyDistance: 2, Limit: 1}, []int{703448}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := x.Search(tt.query, tt.opts)
			if len(recs) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d records, want %d", tt.query, len(recs), len(tt.want))
			}
			for i, rec := range recs {
				if rec.GeonameID != tt.want[i] {
					t.Errorf("result %d = %d, want %d", i, rec.GeonameID, tt.want[i])
				}
			}
		})
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		query, candidate string
		maxDist          int
		want             bool
	}{
		{"kyiv", "KYIV", 0, true},
		{"kyiv", "kiev", 0, false},
		{"kyiv", "kiev", 2, true},
		{"baku", "bakuu", 1, true},
		{"baku", "nice", 1, false},
	}
	for _, tt := range tests {
		if got := fuzzyMatch(tt.query, tt.candidate, tt.maxDist); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q, %d) = %v, want %v", tt.query, tt.candidate, tt.maxDist, got, tt.want)
		}
	}
}
