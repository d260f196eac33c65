package optd

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePOR(t *testing.T) {
	raw := &RawPOR{
		IATACode:     "IEV",
		LocationType: "C",
		GeonameID:    "703448",
		Name:         "Kyiv",
		Latitude:     "50.45466",
		Longitude:    "30.5238",
		PageRank:     "0.8658",
		CountryCode:  "UA",
		CityCodeList: "IEV",
		TvlPORList:   "IEV,KBP,,QOH",
		UNLCList:     "UAIEV|",
	}
	rec, err := parsePOR(raw, 1)
	if err != nil {
		t.Fatalf("parsePOR: %v", err)
	}
	if rec.GeonameID != 703448 {
		t.Errorf("GeonameID = %d, want 703448", rec.GeonameID)
	}
	if !rec.HasCoordinates() || *rec.Latitude != 50.45466 || *rec.Longitude != 30.5238 {
		t.Errorf("coordinates = %v,%v", rec.Latitude, rec.Longitude)
	}
	if rec.PageRank == nil || *rec.PageRank != 0.8658 {
		t.Errorf("PageRank = %v, want 0.8658", rec.PageRank)
	}
	if want := []string{"IEV", "KBP", "QOH"}; !reflect.DeepEqual(rec.TvlPORList, want) {
		t.Errorf("TvlPORList = %v, want %v", rec.TvlPORList, want)
	}
	if want := []string{"UAIEV"}; !reflect.DeepEqual(rec.UNLCList, want) {
		t.Errorf("UNLCList = %v, want %v", rec.UNLCList, want)
	}
	if want := []string{"IEV"}; !reflect.DeepEqual(rec.CityCodeList, want) {
		t.Errorf("CityCodeList = %v, want %v", rec.CityCodeList, want)
	}
}

func TestParsePORGeonameID(t *testing.T) {
	tests := []struct {
		name    string
		geoID   string
		wantErr bool
	}{
		{"valid", "6300960", false},
		{"missing", "", true},
		{"not a number", "abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePOR(&RawPOR{GeonameID: tt.geoID}, 42)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var dsErr *DataSourceError
			if !errors.As(err, &dsErr) {
				t.Fatalf("err = %T, want *DataSourceError", err)
			}
			if dsErr.Row != 42 || dsErr.Field != "geoname_id" {
				t.Errorf("got row %d field %q", dsErr.Row, dsErr.Field)
			}
		})
	}
}

func TestParsePOROptionalNumbers(t *testing.T) {
	tests := []struct {
		name       string
		lat, lng   string
		pageRank   string
		wantCoords bool
		wantRank   bool
	}{
		{"all present", "1.5", "2.5", "0.1", true, true},
		{"all absent", "", "", "", false, false},
		{"latitude only", "1.5", "", "", false, false},
		{"garbage", "north", "2.5", "high", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := parsePOR(&RawPOR{GeonameID: "1", Latitude: tt.lat, Longitude: tt.lng, PageRank: tt.pageRank}, 1)
			if err != nil {
				t.Fatalf("parsePOR: %v", err)
			}
			if rec.HasCoordinates() != tt.wantCoords {
				t.Errorf("HasCoordinates = %v, want %v", rec.HasCoordinates(), tt.wantCoords)
			}
			if (rec.PageRank != nil) != tt.wantRank {
				t.Errorf("PageRank = %v, want present %v", rec.PageRank, tt.wantRank)
			}
		})
	}
}

func TestSplitUNLCList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"FRNCE|", []string{"FRNCE"}},
		{"UAIEV|UAKBP|", []string{"UAIEV", "UAKBP"}},
		{"UAIEV|UAKBP", []string{"UAIEV", "UAKBP"}},
	}
	for _, tt := range tests {
		if got := splitUNLCList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitUNLCList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSummaryIsComparable(t *testing.T) {
	rec, err := parsePOR(&RawPOR{IATACode: "KBP", LocationType: "A", GeonameID: "6300952", Name: "Boryspil"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[PORSummary]bool{rec.Summary(): true}
	if !seen[rec.Summary()] {
		t.Error("summary of the same record should be equal")
	}
}

func TestGeohash(t *testing.T) {
	var none PORRecord
	if got := none.Geohash(5); got != "" {
		t.Errorf("Geohash without coordinates = %q, want empty", got)
	}

	rec, err := parsePOR(&RawPOR{GeonameID: "2988507", Latitude: "48.85341", Longitude: "2.3488"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Geohash(0); got != "u09tv" {
		t.Errorf("Geohash(0) = %q, want u09tv", got)
	}
	for _, p := range []int{1, 3, 7} {
		if got := rec.Geohash(p); len(got) != p {
			t.Errorf("Geohash(%d) = %q, want %d characters", p, got, p)
		}
	}
}
