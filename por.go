package optd

import (
	"errors"
	"strconv"
	"strings"

	"github.com/TomiHiltunen/geohash-golang"
)

// RawPOR is one decoded row of the OPTD POR file, before any parsing.
// Columns not listed here are ignored.
type RawPOR struct {
	IATACode     string `csv:"iata_code"`
	LocationType string `csv:"location_type"`
	GeonameID    string `csv:"geoname_id"`
	EnvelopeID   string `csv:"envelope_id"`
	Latitude     string `csv:"latitude"`
	Longitude    string `csv:"longitude"`
	Name         string `csv:"name"`
	PageRank     string `csv:"page_rank"`
	CountryCode  string `csv:"country_code"`
	CountryName  string `csv:"country_name"`
	Adm1Code     string `csv:"adm1_code"`
	Adm1Name     string `csv:"adm1_name_utf"`
	CityCodeList string `csv:"city_code_list"`
	TvlPORList   string `csv:"tvl_por_list"`
	UNLCList     string `csv:"unlc_list"`
}

// PORRecord is a normalized point of reference.
type PORRecord struct {
	IATACode     string   `json:"iata_code"`
	LocationType string   `json:"location_type"`
	GeonameID    int      `json:"geoname_id"`
	EnvelopeID   string   `json:"envelope_id,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Name         string   `json:"name"`
	PageRank     *float64 `json:"page_rank,omitempty"`
	CountryCode  string   `json:"country_code,omitempty"`
	CountryName  string   `json:"country_name,omitempty"`
	Adm1Code     string   `json:"adm1_code,omitempty"`
	Adm1Name     string   `json:"adm1_name,omitempty"`
	CityCodeList []string `json:"city_code_list,omitempty"`
	TvlPORList   []string `json:"tvl_por_list,omitempty"`
	UNLCList     []string `json:"unlc_list,omitempty"`
}

// PORSummary is the identity and administrative part of a PORRecord, as
// reported by serving-point resolution. It is comparable, and two
// summaries are the same serving point iff they are equal.
type PORSummary struct {
	IATACode     string `json:"iata_code"`
	LocationType string `json:"location_type"`
	GeonameID    int    `json:"geoname_id"`
	EnvelopeID   string `json:"envelope_id"`
	Name         string `json:"name"`
	CountryCode  string `json:"country_code"`
	CountryName  string `json:"country_name"`
	Adm1Code     string `json:"adm1_code"`
	Adm1Name     string `json:"adm1_name"`
}

// defaultGeohashPrecision gives cells of roughly 5km x 5km.
const defaultGeohashPrecision = 5

var errMissingGeonameID = errors.New("missing geoname_id")

// parsePOR turns a raw row into a PORRecord. Only geoname_id is required;
// unparseable optional numbers are treated as absent.
func parsePOR(raw *RawPOR, row int) (PORRecord, error) {
	if raw.GeonameID == "" {
		return PORRecord{}, &DataSourceError{Row: row, Field: "geoname_id", Err: errMissingGeonameID}
	}
	geoID, err := strconv.Atoi(raw.GeonameID)
	if err != nil {
		return PORRecord{}, &DataSourceError{Row: row, Field: "geoname_id", Err: err}
	}

	rec := PORRecord{
		IATACode:     raw.IATACode,
		LocationType: raw.LocationType,
		GeonameID:    geoID,
		EnvelopeID:   raw.EnvelopeID,
		Name:         raw.Name,
		CountryCode:  raw.CountryCode,
		CountryName:  raw.CountryName,
		Adm1Code:     raw.Adm1Code,
		Adm1Name:     raw.Adm1Name,
		CityCodeList: splitList(raw.CityCodeList, ","),
		TvlPORList:   splitCodes(raw.TvlPORList),
		UNLCList:     splitUNLCList(raw.UNLCList),
		PageRank:     parseOptionalFloat(raw.PageRank),
	}

	lat := parseOptionalFloat(raw.Latitude)
	lng := parseOptionalFloat(raw.Longitude)
	if lat != nil && lng != nil {
		rec.Latitude, rec.Longitude = lat, lng
	}
	return rec, nil
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// splitList splits s on sep, keeping empty entries. An empty field gives
// an empty list.
func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// splitCodes splits a comma-separated code list, dropping empty entries.
func splitCodes(s string) []string {
	var codes []string
	for _, c := range splitList(s, ",") {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// splitUNLCList splits the pipe-separated UN/LOCODE list and drops the
// trailing empty element left by the final delimiter.
func splitUNLCList(s string) []string {
	parts := splitList(s, "|")
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}

// Summary returns the identity and administrative fields of the record.
func (r PORRecord) Summary() PORSummary {
	return PORSummary{
		IATACode:     r.IATACode,
		LocationType: r.LocationType,
		GeonameID:    r.GeonameID,
		EnvelopeID:   r.EnvelopeID,
		Name:         r.Name,
		CountryCode:  r.CountryCode,
		CountryName:  r.CountryName,
		Adm1Code:     r.Adm1Code,
		Adm1Name:     r.Adm1Name,
	}
}

// HasCoordinates reports whether both latitude and longitude are known.
func (r PORRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Geohash returns the geohash of the record coordinates at the given
// precision, or "" when the record has no coordinates. A precision below 1
// selects the default.
func (r PORRecord) Geohash(precision int) string {
	if !r.HasCoordinates() {
		return ""
	}
	if precision < 1 {
		precision = defaultGeohashPrecision
	}
	return geohash.EncodeWithPrecision(*r.Latitude, *r.Longitude, precision)
}
