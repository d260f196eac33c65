package optd

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// servingRow is one line of a serving-point export.
type servingRow struct {
	QueryIATACode  string `csv:"query_iata_code"`
	QueryGeonameID int    `csv:"query_geoname_id"`
	IATACode       string `csv:"iata_code"`
	LocationType   string `csv:"location_type"`
	GeonameID      int    `csv:"geoname_id"`
	EnvelopeID     string `csv:"envelope_id"`
	Name           string `csv:"name"`
	CountryCode    string `csv:"country_code"`
	CountryName    string `csv:"country_name"`
	Adm1Code       string `csv:"adm1_code"`
	Adm1Name       string `csv:"adm1_name"`
}

// WriteServingResults writes one '^'-delimited line per serving point of
// every result, preceded by a header line.
func WriteServingResults(w io.Writer, results []ServingResult) error {
	rows := make([]*servingRow, 0, len(results))
	for _, res := range results {
		for _, tvl := range res.TvlList {
			rows = append(rows, &servingRow{
				QueryIATACode:  res.Original.IATACode,
				QueryGeonameID: res.Original.GeonameID,
				IATACode:       tvl.IATACode,
				LocationType:   tvl.LocationType,
				GeonameID:      tvl.GeonameID,
				EnvelopeID:     tvl.EnvelopeID,
				Name:           tvl.Name,
				CountryCode:    tvl.CountryCode,
				CountryName:    tvl.CountryName,
				Adm1Code:       tvl.Adm1Code,
				Adm1Name:       tvl.Adm1Name,
			})
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	sw := gocsv.NewSafeCSVWriter(cw)
	if err := gocsv.MarshalCSV(rows, sw); err != nil {
		return fmt.Errorf("writing serving points: %w", err)
	}
	sw.Flush()
	return sw.Error()
}
