package optd

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
)

func TestCSVSourceIgnoresUnknownColumns(t *testing.T) {
	data := "iata_code^icao_code^geoname_id^name^location_type^tvl_por_list^unlc_list\n" +
		"NCE^LFMN^6299418^Nice Cote d'Azur Airport^CA^NCE^FRNCE|\n"
	src := NewCSVSource(strings.NewReader(data))

	raw, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if raw.IATACode != "NCE" || raw.GeonameID != "6299418" || raw.LocationType != "CA" {
		t.Errorf("unexpected row %+v", raw)
	}
	if raw.Name != "Nice Cote d'Azur Airport" {
		t.Errorf("Name = %q", raw.Name)
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("second Next err = %v, want io.EOF", err)
	}
}

func TestCSVSourceEmptyInput(t *testing.T) {
	x, err := BuildIndex(NewCSVSource(strings.NewReader("")))
	if x != nil {
		t.Error("expected no index for an empty stream")
	}
	var dsErr *DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("err = %v, want *DataSourceError", err)
	}
	if dsErr.Row != 0 {
		t.Errorf("Row = %d, want 0", dsErr.Row)
	}
	if !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		t.Errorf("err = %v, want gocsv.ErrEmptyCSVFile", err)
	}
}

func TestCSVSourceHeaderOnly(t *testing.T) {
	x, err := BuildIndex(NewCSVSource(strings.NewReader("iata_code^geoname_id^location_type\n")))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if x.Len() != 0 {
		t.Errorf("Len = %d, want 0", x.Len())
	}
}

func TestCSVSourceDecodeErrorRow(t *testing.T) {
	data := "iata_code^geoname_id^location_type\n" +
		"AAA^1^A\n" +
		"BBB^2^A\n" +
		"CCC^3\n" +
		"DDD^4^A\n"
	x, err := BuildIndex(NewCSVSource(strings.NewReader(data)))
	if x != nil {
		t.Error("expected no index on failure")
	}
	var dsErr *DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("err = %v, want *DataSourceError", err)
	}
	if dsErr.Row != 3 {
		t.Errorf("Row = %d, want 3", dsErr.Row)
	}
	if !errors.Is(err, csv.ErrFieldCount) {
		t.Errorf("err = %v, want csv.ErrFieldCount", err)
	}
}

type failingSource struct{ after int }

func (f *failingSource) Next() (*RawPOR, error) {
	if f.after == 0 {
		return nil, errors.New("connection reset")
	}
	f.after--
	return &RawPOR{GeonameID: "1"}, nil
}

func TestBuildIndexReadFailure(t *testing.T) {
	x, err := BuildIndex(&failingSource{after: 2})
	if x != nil {
		t.Error("expected no index on failure")
	}
	var dsErr *DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatalf("err = %v, want *DataSourceError", err)
	}
	if dsErr.Row != 3 {
		t.Errorf("Row = %d, want 3", dsErr.Row)
	}
}

func TestOpenCSVFileGzip(t *testing.T) {
	data, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "optd_por_public.csv.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenCSVFile(path)
	if err != nil {
		t.Fatalf("OpenCSVFile: %v", err)
	}
	defer src.Close()

	x, err := BuildIndex(src)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if x.Len() != 13 {
		t.Errorf("Len = %d, want 13", x.Len())
	}
}

func TestOpenCSVFileMissing(t *testing.T) {
	_, err := OpenCSVFile(filepath.Join(t.TempDir(), "optd_por_public.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]RawPOR{{GeonameID: "1"}, {GeonameID: "2"}})
	var ids []string
	for {
		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, raw.GeonameID)
	}
	if strings.Join(ids, ",") != "1,2" {
		t.Errorf("ids = %v", ids)
	}
}

func TestBuildIndexDuplicates(t *testing.T) {
	x, err := BuildIndex(NewSliceSource([]RawPOR{
		{IATACode: "AAA", LocationType: "A", GeonameID: "1", Name: "first"},
		{IATACode: "AAA", LocationType: "C", GeonameID: "2"},
		{IATACode: "AAA", LocationType: "A", GeonameID: "3", Name: "second"},
		{IATACode: "BBB", GeonameID: "4"},
	}))
	if err != nil {
		t.Fatal(err)
	}

	st := x.Stats()
	if st.Replaced != 1 || st.Untyped != 1 || st.Rows != 4 {
		t.Errorf("stats = %+v", st)
	}

	recs := x.LookupByIATA("AAA")
	if len(recs) != 2 {
		t.Fatalf("variants = %d, want 2", len(recs))
	}
	if recs[0].LocationType != "A" || recs[0].Name != "second" {
		t.Errorf("later row should replace the A variant in place, got %+v", recs[0])
	}
	if x.HasIATA("BBB") {
		t.Error("row without location type should not be indexed by IATA code")
	}
	if _, ok := x.LookupByGeoID(4); !ok {
		t.Error("row without location type should be indexed by geoname id")
	}

	// Record 1 is shadowed by record 3.
	if err := x.Verify(); err == nil {
		t.Error("Verify should report the shadowed record")
	}
}

func TestOpenCSVFileBzip2Fallback(t *testing.T) {
	// Only the .bz2 copy exists in testdata/compressed.
	path := filepath.Join("testdata", "compressed", "optd_por_public.csv")
	src, err := OpenCSVFile(path)
	if err != nil {
		t.Fatalf("OpenCSVFile: %v", err)
	}
	defer src.Close()

	x, err := BuildIndex(src)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	res, err := x.ResolveServingPoints("IEV")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.TvlList) != 4 {
		t.Errorf("tvl_list = %v, want 4 entries", res.GeonameIDs())
	}

	header, err := FileHeader(path + ".bz2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(header, "iata_code^") {
		t.Errorf("header = %q", header)
	}
}
