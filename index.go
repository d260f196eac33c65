package optd

import (
	"errors"
	"io"
	"iter"

	"github.com/golang/geo/s2"
)

// orderedMap is a map that remembers key insertion order. Setting an
// existing key replaces the value in place.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{values: make(map[K]V, 1)}
}

// set stores v under k and reports whether an earlier value was replaced.
func (m *orderedMap[K, V]) set(k K, v V) bool {
	_, exists := m.values[k]
	if !exists {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
	return exists
}

func (m *orderedMap[K, V]) get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

func (m *orderedMap[K, V]) len() int { return len(m.keys) }

// all iterates in insertion order.
func (m *orderedMap[K, V]) all() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// IndexStats summarizes a built Index.
type IndexStats struct {
	Rows       int `json:"rows"`        // data rows read
	GeonameIDs int `json:"geoname_ids"` // distinct geoname ids
	IATACodes  int `json:"iata_codes"`  // distinct IATA codes
	UNLOCODEs  int `json:"unlocodes"`   // distinct UN/LOCODE values
	Replaced   int `json:"replaced"`    // repeated (iata_code, location_type) pairs
	Untyped    int `json:"untyped"`     // rows with an IATA code but no location type
}

// Index holds the cross-reference indices of one full pass over an OPTD
// record stream. An Index is never modified once BuildIndex returns it,
// so it is safe for concurrent use. Records handed out share their list
// fields with the index and must not be modified.
type Index struct {
	byIATA     map[string]*orderedMap[string, PORRecord]
	byUNLOCODE map[string]*orderedMap[int, PORRecord]
	byGeoID    map[int]PORRecord
	nameIndex  map[string][]int    // lowercase name -> geoname ids
	cellIndex  map[s2.CellID][]int // S2 cell -> geoname ids
	stats      IndexStats
}

// BuildIndex reads src to the end and returns the populated Index. Any
// read failure or row without a usable geoname_id aborts the build with a
// *DataSourceError and no Index. A *DataSourceError returned by src is
// passed through unchanged.
func BuildIndex(src RecordSource) (*Index, error) {
	x := &Index{
		byIATA:     make(map[string]*orderedMap[string, PORRecord]),
		byUNLOCODE: make(map[string]*orderedMap[int, PORRecord]),
		byGeoID:    make(map[int]PORRecord),
	}

	for row := 1; ; row++ {
		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var dsErr *DataSourceError
			if errors.As(err, &dsErr) {
				return nil, err
			}
			return nil, &DataSourceError{Row: row, Err: err}
		}
		if raw == nil {
			continue
		}

		rec, err := parsePOR(raw, row)
		if err != nil {
			return nil, err
		}
		x.stats.Rows++
		x.add(rec)
	}

	x.stats.GeonameIDs = len(x.byGeoID)
	x.stats.IATACodes = len(x.byIATA)
	x.stats.UNLOCODEs = len(x.byUNLOCODE)
	x.buildNameIndex()
	x.buildCellIndex()
	return x, nil
}

func (x *Index) add(rec PORRecord) {
	for _, unlc := range rec.UNLCList {
		bucket, ok := x.byUNLOCODE[unlc]
		if !ok {
			bucket = newOrderedMap[int, PORRecord]()
			x.byUNLOCODE[unlc] = bucket
		}
		bucket.set(rec.GeonameID, rec)
	}

	x.byGeoID[rec.GeonameID] = rec

	if rec.IATACode == "" {
		return
	}
	if rec.LocationType == "" {
		x.stats.Untyped++
		return
	}
	variants, ok := x.byIATA[rec.IATACode]
	if !ok {
		variants = newOrderedMap[string, PORRecord]()
		x.byIATA[rec.IATACode] = variants
	}
	if variants.set(rec.LocationType, rec) {
		x.stats.Replaced++
	}
}

// Stats returns counters collected while building the index.
func (x *Index) Stats() IndexStats {
	return x.stats
}

// Len returns the number of distinct geoname ids in the index.
func (x *Index) Len() int {
	return len(x.byGeoID)
}

// LookupByGeoID returns the record with the given geoname id. The boolean
// is false when there is none.
func (x *Index) LookupByGeoID(id int) (PORRecord, bool) {
	rec, ok := x.byGeoID[id]
	return rec, ok
}

// HasIATA reports whether code is a key of the by-IATA index.
func (x *Index) HasIATA(code string) bool {
	_, ok := x.byIATA[code]
	return ok
}

// LookupByIATA returns every location-type variant registered under the
// IATA code, in the order they were first seen. It returns nil for
// unknown codes.
func (x *Index) LookupByIATA(code string) []PORRecord {
	variants, ok := x.byIATA[code]
	if !ok {
		return nil
	}
	recs := make([]PORRecord, 0, variants.len())
	for _, rec := range variants.all() {
		recs = append(recs, rec)
	}
	return recs
}

// LookupByUNLOCODE returns the records carrying the UN/LOCODE, in the order
// their geoname ids were first seen. It returns nil for unknown codes.
func (x *Index) LookupByUNLOCODE(code string) []PORRecord {
	bucket, ok := x.byUNLOCODE[code]
	if !ok {
		return nil
	}
	recs := make([]PORRecord, 0, bucket.len())
	for _, rec := range bucket.all() {
		recs = append(recs, rec)
	}
	return recs
}
