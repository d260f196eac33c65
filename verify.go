package optd

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Verify checks the cross-references of the index and returns every
// problem found, joined, or nil:
//   - a record with an IATA code that is not the one reachable through
//     the by-IATA index under its location type;
//   - a tvl_por_list entry that is not a known IATA code.
//
// Problems are reported in geoname id order.
func (x *Index) Verify() error {
	ids := make([]int, 0, len(x.byGeoID))
	for id := range x.byGeoID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var errs []error
	for _, id := range ids {
		rec := x.byGeoID[id]
		if rec.IATACode != "" && rec.LocationType != "" {
			var got PORRecord
			ok := false
			if variants := x.byIATA[rec.IATACode]; variants != nil {
				got, ok = variants.get(rec.LocationType)
			}
			if !ok || !reflect.DeepEqual(got, rec) {
				errs = append(errs, fmt.Errorf("geoname %d: not reachable as %s/%s", id, rec.IATACode, rec.LocationType))
			}
		}
		for _, code := range rec.TvlPORList {
			if !x.HasIATA(code) {
				errs = append(errs, fmt.Errorf("geoname %d: %w", id, &UnknownIATACodeError{Code: code, ReferencedBy: rec.IATACode}))
			}
		}
	}
	return errors.Join(errs...)
}
