package optd

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// s2CellLevel is the granularity of the spatial index. Level 7 cells are at
// least ~47km wide, so a cell and its eight neighbours always cover
// maxNearbyRadiusKm around any point inside the centre cell.
const s2CellLevel = 7

// maxNearbyRadiusKm caps the search radius of Nearby.
const maxNearbyRadiusKm = 40.0

const earthRadiusKm = 6371.01

// NearbyPOR is a record found by Nearby with its distance to the query
// point.
type NearbyPOR struct {
	PORRecord
	DistanceKm float64 `json:"distance_km"`
}

// buildCellIndex creates the S2 cell index over every record with
// coordinates.
func (x *Index) buildCellIndex() {
	x.cellIndex = make(map[s2.CellID][]int)
	for id, rec := range x.byGeoID {
		if !rec.HasCoordinates() {
			continue
		}
		ll := s2.LatLngFromDegrees(*rec.Latitude, *rec.Longitude)
		cell := s2.CellIDFromLatLng(ll).Parent(s2CellLevel)
		x.cellIndex[cell] = append(x.cellIndex[cell], id)
	}
}

// cellAndNeighbors returns the given cell plus its neighboring cells.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	for i := 0; i < 4; i++ {
		cells = append(cells, edgeNeighbors[i])
	}

	seen := make(map[s2.CellID]bool)
	for _, c := range cells {
		seen[c] = true
	}
	for i := 0; i < 4; i++ {
		for _, corner := range edgeNeighbors[i].EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}

// Nearby returns the records within radiusKm of (lat, lng), closest first.
// Ties are broken by page rank (highest first), then geoname id. When
// filter is non-nil only records whose location type satisfies it are
// returned, e.g. Nearby(lat, lng, 20, IsAirport).
func (x *Index) Nearby(lat, lng, radiusKm float64, filter func(locType string) bool) []NearbyPOR {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return nil
	}
	if radiusKm <= 0 {
		return nil
	}
	if radiusKm > maxNearbyRadiusKm {
		radiusKm = maxNearbyRadiusKm
	}

	queryLL := s2.LatLngFromDegrees(lat, lng)
	queryCell := s2.CellIDFromLatLng(queryLL).Parent(s2CellLevel)

	var found []NearbyPOR
	for _, cell := range cellAndNeighbors(queryCell) {
		for _, id := range x.cellIndex[cell] {
			rec := x.byGeoID[id]
			if filter != nil && !filter(rec.LocationType) {
				continue
			}
			ll := s2.LatLngFromDegrees(*rec.Latitude, *rec.Longitude)
			dist := float64(queryLL.Distance(ll)) * earthRadiusKm
			if dist > radiusKm {
				continue
			}
			found = append(found, NearbyPOR{PORRecord: rec, DistanceKm: dist})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].DistanceKm != found[j].DistanceKm {
			return found[i].DistanceKm < found[j].DistanceKm
		}
		pi, pj := pageRank(found[i].PORRecord), pageRank(found[j].PORRecord)
		if pi != pj {
			return pi > pj
		}
		return found[i].GeonameID < found[j].GeonameID
	})
	return found
}

func pageRank(r PORRecord) float64 {
	if r.PageRank == nil {
		return 0
	}
	return *r.PageRank
}
