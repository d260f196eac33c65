package optd

// ServingResult is the outcome of serving-point resolution for one IATA
// code.
type ServingResult struct {
	// Original describes the queried POR itself. When the code has a
	// city variant, the first one wins; otherwise the first
	// transport-related variant is used. A code with neither keeps only
	// IATACode.
	Original PORSummary `json:"original"`
	// TvlList holds the distinct transport-related POR serving the code,
	// in first-encountered order.
	TvlList []PORSummary `json:"tvl_list"`
}

// GeonameIDs returns the geoname ids of TvlList, in order.
func (r ServingResult) GeonameIDs() []int {
	ids := make([]int, len(r.TvlList))
	for i, s := range r.TvlList {
		ids[i] = s.GeonameID
	}
	return ids
}

// servingList is an insertion-ordered set of summaries.
type servingList struct {
	items []PORSummary
	seen  map[PORSummary]struct{}
}

func (l *servingList) add(s PORSummary) {
	if _, dup := l.seen[s]; dup {
		return
	}
	l.seen[s] = struct{}{}
	l.items = append(l.items, s)
}

// ResolveServingPoints returns the travel-/transport-related POR serving
// the given IATA code.
//
// Every location-type variant of the code is visited in order. A
// transport-related variant serves itself. A city-like variant contributes
// the transport-related variants of every code in its tvl_por_list, which
// is how a city such as BAK reaches airports under other codes (GYD, ZXT).
// An unknown code, queried or referenced, yields *UnknownIATACodeError.
func (x *Index) ResolveServingPoints(iataCode string) (ServingResult, error) {
	variants, ok := x.byIATA[iataCode]
	if !ok {
		return ServingResult{}, &UnknownIATACodeError{Code: iataCode}
	}

	result := ServingResult{Original: PORSummary{IATACode: iataCode}}
	list := servingList{seen: make(map[PORSummary]struct{})}
	originalSet, citySet := false, false

	for locType, rec := range variants.all() {
		if IsTransportRelated(locType) {
			list.add(rec.Summary())
			if !originalSet {
				result.Original = rec.Summary()
				originalSet = true
			}
		}

		if !IsCity(locType) {
			continue
		}
		if !citySet {
			result.Original = rec.Summary()
			originalSet, citySet = true, true
		}
		for _, tvlCode := range rec.TvlPORList {
			tvlVariants, ok := x.byIATA[tvlCode]
			if !ok {
				return ServingResult{}, &UnknownIATACodeError{Code: tvlCode, ReferencedBy: iataCode}
			}
			for tvlType, tvlRec := range tvlVariants.all() {
				if IsTransportRelated(tvlType) {
					list.add(tvlRec.Summary())
				}
			}
		}
	}

	result.TvlList = list.items
	if result.TvlList == nil {
		result.TvlList = []PORSummary{}
	}
	return result, nil
}
