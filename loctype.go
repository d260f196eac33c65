package optd

import "strings"

// Location type characters used by OPTD. A location type string may carry
// several of them at once (e.g. "CA" for a city that is also an airport).
const (
	locTypeAirport  = 'A'
	locTypeHeliport = 'H'
	locTypePort     = 'P'
	locTypeRailway  = 'R'
	locTypeBus      = 'B'
	locTypeOffline  = 'O'
	locTypeCity     = 'C'
)

// IsAirport reports whether the location type denotes an airport.
func IsAirport(locType string) bool {
	return strings.ContainsRune(locType, locTypeAirport)
}

// IsHeliport reports whether the location type denotes a heliport.
func IsHeliport(locType string) bool {
	return strings.ContainsRune(locType, locTypeHeliport)
}

// IsPort reports whether the location type denotes a maritime port.
func IsPort(locType string) bool {
	return strings.ContainsRune(locType, locTypePort)
}

// IsRailwayStation reports whether the location type denotes a railway station.
func IsRailwayStation(locType string) bool {
	return strings.ContainsRune(locType, locTypeRailway)
}

// IsBusStation reports whether the location type denotes a bus station.
func IsBusStation(locType string) bool {
	return strings.ContainsRune(locType, locTypeBus)
}

// IsOffline reports whether the location type denotes an offline point.
func IsOffline(locType string) bool {
	return strings.ContainsRune(locType, locTypeOffline)
}

// IsTransportRelated reports whether the location type denotes any kind of
// travel-/transport-related point: airport, heliport, port, railway
// station, bus station or offline point.
func IsTransportRelated(locType string) bool {
	return IsAirport(locType) || IsHeliport(locType) || IsPort(locType) ||
		IsRailwayStation(locType) || IsBusStation(locType) || IsOffline(locType)
}

// IsCity reports whether the location type is city-like. Offline points
// count as cities too, so an "O" record is both transport-related and
// city-like and gets its tvl_por_list expanded.
func IsCity(locType string) bool {
	return strings.ContainsRune(locType, locTypeCity) || IsOffline(locType)
}

var locationTypeFilters = map[string]func(string) bool{
	"airport":   IsAirport,
	"heliport":  IsHeliport,
	"port":      IsPort,
	"rail":      IsRailwayStation,
	"bus":       IsBusStation,
	"offline":   IsOffline,
	"city":      IsCity,
	"transport": IsTransportRelated,
}

// LocationTypeFilter returns the classifier called name: "airport",
// "heliport", "port", "rail", "bus", "offline", "city" or "transport".
func LocationTypeFilter(name string) (func(locType string) bool, bool) {
	f, ok := locationTypeFilters[strings.ToLower(name)]
	return f, ok
}
