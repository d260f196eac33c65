package optd

import "testing"

func TestLocationTypePredicates(t *testing.T) {
	tests := []struct {
		locType   string
		airport   bool
		heliport  bool
		port      bool
		rail      bool
		bus       bool
		offline   bool
		city      bool
		transport bool
	}{
		{locType: "A", airport: true, transport: true},
		{locType: "H", heliport: true, transport: true},
		{locType: "P", port: true, transport: true},
		{locType: "R", rail: true, transport: true},
		{locType: "B", bus: true, transport: true},
		{locType: "O", offline: true, city: true, transport: true},
		{locType: "C", city: true},
		{locType: "CA", airport: true, city: true, transport: true},
		{locType: "CR", rail: true, city: true, transport: true},
		{locType: ""},
		{locType: "G"},
		{locType: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.locType, func(t *testing.T) {
			checks := []struct {
				name string
				got  bool
				want bool
			}{
				{"IsAirport", IsAirport(tt.locType), tt.airport},
				{"IsHeliport", IsHeliport(tt.locType), tt.heliport},
				{"IsPort", IsPort(tt.locType), tt.port},
				{"IsRailwayStation", IsRailwayStation(tt.locType), tt.rail},
				{"IsBusStation", IsBusStation(tt.locType), tt.bus},
				{"IsOffline", IsOffline(tt.locType), tt.offline},
				{"IsCity", IsCity(tt.locType), tt.city},
				{"IsTransportRelated", IsTransportRelated(tt.locType), tt.transport},
			}
			for _, ch := range checks {
				if ch.got != ch.want {
					t.Errorf("%s(%q) = %v, want %v", ch.name, tt.locType, ch.got, ch.want)
				}
			}
		})
	}
}

func TestTransportRelatedIsUnionOfKinds(t *testing.T) {
	for _, locType := range []string{"", "A", "C", "CA", "G", "HP", "RB", "O", "Z", "CO"} {
		union := IsAirport(locType) || IsHeliport(locType) || IsPort(locType) ||
			IsRailwayStation(locType) || IsBusStation(locType) || IsOffline(locType)
		if got := IsTransportRelated(locType); got != union {
			t.Errorf("IsTransportRelated(%q) = %v, want %v", locType, got, union)
		}
	}
}
