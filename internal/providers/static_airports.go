package providers

import (
	"sort"
	"strings"

	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/models/dtos"
)

// StaticAirport is a hand-maintained entry used when the provider cannot answer.
type StaticAirport struct {
	Code          string
	Name          string
	City          string
	International bool
	Latitude      float64
	Longitude     float64
}

// KnownRegion groups the static airports fetched by GetKnownRegionAirports.
type KnownRegion struct {
	Code        string
	Name        string
	CountryCode string
	Airports    []StaticAirport
}

var knownRegions = map[string]KnownRegion{
	"BD": {
		Code: "BD", Name: "Bangladesh", CountryCode: "BD",
		Airports: []StaticAirport{
			{"DAC", "Hazrat Shahjalal International Airport", "Dhaka", true, 23.8433, 90.3978},
			{"CGP", "Shah Amanat International Airport", "Chittagong", true, 22.2496, 91.8133},
			{"ZYL", "Osmani International Airport", "Sylhet", true, 24.9632, 91.8668},
			{"CXB", "Cox's Bazar Airport", "Cox's Bazar", false, 21.4522, 91.9639},
			{"JSR", "Jessore Airport", "Jessore", false, 23.1838, 89.1608},
			{"RJH", "Shah Makhdum Airport", "Rajshahi", false, 24.4372, 88.6165},
			{"SPD", "Saidpur Airport", "Saidpur", false, 25.7592, 88.9089},
			{"BZL", "Barisal Airport", "Barisal", false, 22.8010, 90.3012},
		},
	},
	"NP": {
		Code: "NP", Name: "Nepal", CountryCode: "NP",
		Airports: []StaticAirport{
			{"KTM", "Tribhuvan International Airport", "Kathmandu", true, 27.6966, 85.3591},
			{"PKR", "Pokhara International Airport", "Pokhara", true, 28.1838, 84.0148},
			{"BWA", "Gautam Buddha International Airport", "Bhairahawa", true, 27.5057, 83.4163},
			{"BIR", "Biratnagar Airport", "Biratnagar", false, 26.4815, 87.2640},
		},
	},
	"LK": {
		Code: "LK", Name: "Sri Lanka", CountryCode: "LK",
		Airports: []StaticAirport{
			{"CMB", "Bandaranaike International Airport", "Colombo", true, 7.1808, 79.8841},
			{"HRI", "Mattala Rajapaksa International Airport", "Hambantota", true, 6.2844, 81.1241},
			{"JAF", "Jaffna International Airport", "Jaffna", true, 9.7923, 80.0701},
			{"RML", "Ratmalana Airport", "Colombo", false, 6.8220, 79.8862},
		},
	},
}

// staticByCode indexes every static airport with its region for per-code fallback.
var staticByCode = func() map[string]staticEntry {
	idx := make(map[string]staticEntry)
	for _, region := range knownRegions {
		for _, a := range region.Airports {
			idx[a.Code] = staticEntry{airport: a, region: region}
		}
	}
	return idx
}()

type staticEntry struct {
	airport StaticAirport
	region  KnownRegion
}

// LookupRegion resolves a region by code ("BD") or name ("bangladesh").
func LookupRegion(key string) (KnownRegion, bool) {
	key = strings.TrimSpace(key)
	if r, ok := knownRegions[strings.ToUpper(key)]; ok {
		return r, true
	}
	for _, r := range knownRegions {
		if strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return KnownRegion{}, false
}

// KnownRegionCodes lists supported region codes in sorted order.
func KnownRegionCodes() []string {
	codes := make([]string, 0, len(knownRegions))
	for code := range knownRegions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// StaticFallbackAirport builds the minimal record substituted for a failed lookup.
func StaticFallbackAirport(code string) (dtos.AirportSummary, bool) {
	entry, ok := staticByCode[strings.ToUpper(code)]
	if !ok {
		return dtos.AirportSummary{}, false
	}
	return staticSummary(entry.airport, entry.region), true
}

// StaticRegionAirports returns the region's static list as display records.
func StaticRegionAirports(region KnownRegion) []dtos.AirportSummary {
	out := make([]dtos.AirportSummary, 0, len(region.Airports))
	for _, a := range region.Airports {
		out = append(out, staticSummary(a, region))
	}
	sortRegionAirports(out)
	return out
}

func staticSummary(a StaticAirport, region KnownRegion) dtos.AirportSummary {
	return dtos.AirportSummary{
		Code:            a.Code,
		Name:            a.Name,
		City:            a.City,
		Country:         region.Name,
		CountryCode:     region.CountryCode,
		DetailedName:    a.Name + ", " + a.City,
		CityCountry:     a.City + ", " + region.Name,
		Coordinates:     &dtos.GeoCode{Latitude: a.Latitude, Longitude: a.Longitude},
		Type:            constants.TypeAirport,
		SubType:         string(constants.TypeAirport),
		IsInternational: a.International,
		Source:          constants.SourceStaticFallback,
	}
}

// sortRegionAirports orders international airports first, then by city.
func sortRegionAirports(airports []dtos.AirportSummary) {
	sort.SliceStable(airports, func(i, j int) bool {
		if airports[i].IsInternational != airports[j].IsInternational {
			return airports[i].IsInternational
		}
		return strings.ToLower(airports[i].City) < strings.ToLower(airports[j].City)
	})
}
