package services

import (
	"sort"
	"strings"

	"travelbook/airports/internal/models/dtos"
)

// Score weights for free-text airport matching.
const (
	scoreCodeExact   = 100
	scoreCodePrefix  = 50
	scoreCityExact   = 80
	scoreCityPrefix  = 40
	scoreCityContain = 20
	scoreNamePrefix  = 30
	scoreNameContain = 10
	scoreMajorHub    = 15
)

// majorHubs get a small boost so large airports win ties against regional ones.
var majorHubs = map[string]struct{}{
	"ATL": {}, "DXB": {}, "LHR": {}, "CDG": {}, "AMS": {}, "FRA": {}, "IST": {}, "MAD": {},
	"JFK": {}, "LAX": {}, "ORD": {}, "DFW": {}, "SFO": {}, "YYZ": {}, "HND": {}, "NRT": {},
	"ICN": {}, "PEK": {}, "PVG": {}, "HKG": {}, "SIN": {}, "BKK": {}, "KUL": {}, "DEL": {},
	"BOM": {}, "DOH": {}, "AUH": {}, "SYD": {}, "MUC": {}, "FCO": {}, "ZRH": {}, "DAC": {},
}

// RelevanceScore rates how well a location matches the free-text query.
// Each field contributes its strongest match only.
func RelevanceScore(query, code, city, name string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	code = strings.ToLower(code)
	city = strings.ToLower(city)
	name = strings.ToLower(name)

	score := 0

	switch {
	case code == q:
		score += scoreCodeExact
	case strings.HasPrefix(code, q):
		score += scoreCodePrefix
	}

	switch {
	case city == "":
	case city == q:
		score += scoreCityExact
	case strings.HasPrefix(city, q):
		score += scoreCityPrefix
	case strings.Contains(city, q):
		score += scoreCityContain
	}

	switch {
	case name == "":
	case strings.HasPrefix(name, q):
		score += scoreNamePrefix
	case strings.Contains(name, q):
		score += scoreNameContain
	}

	if _, ok := majorHubs[strings.ToUpper(code)]; ok {
		score += scoreMajorHub
	}
	return score
}

// RankByRelevance sorts airports by descending score; equal scores keep input order.
func RankByRelevance(query string, airports []dtos.AirportSummary) []dtos.AirportSummary {
	scores := make([]int, len(airports))
	idx := make([]int, len(airports))
	for i, a := range airports {
		scores[i] = RelevanceScore(query, a.Code, a.City, a.Name)
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})

	ranked := make([]dtos.AirportSummary, len(airports))
	for pos, i := range idx {
		ranked[pos] = airports[i]
	}
	return ranked
}
