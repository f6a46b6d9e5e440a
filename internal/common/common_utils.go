package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"travelbook/airports/internal/constants"
)

func GetResponseTime(init time.Time) string {
	timeDiff := time.Since(init).Milliseconds()
	return fmt.Sprintf("%dms", timeDiff)
}

// SearchCacheKey builds the response cache key lower(trim(query))|upper(country)|limit.
func SearchCacheKey(query, country string, limit int) string {
	return string(constants.CachePrefixAirportSearch) +
		strings.ToLower(strings.TrimSpace(query)) + "|" +
		strings.ToUpper(strings.TrimSpace(country)) + "|" +
		strconv.Itoa(limit)
}

// RegionCacheKey builds the response cache key for a region listing.
func RegionCacheKey(region string) string {
	return string(constants.CachePrefixRegion) + strings.ToUpper(strings.TrimSpace(region))
}

func IntPtr(v int) *int {
	return &v
}

func BoolPtr(v bool) *bool {
	return &v
}

// ParseLimit reads a positive integer limit, clamped to max, or returns def.
func ParseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
