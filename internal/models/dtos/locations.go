package dtos

import (
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
)

// ---- TOKEN ----
type TokenResponse struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	State       string `json:"state"`
}

// ---- LOCATIONS (raw provider shape) ----
type LocationsResponse struct {
	Meta *LocationsMeta `json:"meta,omitempty"`
	Data []Location     `json:"data"`
}

type LocationsMeta struct {
	Count int `json:"count"`
}

type LocationResponse struct {
	Data Location `json:"data"`
}

type Location struct {
	Type           string             `json:"type"`
	SubType        string             `json:"subType"`
	Name           string             `json:"name"`
	DetailedName   string             `json:"detailedName"`
	ID             string             `json:"id"`
	IataCode       string             `json:"iataCode"`
	GeoCode        *GeoCode           `json:"geoCode,omitempty"`
	Address        LocationAddress    `json:"address"`
	Analytics      *LocationAnalytics `json:"analytics,omitempty"`
	TimeZoneOffset string             `json:"timeZoneOffset,omitempty"`
}

type GeoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LocationAddress struct {
	CityName    string `json:"cityName"`
	CityCode    string `json:"cityCode"`
	CountryName string `json:"countryName"`
	CountryCode string `json:"countryCode"`
	RegionCode  string `json:"regionCode"`
}

type LocationAnalytics struct {
	Travelers struct {
		Score common.RoundedInt `json:"score"`
	} `json:"travelers"`
}

// ---- AIRPORT SUMMARY (internal display shape) ----
type AirportSummary struct {
	Code            string                  `json:"code"`
	Name            string                  `json:"name"`
	City            string                  `json:"city"`
	Country         string                  `json:"country"`
	CountryCode     string                  `json:"countryCode"`
	DetailedName    string                  `json:"detailedName"`
	CityCountry     string                  `json:"cityCountry"`
	Coordinates     *GeoCode                `json:"coordinates,omitempty"`
	Type            constants.AirportType   `json:"type"`
	SubType         string                  `json:"subType,omitempty"`
	IsInternational bool                    `json:"isInternational"`
	AnalyticsScore  *int                    `json:"analyticsScore,omitempty"`
	Source          constants.AirportSource `json:"source"`
}

// RegionAirports is the outcome of a hybrid region fetch.
type RegionAirports struct {
	Region      string           `json:"region"`
	Country     string           `json:"country"`
	CountryCode string           `json:"countryCode"`
	Airports    []AirportSummary `json:"airports"`
	Source      string           `json:"source"`
	Degraded    bool             `json:"degraded"`
}
