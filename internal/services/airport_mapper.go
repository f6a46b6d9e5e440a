package services

import (
	"strings"

	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/models/dtos"
	"travelbook/airports/internal/models/gorm"
)

// SummaryToAirport maps a provider display record onto the stored model.
func SummaryToAirport(s dtos.AirportSummary, defaultCountryCode string) gorm.Airport {
	a := gorm.Airport{
		Code:            strings.ToUpper(s.Code),
		Name:            s.Name,
		DetailedName:    s.DetailedName,
		City:            s.City,
		Country:         s.Country,
		CountryCode:     s.CountryCode,
		Type:            s.Type,
		IsInternational: s.IsInternational,
		Source:          s.Source,
		Provider: gorm.ProviderMetadata{
			SubType:        s.SubType,
			AnalyticsScore: s.AnalyticsScore,
		},
	}

	if a.CountryCode == "" {
		a.CountryCode = strings.ToUpper(defaultCountryCode)
	}
	if a.Name == "" {
		a.Name = a.Code
	}
	if a.Source == "" {
		a.Source = constants.SourceProviderSearch
	}
	if s.Coordinates != nil {
		a.Coordinates = gorm.Coordinates{
			Latitude:  gorm.Float64Ptr(s.Coordinates.Latitude),
			Longitude: gorm.Float64Ptr(s.Coordinates.Longitude),
		}
	}
	return a
}

// AirportToSummary maps a stored record back to the display shape.
func AirportToSummary(a gorm.Airport) dtos.AirportSummary {
	s := dtos.AirportSummary{
		Code:            a.Code,
		Name:            a.Name,
		City:            a.City,
		Country:         a.Country,
		CountryCode:     a.CountryCode,
		DetailedName:    a.DetailedLabel(),
		CityCountry:     a.LocationString(),
		Type:            a.Type,
		SubType:         a.Provider.SubType,
		IsInternational: a.IsInternational,
		AnalyticsScore:  a.Provider.AnalyticsScore,
		Source:          a.Source,
	}
	if a.Coordinates.Latitude != nil && a.Coordinates.Longitude != nil {
		s.Coordinates = &dtos.GeoCode{Latitude: *a.Coordinates.Latitude, Longitude: *a.Coordinates.Longitude}
	}
	return s
}
