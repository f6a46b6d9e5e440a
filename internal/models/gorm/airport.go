package gorm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"travelbook/airports/internal/constants"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

var (
	ErrInvalidCode        = errors.New("airport code must be 3 letters")
	ErrInvalidICAO        = errors.New("icao code must be 4 letters")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// Coordinates are optional; both are nil when the provider omits a geocode.
type Coordinates struct {
	Latitude  *float64 `gorm:"column:latitude;type:numeric(10,6);index:idx_airports_coordinates,priority:1" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude;type:numeric(10,6);index:idx_airports_coordinates,priority:2" json:"longitude,omitempty"`
}

// ProviderMetadata tracks provenance and staleness of provider-sourced data.
type ProviderMetadata struct {
	SubType        string     `gorm:"column:sub_type;type:varchar(30)" json:"subType,omitempty"`
	AnalyticsScore *int       `gorm:"column:analytics_score" json:"analyticsScore,omitempty"`
	LastSyncedAt   *time.Time `gorm:"column:last_synced_at;index" json:"lastSyncedAt,omitempty"`
}

// Airport is the canonical airport reference record keyed by its 3-letter code.
type Airport struct {
	ID              string                  `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Code            string                  `gorm:"column:code;type:varchar(3);not null;uniqueIndex" json:"code"`
	ICAOCode        *string                 `gorm:"column:icao_code;type:varchar(4);uniqueIndex" json:"icaoCode,omitempty"`
	Name            string                  `gorm:"column:name;type:text;not null" json:"name"`
	DetailedName    string                  `gorm:"column:detailed_name;type:text" json:"detailedName,omitempty"`
	City            string                  `gorm:"column:city;type:varchar(100);index:idx_airports_city_country,priority:1" json:"city"`
	Country         string                  `gorm:"column:country;type:varchar(100);index:idx_airports_city_country,priority:2" json:"country"`
	CountryCode     string                  `gorm:"column:country_code;type:varchar(2);index:idx_airports_country_active,priority:1" json:"countryCode"`
	Coordinates     Coordinates             `gorm:"embedded" json:"coordinates"`
	Type            constants.AirportType   `gorm:"column:type;type:varchar(20);not null;default:AIRPORT" json:"type"`
	IsInternational bool                    `gorm:"column:is_international;not null;index:idx_airports_intl_active,priority:1" json:"isInternational"`
	IsActive        bool                    `gorm:"column:is_active;not null;index:idx_airports_country_active,priority:2;index:idx_airports_intl_active,priority:2" json:"isActive"`
	Provider        ProviderMetadata        `gorm:"embedded;embeddedPrefix:provider_" json:"providerMetadata"`
	Source          constants.AirportSource `gorm:"column:source;type:varchar(20);not null" json:"source"`
	SearchCount     int64                   `gorm:"column:search_count;not null;default:0;index:idx_airports_search_count,sort:desc" json:"searchCount"`
	LastSearchedAt  *time.Time              `gorm:"column:last_searched_at" json:"lastSearchedAt,omitempty"`
	Aliases         []string                `gorm:"column:aliases;type:text;serializer:json" json:"aliases,omitempty"`
	Tags            []string                `gorm:"column:tags;type:text;serializer:json" json:"tags,omitempty"`
	CreatedAt       time.Time               `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time               `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Airport) TableName() string {
	return "airports"
}

// BeforeCreate assigns the surrogate id and validates the natural key.
func (a *Airport) BeforeCreate(tx *gormlib.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a.Validate()
}

// BeforeUpdate rejects records that would violate field bounds.
func (a *Airport) BeforeUpdate(tx *gormlib.DB) error {
	if a.Code == "" {
		// partial updates through Model(&Airport{}) carry no code
		return nil
	}
	return a.Validate()
}

// Validate normalizes codes to upper case and checks bounds.
func (a *Airport) Validate() error {
	a.Code = strings.ToUpper(strings.TrimSpace(a.Code))
	if !isLetters(a.Code, 3) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, a.Code)
	}
	if a.ICAOCode != nil {
		icao := strings.ToUpper(strings.TrimSpace(*a.ICAOCode))
		if icao == "" {
			a.ICAOCode = nil
		} else if !isLetters(icao, 4) {
			return fmt.Errorf("%w: %q", ErrInvalidICAO, icao)
		} else {
			a.ICAOCode = &icao
		}
	}
	a.CountryCode = strings.ToUpper(strings.TrimSpace(a.CountryCode))
	if a.Type == "" {
		a.Type = constants.TypeAirport
	}
	if lat := a.Coordinates.Latitude; lat != nil && (*lat < -90 || *lat > 90) {
		return fmt.Errorf("%w: latitude %f", ErrInvalidCoordinates, *lat)
	}
	if lng := a.Coordinates.Longitude; lng != nil && (*lng < -180 || *lng > 180) {
		return fmt.Errorf("%w: longitude %f", ErrInvalidCoordinates, *lng)
	}
	return nil
}

// DisplayName is the short label used by pickers, e.g. "Dhaka (DAC)".
func (a *Airport) DisplayName() string {
	if a.City == "" {
		return fmt.Sprintf("%s (%s)", a.Name, a.Code)
	}
	return fmt.Sprintf("%s (%s)", a.City, a.Code)
}

// LocationString joins city and country, skipping whichever is empty.
func (a *Airport) LocationString() string {
	switch {
	case a.City == "":
		return a.Country
	case a.Country == "":
		return a.City
	}
	return a.City + ", " + a.Country
}

// DetailedLabel prefers the provider's detailed name and otherwise builds one.
func (a *Airport) DetailedLabel() string {
	if a.DetailedName != "" {
		return a.DetailedName
	}
	if loc := a.LocationString(); loc != "" {
		return a.Name + ", " + loc
	}
	return a.Name
}

// IsStale reports whether the record has not been synced within window.
func (a *Airport) IsStale(now time.Time, window time.Duration) bool {
	if a.Provider.LastSyncedAt == nil {
		return true
	}
	return a.Provider.LastSyncedAt.Before(now.Add(-window))
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Float64Ptr is a small helper for building optional coordinates.
func Float64Ptr(v float64) *float64 {
	return &v
}
