package api

import (
	"context"

	"github.com/KnowYourLines/varyfly/internal/amadeus"
	"github.com/KnowYourLines/varyfly/internal/session"
)

// TravelService defines the aggregation operations needed by handlers.
type TravelService interface {
	Destinations(ctx context.Context, home amadeus.HomeLocation) ([]amadeus.City, error)
	SearchCities(ctx context.Context, keyword, excludeIata string) ([]amadeus.City, error)
	AirportsForCity(ctx context.Context, cityName, cityIata, countryCode string) ([]string, error)
	SafetyAreas(ctx context.Context, q amadeus.SafetyQuery) ([]amadeus.SafetyArea, error)
	PointsOfInterest(ctx context.Context, q amadeus.POIQuery) (amadeus.POIReport, error)
	FlightDates(ctx context.Context, q amadeus.FlightDatesQuery) (amadeus.FlightDatesReport, error)
}

// SessionStore defines the per-session state operations needed by handlers.
type SessionStore interface {
	HomeCity(ctx context.Context, sessionID string) (*amadeus.HomeLocation, error)
	SaveHomeCity(ctx context.Context, sessionID string, home *amadeus.HomeLocation) error
	RemoveHomeCity(ctx context.Context, sessionID string) error
	Preferences(ctx context.Context, sessionID string) (*session.Preferences, error)
	SavePreferences(ctx context.Context, sessionID string, prefs *session.Preferences) error
}
