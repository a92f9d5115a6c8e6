package amadeus

import "time"

// Credential is a bearer credential issued by the upstream token endpoint.
// Replaced wholesale on refresh, never mutated.
type Credential struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address holds the address block attached to location records.
type Address struct {
	CityCode    string `json:"cityCode,omitempty"`
	CityName    string `json:"cityName,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	CountryName string `json:"countryName,omitempty"`
}

// City is a city or airport record from the reference-data endpoints.
// GeoCode is nil until a lookup resolves coordinates.
type City struct {
	IataCode string    `json:"iataCode"`
	Name     string    `json:"name"`
	Address  Address   `json:"address"`
	GeoCode  *GeoPoint `json:"geoCode,omitempty"`
}

// SafetyArea is a safety-rated area around a city.
type SafetyArea struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	GeoCode      *GeoPoint      `json:"geoCode,omitempty"`
	SafetyScores map[string]int `json:"safetyScores,omitempty"`
}

// POI is a point of interest. The upstream payload is passed through;
// Category is the only field the engine inspects.
type POI struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Rank     int       `json:"rank,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	GeoCode  *GeoPoint `json:"geoCode,omitempty"`
}

// CategoryRatedArea is one radius bucket of category scores. The upstream
// returns several buckets; only the one at the 1500 evaluation radius is kept.
type CategoryRatedArea struct {
	Radius         int                       `json:"radius"`
	CategoryScores map[string]map[string]int `json:"categoryScores"`
}

// Price is the fare attached to a flight-date record.
type Price struct {
	Total string `json:"total"`
}

// FlightLinks holds the upstream-provided follow-up links of a flight date.
type FlightLinks struct {
	FlightDates  string `json:"flightDates,omitempty"`
	FlightOffers string `json:"flightOffers,omitempty"`
}

// FlightDate is one origin/destination/date fare combination. The Readable*
// and OffersQuery fields are derived by the flight-dates operation.
type FlightDate struct {
	Type          string      `json:"type,omitempty"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
	ReturnDate    string      `json:"returnDate,omitempty"`
	Price         Price       `json:"price"`
	Links         FlightLinks `json:"links"`

	ReadableOrigin      string `json:"readableOrigin,omitempty"`
	ReadableDestination string `json:"readableDestination,omitempty"`
	ReadableDeparture   string `json:"readableDeparture,omitempty"`
	ReadableReturn      string `json:"readableReturn,omitempty"`
	OffersQuery         string `json:"offersQuery,omitempty"`
}

// HomeLocation is the caller-saved home city. The engine reads it and never
// mutates it.
type HomeLocation struct {
	Iata        string   `json:"iata"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	CountryName string   `json:"countryName"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Airports    []string `json:"airports"`
}
