package amadeus

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// searchRadius is the fixed radius for safety and POI searches.
	searchRadius = 20

	// scoreRadius selects the category-score record to keep; the upstream
	// returns several radii and the others are discarded.
	scoreRadius = 1500

	defaultOperationTimeout = 30 * time.Second
)

// poiRadiusOverrides lists cities needing a reduced POI search radius; the
// upstream returns nothing for them at the full radius. Keyed by the
// upper-cased search keyword.
var poiRadiusOverrides = map[string]int{
	"HELSINKI": 12,
}

// poiCategories maps a POI search category to the key of its category-score
// record.
var poiCategories = map[string]string{
	"SIGHTS":     "sight",
	"NIGHTLIFE":  "nightLife",
	"SHOPPING":   "shopping",
	"RESTAURANT": "restaurant",
}

// SafetyQuery asks for safety-rated areas around a city. Fallback supplies
// coordinates for when the city search resolves without a geocode.
type SafetyQuery struct {
	CityName    string
	CountryCode string
	Fallback    *GeoPoint
}

// POIQuery asks for points of interest of one category around a city.
type POIQuery struct {
	CityName    string
	CountryCode string
	Category    string
	Fallback    *GeoPoint
}

// POIReport is the result of a points-of-interest query: the resolved city,
// the category's scores at the evaluation radius, and the matching POIs.
type POIReport struct {
	City   City           `json:"city"`
	Scores map[string]int `json:"scores,omitempty"`
	POIs   []POI          `json:"pointsOfInterest"`
}

// FlightDatesQuery asks for the cheapest flight dates between two cities.
// A TripLength of "1".."15" requests round trips of that many days; any
// other value requests one-way fares.
type FlightDatesQuery struct {
	OriginIata      string
	DestinationIata string
	CountryCode     string
	TripLength      string
	NonstopOnly     bool
}

// FlightDatesReport carries the annotated fare dates plus the resolved
// destination, which is reported even when the fare search fails.
type FlightDatesReport struct {
	Destination City         `json:"destination"`
	Currency    string       `json:"currency,omitempty"`
	Flights     []FlightDate `json:"flights"`
}

// Service composes the credential cache, keyword resolver, paginated fetcher
// and fan-out aggregator into the operations the presentation layer calls.
// Each operation resolves locations fresh and runs under its own timeout.
type Service struct {
	client  *Client
	timeout time.Duration
	log     *slog.Logger
}

// NewService constructs a Service. A non-positive timeout falls back to the
// default per-operation timeout.
func NewService(client *Client, timeout time.Duration, log *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &Service{client: client, timeout: timeout, log: log}
}

// Destinations fans out one direct-destinations request per home airport and
// merges the results first-seen-wins by city code, seeded with the home city
// so it is never reported as a destination of itself. Failed airports
// contribute nothing; the merged result is sorted by destination country.
func (s *Service) Destinations(ctx context.Context, home HomeLocation) ([]City, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	batches, errs := fanOut(ctx, home.Airports, func(ctx context.Context, iata string) ([]City, error) {
		var resp struct {
			Data []City `json:"data"`
		}
		query := url.Values{"departureAirportCode": {iata}}
		if err := s.client.get(ctx, "/v1/airport/direct-destinations", query, &resp); err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
	for i, err := range errs {
		if err != nil {
			s.log.Warn("direct destinations fetch failed", "airport", home.Airports[i], "err", err)
		}
	}

	cities := mergeFirstSeen(batches, func(c City) string { return c.IataCode }, home.Iata)
	sort.SliceStable(cities, func(i, j int) bool {
		return cities[i].Address.CountryName < cities[j].Address.CountryName
	})
	return cities, nil
}

// SearchCities looks up cities matching a free-text keyword, excluding the
// given IATA code (the caller's current home) from the results.
func (s *Service) SearchCities(ctx context.Context, keyword, excludeIata string) ([]City, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := url.Values{
		"subType": {"CITY"},
		"keyword": {keyword},
	}
	var resp struct {
		Data []City `json:"data"`
	}
	if err := s.client.get(ctx, "/v1/reference-data/locations", query, &resp); err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(resp.Data))
	for _, city := range resp.Data {
		if city.IataCode == excludeIata {
			continue
		}
		cities = append(cities, city)
	}
	return cities, nil
}

// AirportsForCity returns the IATA codes of the airports serving the given
// city, in the order the upstream lists them.
func (s *Service) AirportsForCity(ctx context.Context, cityName, cityIata, countryCode string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := url.Values{
		"subType":     {"AIRPORT"},
		"keyword":     {cityName},
		"countryCode": {countryCode},
	}
	var resp struct {
		Data []City `json:"data"`
	}
	if err := s.client.get(ctx, "/v1/reference-data/locations", query, &resp); err != nil {
		return nil, err
	}

	var airports []string
	for _, airport := range resp.Data {
		if airport.Address.CityCode == cityIata {
			airports = append(airports, airport.IataCode)
		}
	}
	return airports, nil
}

// SafetyAreas resolves the city, fetches every page of safety-rated areas
// around its coordinates, and keeps the areas belonging to the city per
// MatchAreaName.
func (s *Service) SafetyAreas(ctx context.Context, q SafetyQuery) ([]SafetyArea, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	keyword := CityKeyword(q.CityName)
	city, err := s.cityByKeyword(ctx, keyword, q.CountryCode, q.Fallback)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"latitude":    {formatCoord(city.GeoCode.Latitude)},
		"longitude":   {formatCoord(city.GeoCode.Longitude)},
		"radius":      {strconv.Itoa(searchRadius)},
		"page[limit]": {strconv.Itoa(s.client.pageLimit)},
	}
	areas, err := fetchAllPages[SafetyArea](ctx, s.client, "/v1/safety/safety-rated-locations", query)
	if err != nil {
		return nil, err
	}

	matched := make([]SafetyArea, 0, len(areas))
	for _, area := range areas {
		if MatchAreaName(keyword, area.Name) {
			matched = append(matched, area)
		}
	}
	return matched, nil
}

// PointsOfInterest resolves the city, reads the category's scores at the
// evaluation radius, and fetches every page of POIs of that category around
// the city.
func (s *Service) PointsOfInterest(ctx context.Context, q POIQuery) (POIReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	category := strings.ToUpper(q.Category)
	scoreKey, ok := poiCategories[category]
	if !ok {
		return POIReport{}, fmt.Errorf("unknown poi category %q", q.Category)
	}

	keyword := CityKeyword(q.CityName)
	city, err := s.cityByKeyword(ctx, keyword, q.CountryCode, q.Fallback)
	if err != nil {
		return POIReport{}, err
	}

	scores, err := s.categoryScores(ctx, city, scoreKey)
	if err != nil {
		return POIReport{City: city}, err
	}

	radius := searchRadius
	if r, ok := poiRadiusOverrides[strings.ToUpper(keyword)]; ok {
		radius = r
	}

	query := url.Values{
		"latitude":    {formatCoord(city.GeoCode.Latitude)},
		"longitude":   {formatCoord(city.GeoCode.Longitude)},
		"radius":      {strconv.Itoa(radius)},
		"page[limit]": {strconv.Itoa(s.client.pageLimit)},
		"categories":  {category},
	}
	pois, err := fetchAllPages[POI](ctx, s.client, "/v1/reference-data/locations/pois", query)
	if err != nil {
		return POIReport{City: city, Scores: scores}, err
	}

	return POIReport{City: city, Scores: scores, POIs: pois}, nil
}

// FlightDates resolves the destination city and searches the cheapest fare
// dates from the origin, annotating each result with readable names, dates
// and the query string for the corresponding offers lookup.
func (s *Service) FlightDates(ctx context.Context, q FlightDatesQuery) (FlightDatesReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dest, err := s.cityDetails(ctx, q.DestinationIata, q.CountryCode)
	if err != nil {
		return FlightDatesReport{}, err
	}

	query := url.Values{
		"origin":      {q.OriginIata},
		"destination": {q.DestinationIata},
		"nonStop":     {strconv.FormatBool(q.NonstopOnly)},
	}
	if days, err := strconv.Atoi(q.TripLength); err == nil && days >= 1 && days <= 15 {
		query.Set("duration", q.TripLength)
	} else {
		query.Set("oneWay", "true")
	}

	var resp struct {
		Data []FlightDate `json:"data"`
		Meta struct {
			Currency string `json:"currency"`
		} `json:"meta"`
		Dictionaries struct {
			Locations map[string]struct {
				DetailedName string `json:"detailedName"`
			} `json:"locations"`
		} `json:"dictionaries"`
	}
	if err := s.client.get(ctx, "/v1/shopping/flight-dates", query, &resp); err != nil {
		return FlightDatesReport{Destination: dest}, err
	}

	flights := resp.Data
	for i := range flights {
		f := &flights[i]
		if loc, ok := resp.Dictionaries.Locations[f.Origin]; ok {
			f.ReadableOrigin = fmt.Sprintf("%s (%s)", loc.DetailedName, f.Origin)
		}
		if loc, ok := resp.Dictionaries.Locations[f.Destination]; ok {
			f.ReadableDestination = fmt.Sprintf("%s (%s)", loc.DetailedName, f.Destination)
		}
		f.ReadableDeparture = readableDate(f.DepartureDate)
		f.ReadableReturn = readableDate(f.ReturnDate)
		if _, qs, ok := strings.Cut(f.Links.FlightOffers, "?"); ok {
			f.OffersQuery = qs
		}
	}

	return FlightDatesReport{
		Destination: dest,
		Currency:    resp.Meta.Currency,
		Flights:     flights,
	}, nil
}

// cityByKeyword resolves a truncated keyword to the best-matching city. When
// the search yields no geocode, the caller's fallback coordinates are used;
// with neither, resolution fails.
func (s *Service) cityByKeyword(ctx context.Context, keyword, countryCode string, fallback *GeoPoint) (City, error) {
	query := url.Values{
		"keyword": {keyword},
		"max":     {"1"},
	}
	if countryCode != "" {
		query.Set("countryCode", countryCode)
	}
	var resp struct {
		Data []City `json:"data"`
	}
	if err := s.client.get(ctx, "/v1/reference-data/locations/cities", query, &resp); err != nil {
		return City{}, err
	}

	var city City
	if len(resp.Data) > 0 {
		city = resp.Data[0]
	}
	if city.GeoCode == nil {
		if fallback == nil {
			return City{}, &ResolutionError{Keyword: keyword}
		}
		city.GeoCode = fallback
	}
	return city, nil
}

// cityDetails looks up a city by IATA code and backfills its geocode from
// the city-search endpoint when the locations record lacks one.
func (s *Service) cityDetails(ctx context.Context, cityIata, countryCode string) (City, error) {
	query := url.Values{
		"subType":     {"CITY"},
		"keyword":     {cityIata},
		"countryCode": {countryCode},
	}
	var resp struct {
		Data []City `json:"data"`
	}
	if err := s.client.get(ctx, "/v1/reference-data/locations", query, &resp); err != nil {
		return City{}, err
	}

	var city City
	found := false
	for _, candidate := range resp.Data {
		if candidate.IataCode == cityIata {
			city = candidate
			found = true
			break
		}
	}
	if !found {
		return City{}, &ResolutionError{Keyword: cityIata}
	}

	precise, err := s.cityByKeyword(ctx, CityKeyword(city.Name), countryCode, city.GeoCode)
	if err != nil {
		return City{}, err
	}
	city.GeoCode = precise.GeoCode
	return city, nil
}

// categoryScores returns the named category's scores at the evaluation
// radius around the city.
func (s *Service) categoryScores(ctx context.Context, city City, scoreKey string) (map[string]int, error) {
	query := url.Values{
		"latitude":  {formatCoord(city.GeoCode.Latitude)},
		"longitude": {formatCoord(city.GeoCode.Longitude)},
	}
	var resp struct {
		Data []CategoryRatedArea `json:"data"`
	}
	if err := s.client.get(ctx, "/v1/location/analytics/category-rated-areas", query, &resp); err != nil {
		return nil, err
	}

	for _, area := range resp.Data {
		if area.Radius == scoreRadius {
			return area.CategoryScores[scoreKey], nil
		}
	}
	return nil, fmt.Errorf("no category scores at radius %d for %s", scoreRadius, city.Name)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func readableDate(isoDate string) string {
	if isoDate == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return ""
	}
	return t.Format("Mon 02 Jan 2006")
}
