package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KnowYourLines/varyfly/internal/amadeus"
	"github.com/KnowYourLines/varyfly/internal/api"
	"github.com/KnowYourLines/varyfly/internal/session"
)

// ---- mock implementations ----

type mockTravel struct {
	destinationsFn     func(ctx context.Context, home amadeus.HomeLocation) ([]amadeus.City, error)
	searchCitiesFn     func(ctx context.Context, keyword, excludeIata string) ([]amadeus.City, error)
	airportsForCityFn  func(ctx context.Context, cityName, cityIata, countryCode string) ([]string, error)
	safetyAreasFn      func(ctx context.Context, q amadeus.SafetyQuery) ([]amadeus.SafetyArea, error)
	pointsOfInterestFn func(ctx context.Context, q amadeus.POIQuery) (amadeus.POIReport, error)
	flightDatesFn      func(ctx context.Context, q amadeus.FlightDatesQuery) (amadeus.FlightDatesReport, error)
}

func newMockTravel() *mockTravel {
	return &mockTravel{
		destinationsFn: func(_ context.Context, _ amadeus.HomeLocation) ([]amadeus.City, error) {
			return nil, nil
		},
		searchCitiesFn: func(_ context.Context, _, _ string) ([]amadeus.City, error) {
			return nil, nil
		},
		airportsForCityFn: func(_ context.Context, _, _, _ string) ([]string, error) {
			return nil, nil
		},
		safetyAreasFn: func(_ context.Context, _ amadeus.SafetyQuery) ([]amadeus.SafetyArea, error) {
			return nil, nil
		},
		pointsOfInterestFn: func(_ context.Context, _ amadeus.POIQuery) (amadeus.POIReport, error) {
			return amadeus.POIReport{}, nil
		},
		flightDatesFn: func(_ context.Context, _ amadeus.FlightDatesQuery) (amadeus.FlightDatesReport, error) {
			return amadeus.FlightDatesReport{}, nil
		},
	}
}

func (m *mockTravel) Destinations(ctx context.Context, home amadeus.HomeLocation) ([]amadeus.City, error) {
	return m.destinationsFn(ctx, home)
}
func (m *mockTravel) SearchCities(ctx context.Context, keyword, excludeIata string) ([]amadeus.City, error) {
	return m.searchCitiesFn(ctx, keyword, excludeIata)
}
func (m *mockTravel) AirportsForCity(ctx context.Context, cityName, cityIata, countryCode string) ([]string, error) {
	return m.airportsForCityFn(ctx, cityName, cityIata, countryCode)
}
func (m *mockTravel) SafetyAreas(ctx context.Context, q amadeus.SafetyQuery) ([]amadeus.SafetyArea, error) {
	return m.safetyAreasFn(ctx, q)
}
func (m *mockTravel) PointsOfInterest(ctx context.Context, q amadeus.POIQuery) (amadeus.POIReport, error) {
	return m.pointsOfInterestFn(ctx, q)
}
func (m *mockTravel) FlightDates(ctx context.Context, q amadeus.FlightDatesQuery) (amadeus.FlightDatesReport, error) {
	return m.flightDatesFn(ctx, q)
}

type mockSessions struct {
	homeCityFn        func(ctx context.Context, sessionID string) (*amadeus.HomeLocation, error)
	saveHomeCityFn    func(ctx context.Context, sessionID string, home *amadeus.HomeLocation) error
	removeHomeCityFn  func(ctx context.Context, sessionID string) error
	preferencesFn     func(ctx context.Context, sessionID string) (*session.Preferences, error)
	savePreferencesFn func(ctx context.Context, sessionID string, prefs *session.Preferences) error
}

func newMockSessions() *mockSessions {
	return &mockSessions{
		homeCityFn: func(_ context.Context, _ string) (*amadeus.HomeLocation, error) {
			return nil, nil
		},
		saveHomeCityFn: func(_ context.Context, _ string, _ *amadeus.HomeLocation) error {
			return nil
		},
		removeHomeCityFn: func(_ context.Context, _ string) error { return nil },
		preferencesFn: func(_ context.Context, _ string) (*session.Preferences, error) {
			return nil, nil
		},
		savePreferencesFn: func(_ context.Context, _ string, _ *session.Preferences) error {
			return nil
		},
	}
}

func (m *mockSessions) HomeCity(ctx context.Context, sessionID string) (*amadeus.HomeLocation, error) {
	return m.homeCityFn(ctx, sessionID)
}
func (m *mockSessions) SaveHomeCity(ctx context.Context, sessionID string, home *amadeus.HomeLocation) error {
	return m.saveHomeCityFn(ctx, sessionID, home)
}
func (m *mockSessions) RemoveHomeCity(ctx context.Context, sessionID string) error {
	return m.removeHomeCityFn(ctx, sessionID)
}
func (m *mockSessions) Preferences(ctx context.Context, sessionID string) (*session.Preferences, error) {
	return m.preferencesFn(ctx, sessionID)
}
func (m *mockSessions) SavePreferences(ctx context.Context, sessionID string, prefs *session.Preferences) error {
	return m.savePreferencesFn(ctx, sessionID, prefs)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func sampleHome() *amadeus.HomeLocation {
	return &amadeus.HomeLocation{
		Iata:        "LON",
		Name:        "London",
		CountryCode: "GB",
		CountryName: "United Kingdom",
		Airports:    []string{"LHR", "LGW"},
	}
}

func buildRouter(travel api.TravelService, sessions api.SessionStore) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(travel, sessions, log)
	return api.NewRouter(handlers, &mockPinger{}, 0, log)
}

// ---- GET /api/v1/cities ----

func TestSearchCities_MissingKeyword(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchCities_ExcludesHomeCity(t *testing.T) {
	var gotExclude string
	travel := newMockTravel()
	travel.searchCitiesFn = func(_ context.Context, _, excludeIata string) ([]amadeus.City, error) {
		gotExclude = excludeIata
		return []amadeus.City{{IataCode: "PAR", Name: "PARIS"}}, nil
	}
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, _ string) (*amadeus.HomeLocation, error) {
		return sampleHome(), nil
	}

	router := buildRouter(travel, sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities?keyword=paris", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LON", gotExclude)
}

func TestSearchCities_UpstreamFailureYieldsEmptyList(t *testing.T) {
	travel := newMockTravel()
	travel.searchCitiesFn = func(_ context.Context, _, _ string) ([]amadeus.City, error) {
		return nil, fmt.Errorf("upstream down")
	}

	router := buildRouter(travel, newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities?keyword=paris", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Cities []amadeus.City `json:"cities"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Empty(t, body.Cities)
}

// ---- POST/GET/DELETE /api/v1/home ----

func TestSaveHome_StoresAirports(t *testing.T) {
	travel := newMockTravel()
	travel.airportsForCityFn = func(_ context.Context, cityName, cityIata, _ string) ([]string, error) {
		assert.Equal(t, "London", cityName)
		assert.Equal(t, "LON", cityIata)
		return []string{"LHR", "LGW", "STN"}, nil
	}
	var saved *amadeus.HomeLocation
	sessions := newMockSessions()
	sessions.saveHomeCityFn = func(_ context.Context, _ string, home *amadeus.HomeLocation) error {
		saved = home
		return nil
	}

	router := buildRouter(travel, sessions)
	body := `{"iata":"LON","name":"London","countryCode":"GB","countryName":"United Kingdom"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/home", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.Equal(t, []string{"LHR", "LGW", "STN"}, saved.Airports)
}

func TestSaveHome_AirportLookupFailureStillSaves(t *testing.T) {
	travel := newMockTravel()
	travel.airportsForCityFn = func(_ context.Context, _, _, _ string) ([]string, error) {
		return nil, fmt.Errorf("upstream down")
	}
	saveCalled := false
	sessions := newMockSessions()
	sessions.saveHomeCityFn = func(_ context.Context, _ string, home *amadeus.HomeLocation) error {
		saveCalled = true
		assert.Empty(t, home.Airports)
		return nil
	}

	router := buildRouter(travel, sessions)
	body := `{"iata":"LON","name":"London"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/home", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saveCalled)
}

func TestSaveHome_InvalidBody(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/home", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveHome_MissingIata(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/home", strings.NewReader(`{"name":"London"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHome_NotSaved(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHome_Saved(t *testing.T) {
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, _ string) (*amadeus.HomeLocation, error) {
		return sampleHome(), nil
	}

	router := buildRouter(newMockTravel(), sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got amadeus.HomeLocation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "LON", got.Iata)
}

func TestRemoveHome(t *testing.T) {
	removed := false
	sessions := newMockSessions()
	sessions.removeHomeCityFn = func(_ context.Context, _ string) error {
		removed = true
		return nil
	}

	router := buildRouter(newMockTravel(), sessions)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/home", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, removed)
}

// ---- GET /api/v1/destinations ----

func TestDestinations_NoHomeCity(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDestinations_Success(t *testing.T) {
	travel := newMockTravel()
	travel.destinationsFn = func(_ context.Context, home amadeus.HomeLocation) ([]amadeus.City, error) {
		assert.Equal(t, "LON", home.Iata)
		return []amadeus.City{{IataCode: "MAD"}, {IataCode: "BCN"}}, nil
	}
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, _ string) (*amadeus.HomeLocation, error) {
		return sampleHome(), nil
	}

	router := buildRouter(travel, sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Destinations []amadeus.City `json:"destinations"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Destinations, 2)
	assert.Equal(t, "MAD", body.Destinations[0].IataCode)
}

func TestDestinations_UpstreamFailureYieldsEmptyList(t *testing.T) {
	travel := newMockTravel()
	travel.destinationsFn = func(_ context.Context, _ amadeus.HomeLocation) ([]amadeus.City, error) {
		return nil, fmt.Errorf("upstream down")
	}
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, _ string) (*amadeus.HomeLocation, error) {
		return sampleHome(), nil
	}

	router := buildRouter(travel, sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/destinations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Destinations []amadeus.City `json:"destinations"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Empty(t, body.Destinations)
}

// ---- GET /api/v1/safety ----

func TestSafetyAreas_MissingCityName(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/safety", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSafetyAreas_PassesFallbackCoordinates(t *testing.T) {
	var gotQuery amadeus.SafetyQuery
	travel := newMockTravel()
	travel.safetyAreasFn = func(_ context.Context, q amadeus.SafetyQuery) ([]amadeus.SafetyArea, error) {
		gotQuery = q
		return nil, nil
	}

	router := buildRouter(travel, newMockSessions())
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/safety?city_name=Valletta&country_code=MT&latitude=35.9&longitude=14.5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Valletta", gotQuery.CityName)
	assert.Equal(t, "MT", gotQuery.CountryCode)
	require.NotNil(t, gotQuery.Fallback)
	assert.Equal(t, 35.9, gotQuery.Fallback.Latitude)
	assert.Equal(t, 14.5, gotQuery.Fallback.Longitude)
}

func TestSafetyAreas_UpstreamFailureYieldsEmptyList(t *testing.T) {
	travel := newMockTravel()
	travel.safetyAreasFn = func(_ context.Context, _ amadeus.SafetyQuery) ([]amadeus.SafetyArea, error) {
		return nil, fmt.Errorf("upstream down")
	}

	router := buildRouter(travel, newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/safety?city_name=Valletta", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Areas []amadeus.SafetyArea `json:"areas"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Empty(t, body.Areas)
}

// ---- GET /api/v1/pois/{category} ----

func TestPointsOfInterest_CategoryFromPath(t *testing.T) {
	var gotQuery amadeus.POIQuery
	travel := newMockTravel()
	travel.pointsOfInterestFn = func(_ context.Context, q amadeus.POIQuery) (amadeus.POIReport, error) {
		gotQuery = q
		return amadeus.POIReport{
			City:   amadeus.City{IataCode: "HEL"},
			Scores: map[string]int{"overall": 90},
			POIs:   []amadeus.POI{{Name: "Suomenlinna", Category: "SIGHTS"}},
		}, nil
	}

	router := buildRouter(travel, newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pois/sights?city_name=Helsinki&country_code=FI", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sights", gotQuery.Category)
	assert.Equal(t, "Helsinki", gotQuery.CityName)

	var report amadeus.POIReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	require.Len(t, report.POIs, 1)
	assert.Equal(t, "Suomenlinna", report.POIs[0].Name)
}

func TestPointsOfInterest_MissingCityName(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pois/sights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPointsOfInterest_UpstreamFailureYieldsEmptyReport(t *testing.T) {
	travel := newMockTravel()
	travel.pointsOfInterestFn = func(_ context.Context, _ amadeus.POIQuery) (amadeus.POIReport, error) {
		return amadeus.POIReport{}, fmt.Errorf("upstream down")
	}

	router := buildRouter(travel, newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pois/sights?city_name=Helsinki", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var report amadeus.POIReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Empty(t, report.POIs)
}

// ---- GET /api/v1/flight-dates ----

func TestFlightDates_UsesHomeAndPreferences(t *testing.T) {
	var gotQuery amadeus.FlightDatesQuery
	travel := newMockTravel()
	travel.flightDatesFn = func(_ context.Context, q amadeus.FlightDatesQuery) (amadeus.FlightDatesReport, error) {
		gotQuery = q
		return amadeus.FlightDatesReport{Destination: amadeus.City{IataCode: "MAD", Name: "MADRID"}, Currency: "EUR"}, nil
	}
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, _ string) (*amadeus.HomeLocation, error) {
		return sampleHome(), nil
	}
	sessions.preferencesFn = func(_ context.Context, _ string) (*session.Preferences, error) {
		return &session.Preferences{TripLength: "7", NonstopOnly: true}, nil
	}

	router := buildRouter(travel, sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flight-dates?destination_iata=MAD&country_code=ES", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LON", gotQuery.OriginIata)
	assert.Equal(t, "MAD", gotQuery.DestinationIata)
	assert.Equal(t, "ES", gotQuery.CountryCode)
	assert.Equal(t, "7", gotQuery.TripLength)
	assert.True(t, gotQuery.NonstopOnly)
}

func TestFlightDates_MissingDestination(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flight-dates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightDates_NoHomeCity(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/flight-dates?destination_iata=MAD", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- GET/PUT /api/v1/preferences ----

func TestGetPreferences_DefaultsWhenUnsaved(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var prefs session.Preferences
	require.NoError(t, json.NewDecoder(w.Body).Decode(&prefs))
	assert.Empty(t, prefs.TripLength)
	assert.False(t, prefs.NonstopOnly)
}

func TestSavePreferences(t *testing.T) {
	var saved *session.Preferences
	sessions := newMockSessions()
	sessions.savePreferencesFn = func(_ context.Context, _ string, prefs *session.Preferences) error {
		saved = prefs
		return nil
	}

	router := buildRouter(newMockTravel(), sessions)
	body := `{"tripLength":"10","nonstopOnly":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, saved)
	assert.Equal(t, "10", saved.TripLength)
	assert.True(t, saved.NonstopOnly)
}

func TestSavePreferences_InvalidBody(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- session middleware ----

func TestSession_CookieAssignedOnFirstRequest(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == api.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "session cookie should be set")
	_, err := uuid.Parse(sessionCookie.Value)
	assert.NoError(t, err, "session cookie should be a valid UUID")
	assert.True(t, sessionCookie.HttpOnly)
}

func TestSession_ExistingCookieReused(t *testing.T) {
	id := uuid.NewString()
	var gotSessionID string
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, sessionID string) (*amadeus.HomeLocation, error) {
		gotSessionID = sessionID
		return nil, nil
	}

	router := buildRouter(newMockTravel(), sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: id})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, id, gotSessionID)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, api.SessionCookie, c.Name, "existing valid cookie should not be reissued")
	}
}

func TestSession_MalformedCookieReplaced(t *testing.T) {
	var gotSessionID string
	sessions := newMockSessions()
	sessions.homeCityFn = func(_ context.Context, sessionID string) (*amadeus.HomeLocation, error) {
		gotSessionID = sessionID
		return nil, nil
	}

	router := buildRouter(newMockTravel(), sessions)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	req.AddCookie(&http.Cookie{Name: api.SessionCookie, Value: "not-a-uuid"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	_, err := uuid.Parse(gotSessionID)
	assert.NoError(t, err, "handler should see a freshly minted UUID")
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(newMockTravel(), newMockSessions())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["redis"])
}

func TestHealth_RedisDown(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(newMockTravel(), newMockSessions(), log)
	router := api.NewRouter(handlers, &mockPinger{err: fmt.Errorf("redis unreachable")}, 0, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "error", body["redis"])
}
