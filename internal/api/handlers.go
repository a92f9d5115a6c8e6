package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KnowYourLines/varyfly/internal/amadeus"
	"github.com/KnowYourLines/varyfly/internal/session"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	travel   TravelService
	sessions SessionStore
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(travel TravelService, sessions SessionStore, log *slog.Logger) *Handlers {
	return &Handlers{
		travel:   travel,
		sessions: sessions,
		log:      log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fallbackPoint parses optional latitude/longitude query parameters into a
// coordinate fallback for city resolution. Returns nil unless both are
// present and valid.
func fallbackPoint(r *http.Request) *amadeus.GeoPoint {
	latStr := r.URL.Query().Get("latitude")
	lonStr := r.URL.Query().Get("longitude")
	if latStr == "" || lonStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil
	}
	return &amadeus.GeoPoint{Latitude: lat, Longitude: lon}
}

// SearchCities handles GET /api/v1/cities?keyword=...
// The session's home city, if any, is excluded from results.
func (h *Handlers) SearchCities(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword is required"})
		return
	}

	var excludeIata string
	home, err := h.sessions.HomeCity(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.log.Error("session home lookup failed", "err", err)
	} else if home != nil {
		excludeIata = home.Iata
	}

	cities, err := h.travel.SearchCities(r.Context(), keyword, excludeIata)
	if err != nil {
		h.log.Warn("city search failed", "keyword", keyword, "err", err)
		cities = nil
	}
	if cities == nil {
		cities = []amadeus.City{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

// saveHomeRequest is the body of POST /api/v1/home.
type saveHomeRequest struct {
	Iata        string  `json:"iata"`
	Name        string  `json:"name"`
	CountryCode string  `json:"countryCode"`
	CountryName string  `json:"countryName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// SaveHome handles POST /api/v1/home. The city's airports are looked up and
// stored alongside it so later destination searches can fan out without
// another lookup. An airport lookup failure still saves the home city.
func (h *Handlers) SaveHome(w http.ResponseWriter, r *http.Request) {
	var req saveHomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Iata == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "iata and name are required"})
		return
	}

	airports, err := h.travel.AirportsForCity(r.Context(), req.Name, req.Iata, req.CountryCode)
	if err != nil {
		h.log.Warn("airport lookup failed", "city", req.Name, "err", err)
		airports = nil
	}

	home := &amadeus.HomeLocation{
		Iata:        req.Iata,
		Name:        req.Name,
		CountryCode: req.CountryCode,
		CountryName: req.CountryName,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Airports:    airports,
	}
	if err := h.sessions.SaveHomeCity(r.Context(), SessionID(r.Context()), home); err != nil {
		h.log.Error("saving home city failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save home city"})
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// GetHome handles GET /api/v1/home.
func (h *Handlers) GetHome(w http.ResponseWriter, r *http.Request) {
	home, err := h.sessions.HomeCity(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.log.Error("session home lookup failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no home city saved"})
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// RemoveHome handles DELETE /api/v1/home.
func (h *Handlers) RemoveHome(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RemoveHomeCity(r.Context(), SessionID(r.Context())); err != nil {
		h.log.Error("removing home city failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove home city"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Destinations handles GET /api/v1/destinations. Reachable cities are merged
// across the home city's airports; an upstream failure yields an empty list,
// not an error page.
func (h *Handlers) Destinations(w http.ResponseWriter, r *http.Request) {
	home, err := h.sessions.HomeCity(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.log.Error("session home lookup failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no home city saved"})
		return
	}

	cities, err := h.travel.Destinations(r.Context(), *home)
	if err != nil {
		h.log.Warn("destination search failed", "home", home.Iata, "err", err)
		cities = nil
	}
	if cities == nil {
		cities = []amadeus.City{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"destinations": cities})
}

// SafetyAreas handles GET /api/v1/safety?city_name=...&country_code=...
// Optional latitude/longitude act as a coordinate fallback when the city
// cannot be resolved by keyword.
func (h *Handlers) SafetyAreas(w http.ResponseWriter, r *http.Request) {
	cityName := strings.TrimSpace(r.URL.Query().Get("city_name"))
	if cityName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city_name is required"})
		return
	}

	areas, err := h.travel.SafetyAreas(r.Context(), amadeus.SafetyQuery{
		CityName:    cityName,
		CountryCode: r.URL.Query().Get("country_code"),
		Fallback:    fallbackPoint(r),
	})
	if err != nil {
		h.log.Warn("safety lookup failed", "city", cityName, "err", err)
		areas = nil
	}
	if areas == nil {
		areas = []amadeus.SafetyArea{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"areas": areas})
}

// PointsOfInterest handles GET /api/v1/pois/{category}?city_name=...
func (h *Handlers) PointsOfInterest(w http.ResponseWriter, r *http.Request) {
	cityName := strings.TrimSpace(r.URL.Query().Get("city_name"))
	if cityName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city_name is required"})
		return
	}

	report, err := h.travel.PointsOfInterest(r.Context(), amadeus.POIQuery{
		CityName:    cityName,
		CountryCode: r.URL.Query().Get("country_code"),
		Category:    chi.URLParam(r, "category"),
		Fallback:    fallbackPoint(r),
	})
	if err != nil {
		h.log.Warn("poi lookup failed", "city", cityName, "err", err)
		report = amadeus.POIReport{}
	}
	if report.POIs == nil {
		report.POIs = []amadeus.POI{}
	}
	writeJSON(w, http.StatusOK, report)
}

// FlightDates handles GET /api/v1/flight-dates?destination_iata=...
// The origin is the session's home city and the trip shape comes from the
// session's saved preferences.
func (h *Handlers) FlightDates(w http.ResponseWriter, r *http.Request) {
	destIata := strings.TrimSpace(r.URL.Query().Get("destination_iata"))
	if destIata == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "destination_iata is required"})
		return
	}

	home, err := h.sessions.HomeCity(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.log.Error("session home lookup failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if home == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no home city saved"})
		return
	}

	prefs, err := h.sessions.Preferences(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.log.Error("session preferences lookup failed", "err", err)
	}
	if prefs == nil {
		prefs = &session.Preferences{}
	}

	report, err := h.travel.FlightDates(r.Context(), amadeus.FlightDatesQuery{
		OriginIata:      home.Iata,
		DestinationIata: destIata,
		CountryCode:     r.URL.Query().Get("country_code"),
		TripLength:      prefs.TripLength,
		NonstopOnly:     prefs.NonstopOnly,
	})
	if err != nil {
		h.log.Warn("flight dates lookup failed", "destination", destIata, "err", err)
		report = amadeus.FlightDatesReport{}
	}
	if report.Flights == nil {
		report.Flights = []amadeus.FlightDate{}
	}
	writeJSON(w, http.StatusOK, report)
}

// GetPreferences handles GET /api/v1/preferences. A session with nothing
// saved gets the zero preferences rather than a 404.
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.sessions.Preferences(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.log.Error("session preferences lookup failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if prefs == nil {
		prefs = &session.Preferences{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

// SavePreferences handles PUT /api/v1/preferences.
func (h *Handlers) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs session.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.sessions.SavePreferences(r.Context(), SessionID(r.Context()), &prefs); err != nil {
		h.log.Error("saving preferences failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save preferences"})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks redis connectivity.
func HealthHandlerFunc(redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		redisStatus := "ok"

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, map[string]string{
			"status": func() string {
				if status == http.StatusOK {
					return "ok"
				}
				return "degraded"
			}(),
			"redis": redisStatus,
		})
	}
}
