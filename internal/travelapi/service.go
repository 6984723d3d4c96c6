// File: internal/travelapi/service.go
package travelapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/config"
)

const defaultUnits = "metric"

// Service defines the travel data lookups.
type Service interface {
	CurrentWeather(ctx context.Context, q WeatherQuery) (*Weather, error)
	SearchFlights(ctx context.Context, q FlightsQuery) ([]Flight, error)
}

// ServiceImplementation proxies OpenWeather and AviationStack, caching answers.
type ServiceImplementation struct {
	weather *upstream
	flights *upstream
	cache   *cache.Cache
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates the travel API service from WEATHER_*, FLIGHTS_* and TRAVEL_API_* settings.
func NewService(cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	ttl := cfg.TravelAPICacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger = logger.Named("TravelAPI")
	return &ServiceImplementation{
		weather: newUpstream("OpenWeather", cfg.WeatherAPIURL, cfg.WeatherAPIKey, "appid", cfg.TravelAPITimeout, logger),
		flights: newUpstream("AviationStack", cfg.FlightsAPIURL, cfg.FlightsAPIKey, "access_key", cfg.TravelAPITimeout, logger),
		cache:   cache.New(ttl, 2*ttl),
		logger:  logger,
	}
}

// upstreamError converts an upstream failure to the API error callers see.
func upstreamError(service string, err error) error {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return common.ErrServiceUnavailable.WithDetails(service + " service is not configured.")
	case errors.Is(err, ErrUpstreamNotFound):
		return common.ErrNotFound.WithDetails("No " + strings.ToLower(service) + " data found for this query.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return common.ErrBadGateway.WithDetails(service + " service did not respond in time.")
	default:
		return common.ErrBadGateway.WithDetails(service + " service returned an invalid response.")
	}
}

func (s *ServiceImplementation) CurrentWeather(ctx context.Context, q WeatherQuery) (*Weather, error) {
	city := strings.TrimSpace(q.City)
	hasCoords := q.Lat != nil && q.Lon != nil
	if city == "" && !hasCoords {
		return nil, common.ErrBadRequest.WithDetails("Provide a city or both lat and lon.")
	}
	if city != "" && (q.Lat != nil || q.Lon != nil) {
		return nil, common.ErrBadRequest.WithDetails("Provide either a city or coordinates, not both.")
	}
	if !s.weather.configured() {
		return nil, upstreamError("Weather", ErrNotConfigured)
	}

	units := q.Units
	if units == "" {
		units = defaultUnits
	}
	params := url.Values{"units": {units}}
	var key string
	if city != "" {
		params.Set("q", city)
		key = "weather:city:" + strings.ToLower(city) + ":" + units
	} else {
		lat := strconv.FormatFloat(*q.Lat, 'f', 4, 64)
		lon := strconv.FormatFloat(*q.Lon, 'f', 4, 64)
		params.Set("lat", lat)
		params.Set("lon", lon)
		key = "weather:coords:" + lat + "," + lon + ":" + units
	}

	if cached, ok := s.cache.Get(key); ok {
		return cached.(*Weather), nil
	}

	var raw openWeatherResponse
	if err := s.weather.getJSON(ctx, "/weather", params, &raw); err != nil {
		return nil, upstreamError("Weather", err)
	}
	w := &Weather{
		Location:    raw.Name,
		Country:     raw.Sys.Country,
		Lat:         raw.Coord.Lat,
		Lon:         raw.Coord.Lon,
		Units:       units,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   raw.Wind.Speed,
		ObservedAt:  time.Unix(raw.Dt, 0).UTC(),
	}
	if len(raw.Weather) > 0 {
		w.Description = raw.Weather[0].Description
		w.Icon = raw.Weather[0].Icon
	}
	s.cache.SetDefault(key, w)
	return w, nil
}

func (s *ServiceImplementation) SearchFlights(ctx context.Context, q FlightsQuery) ([]Flight, error) {
	dep := strings.ToUpper(strings.TrimSpace(q.Dep))
	arr := strings.ToUpper(strings.TrimSpace(q.Arr))
	if len(dep) != 3 || len(arr) != 3 {
		return nil, common.ErrBadRequest.WithDetails("dep and arr must be 3-letter IATA airport codes.")
	}
	if dep == arr {
		return nil, common.ErrBadRequest.WithDetails("dep and arr must differ.")
	}
	if !s.flights.configured() {
		return nil, upstreamError("Flights", ErrNotConfigured)
	}

	params := url.Values{"dep_iata": {dep}, "arr_iata": {arr}}
	if q.Date != "" {
		params.Set("flight_date", q.Date)
	}
	key := fmt.Sprintf("flights:%s:%s:%s", dep, arr, q.Date)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]Flight), nil
	}

	var raw aviationStackResponse
	if err := s.flights.getJSON(ctx, "/flights", params, &raw); err != nil {
		return nil, upstreamError("Flights", err)
	}
	if raw.Error != nil {
		s.logger.Warn("Flights API returned an error", zap.String("code", raw.Error.Code), zap.String("message", raw.Error.Message))
		return nil, upstreamError("Flights", ErrUpstream)
	}

	flights := make([]Flight, 0, len(raw.Data))
	for _, f := range raw.Data {
		number := f.Flight.IATA
		if number == "" {
			number = f.Flight.Number
		}
		flights = append(flights, Flight{
			FlightNumber: number,
			Airline:      f.Airline.Name,
			Status:       f.FlightStatus,
			Date:         f.FlightDate,
			Departure:    f.Departure.toEndpoint(),
			Arrival:      f.Arrival.toEndpoint(),
		})
	}
	s.cache.SetDefault(key, flights)
	return flights, nil
}
