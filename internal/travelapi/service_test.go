package travelapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/config"
)

const openWeatherLisbon = `{
  "name": "Lisbon",
  "coord": {"lat": 38.7167, "lon": -9.1333},
  "sys": {"country": "PT"},
  "main": {"temp": 21.5, "feels_like": 21.0, "humidity": 60},
  "weather": [{"description": "clear sky", "icon": "01d"}],
  "wind": {"speed": 3.6},
  "dt": 1767225600
}`

const aviationStackJFKLAX = `{
  "data": [{
    "flight_date": "2026-05-01",
    "flight_status": "scheduled",
    "departure": {"airport": "John F Kennedy International", "iata": "JFK", "terminal": "4", "scheduled": "2026-05-01T08:00:00+00:00"},
    "arrival": {"airport": "Los Angeles International", "iata": "LAX", "scheduled": "2026-05-01T11:30:00+00:00"},
    "airline": {"name": "Delta Air Lines"},
    "flight": {"iata": "DL123", "number": "123"}
  }]
}`

type fakeUpstream struct {
	hits   atomic.Int32
	status int
	body   string
	last   atomic.Value
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.last.Store(map[string][]string(r.URL.Query()))
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeUpstream) lastQuery() map[string][]string {
	q, _ := f.last.Load().(map[string][]string)
	return q
}

func newTestService(t *testing.T, weather, flights *fakeUpstream) *ServiceImplementation {
	t.Helper()
	cfg := &config.Config{TravelAPICacheTTL: time.Minute, TravelAPITimeout: 2 * time.Second}
	if weather != nil {
		srv := httptest.NewServer(weather)
		t.Cleanup(srv.Close)
		cfg.WeatherAPIURL, cfg.WeatherAPIKey = srv.URL, "weather-key"
	}
	if flights != nil {
		srv := httptest.NewServer(flights)
		t.Cleanup(srv.Close)
		cfg.FlightsAPIURL, cfg.FlightsAPIKey = srv.URL+"/", "flights-key"
	}
	return NewService(cfg, zap.NewNop())
}

func ptr(f float64) *float64 { return &f }

func TestCurrentWeather_ByCityIsCached(t *testing.T) {
	up := &fakeUpstream{body: openWeatherLisbon}
	svc := newTestService(t, up, nil)
	ctx := context.Background()

	w, err := svc.CurrentWeather(ctx, WeatherQuery{City: "Lisbon"})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", w.Location)
	assert.Equal(t, "PT", w.Country)
	assert.Equal(t, "clear sky", w.Description)
	assert.Equal(t, 21.5, w.Temperature)
	assert.Equal(t, "metric", w.Units)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), w.ObservedAt)

	q := up.lastQuery()
	assert.Equal(t, []string{"Lisbon"}, q["q"])
	assert.Equal(t, []string{"weather-key"}, q["appid"])

	_, err = svc.CurrentWeather(ctx, WeatherQuery{City: "lisbon"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, up.hits.Load())
}

func TestCurrentWeather_ByCoordinates(t *testing.T) {
	up := &fakeUpstream{body: openWeatherLisbon}
	svc := newTestService(t, up, nil)

	_, err := svc.CurrentWeather(context.Background(), WeatherQuery{Lat: ptr(38.7167), Lon: ptr(-9.1333), Units: "imperial"})
	require.NoError(t, err)
	q := up.lastQuery()
	assert.Equal(t, []string{"38.7167"}, q["lat"])
	assert.Equal(t, []string{"-9.1333"}, q["lon"])
	assert.Equal(t, []string{"imperial"}, q["units"])
}

func TestCurrentWeather_Errors(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, &fakeUpstream{body: openWeatherLisbon}, nil)
	_, err := svc.CurrentWeather(ctx, WeatherQuery{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	_, err = svc.CurrentWeather(ctx, WeatherQuery{Lat: ptr(1)})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	_, err = svc.CurrentWeather(ctx, WeatherQuery{City: "Oslo", Lat: ptr(1), Lon: ptr(2)})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	unconfigured := newTestService(t, nil, nil)
	_, err = unconfigured.CurrentWeather(ctx, WeatherQuery{City: "Oslo"})
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)

	notFound := newTestService(t, &fakeUpstream{status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`}, nil)
	_, err = notFound.CurrentWeather(ctx, WeatherQuery{City: "Atlantis"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	broken := newTestService(t, &fakeUpstream{status: http.StatusInternalServerError}, nil)
	_, err = broken.CurrentWeather(ctx, WeatherQuery{City: "Oslo"})
	assert.ErrorIs(t, err, common.ErrBadGateway)

	garbage := newTestService(t, &fakeUpstream{body: "<html>"}, nil)
	_, err = garbage.CurrentWeather(ctx, WeatherQuery{City: "Oslo"})
	assert.ErrorIs(t, err, common.ErrBadGateway)
}

func TestSearchFlights(t *testing.T) {
	up := &fakeUpstream{body: aviationStackJFKLAX}
	svc := newTestService(t, nil, up)
	ctx := context.Background()

	flights, err := svc.SearchFlights(ctx, FlightsQuery{Dep: "jfk", Arr: "LAX", Date: "2026-05-01"})
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "DL123", flights[0].FlightNumber)
	assert.Equal(t, "Delta Air Lines", flights[0].Airline)
	assert.Equal(t, "4", flights[0].Departure.Terminal)
	assert.Equal(t, "LAX", flights[0].Arrival.IATA)

	q := up.lastQuery()
	assert.Equal(t, []string{"JFK"}, q["dep_iata"])
	assert.Equal(t, []string{"2026-05-01"}, q["flight_date"])
	assert.Equal(t, []string{"flights-key"}, q["access_key"])

	_, err = svc.SearchFlights(ctx, FlightsQuery{Dep: "JFK", Arr: "LAX", Date: "2026-05-01"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, up.hits.Load())

	_, err = svc.SearchFlights(ctx, FlightsQuery{Dep: "JFK", Arr: "jfk"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestSearchFlights_ErrorPayload(t *testing.T) {
	up := &fakeUpstream{body: `{"error":{"code":"invalid_access_key","message":"bad key"}}`}
	svc := newTestService(t, nil, up)

	_, err := svc.SearchFlights(context.Background(), FlightsQuery{Dep: "JFK", Arr: "LAX"})
	assert.ErrorIs(t, err, common.ErrBadGateway)

	unconfigured := newTestService(t, nil, nil)
	_, err = unconfigured.SearchFlights(context.Background(), FlightsQuery{Dep: "JFK", Arr: "LAX"})
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
}
