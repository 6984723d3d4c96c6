// File: internal/travelapi/model.go
package travelapi

import "time"

// WeatherQuery selects a location by city name or by coordinates.
type WeatherQuery struct {
	City string   `form:"city" binding:"omitempty,max=100"`
	Lat  *float64 `form:"lat" binding:"omitempty,latitude"`
	Lon  *float64 `form:"lon" binding:"omitempty,longitude"`
	// Units is metric, imperial or standard.
	Units string `form:"units" binding:"omitempty,oneof=metric imperial standard"`
}

// Weather is the current weather at a location.
type Weather struct {
	Location    string    `json:"location"`
	Country     string    `json:"country,omitempty"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Units       string    `json:"units"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	WindSpeed   float64   `json:"wind_speed"`
	ObservedAt  time.Time `json:"observed_at"`
}

// FlightsQuery searches flights between two airports.
type FlightsQuery struct {
	Dep  string `form:"dep" binding:"required,len=3,alpha"`
	Arr  string `form:"arr" binding:"required,len=3,alpha"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// Endpoint is one end of a flight.
type Endpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Terminal  string `json:"terminal,omitempty"`
	Gate      string `json:"gate,omitempty"`
	Scheduled string `json:"scheduled,omitempty"`
	Estimated string `json:"estimated,omitempty"`
}

// Flight is one scheduled or live flight.
type Flight struct {
	FlightNumber string   `json:"flight_number"`
	Airline      string   `json:"airline"`
	Status       string   `json:"status"`
	Date         string   `json:"date"`
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
}

// openWeatherResponse is the subset of the OpenWeather current-weather payload we read.
type openWeatherResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

type aviationEndpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Terminal  string `json:"terminal"`
	Gate      string `json:"gate"`
	Scheduled string `json:"scheduled"`
	Estimated string `json:"estimated"`
}

// aviationStackResponse is the AviationStack /flights payload. Errors arrive with status 200.
type aviationStackResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Data []struct {
		FlightDate   string           `json:"flight_date"`
		FlightStatus string           `json:"flight_status"`
		Departure    aviationEndpoint `json:"departure"`
		Arrival      aviationEndpoint `json:"arrival"`
		Airline      struct {
			Name string `json:"name"`
		} `json:"airline"`
		Flight struct {
			IATA   string `json:"iata"`
			Number string `json:"number"`
		} `json:"flight"`
	} `json:"data"`
}

func (e aviationEndpoint) toEndpoint() Endpoint {
	return Endpoint{
		Airport:   e.Airport,
		IATA:      e.IATA,
		Terminal:  e.Terminal,
		Gate:      e.Gate,
		Scheduled: e.Scheduled,
		Estimated: e.Estimated,
	}
}
