// Package weather fetches current conditions for entry enrichment. Every
// failure degrades to "no enrichment": callers get nil and the entry is
// stored without weather metadata.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"daybook/internal/config"
)

// Client queries an open-meteo compatible endpoint.
type Client struct {
	endpoint  string
	apiKey    string
	latitude  string
	longitude string
	http      *http.Client
	logger    *log.Logger
}

// NewClient builds a weather client, or nil when enrichment is disabled or
// the location is unusable. A nil *Client is safe to call.
func NewClient(cfg config.Weather) *Client {
	if !cfg.Enabled {
		return nil
	}

	lat, lon, ok := splitLocation(cfg.Location)
	if !ok {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		latitude:  lat,
		longitude: lon,
		http:      &http.Client{Timeout: timeout},
		logger:    log.New(os.Stderr, "weather: ", log.LstdFlags),
	}
}

// Current returns the current conditions as metadata, or nil when anything
// goes wrong.
func (c *Client) Current(ctx context.Context) map[string]any {
	if c == nil {
		return nil
	}

	query := url.Values{}
	query.Set("latitude", c.latitude)
	query.Set("longitude", c.longitude)
	query.Set("current_weather", "true")
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		c.logger.Printf("request build failed: %v", err)
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("lookup failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("lookup returned %d", resp.StatusCode)
		return nil
	}

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Printf("unreadable response: %v", err)
		return nil
	}

	return map[string]any{
		"temperature":  payload.CurrentWeather.Temperature,
		"wind_speed":   payload.CurrentWeather.WindSpeed,
		"weather_code": payload.CurrentWeather.WeatherCode,
		"summary":      describe(payload.CurrentWeather.WeatherCode),
	}
}

// splitLocation parses a "lat,lon" pair.
func splitLocation(location string) (lat, lon string, ok bool) {
	parts := strings.SplitN(location, ",", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	lat = strings.TrimSpace(parts[0])
	lon = strings.TrimSpace(parts[1])
	if _, err := strconv.ParseFloat(lat, 64); err != nil {
		return "", "", false
	}
	if _, err := strconv.ParseFloat(lon, 64); err != nil {
		return "", "", false
	}
	return lat, lon, true
}

// describe maps WMO weather codes to short labels.
func describe(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "showers"
	case code <= 86:
		return "snow showers"
	case code <= 99:
		return "thunderstorm"
	default:
		return fmt.Sprintf("code %d", code)
	}
}
