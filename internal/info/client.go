// Package info answers time, date, weather and web questions through
// public HTTP APIs, and saves short notes to disk. It backs both the
// assistant's builtin tools and the mcp-info server.
package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const userAgent = "TalkAssist/1.0"

// Client calls the external info services. Base URLs are fields so
// tests can point them at local servers.
type Client struct {
	client     *http.Client
	geocodeURL string
	timeURL    string
	weatherURL string
	searchURL  string
	now        func() time.Time
}

// NewClient creates a client for the public endpoints: Nominatim for
// geocoding, timeapi.io for timezones, Open-Meteo for weather and
// DuckDuckGo instant answers for web search.
func NewClient() *Client {
	return &Client{
		client:     &http.Client{Timeout: 10 * time.Second},
		geocodeURL: "https://nominatim.openstreetmap.org",
		timeURL:    "https://timeapi.io",
		weatherURL: "https://api.open-meteo.com",
		searchURL:  "https://api.duckduckgo.com",
		now:        time.Now,
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type timezoneResponse struct {
	TimeZone string `json:"timeZone"`
}

type currentTimeResponse struct {
	DateTime  string `json:"dateTime"`
	Date      string `json:"date"`
	DayOfWeek string `json:"dayOfWeek"`
}

type weatherResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
}

type currentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

type searchResponse struct {
	AbstractText  string `json:"AbstractText"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

var weatherCodes = map[int]string{
	0: "clear sky", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "foggy", 48: "freezing fog", 51: "light drizzle", 53: "moderate drizzle",
	55: "dense drizzle", 61: "light rain", 63: "moderate rain", 65: "heavy rain",
	71: "light snow", 73: "moderate snow", 75: "heavy snow", 95: "thunderstorm",
}

// CurrentTime reports the time at a location, or the local time when
// location is empty.
func (c *Client) CurrentTime(ctx context.Context, location string) (string, error) {
	if location == "" {
		now := c.now()
		zone, _ := now.Zone()
		return fmt.Sprintf("The current local time is %s (%s)", now.Format("2006-01-02 15:04:05"), zone), nil
	}

	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return "", err
	}

	tz, err := c.timezoneFor(ctx, lat, lon, location)
	if err != nil {
		return "", err
	}

	cur, err := c.timeInZone(ctx, tz)
	if err != nil {
		return "", err
	}
	if cur.DateTime == "" {
		return "", fmt.Errorf("could not get current time for %s", location)
	}

	return fmt.Sprintf("The current time in %s (%s) is %s", location, tz, cur.DateTime), nil
}

// DateInfo reports today's date at a location, or the local date when
// location is empty.
func (c *Client) DateInfo(ctx context.Context, location string) (string, error) {
	if location == "" {
		now := c.now()
		zone, _ := now.Zone()
		return fmt.Sprintf("Today's date is %s (%s)", now.Format("Monday, January 02, 2006"), zone), nil
	}

	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return "", err
	}

	tz, err := c.timezoneFor(ctx, lat, lon, location)
	if err != nil {
		return "", err
	}

	cur, err := c.timeInZone(ctx, tz)
	if err != nil {
		return "", err
	}
	if cur.Date == "" {
		return "", fmt.Errorf("could not get date for %s", location)
	}

	return fmt.Sprintf("Today's date in %s (%s) is %s, %s.", location, tz, cur.DayOfWeek, cur.Date), nil
}

// Weather reports the current conditions at a location.
func (c *Client) Weather(ctx context.Context, location string) (string, error) {
	lat, lon, err := c.geocode(ctx, location)
	if err != nil {
		return "", err
	}

	params := url.Values{
		"latitude":        {lat},
		"longitude":       {lon},
		"current_weather": {"true"},
	}
	var w weatherResponse
	if err := c.getJSON(ctx, c.weatherURL+"/v1/forecast", params, &w); err != nil {
		return "", err
	}
	if w.CurrentWeather == nil {
		return "", fmt.Errorf("could not retrieve weather for %s", location)
	}

	conditions, ok := weatherCodes[w.CurrentWeather.WeatherCode]
	if !ok {
		conditions = "unknown conditions"
	}

	return fmt.Sprintf("The current weather in %s is %s with a temperature of %g°C and windspeed of %g km/h.",
		location, conditions, w.CurrentWeather.Temperature, w.CurrentWeather.WindSpeed), nil
}

// SearchWeb answers a query from DuckDuckGo instant answers: the
// abstract first, then a direct answer, then the first related topic.
func (c *Client) SearchWeb(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}
	var res searchResponse
	if err := c.getJSON(ctx, c.searchURL+"/", params, &res); err != nil {
		return "", err
	}

	if res.AbstractText != "" {
		return res.AbstractText, nil
	}
	if res.Answer != "" {
		return res.Answer, nil
	}
	for _, topic := range res.RelatedTopics {
		if topic.Text != "" {
			return topic.Text, nil
		}
	}

	return "", fmt.Errorf("no results found for %q", query)
}

// SaveNote appends a line of text to the given file, creating it if
// needed.
func (c *Client) SaveNote(filename, data string) (string, error) {
	if filename == "" || data == "" {
		return "", errors.New("missing filename or data")
	}

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}

	return fmt.Sprintf("Data saved to %s", filename), nil
}

func (c *Client) geocode(ctx context.Context, location string) (lat, lon string, err error) {
	params := url.Values{"q": {location}, "format": {"json"}}
	var results []geocodeResult
	if err := c.getJSON(ctx, c.geocodeURL+"/search", params, &results); err != nil {
		return "", "", err
	}
	if len(results) == 0 {
		return "", "", fmt.Errorf("could not find location: %s", location)
	}
	return results[0].Lat, results[0].Lon, nil
}

func (c *Client) timezoneFor(ctx context.Context, lat, lon, location string) (string, error) {
	params := url.Values{"latitude": {lat}, "longitude": {lon}}
	var tz timezoneResponse
	if err := c.getJSON(ctx, c.timeURL+"/api/TimeZone/coordinate", params, &tz); err != nil {
		return "", err
	}
	if tz.TimeZone == "" {
		return "", fmt.Errorf("could not find timezone for %s", location)
	}
	return tz.TimeZone, nil
}

func (c *Client) timeInZone(ctx context.Context, tz string) (*currentTimeResponse, error) {
	params := url.Values{"timeZone": {tz}}
	var cur currentTimeResponse
	if err := c.getJSON(ctx, c.timeURL+"/api/Time/current/zone", params, &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %s (status %d)", string(body), resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
