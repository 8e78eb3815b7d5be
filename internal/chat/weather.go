package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const DefaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

var ErrWeatherNotConfigured = errors.New("weather api key is not configured")

// WeatherStatusError is returned when the provider answers with a non-2xx status.
type WeatherStatusError struct {
	Status int
}

func (e *WeatherStatusError) Error() string {
	return fmt.Sprintf("weather api status %d", e.Status)
}

type Weather struct {
	City        string
	Description string
	Temperature *float64
	FeelsLike   *float64
	Humidity    *float64
}

// WeatherClient reads current conditions from OpenWeatherMap. A missing API
// key is reported per call, never at construction.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewWeatherClient(apiKey, baseURL string, client *http.Client) *WeatherClient {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &WeatherClient{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (c *WeatherClient) Current(ctx context.Context, city, units string) (Weather, error) {
	if c.apiKey == "" {
		return Weather{}, ErrWeatherNotConfigured
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", units)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Weather{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Weather{}, fmt.Errorf("call weather api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Weather{}, &WeatherStatusError{Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Weather{}, fmt.Errorf("read weather response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return Weather{}, errors.New("weather api returned invalid json")
	}

	doc := gjson.ParseBytes(body)
	w := Weather{
		City:        city,
		Description: "No description",
		Temperature: optionalFloat(doc.Get("main.temp")),
		FeelsLike:   optionalFloat(doc.Get("main.feels_like")),
		Humidity:    optionalFloat(doc.Get("main.humidity")),
	}
	if name := doc.Get("name"); name.Exists() && name.String() != "" {
		w.City = name.String()
	}
	if d := doc.Get("weather.0.description"); d.Exists() && d.String() != "" {
		w.Description = d.String()
	}
	return w, nil
}

func optionalFloat(r gjson.Result) *float64 {
	if !r.Exists() || r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}
