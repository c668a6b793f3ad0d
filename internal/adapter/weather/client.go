package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/observability/telemetry"
	"github.com/wattscope/wattscope/internal/ports"
)

// Config holds the weather provider settings.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	City    string        `mapstructure:"city"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns sane defaults for the weather client.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openweathermap.org/data/2.5",
		Timeout: 10 * time.Second,
	}
}

// Client fetches current conditions from an OpenWeatherMap-compatible API.
type Client struct {
	cfg     Config
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewClient creates a weather client with a circuit breaker around the upstream call.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Weather circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
		log:     logger,
	}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Name string `json:"name"`
}

// Current returns the current conditions for a city.
func (c *Client) Current(ctx context.Context, city string) (*domain.WeatherReport, error) {
	if city == "" {
		city = c.cfg.City
	}
	if city == "" {
		return nil, domain.NewInvalidInput("city", city, "city must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, city)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			telemetry.WeatherLookups.WithLabelValues("circuit_open").Inc()
			return nil, &domain.UpstreamTimeoutError{Upstream: "weather", Err: err}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			telemetry.WeatherLookups.WithLabelValues("timeout").Inc()
			return nil, &domain.UpstreamTimeoutError{Upstream: "weather", Err: err}
		}
		telemetry.WeatherLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to fetch weather for %s: %w", city, err)
	}

	telemetry.WeatherLookups.WithLabelValues("ok").Inc()
	return result.(*domain.WeatherReport), nil
}

func (c *Client) fetch(ctx context.Context, city string) (*domain.WeatherReport, error) {
	endpoint := fmt.Sprintf("%s/weather?q=%s&units=metric&appid=%s",
		c.cfg.BaseURL, url.QueryEscape(city), c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report := &domain.WeatherReport{
		City:         payload.Name,
		TemperatureC: payload.Main.Temp,
		Humidity:     payload.Main.Humidity,
	}
	if report.City == "" {
		report.City = city
	}
	if len(payload.Weather) > 0 {
		report.Condition = payload.Weather[0].Main
	}

	return report, nil
}

var _ ports.WeatherService = (*Client)(nil)
