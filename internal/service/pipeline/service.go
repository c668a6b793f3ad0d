package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/adapter/queue"
	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/observability/telemetry"
	"github.com/wattscope/wattscope/internal/ports"
	"github.com/wattscope/wattscope/internal/service/analytics"
)

// Snapshot is one immutable view of the analytical pipeline. Readers load the
// current snapshot pointer and never see a half-rebuilt state.
type Snapshot struct {
	Generation  uint64
	Readings    []domain.Reading
	Aggregates  map[string]domain.DeviceAggregate
	Anomalies   map[string]domain.AnomalyReport
	Peak        domain.PeakReport
	TotalEnergy float64
	ComputedAt  time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Aggregates: map[string]domain.DeviceAggregate{},
		Anomalies:  map[string]domain.AnomalyReport{},
		Peak:       analytics.ClassifyPeriods(nil),
		ComputedAt: time.Now(),
	}
}

// Config tunes the snapshot pipeline's caching and weather lookup.
type Config struct {
	WeatherCity string        `mapstructure:"weather_city"`
	ForecastTTL time.Duration `mapstructure:"forecast_ttl"`
	WeatherTTL  time.Duration `mapstructure:"weather_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		ForecastTTL: 5 * time.Minute,
		WeatherTTL:  10 * time.Minute,
	}
}

// Service owns ingestion and the snapshot lifecycle. One writer at a time
// rebuilds derived state; the atomic pointer swap publishes it.
type Service struct {
	aggregator *analytics.Aggregator
	detector   *analytics.AnomalyDetector
	forecaster *analytics.Forecaster
	suggester  *analytics.SuggestionEngine
	weather    ports.WeatherService
	cache      ports.Cache
	mq         queue.MessageQueue
	hub        ports.SnapshotBroadcaster
	cfg        *Config
	log        *zap.Logger

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func NewService(
	aggregator *analytics.Aggregator,
	detector *analytics.AnomalyDetector,
	forecaster *analytics.Forecaster,
	suggester *analytics.SuggestionEngine,
	weather ports.WeatherService,
	cache ports.Cache,
	mq queue.MessageQueue,
	hub ports.SnapshotBroadcaster,
	cfg *Config,
	log *zap.Logger,
) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ForecastTTL <= 0 {
		cfg.ForecastTTL = 5 * time.Minute
	}
	if cfg.WeatherTTL <= 0 {
		cfg.WeatherTTL = 10 * time.Minute
	}
	s := &Service{
		aggregator: aggregator,
		detector:   detector,
		forecaster: forecaster,
		suggester:  suggester,
		weather:    weather,
		cache:      cache,
		mq:         mq,
		hub:        hub,
		cfg:        cfg,
		log:        log,
	}
	s.current.Store(emptySnapshot())
	return s
}

// Snapshot returns the current published view.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// Ingest validates a batch, rebuilds every derived output and swaps the
// snapshot. Replace discards the previous history first. A failed batch
// leaves the published snapshot untouched.
func (s *Service) Ingest(ctx context.Context, batch []domain.Reading, replace bool) (*Snapshot, error) {
	for i, r := range batch {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	prev := s.current.Load()

	var readings []domain.Reading
	if !replace {
		readings = append(readings, prev.Readings...)
	}
	readings = append(readings, batch...)

	next := &Snapshot{
		Generation: prev.Generation + 1,
		Readings:   readings,
		ComputedAt: time.Now(),
	}
	groups := analytics.GroupByDevice(readings)
	next.Aggregates = s.aggregator.Aggregate(readings)
	next.Anomalies = s.detector.DetectAll(groups)
	next.Peak = analytics.ClassifyPeriods(readings)
	for _, r := range readings {
		next.TotalEnergy += r.EnergyKWh
	}

	s.current.Store(next)

	telemetry.ReadingsIngested.Add(float64(len(batch)))
	telemetry.SnapshotRebuildDuration.Observe(time.Since(start).Seconds())
	telemetry.SnapshotGeneration.Set(float64(next.Generation))

	s.publishIngested(len(batch), next.Generation)
	if s.hub != nil {
		s.hub.BroadcastJSON(map[string]interface{}{
			"event":      "snapshot.updated",
			"generation": next.Generation,
			"devices":    len(next.Aggregates),
		})
	}

	s.log.Info("snapshot rebuilt",
		zap.Uint64("generation", next.Generation),
		zap.Int("batch_size", len(batch)),
		zap.Int("total_readings", len(readings)),
		zap.Bool("replace", replace),
		zap.Duration("took", time.Since(start)),
	)
	return next, nil
}

func (s *Service) publishIngested(count int, generation uint64) {
	if s.mq == nil {
		return
	}
	event := map[string]interface{}{
		"event_type": "readings.ingested",
		"count":      count,
		"generation": generation,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if data, err := json.Marshal(event); err == nil {
		if err := s.mq.Publish(queue.SubjectReadingsIngested, data); err != nil {
			s.log.Warn("failed to publish ingest event", zap.Error(err))
		}
	}
}

// Forecast prices future consumption against the current snapshot. Results
// are cached per generation and horizon.
func (s *Service) Forecast(ctx context.Context, horizonDays int) (domain.ForecastResult, error) {
	snap := s.current.Load()
	key := fmt.Sprintf("forecast:%d:%d", snap.Generation, horizonDays)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var result domain.ForecastResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return result, nil
			}
		}
	}

	result, err := s.forecaster.Forecast(snap.Readings, horizonDays)
	if err != nil {
		return domain.ForecastResult{}, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cfg.ForecastTTL); err != nil {
				s.log.Debug("forecast cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}

// DeviceForecast projects one device's consumption.
func (s *Service) DeviceForecast(ctx context.Context, device string, horizonDays int) (domain.ForecastResult, error) {
	snap := s.current.Load()
	return s.forecaster.ForecastDevice(snap.Readings, device, horizonDays)
}

// Suggestions builds the ranked advice list. The weather lookup runs with a
// bounded timeout and its failure only drops the weather-dependent rules.
func (s *Service) Suggestions(ctx context.Context) ([]domain.Suggestion, *domain.WeatherReport, error) {
	snap := s.current.Load()
	weather := s.currentWeather(ctx)

	suggestions := s.suggester.Generate(analytics.SuggestionInput{
		Aggregates: snap.Aggregates,
		Anomalies:  snap.Anomalies,
		Peak:       snap.Peak,
		Weather:    weather,
	})
	return suggestions, weather, nil
}

// currentWeather returns the cached weather report for the configured city,
// refreshing it from the upstream service when the cached copy has expired.
// Any failure degrades to nil so weather-dependent rules are simply skipped.
func (s *Service) currentWeather(ctx context.Context) *domain.WeatherReport {
	if s.weather == nil || s.cfg.WeatherCity == "" {
		return nil
	}

	key := "weather:" + s.cfg.WeatherCity
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var report domain.WeatherReport
			if json.Unmarshal([]byte(cached), &report) == nil {
				return &report
			}
		}
	}

	report, err := s.weather.Current(ctx, s.cfg.WeatherCity)
	if err != nil {
		if domain.IsUpstreamTimeout(err) {
			s.log.Warn("weather lookup degraded", zap.Error(err))
		} else {
			s.log.Warn("weather lookup failed", zap.Error(err))
		}
		return nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cfg.WeatherTTL); err != nil {
				s.log.Debug("weather cache write failed", zap.Error(err))
			}
		}
	}
	return report
}

// DeviceSuggestions returns the per-device tip list.
func (s *Service) DeviceSuggestions(agg domain.DeviceAggregate) []string {
	return s.suggester.ForDevice(agg)
}
