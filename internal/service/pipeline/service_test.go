package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/mocks"
	"github.com/wattscope/wattscope/internal/service/analytics"
	"github.com/wattscope/wattscope/internal/service/tariff"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := zap.NewNop()
	biller, err := tariff.NewService(nil, log)
	if err != nil {
		t.Fatalf("tariff setup failed: %v", err)
	}
	return NewService(
		analytics.NewAggregator(analytics.NewThresholdModel(), log),
		analytics.NewAnomalyDetector(nil, log),
		analytics.NewForecaster(biller, log),
		analytics.NewSuggestionEngine(nil, log),
		nil,
		nil,
		&mocks.MockMessageQueue{},
		nil,
		nil,
		log,
	)
}

func validBatch(n int) []domain.Reading {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	out := make([]domain.Reading, n)
	for i := range out {
		out[i] = domain.Reading{
			DeviceName:   "AC",
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			PowerW:       1000,
			EnergyKWh:    0.016,
			SwitchStatus: domain.SwitchOn,
		}
	}
	return out
}

func TestIngest_PublishesNewSnapshot(t *testing.T) {
	// Arrange
	svc := newTestService(t)

	// Act
	snap, err := svc.Ingest(context.Background(), validBatch(5), false)

	// Assert
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if snap.Generation != 1 {
		t.Errorf("expected generation 1, got %d", snap.Generation)
	}
	if len(snap.Aggregates) != 1 {
		t.Errorf("expected one device aggregate, got %d", len(snap.Aggregates))
	}
	if svc.Snapshot() != snap {
		t.Error("Snapshot() must return the freshly published view")
	}
}

func TestIngest_InvalidBatchLeavesSnapshotUntouched(t *testing.T) {
	svc := newTestService(t)
	good, err := svc.Ingest(context.Background(), validBatch(3), false)
	if err != nil {
		t.Fatalf("seed ingest failed: %v", err)
	}

	bad := validBatch(2)
	bad[1].PowerW = -5
	_, err = svc.Ingest(context.Background(), bad, false)

	if !domain.IsInvalidInput(err) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if svc.Snapshot() != good {
		t.Error("a rejected batch must not replace the published snapshot")
	}
}

func TestIngest_ReplaceDiscardsHistory(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Ingest(context.Background(), validBatch(5), false); err != nil {
		t.Fatalf("seed ingest failed: %v", err)
	}

	snap, err := svc.Ingest(context.Background(), validBatch(2), true)

	if err != nil {
		t.Fatalf("replace ingest failed: %v", err)
	}
	if len(snap.Readings) != 2 {
		t.Errorf("replace should discard prior readings, kept %d", len(snap.Readings))
	}
	if snap.Generation != 2 {
		t.Errorf("generation must still advance, got %d", snap.Generation)
	}
}

func TestIngest_AppendAccumulates(t *testing.T) {
	svc := newTestService(t)
	svc.Ingest(context.Background(), validBatch(3), false)
	snap, _ := svc.Ingest(context.Background(), validBatch(4), false)

	if len(snap.Readings) != 7 {
		t.Errorf("append should accumulate readings, got %d", len(snap.Readings))
	}
}

func TestSnapshot_ConcurrentReadersDuringIngest(t *testing.T) {
	svc := newTestService(t)
	svc.Ingest(context.Background(), validBatch(10), false)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			svc.Ingest(context.Background(), validBatch(5), false)
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := svc.Snapshot()
				// Every published snapshot must be internally consistent.
				if snap.Aggregates == nil || len(snap.Readings) == 0 {
					t.Error("reader observed an incomplete snapshot")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestForecast_UsesCurrentSnapshot(t *testing.T) {
	svc := newTestService(t)
	svc.Ingest(context.Background(), validBatch(10), false)

	result, err := svc.Forecast(context.Background(), 7)

	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if result.HorizonDays != 7 {
		t.Errorf("expected horizon 7, got %d", result.HorizonDays)
	}
	// A single day of history degrades to the proportional estimate.
	if result.Confidence != domain.ConfidenceEstimated {
		t.Errorf("expected estimated confidence, got %s", result.Confidence)
	}
}

func TestSuggestions_NoWeatherService(t *testing.T) {
	svc := newTestService(t)
	svc.Ingest(context.Background(), validBatch(10), false)

	suggestions, weather, err := svc.Suggestions(context.Background())

	if err != nil {
		t.Fatalf("Suggestions returned error: %v", err)
	}
	if weather != nil {
		t.Error("no weather service configured, report must be nil")
	}
	if len(suggestions) == 0 {
		t.Error("expected suggestions even without weather context")
	}
}

func newWeatherTestService(t *testing.T, weather *mocks.MockWeatherService, cache *mocks.MockCache) *Service {
	t.Helper()
	log := zap.NewNop()
	biller, err := tariff.NewService(nil, log)
	if err != nil {
		t.Fatalf("tariff setup failed: %v", err)
	}
	return NewService(
		analytics.NewAggregator(analytics.NewThresholdModel(), log),
		analytics.NewAnomalyDetector(nil, log),
		analytics.NewForecaster(biller, log),
		analytics.NewSuggestionEngine(nil, log),
		weather,
		cache,
		&mocks.MockMessageQueue{},
		nil,
		&Config{WeatherCity: "Lisbon"},
		log,
	)
}

func TestSuggestions_WeatherFailureDegrades(t *testing.T) {
	// Arrange
	weather := &mocks.MockWeatherService{
		CurrentFunc: func(ctx context.Context, city string) (*domain.WeatherReport, error) {
			return nil, &domain.UpstreamTimeoutError{Upstream: "weather", Err: context.DeadlineExceeded}
		},
	}
	svc := newWeatherTestService(t, weather, nil)
	svc.Ingest(context.Background(), validBatch(10), false)

	// Act
	suggestions, report, err := svc.Suggestions(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("Suggestions must not fail on weather timeout: %v", err)
	}
	if report != nil {
		t.Error("degraded weather lookup must yield a nil report")
	}
	if len(suggestions) == 0 {
		t.Error("non-weather suggestions must survive the degradation")
	}
}

func TestSuggestions_WeatherReportCached(t *testing.T) {
	// Arrange
	calls := 0
	weather := &mocks.MockWeatherService{
		CurrentFunc: func(ctx context.Context, city string) (*domain.WeatherReport, error) {
			calls++
			return &domain.WeatherReport{City: city, TemperatureC: 31, Condition: "Clear"}, nil
		},
	}
	svc := newWeatherTestService(t, weather, mocks.NewMockCache())
	svc.Ingest(context.Background(), validBatch(10), false)

	// Act
	_, first, err := svc.Suggestions(context.Background())
	if err != nil {
		t.Fatalf("first Suggestions call failed: %v", err)
	}
	_, second, err := svc.Suggestions(context.Background())
	if err != nil {
		t.Fatalf("second Suggestions call failed: %v", err)
	}

	// Assert
	if calls != 1 {
		t.Errorf("expected a single upstream lookup, got %d", calls)
	}
	if first == nil || second == nil {
		t.Fatal("both calls must return a weather report")
	}
	if second.TemperatureC != first.TemperatureC {
		t.Errorf("cached report differs: %v vs %v", second.TemperatureC, first.TemperatureC)
	}
}
