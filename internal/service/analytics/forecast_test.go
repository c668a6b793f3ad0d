package analytics

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

type flatBiller struct{ rate float64 }

func (b flatBiller) ComputeBill(units float64) (domain.BillResult, error) {
	return domain.BillResult{Units: units, Total: math.Round(units*b.rate*100) / 100}, nil
}

func dayReadings(day int, energy float64) []domain.Reading {
	ts := time.Date(2026, 3, 1+day, 12, 0, 0, 0, time.UTC)
	return []domain.Reading{{DeviceName: "AC", Timestamp: ts, EnergyKWh: energy, PowerW: 1000}}
}

func TestForecast_LinearHistory(t *testing.T) {
	// Arrange: five days growing by exactly 1 kWh per day.
	f := NewForecaster(flatBiller{rate: 2}, zap.NewNop())
	var readings []domain.Reading
	for d := 0; d < 5; d++ {
		readings = append(readings, dayReadings(d, float64(d+1))...)
	}

	// Act
	result, err := f.Forecast(readings, 2)

	// Assert
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if result.Confidence != domain.ConfidenceModel {
		t.Errorf("expected model confidence, got %s", result.Confidence)
	}
	// Perfect line 1..5 extrapolates to 6 and 7.
	if math.Abs(result.PredictedKWh-13) > 0.01 {
		t.Errorf("expected 13 kWh predicted, got %v", result.PredictedKWh)
	}
	if math.Abs(result.DailyAvgKWh-result.PredictedKWh/2) > 0.01 {
		t.Errorf("daily average %v must equal predicted/horizon", result.DailyAvgKWh)
	}
	if math.Abs(result.DailyAvgCost-result.EstimatedBill.Total/2) > 0.01 {
		t.Errorf("daily cost %v must equal bill total/horizon", result.DailyAvgCost)
	}
}

func TestForecast_FallbackOnShortHistory(t *testing.T) {
	f := NewForecaster(flatBiller{rate: 2}, zap.NewNop())
	readings := dayReadings(0, 3.5)

	result, err := f.Forecast(readings, 10)

	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if result.Confidence != domain.ConfidenceEstimated {
		t.Errorf("single-day history must degrade to estimated, got %s", result.Confidence)
	}
	if math.Abs(result.PredictedKWh-35) > 0.01 {
		t.Errorf("proportional estimate should be 35 kWh, got %v", result.PredictedKWh)
	}
}

func TestForecast_EmptyHistory(t *testing.T) {
	f := NewForecaster(flatBiller{rate: 2}, zap.NewNop())

	result, err := f.Forecast(nil, 30)

	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if result.Confidence != domain.ConfidenceEstimated {
		t.Errorf("expected estimated confidence, got %s", result.Confidence)
	}
	if result.PredictedKWh != 0 {
		t.Errorf("no history predicts zero, got %v", result.PredictedKWh)
	}
}

func TestForecast_HorizonBounds(t *testing.T) {
	f := NewForecaster(flatBiller{rate: 2}, zap.NewNop())

	for _, days := range []int{0, -1, 366} {
		_, err := f.Forecast(nil, days)
		if !domain.IsInvalidInput(err) {
			t.Errorf("days=%d: expected InvalidInputError, got %v", days, err)
		}
	}
}

func TestForecast_DecliningTrendClampsAtZero(t *testing.T) {
	// A steep decline extrapolates below zero; predictions clamp per day.
	f := NewForecaster(flatBiller{rate: 2}, zap.NewNop())
	var readings []domain.Reading
	for d := 0; d < 5; d++ {
		readings = append(readings, dayReadings(d, float64(10-3*d))...)
	}

	result, err := f.Forecast(readings, 5)

	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if result.PredictedKWh < 0 {
		t.Errorf("predicted consumption must never be negative, got %v", result.PredictedKWh)
	}
}

func TestForecastDevice_FiltersByName(t *testing.T) {
	f := NewForecaster(flatBiller{rate: 2}, zap.NewNop())
	readings := append(dayReadings(0, 5), domain.Reading{
		DeviceName: "Fridge",
		Timestamp:  time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		EnergyKWh:  100,
	})

	result, err := f.ForecastDevice(readings, "AC", 2)

	if err != nil {
		t.Fatalf("ForecastDevice returned error: %v", err)
	}
	if math.Abs(result.PredictedKWh-10) > 0.01 {
		t.Errorf("device forecast must ignore other devices, got %v", result.PredictedKWh)
	}
}
