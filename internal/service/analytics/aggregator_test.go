package analytics

import (
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

func fridgeReadings(n int, power float64) []domain.Reading {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	out := make([]domain.Reading, n)
	for i := range out {
		out[i] = domain.Reading{
			DeviceName:   "Fridge",
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			PowerW:       power,
			EnergyKWh:    power / 1000 / 60,
			SwitchStatus: domain.SwitchOn,
		}
	}
	return out
}

func TestAggregate_BasicSummary(t *testing.T) {
	// Arrange
	agg := NewAggregator(NewThresholdModel(), zap.NewNop())
	readings := []domain.Reading{
		{DeviceName: "AC", Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), PowerW: 900, EnergyKWh: 0.9, SwitchStatus: domain.SwitchOn},
		{DeviceName: "AC", Timestamp: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), PowerW: 1100, EnergyKWh: 1.1, SwitchStatus: domain.SwitchOn},
		{DeviceName: "AC", Timestamp: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), PowerW: 1000, EnergyKWh: 1.0, SwitchStatus: domain.SwitchOff},
	}

	// Act
	out := agg.Aggregate(readings)

	// Assert
	ac, ok := out["AC"]
	if !ok {
		t.Fatal("expected AC aggregate")
	}
	if ac.CurrentPowerW != 1000 {
		t.Errorf("current power should track latest reading, got %v", ac.CurrentPowerW)
	}
	if ac.PeakPowerW != 1100 {
		t.Errorf("peak power should be 1100, got %v", ac.PeakPowerW)
	}
	if ac.TotalEnergyKWh != 3.0 {
		t.Errorf("total energy should be 3.0, got %v", ac.TotalEnergyKWh)
	}
	if ac.IsActive {
		t.Error("latest reading is off, device should be inactive")
	}
	if ac.Kind != domain.KindAC {
		t.Errorf("expected AC kind, got %s", ac.Kind)
	}
	if ac.DataPoints != 3 {
		t.Errorf("expected 3 data points, got %d", ac.DataPoints)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	agg := NewAggregator(NewThresholdModel(), zap.NewNop())
	readings := fridgeReadings(20, 150)

	first := agg.Aggregate(readings)
	second := agg.Aggregate(readings)

	if !reflect.DeepEqual(first, second) {
		t.Error("aggregating the same readings twice must yield identical output")
	}
}

func TestAggregate_UnsortedInput(t *testing.T) {
	agg := NewAggregator(NewThresholdModel(), zap.NewNop())
	early := domain.Reading{DeviceName: "TV", Timestamp: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), PowerW: 80, SwitchStatus: domain.SwitchOn}
	late := domain.Reading{DeviceName: "TV", Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), PowerW: 120, SwitchStatus: domain.SwitchOn}

	out := agg.Aggregate([]domain.Reading{late, early})

	if out["TV"].CurrentPowerW != 120 {
		t.Errorf("current power must come from the chronologically latest reading, got %v", out["TV"].CurrentPowerW)
	}
}

func TestThresholdModel_Grade(t *testing.T) {
	model := NewThresholdModel()

	t.Run("steady fridge is proper", func(t *testing.T) {
		if got := model.Grade("Fridge", fridgeReadings(20, 150)); got != domain.EfficiencyProper {
			t.Errorf("expected proper, got %s", got)
		}
	})

	t.Run("fridge far above envelope is improper", func(t *testing.T) {
		if got := model.Grade("Fridge", fridgeReadings(20, 900)); got != domain.EfficiencyImproper {
			t.Errorf("expected improper, got %s", got)
		}
	})

	t.Run("mostly off device is proper", func(t *testing.T) {
		readings := fridgeReadings(100, 150)
		for i := 1; i < len(readings); i++ {
			readings[i].SwitchStatus = domain.SwitchOff
			readings[i].PowerW = 0
		}
		if got := model.Grade("Fridge", readings); got != domain.EfficiencyProper {
			t.Errorf("expected proper for a rarely-on device, got %s", got)
		}
	})

	t.Run("no readings is unknown", func(t *testing.T) {
		if got := model.Grade("Fridge", nil); got != domain.EfficiencyUnknown {
			t.Errorf("expected unknown, got %s", got)
		}
	})
}
