package analytics

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

func TestGenerate_CostRulesRankFirst(t *testing.T) {
	// Arrange: a dominant peak period and an improper device.
	e := NewSuggestionEngine(nil, zap.NewNop())
	in := SuggestionInput{
		Aggregates: map[string]domain.DeviceAggregate{
			"AC":     {Name: "AC", Kind: domain.KindAC, AveragePowerW: 1200, Efficiency: domain.EfficiencyProper},
			"Fridge": {Name: "Fridge", Kind: domain.KindFridge, AveragePowerW: 150, Efficiency: domain.EfficiencyImproper},
		},
		Peak: domain.PeakReport{
			PeakPeriod: domain.PeriodEvening,
			Buckets: []domain.PeriodUsage{
				{Period: domain.PeriodMorning, EnergyKWh: 1},
				{Period: domain.PeriodAfternoon, EnergyKWh: 1},
				{Period: domain.PeriodEvening, EnergyKWh: 8},
				{Period: domain.PeriodNight, EnergyKWh: 0},
			},
		},
	}

	// Act
	out := e.Generate(in)

	// Assert
	if len(out) == 0 {
		t.Fatal("expected suggestions")
	}
	if out[0].Category != domain.SuggestionCost {
		t.Errorf("cost suggestions must rank first, got %s", out[0].Category)
	}
	var sawAnomaly bool
	for _, s := range out {
		if s.Category == domain.SuggestionAnomaly {
			sawAnomaly = true
		}
	}
	if !sawAnomaly {
		t.Error("improper device should produce an anomaly suggestion")
	}
}

func TestGenerate_CapsOutput(t *testing.T) {
	e := NewSuggestionEngine(&SuggestionConfig{MaxGlobal: 2, MaxPerDevice: 3}, zap.NewNop())
	in := SuggestionInput{
		Aggregates: map[string]domain.DeviceAggregate{
			"AC":     {Name: "AC", AveragePowerW: 500, Efficiency: domain.EfficiencyImproper},
			"Fridge": {Name: "Fridge", AveragePowerW: 500, Efficiency: domain.EfficiencyImproper},
		},
		Peak: domain.PeakReport{
			PeakPeriod: domain.PeriodEvening,
			Buckets:    []domain.PeriodUsage{{Period: domain.PeriodEvening, EnergyKWh: 10}},
		},
	}

	out := e.Generate(in)

	if len(out) > 2 {
		t.Errorf("output must honour the cap, got %d suggestions", len(out))
	}
}

func TestGenerate_DegradesWithoutSignals(t *testing.T) {
	// No aggregates, no peak dominance, no weather: only a general tip.
	e := NewSuggestionEngine(nil, zap.NewNop())

	out := e.Generate(SuggestionInput{})

	if len(out) != 1 {
		t.Fatalf("expected exactly one general suggestion, got %d", len(out))
	}
	if out[0].Category != domain.SuggestionGeneral {
		t.Errorf("expected general category, got %s", out[0].Category)
	}
}

func TestGenerate_WeatherRuleNeedsContext(t *testing.T) {
	e := NewSuggestionEngine(nil, zap.NewNop())
	in := SuggestionInput{
		Aggregates: map[string]domain.DeviceAggregate{
			"AC": {Name: "AC", Kind: domain.KindAC, IsActive: true, AveragePowerW: 1500},
		},
	}

	// Without weather no rule mentions temperature.
	for _, s := range e.Generate(in) {
		if strings.Contains(s.Message, "°C") {
			t.Errorf("weather rule fired without weather context: %s", s.Message)
		}
	}

	// With a hot report the AC rule fires.
	in.Weather = &domain.WeatherReport{City: "Chennai", TemperatureC: 36}
	var fired bool
	for _, s := range e.Generate(in) {
		if strings.Contains(s.Message, "°C") {
			fired = true
		}
	}
	if !fired {
		t.Error("expected the hot-weather rule to fire at 36°C with an active AC")
	}
}

func TestForDevice_CapsAndPrependsEfficiencyWarning(t *testing.T) {
	e := NewSuggestionEngine(nil, zap.NewNop())
	agg := domain.DeviceAggregate{Name: "AC", Kind: domain.KindAC, Efficiency: domain.EfficiencyImproper}

	tips := e.ForDevice(agg)

	if len(tips) == 0 || len(tips) > 3 {
		t.Fatalf("expected 1..3 tips, got %d", len(tips))
	}
	if !strings.Contains(tips[0], "outside its normal range") {
		t.Errorf("improper device warning should come first, got %q", tips[0])
	}
}
