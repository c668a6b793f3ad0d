package analytics

import (
	"math"

	"github.com/wattscope/wattscope/internal/domain"
)

// EfficiencyModel grades one device's operating health from its readings.
// Implementations must be pure so the aggregator can call them during a
// snapshot rebuild.
type EfficiencyModel interface {
	Grade(name string, readings []domain.Reading) domain.Efficiency
}

// ThresholdModel grades devices against the expected power envelope of their
// kind. A device is proper when its ON-power is consistent and its mean sits
// inside the slack-adjusted envelope.
type ThresholdModel struct {
	MinConsistency float64
	LowerSlack     float64
	UpperSlack     float64
}

func NewThresholdModel() *ThresholdModel {
	return &ThresholdModel{MinConsistency: 50, LowerSlack: 0.8, UpperSlack: 1.1}
}

func (m *ThresholdModel) Grade(name string, readings []domain.Reading) domain.Efficiency {
	if len(readings) == 0 {
		return domain.EfficiencyUnknown
	}

	var on []float64
	for _, r := range readings {
		if r.IsOn() && r.PowerW > 0 {
			on = append(on, r.PowerW)
		}
	}
	// A device that is almost never on cannot be wasting power.
	if float64(len(on))/float64(len(readings)) < 0.05 {
		return domain.EfficiencyProper
	}
	if len(on) == 0 {
		return domain.EfficiencyProper
	}

	mean, std := meanStd(on)
	consistency := 100.0
	if mean > 0 {
		consistency = 100 - (std/mean)*100
	}

	profile := domain.ProfileForKind(domain.KindForDevice(name))
	inRange := true
	if profile.MaxPowerW > 0 {
		inRange = mean >= profile.MinPowerW*m.LowerSlack && mean <= profile.MaxPowerW*m.UpperSlack
	}

	if consistency >= m.MinConsistency && inRange {
		return domain.EfficiencyProper
	}
	return domain.EfficiencyImproper
}

// AnomalyModel grades a device improper when the anomaly detector flagged any
// of its recent readings.
type AnomalyModel struct {
	detector *AnomalyDetector
}

func NewAnomalyModel(detector *AnomalyDetector) *AnomalyModel {
	return &AnomalyModel{detector: detector}
}

func (m *AnomalyModel) Grade(name string, readings []domain.Reading) domain.Efficiency {
	report := m.detector.Detect(name, readings)
	switch report.Status {
	case domain.AnomalyStatusAnomalous:
		return domain.EfficiencyImproper
	case domain.AnomalyStatusOK:
		return domain.EfficiencyProper
	default:
		return domain.EfficiencyUnknown
	}
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
