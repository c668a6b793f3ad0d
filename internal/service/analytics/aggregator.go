package analytics

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// Aggregator reduces raw readings into per-device summaries.
type Aggregator struct {
	efficiency EfficiencyModel
	log        *zap.Logger
}

func NewAggregator(efficiency EfficiencyModel, log *zap.Logger) *Aggregator {
	if efficiency == nil {
		efficiency = NewThresholdModel()
	}
	return &Aggregator{efficiency: efficiency, log: log}
}

// GroupByDevice splits readings per device, each group sorted by timestamp.
func GroupByDevice(readings []domain.Reading) map[string][]domain.Reading {
	groups := make(map[string][]domain.Reading)
	for _, r := range readings {
		groups[r.DeviceName] = append(groups[r.DeviceName], r)
	}
	for name := range groups {
		g := groups[name]
		sort.SliceStable(g, func(i, j int) bool { return g[i].Timestamp.Before(g[j].Timestamp) })
	}
	return groups
}

// Aggregate builds the device summary map. It is a pure reduction so running
// it twice over the same readings yields identical output.
func (a *Aggregator) Aggregate(readings []domain.Reading) map[string]domain.DeviceAggregate {
	groups := GroupByDevice(readings)
	out := make(map[string]domain.DeviceAggregate, len(groups))

	for name, group := range groups {
		agg := a.aggregateDevice(name, group)
		out[name] = agg
	}
	return out
}

func (a *Aggregator) aggregateDevice(name string, group []domain.Reading) domain.DeviceAggregate {
	kind := domain.KindForDevice(name)
	profile := domain.ProfileForKind(kind)

	agg := domain.DeviceAggregate{
		Name:        name,
		Kind:        kind,
		Icon:        profile.Icon,
		Color:       profile.Color,
		DataPoints:  len(group),
		HourlyUsage: make(map[int]float64),
	}
	if len(group) == 0 {
		agg.Efficiency = domain.EfficiencyUnknown
		return agg
	}

	latest := group[len(group)-1]
	agg.CurrentPowerW = latest.PowerW
	agg.IsActive = latest.IsOn()
	agg.LastSeen = latest.Timestamp

	var powerSum float64
	hourSums := make(map[int]float64)
	hourCounts := make(map[int]int)
	for _, r := range group {
		powerSum += r.PowerW
		agg.TotalEnergyKWh += r.EnergyKWh
		if r.PowerW > agg.PeakPowerW {
			agg.PeakPowerW = r.PowerW
		}
		hourSums[r.Timestamp.Hour()] += r.PowerW
		hourCounts[r.Timestamp.Hour()]++
	}
	agg.AveragePowerW = powerSum / float64(len(group))
	for hour, sum := range hourSums {
		agg.HourlyUsage[hour] = sum / float64(hourCounts[hour])
	}

	agg.Efficiency = a.efficiency.Grade(name, group)
	return agg
}
