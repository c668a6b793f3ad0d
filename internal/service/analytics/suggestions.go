package analytics

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// SuggestionInput is everything the rule table can draw on. Weather may be
// nil when the upstream lookup degraded.
type SuggestionInput struct {
	Aggregates map[string]domain.DeviceAggregate
	Anomalies  map[string]domain.AnomalyReport
	Peak       domain.PeakReport
	Weather    *domain.WeatherReport
}

type rule struct {
	category domain.SuggestionCategory
	apply    func(in SuggestionInput) []string
}

// SuggestionConfig caps the output lists.
type SuggestionConfig struct {
	MaxGlobal    int `mapstructure:"max_global"`
	MaxPerDevice int `mapstructure:"max_per_device"`
}

func DefaultSuggestionConfig() *SuggestionConfig {
	return &SuggestionConfig{MaxGlobal: 5, MaxPerDevice: 3}
}

// SuggestionEngine walks an ordered rule table. Cost rules rank first, then
// anomaly findings, then general tips. Rules with no signal emit nothing.
type SuggestionEngine struct {
	cfg   *SuggestionConfig
	rules []rule
	log   *zap.Logger
}

func NewSuggestionEngine(cfg *SuggestionConfig, log *zap.Logger) *SuggestionEngine {
	if cfg == nil {
		cfg = DefaultSuggestionConfig()
	}
	e := &SuggestionEngine{cfg: cfg, log: log}
	e.rules = []rule{
		{domain.SuggestionCost, peakShiftRule},
		{domain.SuggestionCost, topConsumerRule},
		{domain.SuggestionCost, hotWeatherRule},
		{domain.SuggestionAnomaly, improperDevicesRule},
		{domain.SuggestionAnomaly, anomalousDevicesRule},
		{domain.SuggestionGeneral, generalTipsRule},
	}
	return e
}

// Generate produces the ranked global suggestion list.
func (e *SuggestionEngine) Generate(in SuggestionInput) []domain.Suggestion {
	var out []domain.Suggestion
	for _, r := range e.rules {
		for _, msg := range r.apply(in) {
			out = append(out, domain.Suggestion{Category: r.category, Message: msg})
			if len(out) >= e.cfg.MaxGlobal {
				return out
			}
		}
	}
	return out
}

// ForDevice produces the per-device tip list shown on the device page.
func (e *SuggestionEngine) ForDevice(agg domain.DeviceAggregate) []string {
	tips := deviceStrategies[agg.Kind]
	var out []string
	if agg.Efficiency == domain.EfficiencyImproper {
		out = append(out, fmt.Sprintf("%s is drawing power outside its normal range; check for faults or worn parts.", agg.Name))
	}
	for _, tip := range tips {
		if len(out) >= e.cfg.MaxPerDevice {
			break
		}
		out = append(out, tip)
	}
	if len(out) > e.cfg.MaxPerDevice {
		out = out[:e.cfg.MaxPerDevice]
	}
	return out
}

func peakShiftRule(in SuggestionInput) []string {
	var total float64
	var peak float64
	for _, b := range in.Peak.Buckets {
		total += b.EnergyKWh
		if b.Period == in.Peak.PeakPeriod {
			peak = b.EnergyKWh
		}
	}
	if total == 0 || peak/total < 0.4 {
		return nil
	}
	return []string{fmt.Sprintf(
		"%.0f%% of your consumption happens in the %s; shifting heavy appliances to off-peak hours lowers slab charges.",
		peak/total*100, in.Peak.PeakPeriod,
	)}
}

func topConsumerRule(in SuggestionInput) []string {
	var total float64
	for _, a := range in.Aggregates {
		total += a.AveragePowerW
	}
	if total == 0 {
		return nil
	}

	names := make([]string, 0, len(in.Aggregates))
	for name := range in.Aggregates {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		a := in.Aggregates[name]
		share := a.AveragePowerW / total
		if share > 0.2 {
			out = append(out, fmt.Sprintf(
				"%s accounts for %.0f%% of average household draw; servicing or replacing it has the biggest cost impact.",
				name, share*100,
			))
		}
	}
	return out
}

func hotWeatherRule(in SuggestionInput) []string {
	if in.Weather == nil || in.Weather.TemperatureC < 32 {
		return nil
	}
	for name, a := range in.Aggregates {
		if a.Kind == domain.KindAC && a.IsActive {
			return []string{fmt.Sprintf(
				"It is %.0f°C in %s; raising the %s setpoint by 1-2°C cuts cooling cost noticeably.",
				in.Weather.TemperatureC, in.Weather.City, name,
			)}
		}
	}
	return nil
}

func improperDevicesRule(in SuggestionInput) []string {
	names := make([]string, 0)
	for name, a := range in.Aggregates {
		if a.Efficiency == domain.EfficiencyImproper {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return []string{fmt.Sprintf("%d device(s) show irregular power draw: %s. Inspect them for faults.", len(names), joinNames(names))}
}

func anomalousDevicesRule(in SuggestionInput) []string {
	names := make([]string, 0)
	for name, r := range in.Anomalies {
		if r.Status == domain.AnomalyStatusAnomalous {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		out = append(out, fmt.Sprintf("Unusual consumption pattern detected on %s in recent readings.", name))
	}
	return out
}

func generalTipsRule(in SuggestionInput) []string {
	if len(in.Aggregates) == 0 {
		return []string{"Connect your devices to start receiving personalised saving tips."}
	}
	return []string{"Unplug standby devices overnight; standby draw adds up across a month."}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

var deviceStrategies = map[domain.DeviceKind][]string{
	domain.KindAC: {
		"Keep the setpoint at 24°C or higher; every degree lower adds roughly 6% to cooling cost.",
		"Clean the filter monthly; a clogged filter raises power draw.",
		"Close doors and windows while cooling.",
	},
	domain.KindFridge: {
		"Leave clearance behind the unit so the condenser can vent.",
		"Avoid leaving the door open; each opening costs compressor run time.",
		"Defrost if ice builds beyond 5mm.",
	},
	domain.KindTelevision: {
		"Turn off at the switch instead of standby.",
		"Lower backlight brightness in the evening.",
	},
	domain.KindWashingMachine: {
		"Run full loads on the cold cycle where possible.",
		"Prefer off-peak hours for laundry.",
	},
	domain.KindLight: {
		"Replace any remaining incandescent bulbs with LED.",
		"Use daylight instead of artificial light where possible.",
	},
	domain.KindFan: {
		"Run fans only in occupied rooms.",
		"Clean blades; dust load increases motor draw.",
	},
	domain.KindOther: {
		"Check the device's rated power against its actual draw.",
	},
}
