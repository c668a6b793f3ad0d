package analytics

import (
	"time"

	"github.com/wattscope/wattscope/internal/domain"
)

// Bucket boundaries are half-open [start, end) on the hour of day. Night wraps
// across midnight and owns every hour the other buckets do not claim.
const (
	morningStart   = 5
	afternoonStart = 11
	eveningStart   = 16
	nightStart     = 21
)

// PeriodFor classifies a timestamp into its time-of-day bucket.
func PeriodFor(ts time.Time) domain.Period {
	hour := ts.Hour()
	switch {
	case hour >= morningStart && hour < afternoonStart:
		return domain.PeriodMorning
	case hour >= afternoonStart && hour < eveningStart:
		return domain.PeriodAfternoon
	case hour >= eveningStart && hour < nightStart:
		return domain.PeriodEvening
	default:
		return domain.PeriodNight
	}
}

// ClassifyPeriods partitions readings into the four buckets and picks the
// peak by energy, breaking ties by fixed period priority.
func ClassifyPeriods(readings []domain.Reading) domain.PeakReport {
	type acc struct {
		energy float64
		power  float64
		count  int
	}
	byPeriod := make(map[domain.Period]*acc, 4)
	for _, p := range domain.AllPeriods() {
		byPeriod[p] = &acc{}
	}

	for _, r := range readings {
		a := byPeriod[PeriodFor(r.Timestamp)]
		a.energy += r.EnergyKWh
		a.power += r.PowerW
		a.count++
	}

	report := domain.PeakReport{PeakPeriod: domain.PeriodAfternoon}
	best := -1.0
	for _, p := range domain.AllPeriods() {
		a := byPeriod[p]
		usage := domain.PeriodUsage{Period: p, EnergyKWh: a.energy, ReadingCount: a.count}
		if a.count > 0 {
			usage.AvgPowerW = a.power / float64(a.count)
		}
		report.Buckets = append(report.Buckets, usage)

		if a.energy > best || (a.energy == best && p.Priority() > report.PeakPeriod.Priority()) {
			best = a.energy
			report.PeakPeriod = p
		}
	}
	return report
}
