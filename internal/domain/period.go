package domain

type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
	PeriodNight     Period = "night"
)

// periodPriority breaks peak ties deterministically.
var periodPriority = map[Period]int{
	PeriodAfternoon: 4,
	PeriodEvening:   3,
	PeriodMorning:   2,
	PeriodNight:     1,
}

func (p Period) Priority() int { return periodPriority[p] }

func AllPeriods() []Period {
	return []Period{PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight}
}

// PeriodUsage is the classified consumption report for one time-of-day bucket.
type PeriodUsage struct {
	Period       Period  `json:"period"`
	EnergyKWh    float64 `json:"energy_kwh"`
	AvgPowerW    float64 `json:"avg_power"`
	ReadingCount int     `json:"reading_count"`
}

type PeakReport struct {
	Buckets    []PeriodUsage `json:"buckets"`
	PeakPeriod Period        `json:"peak_period"`
}
