package analytics

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// Biller prices a predicted consumption. Satisfied by the tariff service.
type Biller interface {
	ComputeBill(units float64) (domain.BillResult, error)
}

// Forecaster projects future consumption from the daily energy history using
// ordinary least squares, falling back to a proportional estimate when the
// history is too short to fit a line.
type Forecaster struct {
	biller Biller
	log    *zap.Logger
}

func NewForecaster(biller Biller, log *zap.Logger) *Forecaster {
	return &Forecaster{biller: biller, log: log}
}

// Forecast predicts total consumption over the next horizonDays and prices
// it. horizonDays must be in [1, 365].
func (f *Forecaster) Forecast(readings []domain.Reading, horizonDays int) (domain.ForecastResult, error) {
	if horizonDays < 1 || horizonDays > 365 {
		return domain.ForecastResult{}, domain.NewInvalidInput("days", "", "must be between 1 and 365")
	}

	result := domain.ForecastResult{HorizonDays: horizonDays}

	days := dailyTotals(readings)
	if len(days) < 2 {
		result.Confidence = domain.ConfidenceEstimated
		result.PredictedKWh = estimateProportional(days, horizonDays)
	} else {
		result.Confidence = domain.ConfidenceModel
		slope, intercept := fitLine(days)
		lastIdx := float64(len(days) - 1)
		var predicted float64
		for d := 1; d <= horizonDays; d++ {
			daily := intercept + slope*(lastIdx+float64(d))
			if daily < 0 {
				daily = 0
			}
			predicted += daily
		}
		result.PredictedKWh = predicted
	}

	result.PredictedKWh = round2(result.PredictedKWh)
	result.DailyAvgKWh = round2(result.PredictedKWh / float64(horizonDays))

	bill, err := f.biller.ComputeBill(result.PredictedKWh)
	if err != nil {
		return domain.ForecastResult{}, err
	}
	result.EstimatedBill = bill
	result.DailyAvgCost = round2(bill.Total / float64(horizonDays))

	if f.log != nil {
		f.log.Debug("forecast computed",
			zap.Int("horizon_days", horizonDays),
			zap.Float64("predicted_kwh", result.PredictedKWh),
			zap.String("confidence", string(result.Confidence)),
		)
	}
	return result, nil
}

// ForecastDevice runs the same engine over one device's readings.
func (f *Forecaster) ForecastDevice(readings []domain.Reading, device string, horizonDays int) (domain.ForecastResult, error) {
	var filtered []domain.Reading
	for _, r := range readings {
		if r.DeviceName == device {
			filtered = append(filtered, r)
		}
	}
	return f.Forecast(filtered, horizonDays)
}

// dailyTotals sums energy per calendar day, ordered chronologically.
func dailyTotals(readings []domain.Reading) []float64 {
	if len(readings) == 0 {
		return nil
	}
	sums := make(map[string]float64)
	var keys []string
	for _, r := range readings {
		key := r.Timestamp.Format("2006-01-02")
		if _, seen := sums[key]; !seen {
			keys = append(keys, key)
		}
		sums[key] += r.EnergyKWh
	}
	sort.Strings(keys)
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = sums[k]
	}
	return out
}

// fitLine is ordinary least squares of daily totals against day index.
func fitLine(days []float64) (slope, intercept float64) {
	n := float64(len(days))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range days {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// estimateProportional scales the observed average daily energy to the
// horizon. With no history at all the estimate is zero.
func estimateProportional(days []float64, horizonDays int) float64 {
	if len(days) == 0 {
		return 0
	}
	var sum float64
	for _, d := range days {
		sum += d
	}
	return sum / float64(len(days)) * float64(horizonDays)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
