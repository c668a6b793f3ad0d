package domain

type ForecastConfidence string

const (
	ConfidenceModel     ForecastConfidence = "model"
	ConfidenceEstimated ForecastConfidence = "estimated"
)

type ForecastResult struct {
	HorizonDays  int                `json:"horizon_days"`
	PredictedKWh float64            `json:"predicted_kwh"`
	DailyAvgKWh  float64            `json:"daily_avg_kwh"`
	DailyAvgCost float64            `json:"daily_avg_cost"`
	EstimatedBill BillResult        `json:"estimated_bill"`
	Confidence   ForecastConfidence `json:"confidence"`
}

type AnomalyStatus string

const (
	AnomalyStatusOK           AnomalyStatus = "ok"
	AnomalyStatusAnomalous    AnomalyStatus = "anomalous"
	AnomalyStatusInsufficient AnomalyStatus = "insufficient_data"
)

// AnomalyReport summarises the isolation-forest pass for one device.
type AnomalyReport struct {
	DeviceName   string        `json:"device_name"`
	Status       AnomalyStatus `json:"status"`
	Score        float64       `json:"score,omitempty"`
	FlaggedCount int           `json:"flagged_count"`
	SampleCount  int           `json:"sample_count"`
}

type SuggestionCategory string

const (
	SuggestionCost    SuggestionCategory = "cost"
	SuggestionAnomaly SuggestionCategory = "anomaly"
	SuggestionGeneral SuggestionCategory = "general"
)

type Suggestion struct {
	Category SuggestionCategory `json:"category"`
	Message  string             `json:"message"`
}
