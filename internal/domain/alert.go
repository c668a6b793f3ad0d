package domain

import (
	"time"

	"github.com/lib/pq"
)

type ThresholdType string

const (
	ThresholdGreaterThan ThresholdType = "greater_than"
	ThresholdLessThan    ThresholdType = "less_than"
	ThresholdEqualTo     ThresholdType = "equal_to"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// AlertSetting is a threshold rule. DeviceName empty means the rule applies
// globally; a device-specific rule overrides the global one for that device.
type AlertSetting struct {
	ID             string        `json:"id" gorm:"primaryKey"`
	AlertType      string        `json:"alert_type" gorm:"index"`
	DeviceName     string        `json:"device_name,omitempty" gorm:"index"`
	ThresholdValue float64       `json:"threshold_value"`
	ThresholdType  ThresholdType `json:"threshold_type"`
	Enabled        bool          `json:"enabled"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (s AlertSetting) Validate() error {
	if s.AlertType == "" {
		return NewInvalidInput("alert_type", "", "must not be empty")
	}
	switch s.ThresholdType {
	case ThresholdGreaterThan, ThresholdLessThan, ThresholdEqualTo:
	default:
		return NewInvalidInput("threshold_type", string(s.ThresholdType), "must be greater_than, less_than or equal_to")
	}
	return nil
}

type EmailRecipient struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	Email      string         `json:"email" gorm:"uniqueIndex"`
	Name       string         `json:"name"`
	Active     bool           `json:"active"`
	AlertTypes pq.StringArray `json:"alert_types" gorm:"type:text[]"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (r EmailRecipient) Validate() error {
	if r.Email == "" {
		return NewInvalidInput("email", "", "must not be empty")
	}
	return nil
}

// SubscribedTo reports whether the recipient wants alerts of the given type.
// An empty subscription list means all types.
func (r EmailRecipient) SubscribedTo(alertType string) bool {
	if len(r.AlertTypes) == 0 {
		return true
	}
	for _, t := range r.AlertTypes {
		if t == alertType {
			return true
		}
	}
	return false
}

type AlertEventStatus string

const (
	AlertEventSent    AlertEventStatus = "sent"
	AlertEventPartial AlertEventStatus = "partial"
	AlertEventFailed  AlertEventStatus = "failed"
)

type AlertEvent struct {
	ID             string           `json:"id" gorm:"primaryKey"`
	AlertType      string           `json:"alert_type" gorm:"index"`
	DeviceName     string           `json:"device_name,omitempty"`
	ThresholdValue float64          `json:"threshold_value"`
	ActualValue    float64          `json:"actual_value"`
	Severity       AlertSeverity    `json:"severity"`
	Message        string           `json:"message"`
	Recipients     pq.StringArray   `json:"recipients" gorm:"type:text[]"`
	Status         AlertEventStatus `json:"status"`
	SentAt         time.Time        `json:"sent_at" gorm:"index"`
}
