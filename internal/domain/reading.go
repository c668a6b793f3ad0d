package domain

import (
	"math"
	"time"
)

type SwitchStatus string

const (
	SwitchOn  SwitchStatus = "on"
	SwitchOff SwitchStatus = "off"
)

// Reading is a single telemetry sample from a household device.
type Reading struct {
	DeviceName   string       `json:"device_name"`
	Timestamp    time.Time    `json:"timestamp"`
	PowerW       float64      `json:"power"`
	VoltageV     float64      `json:"voltage"`
	CurrentA     float64      `json:"current"`
	EnergyKWh    float64      `json:"energy_kwh"`
	SwitchStatus SwitchStatus `json:"switch_status"`
}

// Validate rejects rows that would poison every downstream aggregate.
func (r Reading) Validate() error {
	if r.DeviceName == "" {
		return NewInvalidInput("device_name", "", "must not be empty")
	}
	if r.Timestamp.IsZero() {
		return NewInvalidInput("timestamp", "", "must be set")
	}
	if r.PowerW < 0 || math.IsNaN(r.PowerW) || math.IsInf(r.PowerW, 0) {
		return NewInvalidInput("power", "", "must be a non-negative finite number")
	}
	if r.EnergyKWh < 0 || math.IsNaN(r.EnergyKWh) || math.IsInf(r.EnergyKWh, 0) {
		return NewInvalidInput("energy_kwh", "", "must be a non-negative finite number")
	}
	if r.VoltageV < 0 || math.IsNaN(r.VoltageV) {
		return NewInvalidInput("voltage", "", "must be a non-negative number")
	}
	if r.CurrentA < 0 || math.IsNaN(r.CurrentA) {
		return NewInvalidInput("current", "", "must be a non-negative number")
	}
	switch r.SwitchStatus {
	case SwitchOn, SwitchOff, "":
	default:
		return NewInvalidInput("switch_status", string(r.SwitchStatus), "must be on or off")
	}
	return nil
}

func (r Reading) IsOn() bool {
	return r.SwitchStatus == SwitchOn
}
