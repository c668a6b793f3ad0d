package domain

import (
	"strings"
	"time"
)

type DeviceKind string

const (
	KindAC             DeviceKind = "AC"
	KindFridge         DeviceKind = "Fridge"
	KindTelevision     DeviceKind = "Television"
	KindWashingMachine DeviceKind = "Washing Machine"
	KindLight          DeviceKind = "Light"
	KindFan            DeviceKind = "Fan"
	KindOther          DeviceKind = "Other"
)

type Efficiency string

const (
	EfficiencyProper   Efficiency = "proper"
	EfficiencyImproper Efficiency = "improper"
	EfficiencyUnknown  Efficiency = "unknown"
)

// DeviceProfile describes the expected operating envelope and dashboard
// presentation for a device kind.
type DeviceProfile struct {
	Kind      DeviceKind
	MinPowerW float64
	MaxPowerW float64
	Icon      string
	Color     string
}

var deviceProfiles = map[DeviceKind]DeviceProfile{
	KindAC:             {Kind: KindAC, MinPowerW: 150, MaxPowerW: 2000, Icon: "ac", Color: "#3b82f6"},
	KindFridge:         {Kind: KindFridge, MinPowerW: 80, MaxPowerW: 300, Icon: "fridge", Color: "#10b981"},
	KindTelevision:     {Kind: KindTelevision, MinPowerW: 50, MaxPowerW: 200, Icon: "tv", Color: "#8b5cf6"},
	KindWashingMachine: {Kind: KindWashingMachine, MinPowerW: 300, MaxPowerW: 800, Icon: "washer", Color: "#f59e0b"},
	KindLight:          {Kind: KindLight, MinPowerW: 5, MaxPowerW: 60, Icon: "bulb", Color: "#eab308"},
	KindFan:            {Kind: KindFan, MinPowerW: 30, MaxPowerW: 100, Icon: "fan", Color: "#06b6d4"},
	KindOther:          {Kind: KindOther, MinPowerW: 0, MaxPowerW: 0, Icon: "plug", Color: "#6b7280"},
}

// KindForDevice maps a free-form device name to its closed kind set. An exact
// kind name wins; otherwise keyword matching applies, with "ac" matched only
// as a standalone word so names like "washing machine" never classify as AC.
func KindForDevice(name string) DeviceKind {
	lower := strings.ToLower(strings.TrimSpace(name))
	for kind := range deviceProfiles {
		if lower == strings.ToLower(string(kind)) {
			return kind
		}
	}
	switch {
	case strings.Contains(lower, "wash"):
		return KindWashingMachine
	case strings.Contains(lower, "fridge") || strings.Contains(lower, "refrigerator"):
		return KindFridge
	case strings.Contains(lower, "tv") || strings.Contains(lower, "television"):
		return KindTelevision
	case containsWord(lower, "ac") || strings.Contains(lower, "air"):
		return KindAC
	case strings.Contains(lower, "light") || strings.Contains(lower, "lamp") || strings.Contains(lower, "bulb"):
		return KindLight
	case strings.Contains(lower, "fan"):
		return KindFan
	default:
		return KindOther
	}
}

func containsWord(s, word string) bool {
	for _, field := range strings.Fields(s) {
		if field == word {
			return true
		}
	}
	return false
}

func ProfileForKind(kind DeviceKind) DeviceProfile {
	if p, ok := deviceProfiles[kind]; ok {
		return p
	}
	return deviceProfiles[KindOther]
}

// DeviceAggregate is the per-device summary exposed by the read API.
type DeviceAggregate struct {
	Name           string          `json:"name"`
	Kind           DeviceKind      `json:"kind"`
	Icon           string          `json:"icon"`
	Color          string          `json:"color"`
	CurrentPowerW  float64         `json:"current_power"`
	AveragePowerW  float64         `json:"average_power"`
	PeakPowerW     float64         `json:"peak_power"`
	TotalEnergyKWh float64         `json:"total_energy_kwh"`
	IsActive       bool            `json:"is_active"`
	Efficiency     Efficiency      `json:"efficiency"`
	DataPoints     int             `json:"data_points"`
	HourlyUsage    map[int]float64 `json:"hourly_usage,omitempty"`
	Suggestions    []string        `json:"suggestions,omitempty"`
	LastSeen       time.Time       `json:"last_seen"`
}
