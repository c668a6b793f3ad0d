package tariff

import (
	"math"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// Config holds the slab tables. Consumption up to SwitchPoint units is billed
// on LowerSlabs; anything above uses UpperSlabs for the whole bill.
type Config struct {
	SwitchPoint float64             `mapstructure:"switch_point"`
	LowerSlabs  []domain.TariffSlab `mapstructure:"lower_slabs"`
	UpperSlabs  []domain.TariffSlab `mapstructure:"upper_slabs"`
}

// DefaultConfig returns the residential slab tables.
func DefaultConfig() *Config {
	return &Config{
		SwitchPoint: 500,
		LowerSlabs: []domain.TariffSlab{
			{UpToUnits: 100, Rate: 0},
			{UpToUnits: 200, Rate: 2.35},
			{UpToUnits: 400, Rate: 4.70},
			{UpToUnits: 500, Rate: 6.30},
		},
		UpperSlabs: []domain.TariffSlab{
			{UpToUnits: 100, Rate: 0},
			{UpToUnits: 400, Rate: 4.70},
			{UpToUnits: 500, Rate: 6.30},
			{UpToUnits: 600, Rate: 8.40},
			{UpToUnits: 800, Rate: 9.45},
			{UpToUnits: 1000, Rate: 10.50},
			{UpToUnits: math.Inf(1), Rate: 11.55},
		},
	}
}

// Service computes slab bills from a validated tariff configuration.
type Service struct {
	cfg *Config
	log *zap.Logger
}

// NewService validates the slab tables and returns a ready engine. A broken
// table is a startup failure, never a per-request error.
func NewService(cfg *Config, log *zap.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := validateSlabs("lower_slabs", cfg.LowerSlabs); err != nil {
		return nil, err
	}
	if err := validateSlabs("upper_slabs", cfg.UpperSlabs); err != nil {
		return nil, err
	}
	if cfg.SwitchPoint <= 0 {
		return nil, &domain.ConfigurationError{Section: "tariff", Message: "switch_point must be positive"}
	}
	return &Service{cfg: cfg, log: log}, nil
}

func validateSlabs(section string, slabs []domain.TariffSlab) error {
	if len(slabs) == 0 {
		return &domain.ConfigurationError{Section: "tariff." + section, Message: "slab table is empty"}
	}
	prev := 0.0
	for i, s := range slabs {
		if s.UpToUnits <= prev {
			return &domain.ConfigurationError{
				Section: "tariff." + section,
				Message: "slab bounds must be strictly increasing",
			}
		}
		if s.Rate < 0 || math.IsNaN(s.Rate) {
			return &domain.ConfigurationError{
				Section: "tariff." + section,
				Message: "slab rate must be non-negative",
			}
		}
		if i < len(slabs)-1 && math.IsInf(s.UpToUnits, 1) {
			return &domain.ConfigurationError{
				Section: "tariff." + section,
				Message: "only the last slab may be unbounded",
			}
		}
		prev = s.UpToUnits
	}
	return nil
}

// ComputeBill walks the slab table for the given consumption. Rounding to two
// decimals happens once here, at the output boundary.
func (s *Service) ComputeBill(units float64) (domain.BillResult, error) {
	if units < 0 || math.IsNaN(units) || math.IsInf(units, 0) {
		return domain.BillResult{}, domain.NewInvalidInput("units", "", "must be a non-negative finite number")
	}

	result := domain.BillResult{Units: units, Breakup: []domain.BillRow{}}
	if units == 0 {
		return result, nil
	}

	slabs := s.cfg.LowerSlabs
	if units > s.cfg.SwitchPoint {
		slabs = s.cfg.UpperSlabs
	}

	whole := math.Ceil(units)
	total := 0.0
	prev := 0.0
	remaining := whole
	for _, slab := range slabs {
		if remaining <= 0 {
			break
		}
		width := slab.UpToUnits - prev
		take := math.Min(remaining, width)
		if math.IsInf(width, 1) {
			take = remaining
		}
		amount := take * slab.Rate
		// Rows report the slab's own upper bound, not the consumed units.
		// The unbounded last slab renders as the consumed total since
		// infinity does not serialize.
		to := slab.UpToUnits
		if math.IsInf(to, 1) {
			to = whole
		}
		result.Breakup = append(result.Breakup, domain.BillRow{
			FromUnits: prev + 1,
			ToUnits:   to,
			Units:     take,
			Rate:      slab.Rate,
			Amount:    round2(amount),
		})
		total += amount
		remaining -= take
		prev = slab.UpToUnits
	}
	if remaining > 0 {
		// Consumption past a bounded table bills at the top rate.
		last := slabs[len(slabs)-1]
		amount := remaining * last.Rate
		result.Breakup = append(result.Breakup, domain.BillRow{
			FromUnits: prev + 1,
			ToUnits:   whole,
			Units:     remaining,
			Rate:      last.Rate,
			Amount:    round2(amount),
		})
		total += amount
	}

	result.Total = round2(total)
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
