package tariff

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

func twoSlabConfig() *Config {
	return &Config{
		SwitchPoint: 1000,
		LowerSlabs: []domain.TariffSlab{
			{UpToUnits: 100, Rate: 0},
			{UpToUnits: 200, Rate: 2.25},
		},
		UpperSlabs: []domain.TariffSlab{
			{UpToUnits: 100, Rate: 0},
			{UpToUnits: math.Inf(1), Rate: 2.25},
		},
	}
}

func TestComputeBill_TwoSlabExample(t *testing.T) {
	// Arrange
	svc, err := NewService(twoSlabConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	// Act
	bill, err := svc.ComputeBill(150)

	// Assert
	if err != nil {
		t.Fatalf("ComputeBill returned error: %v", err)
	}
	if bill.Total != 112.50 {
		t.Errorf("expected total 112.50, got %v", bill.Total)
	}
	if len(bill.Breakup) != 2 {
		t.Fatalf("expected 2 breakup rows, got %d", len(bill.Breakup))
	}
	if bill.Breakup[0].Amount != 0 {
		t.Errorf("first 100 units should be free, got %v", bill.Breakup[0].Amount)
	}
	if bill.Breakup[1].Units != 50 || bill.Breakup[1].Rate != 2.25 {
		t.Errorf("second row should bill 50 units at 2.25, got %+v", bill.Breakup[1])
	}
	// Rows carry the slab's bounds even when consumption stops mid-slab.
	if bill.Breakup[0].FromUnits != 1 || bill.Breakup[0].ToUnits != 100 {
		t.Errorf("first row should span 1-100, got %v-%v", bill.Breakup[0].FromUnits, bill.Breakup[0].ToUnits)
	}
	if bill.Breakup[1].FromUnits != 101 || bill.Breakup[1].ToUnits != 200 {
		t.Errorf("second row should span 101-200, got %v-%v", bill.Breakup[1].FromUnits, bill.Breakup[1].ToUnits)
	}
}

func TestComputeBill_UnboundedSlabRowBound(t *testing.T) {
	svc, _ := NewService(nil, zap.NewNop())

	bill, err := svc.ComputeBill(1500)

	if err != nil {
		t.Fatalf("ComputeBill returned error: %v", err)
	}
	last := bill.Breakup[len(bill.Breakup)-1]
	// The open-ended top slab reports the consumed total as its bound.
	if last.ToUnits != 1500 {
		t.Errorf("expected top row bound 1500, got %v", last.ToUnits)
	}
	if math.IsInf(last.ToUnits, 1) {
		t.Error("row bound must stay finite for serialization")
	}
}

func TestComputeBill_ZeroUnits(t *testing.T) {
	svc, _ := NewService(nil, zap.NewNop())

	bill, err := svc.ComputeBill(0)

	if err != nil {
		t.Fatalf("ComputeBill(0) returned error: %v", err)
	}
	if bill.Total != 0 {
		t.Errorf("expected zero total, got %v", bill.Total)
	}
	if len(bill.Breakup) != 0 {
		t.Errorf("expected empty breakup, got %d rows", len(bill.Breakup))
	}
}

func TestComputeBill_InvalidInput(t *testing.T) {
	svc, _ := NewService(nil, zap.NewNop())

	cases := []struct {
		name  string
		units float64
	}{
		{"negative", -5},
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ComputeBill(tc.units)
			if !domain.IsInvalidInput(err) {
				t.Errorf("expected InvalidInputError, got %v", err)
			}
		})
	}
}

func TestComputeBill_BreakupSumsToTotal(t *testing.T) {
	svc, _ := NewService(nil, zap.NewNop())

	for _, units := range []float64{1, 99, 100, 101, 250, 400, 500, 501, 750, 999, 1500} {
		bill, err := svc.ComputeBill(units)
		if err != nil {
			t.Fatalf("ComputeBill(%v) returned error: %v", units, err)
		}
		sum := 0.0
		covered := 0.0
		for _, row := range bill.Breakup {
			sum += row.Amount
			covered += row.Units
		}
		if math.Abs(sum-bill.Total) > 0.02 {
			t.Errorf("units=%v: breakup sum %v diverges from total %v", units, sum, bill.Total)
		}
		if covered != math.Ceil(units) {
			t.Errorf("units=%v: breakup covers %v units, want %v", units, covered, math.Ceil(units))
		}
	}
}

func TestComputeBill_Monotonic(t *testing.T) {
	svc, _ := NewService(nil, zap.NewNop())

	prev := -1.0
	for units := 0.0; units <= 600; units += 25 {
		bill, err := svc.ComputeBill(units)
		if err != nil {
			t.Fatalf("ComputeBill(%v) returned error: %v", units, err)
		}
		// The table switch at 500 units reprices the whole bill, which is
		// allowed to jump but never to drop below the previous point.
		if bill.Total < prev {
			t.Errorf("total decreased at units=%v: %v < %v", units, bill.Total, prev)
		}
		prev = bill.Total
	}
}

func TestNewService_RejectsBrokenTables(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
	}{
		{
			"empty table",
			&Config{SwitchPoint: 500, LowerSlabs: nil, UpperSlabs: DefaultConfig().UpperSlabs},
		},
		{
			"non-increasing bounds",
			&Config{
				SwitchPoint: 500,
				LowerSlabs:  []domain.TariffSlab{{UpToUnits: 200, Rate: 1}, {UpToUnits: 100, Rate: 2}},
				UpperSlabs:  DefaultConfig().UpperSlabs,
			},
		},
		{
			"negative rate",
			&Config{
				SwitchPoint: 500,
				LowerSlabs:  []domain.TariffSlab{{UpToUnits: 100, Rate: -1}},
				UpperSlabs:  DefaultConfig().UpperSlabs,
			},
		},
		{
			"unbounded middle slab",
			&Config{
				SwitchPoint: 500,
				LowerSlabs:  []domain.TariffSlab{{UpToUnits: math.Inf(1), Rate: 1}, {UpToUnits: math.Inf(1), Rate: 2}},
				UpperSlabs:  DefaultConfig().UpperSlabs,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewService(tc.cfg, zap.NewNop())
			var ce *domain.ConfigurationError
			if err == nil {
				t.Fatal("expected ConfigurationError, got nil")
			}
			if !errors.As(err, &ce) {
				t.Errorf("expected ConfigurationError, got %T", err)
			}
		})
	}
}
