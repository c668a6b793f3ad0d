package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/domain"
)

// SimulatorConfig drives the synthetic household.
type SimulatorConfig struct {
	ServerURL    string
	Devices      []string
	Interval     time.Duration
	BackfillDays int
	AnomalyRate  float64
	Seed         int64
}

// Simulator generates plausible readings per device and posts them to the
// ingest endpoint. Each device follows its profile envelope with a coarse
// time-of-day occupancy curve; a small fraction of readings spike outside
// the envelope to exercise anomaly detection.
type Simulator struct {
	cfg    *SimulatorConfig
	client *http.Client
	rng    *rand.Rand
	log    *zap.Logger
}

func NewSimulator(cfg *SimulatorConfig, log *zap.Logger) *Simulator {
	return &Simulator{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    log,
	}
}

// Backfill posts historical readings in one replace batch so forecasts have
// a daily history to fit against.
func (s *Simulator) Backfill(ctx context.Context) error {
	if s.cfg.BackfillDays <= 0 {
		return nil
	}

	var batch []domain.Reading
	now := time.Now()
	for day := s.cfg.BackfillDays; day > 0; day-- {
		date := now.AddDate(0, 0, -day)
		for hour := 0; hour < 24; hour++ {
			ts := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
			for _, device := range s.cfg.Devices {
				batch = append(batch, s.reading(device, ts, time.Hour))
			}
		}
	}

	s.log.Info("Backfilling history",
		zap.Int("days", s.cfg.BackfillDays),
		zap.Int("readings", len(batch)),
	)
	return s.post(ctx, batch, true)
}

// Run emits one batch per interval until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			batch := make([]domain.Reading, 0, len(s.cfg.Devices))
			for _, device := range s.cfg.Devices {
				batch = append(batch, s.reading(device, now, s.cfg.Interval))
			}
			if err := s.post(ctx, batch, false); err != nil {
				s.log.Warn("failed to post batch", zap.Error(err))
			}
		}
	}
}

func (s *Simulator) reading(device string, ts time.Time, interval time.Duration) domain.Reading {
	kind := domain.KindForDevice(device)
	profile := domain.ProfileForKind(kind)

	on := s.rng.Float64() < onProbability(kind, ts.Hour())
	var power float64
	status := domain.SwitchOff
	if on {
		status = domain.SwitchOn
		span := profile.MaxPowerW - profile.MinPowerW
		power = profile.MinPowerW + s.rng.Float64()*span

		if s.rng.Float64() < s.cfg.AnomalyRate {
			power = profile.MaxPowerW * (1.5 + s.rng.Float64())
		}
	}

	voltage := 228 + s.rng.Float64()*8
	return domain.Reading{
		DeviceName:   device,
		Timestamp:    ts,
		PowerW:       round2(power),
		VoltageV:     round2(voltage),
		CurrentA:     round2(power / voltage),
		EnergyKWh:    round2(power / 1000 * interval.Hours()),
		SwitchStatus: status,
	}
}

// onProbability is a coarse occupancy curve per device kind.
func onProbability(kind domain.DeviceKind, hour int) float64 {
	evening := hour >= 17 && hour <= 22
	night := hour >= 0 && hour < 6

	switch kind {
	case domain.KindFridge:
		return 0.95
	case domain.KindAC:
		if hour >= 12 && hour <= 16 {
			return 0.7
		}
		if night {
			return 0.3
		}
		return 0.2
	case domain.KindTelevision:
		if evening {
			return 0.8
		}
		return 0.15
	case domain.KindLight:
		if evening || night {
			return 0.85
		}
		return 0.1
	case domain.KindWashingMachine:
		if hour >= 9 && hour <= 11 {
			return 0.4
		}
		return 0.05
	case domain.KindFan:
		if evening || night {
			return 0.6
		}
		return 0.3
	default:
		return 0.4
	}
}

func (s *Simulator) post(ctx context.Context, batch []domain.Reading, replace bool) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/readings", s.cfg.ServerURL)
	if replace {
		url += "?replace=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post readings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	s.log.Debug("batch posted",
		zap.Int("readings", len(batch)),
		zap.Bool("replace", replace),
	)
	return nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
