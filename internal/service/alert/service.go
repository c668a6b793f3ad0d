package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wattscope/wattscope/internal/adapter/queue"
	"github.com/wattscope/wattscope/internal/domain"
	"github.com/wattscope/wattscope/internal/observability/telemetry"
	"github.com/wattscope/wattscope/internal/ports"
	"github.com/wattscope/wattscope/internal/service/pipeline"
)

// Known alert types. Power alerts check a device's instantaneous draw,
// energy alerts check accumulated consumption.
const (
	AlertTypePower  = "power_threshold"
	AlertTypeEnergy = "energy_threshold"
)

// SnapshotSource exposes the published analytical view to the monitor.
type SnapshotSource interface {
	Snapshot() *pipeline.Snapshot
}

// Config tunes the background monitor.
type Config struct {
	Interval time.Duration `mapstructure:"interval"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

func DefaultConfig() *Config {
	return &Config{Interval: 60 * time.Second, Cooldown: 15 * time.Minute}
}

// Service owns alert settings, recipients, evaluation and dispatch.
type Service struct {
	settings   ports.AlertSettingRepository
	recipients ports.EmailRecipientRepository
	history    ports.AlertEventRepository
	email      ports.EmailService
	snapshots  SnapshotSource
	mq         queue.MessageQueue
	cfg        *Config
	log        *zap.Logger
}

func NewService(
	settings ports.AlertSettingRepository,
	recipients ports.EmailRecipientRepository,
	history ports.AlertEventRepository,
	email ports.EmailService,
	snapshots SnapshotSource,
	mq queue.MessageQueue,
	cfg *Config,
	log *zap.Logger,
) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{
		settings:   settings,
		recipients: recipients,
		history:    history,
		email:      email,
		snapshots:  snapshots,
		mq:         mq,
		cfg:        cfg,
		log:        log,
	}
}

// CreateSetting validates and stores a threshold rule.
func (s *Service) CreateSetting(ctx context.Context, setting *domain.AlertSetting) error {
	if err := setting.Validate(); err != nil {
		return err
	}
	if setting.ID == "" {
		setting.ID = uuid.NewString()
	}
	setting.CreatedAt = time.Now()
	setting.UpdatedAt = setting.CreatedAt
	if err := s.settings.Save(ctx, setting); err != nil {
		return fmt.Errorf("failed to save alert setting: %w", err)
	}
	s.log.Info("alert setting created",
		zap.String("id", setting.ID),
		zap.String("alert_type", setting.AlertType),
		zap.String("device", setting.DeviceName),
	)
	return nil
}

func (s *Service) ListSettings(ctx context.Context) ([]domain.AlertSetting, error) {
	return s.settings.FindAll(ctx)
}

func (s *Service) DeleteSetting(ctx context.Context, id string) error {
	existing, err := s.settings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NewInvalidInput("id", id, "alert setting not found")
	}
	return s.settings.Delete(ctx, id)
}

// CreateRecipient stores a new email recipient.
func (s *Service) CreateRecipient(ctx context.Context, recipient *domain.EmailRecipient) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	if recipient.ID == "" {
		recipient.ID = uuid.NewString()
	}
	recipient.CreatedAt = time.Now()
	recipient.UpdatedAt = recipient.CreatedAt
	return s.recipients.Save(ctx, recipient)
}

func (s *Service) ListRecipients(ctx context.Context) ([]domain.EmailRecipient, error) {
	return s.recipients.FindAll(ctx)
}

func (s *Service) UpdateRecipient(ctx context.Context, recipient *domain.EmailRecipient) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	existing, err := s.recipients.FindByID(ctx, recipient.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NewInvalidInput("id", recipient.ID, "recipient not found")
	}
	recipient.CreatedAt = existing.CreatedAt
	recipient.UpdatedAt = time.Now()
	return s.recipients.Update(ctx, recipient)
}

func (s *Service) DeleteRecipient(ctx context.Context, id string) error {
	existing, err := s.recipients.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NewInvalidInput("id", id, "recipient not found")
	}
	return s.recipients.Delete(ctx, id)
}

// History returns a page of fired alerts, newest first.
func (s *Service) History(ctx context.Context, page, perPage int) ([]domain.AlertEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.history.FindPage(ctx, page, perPage)
}

// Run evaluates thresholds on a fixed interval until the context ends.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info("alert monitor started", zap.Duration("interval", s.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("alert monitor stopped")
			return
		case <-ticker.C:
			if err := s.EvaluateOnce(ctx); err != nil {
				s.log.Error("alert evaluation failed", zap.Error(err))
			}
		}
	}
}

// EvaluateOnce checks every enabled setting against the current snapshot and
// dispatches alerts for breached thresholds.
func (s *Service) EvaluateOnce(ctx context.Context) error {
	settings, err := s.settings.FindEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alert settings: %w", err)
	}
	if len(settings) == 0 {
		return nil
	}

	snap := s.snapshots.Snapshot()
	for _, breach := range s.evaluate(settings, snap) {
		if s.inCooldown(ctx, breach) {
			continue
		}
		if err := s.dispatch(ctx, breach); err != nil {
			s.log.Error("alert dispatch failed",
				zap.String("alert_type", breach.AlertType),
				zap.Error(err),
			)
		}
	}
	return nil
}

type breach struct {
	AlertType  string
	DeviceName string
	Threshold  float64
	Actual     float64
	Type       domain.ThresholdType
	Severity   domain.AlertSeverity
	Message    string
}

// evaluate resolves which setting applies to which device. A device-specific
// setting overrides the global one of the same alert type for that device.
func (s *Service) evaluate(settings []domain.AlertSetting, snap *pipeline.Snapshot) []breach {
	specific := make(map[string]map[string]domain.AlertSetting)
	var global []domain.AlertSetting
	for _, st := range settings {
		if st.DeviceName == "" {
			global = append(global, st)
			continue
		}
		if specific[st.AlertType] == nil {
			specific[st.AlertType] = make(map[string]domain.AlertSetting)
		}
		specific[st.AlertType][st.DeviceName] = st
	}

	var out []breach
	check := func(st domain.AlertSetting, device string, actual float64) {
		if !Breached(st.ThresholdType, st.ThresholdValue, actual) {
			return
		}
		out = append(out, breach{
			AlertType:  st.AlertType,
			DeviceName: device,
			Threshold:  st.ThresholdValue,
			Actual:     actual,
			Type:       st.ThresholdType,
			Severity:   Severity(st.ThresholdType, st.ThresholdValue, actual),
			Message:    breachMessage(st.AlertType, device, st.ThresholdValue, actual),
		})
	}

	for _, st := range global {
		for name, agg := range snap.Aggregates {
			if _, overridden := specific[st.AlertType][name]; overridden {
				continue
			}
			check(st, name, metricFor(st.AlertType, agg))
		}
	}
	for alertType, byDevice := range specific {
		for name, st := range byDevice {
			agg, ok := snap.Aggregates[name]
			if !ok {
				continue
			}
			check(st, name, metricFor(alertType, agg))
		}
	}
	return out
}

func metricFor(alertType string, agg domain.DeviceAggregate) float64 {
	switch alertType {
	case AlertTypeEnergy:
		return agg.TotalEnergyKWh
	default:
		return agg.CurrentPowerW
	}
}

// Breached reports whether actual violates the threshold. Equality uses a
// small tolerance because the measurements are floats.
func Breached(tt domain.ThresholdType, threshold, actual float64) bool {
	switch tt {
	case domain.ThresholdGreaterThan:
		return actual > threshold
	case domain.ThresholdLessThan:
		return actual < threshold
	case domain.ThresholdEqualTo:
		return math.Abs(actual-threshold) < 0.01
	default:
		return false
	}
}

// Severity grades a breach by how far the measurement sits beyond the
// threshold.
func Severity(tt domain.ThresholdType, threshold, actual float64) domain.AlertSeverity {
	if tt == domain.ThresholdEqualTo || threshold == 0 {
		return domain.SeverityMedium
	}
	ratio := actual / threshold
	if tt == domain.ThresholdLessThan {
		// Zero or negative under a positive floor is the deepest undershoot.
		if actual <= 0 {
			return domain.SeverityCritical
		}
		ratio = threshold / actual
	}
	switch {
	case ratio >= 2.0:
		return domain.SeverityCritical
	case ratio >= 1.5:
		return domain.SeverityHigh
	case ratio >= 1.2:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func breachMessage(alertType, device string, threshold, actual float64) string {
	metric := "power draw"
	unit := "W"
	if alertType == AlertTypeEnergy {
		metric = "energy consumption"
		unit = "kWh"
	}
	return fmt.Sprintf("%s %s is %.2f%s (threshold %.2f%s)", device, metric, actual, unit, threshold, unit)
}

func (s *Service) inCooldown(ctx context.Context, b breach) bool {
	last, err := s.history.LastForSetting(ctx, b.AlertType, b.DeviceName)
	if err != nil || last == nil {
		return false
	}
	return time.Since(last.SentAt) < s.cfg.Cooldown
}

// dispatch emails subscribed recipients, records the history row and
// publishes the queue event.
func (s *Service) dispatch(ctx context.Context, b breach) error {
	event := &domain.AlertEvent{
		ID:             uuid.NewString(),
		AlertType:      b.AlertType,
		DeviceName:     b.DeviceName,
		ThresholdValue: b.Threshold,
		ActualValue:    b.Actual,
		Severity:       b.Severity,
		Message:        b.Message,
		SentAt:         time.Now(),
	}

	recipients, err := s.recipients.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	sent, failed := 0, 0
	for _, r := range recipients {
		if !r.SubscribedTo(b.AlertType) {
			continue
		}
		event.Recipients = append(event.Recipients, r.Email)
		if err := s.email.SendAlert(ctx, r.Email, event); err != nil {
			failed++
			telemetry.EmailsSent.WithLabelValues("failed").Inc()
			s.log.Warn("alert email failed",
				zap.String("to", r.Email),
				zap.Error(err),
			)
			continue
		}
		sent++
		telemetry.EmailsSent.WithLabelValues("sent").Inc()
	}

	switch {
	case failed == 0:
		event.Status = domain.AlertEventSent
	case sent > 0:
		event.Status = domain.AlertEventPartial
	default:
		event.Status = domain.AlertEventFailed
	}

	if err := s.history.Save(ctx, event); err != nil {
		s.log.Error("failed to record alert event", zap.Error(err))
	}
	telemetry.AlertsTriggered.WithLabelValues(b.AlertType, string(b.Severity)).Inc()
	s.publishTriggered(event)

	s.log.Info("alert triggered",
		zap.String("alert_type", b.AlertType),
		zap.String("device", b.DeviceName),
		zap.String("severity", string(b.Severity)),
		zap.Int("recipients", sent),
	)
	return nil
}

func (s *Service) publishTriggered(event *domain.AlertEvent) {
	if s.mq == nil {
		return
	}
	if data, err := json.Marshal(event); err == nil {
		if err := s.mq.Publish(queue.SubjectAlertTriggered, data); err != nil {
			s.log.Warn("failed to publish alert event", zap.Error(err))
		}
	}
}

// SendTestAlert fires a synthetic alert at every active recipient.
func (s *Service) SendTestAlert(ctx context.Context) (int, error) {
	recipients, err := s.recipients.FindActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load recipients: %w", err)
	}

	event := &domain.AlertEvent{
		ID:             uuid.NewString(),
		AlertType:      "test",
		ThresholdValue: 0,
		ActualValue:    0,
		Severity:       domain.SeverityLow,
		Message:        "This is a test alert to verify email delivery.",
		SentAt:         time.Now(),
	}

	sent := 0
	for _, r := range recipients {
		if err := s.email.SendAlert(ctx, r.Email, event); err != nil {
			s.log.Warn("test alert failed", zap.String("to", r.Email), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// DeviceThreshold is the per-device evaluation view for the dashboard.
type DeviceThreshold struct {
	DeviceName   string               `json:"device_name"`
	AlertType    string               `json:"alert_type"`
	Threshold    float64              `json:"threshold"`
	Type         domain.ThresholdType `json:"threshold_type"`
	CurrentValue float64              `json:"current_value"`
	Breached     bool                 `json:"breached"`
	Source       string               `json:"source"`
}

// DeviceThresholds reports which rule currently governs each device and
// whether it is breached.
func (s *Service) DeviceThresholds(ctx context.Context) ([]DeviceThreshold, error) {
	settings, err := s.settings.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}
	snap := s.snapshots.Snapshot()

	var out []DeviceThreshold
	for name, agg := range snap.Aggregates {
		for _, st := range settings {
			if st.DeviceName != "" && st.DeviceName != name {
				continue
			}
			if st.DeviceName == "" && hasOverride(settings, st.AlertType, name) {
				continue
			}
			actual := metricFor(st.AlertType, agg)
			source := "global"
			if st.DeviceName != "" {
				source = "device"
			}
			out = append(out, DeviceThreshold{
				DeviceName:   name,
				AlertType:    st.AlertType,
				Threshold:    st.ThresholdValue,
				Type:         st.ThresholdType,
				CurrentValue: actual,
				Breached:     Breached(st.ThresholdType, st.ThresholdValue, actual),
				Source:       source,
			})
		}
	}
	return out, nil
}

func hasOverride(settings []domain.AlertSetting, alertType, device string) bool {
	for _, st := range settings {
		if st.AlertType == alertType && st.DeviceName == device {
			return true
		}
	}
	return false
}
