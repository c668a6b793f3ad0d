package ports

import (
	"context"
	"time"

	"github.com/wattscope/wattscope/internal/domain"
)

// Cache is the key-value cache abstraction. Backed by Redis in production
// and an in-memory map when Redis is unreachable.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// EmailService sends alert and test mail to configured recipients.
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
	SendAlert(ctx context.Context, to string, event *domain.AlertEvent) error
}

// WeatherService resolves ambient conditions for a city. Timeouts and open
// circuits surface as UpstreamTimeoutError so callers can degrade instead of
// failing the request.
type WeatherService interface {
	Current(ctx context.Context, city string) (*domain.WeatherReport, error)
}

// SnapshotBroadcaster pushes snapshot-updated notifications to connected
// dashboard clients.
type SnapshotBroadcaster interface {
	BroadcastJSON(v interface{}) error
}
