package queue

// Subjects published by the monitoring pipeline.
const (
	SubjectReadingsIngested = "readings.ingested"
	SubjectAlertTriggered   = "alerts.triggered"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
