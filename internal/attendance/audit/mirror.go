// Package audit mirrors attendance log entries to Kafka so downstream
// consumers (alerting, compliance) can follow attempts without polling the
// database. The mirror is best-effort: the database log is the source of
// truth and a slow or unreachable broker never blocks a check-in.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"geoattend/internal/attendance/models"
)

const defaultBuffer = 256

// Mirror publishes log entries to a Kafka topic from a background worker.
type Mirror struct {
	client *kgo.Client
	logger *slog.Logger
	inbox  chan *models.LogEntry

	closeOnce sync.Once
	done      chan struct{}
}

// NewMirror connects to the given brokers and starts the publish worker.
func NewMirror(brokers []string, topic string, logger *slog.Logger) (*Mirror, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}

	m := &Mirror{
		client: client,
		logger: logger,
		inbox:  make(chan *models.LogEntry, defaultBuffer),
		done:   make(chan struct{}),
	}
	go m.run()
	return m, nil
}

// Publish queues one entry. When the buffer is full the entry is dropped
// and counted in the log; attendance never waits on Kafka.
func (m *Mirror) Publish(entry *models.LogEntry) {
	if m == nil {
		return
	}
	select {
	case m.inbox <- entry:
	default:
		m.logger.Warn("audit mirror buffer full, dropping entry",
			slog.String("user_id", entry.UserID.String()),
			slog.String("action", string(entry.Action)))
	}
}

func (m *Mirror) run() {
	defer close(m.done)
	for entry := range m.inbox {
		payload, err := json.Marshal(entry)
		if err != nil {
			m.logger.Error("marshal audit entry", slog.Any("error", err))
			continue
		}
		record := &kgo.Record{
			Key:   []byte(entry.UserID.String()),
			Value: payload,
		}
		m.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
			if err != nil {
				m.logger.Warn("audit mirror publish failed", slog.Any("error", err))
			}
		})
	}
	m.client.Flush(context.Background())
}

// Close drains queued entries, flushes in-flight produces, and releases the
// client.
func (m *Mirror) Close() {
	if m == nil {
		return
	}
	m.closeOnce.Do(func() {
		close(m.inbox)
		<-m.done
		m.client.Close()
	})
}
