// Package eventbus announces committed order status changes on a Kafka topic.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderlifecycle/internal/core/domain/model/audit"
	"orderlifecycle/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// StatusChangedEvent is the message value. Field names are part of the
// contract with consumers.
type StatusChangedEvent struct {
	EventID    string    `json:"eventId"`
	OrderID    string    `json:"orderId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OperatorID string    `json:"operatorId"`
	Notes      string    `json:"notes,omitempty"`
	ChangedAt  time.Time `json:"changedAt"`
	Version    int64     `json:"version"`
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// StatusChangePublisher implements ports.StatusChangePublisher. Messages are
// keyed by order id so that the changes of one order stay in one partition
// and keep their order.
type StatusChangePublisher struct {
	writer messageWriter
}

func NewStatusChangePublisher(writer messageWriter) (*StatusChangePublisher, error) {
	if writer == nil {
		return nil, errs.NewValueIsRequiredError("writer")
	}
	return &StatusChangePublisher{writer: writer}, nil
}

// writeTimeout bounds a single write attempt to the broker.
const writeTimeout = time.Second

// NewWriter builds a writer for topic with hash balancing on the message key.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
		MaxAttempts:            3,
	}
}

func (p *StatusChangePublisher) Publish(ctx context.Context, record *audit.StatusChangeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(newStatusChangedEvent(record))
	if err != nil {
		return fmt.Errorf("marshal status changed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(record.OrderID().String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("order.status.changed")},
		},
	}
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write status changed event for order %s: %w", record.OrderID(), err)
	}
	return nil
}

func newStatusChangedEvent(record *audit.StatusChangeRecord) StatusChangedEvent {
	return StatusChangedEvent{
		EventID:    record.ID().String(),
		OrderID:    record.OrderID().String(),
		FromStatus: record.FromStatus().String(),
		ToStatus:   record.ToStatus().String(),
		OperatorID: record.OperatorID(),
		Notes:      record.Notes(),
		ChangedAt:  record.Timestamp(),
		Version:    record.Version(),
	}
}
