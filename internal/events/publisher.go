// Package events publishes resolved payment results for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: time.Now}
}

// Record publishes the result keyed by order code so events for one order
// stay on one partition.
func (p *KafkaPublisher) Record(ctx context.Context, result models.PaymentResult) error {
	event := models.ResolvedEvent{
		EventID:   uuid.NewString(),
		OrderCode: result.OrderCode,
		Status:    result.Status,
		Result:    result,
		Timestamp: p.now().UTC().Format(time.RFC3339),
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.OrderCode),
		Value: eventJSON,
	})
}
