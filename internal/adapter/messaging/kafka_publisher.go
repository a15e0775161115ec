package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// CacheDriftEvent asks an out-of-band consumer to converge the cache entry to
// the committed durable quantity.
type CacheDriftEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SKUID     string    `json:"sku_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

const eventTypeCacheDrift = "StockCacheDrift"

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) PublishCacheDrift(ctx context.Context, skuID string, quantity int) error {
	event := CacheDriftEvent{
		EventID:   uuid.New().String(),
		EventType: eventTypeCacheDrift,
		SKUID:     skuID,
		Quantity:  quantity,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(skuID),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
