// Package eventbus publishes the domain events the spec's components emit
// as they complete work (news collected, scan completed, narrative
// detected, cycle finalized), grounded on the teacher's
// "api-gateway (old)"/internal/kafka Producer.
package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Topic names published by the core components.
const (
	TopicNewsCollected     = "catalyst.news.collected"
	TopicScanCompleted     = "catalyst.scanner.completed"
	TopicNarrativeDetected = "catalyst.news.narrative_detected"
	TopicCycleFinalized    = "catalyst.coordinator.cycle_finalized"
	TopicOutcomeUpdated    = "catalyst.news.outcome_updated"
)

// Event is a domain event envelope; Value is marshaled to JSON as the
// message body, Key is used for partition routing (usually a cycle_id,
// scan_id, or fingerprint).
type Event struct {
	Key   string
	Value interface{}
}

// Publisher publishes domain events to Kafka, lazily creating one writer
// per topic the way the teacher's Producer does.
type Publisher struct {
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
	brokers  []string
	clientID string
	logger   *zap.Logger
}

func NewPublisher(brokers []string, clientID string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writers:  make(map[string]*kafka.Writer),
		brokers:  brokers,
		clientID: clientID,
		logger:   logger,
	}
}

func (p *Publisher) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}
	p.writers[topic] = writer
	return writer
}

// Publish marshals evt.Value to JSON and writes it to topic.
func (p *Publisher) Publish(ctx context.Context, topic string, evt Event) error {
	writer := p.getWriter(topic)

	body, err := json.Marshal(evt.Value)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("topic", topic), zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.Key),
		Value: body,
		Time:  time.Now(),
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("key", evt.Key),
			zap.Error(err))
		return err
	}

	p.logger.Debug("event published", zap.String("topic", topic), zap.String("key", evt.Key))
	return nil
}

// Close closes every topic writer opened so far.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.Error("failed to close kafka writer", zap.String("topic", topic), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
