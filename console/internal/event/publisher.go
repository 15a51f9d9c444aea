package event

import (
	"context"

	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Publisher sends activity events to Kafka. A nil Publisher drops them.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      log.Named("publisher"),
	}
}

// Record publishes e keyed by its entity id. Failures are only logged.
func (p *Publisher) Record(_ context.Context, e kafka.EventActivity) {
	if p == nil || p.producer == nil {
		return
	}
	data, err := jsoniter.ConfigFastest.Marshal(e)
	if err != nil {
		p.log.Error("marshal event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.EntityID),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		p.log.Warn("publish event", zap.String("id", e.ID), zap.Error(err))
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
