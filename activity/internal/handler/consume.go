package handler

import (
	"context"

	"github.com/Astemirdum/library-admin/activity/internal/errs"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type record func(ctx context.Context, event kafka.EventActivity) error

type Consumer struct {
	recordHandler record
	log           *zap.Logger
	ready         chan bool
}

func NewConsumer(record record, log *zap.Logger) *Consumer {
	return &Consumer{
		recordHandler: record,
		log:           log.Named("consumer"),
		ready:         make(chan bool),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	// Setup runs again after every rebalance.
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if err := consumer.process(session.Context(), message); err != nil {
				return err
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// process stores one message. Undecodable and invalid events are dropped. A
// storage error ends the session so that the message is read again.
func (consumer *Consumer) process(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event kafka.EventActivity
	if err := jsoniter.ConfigFastest.Unmarshal(message.Value, &event); err != nil {
		consumer.log.Error("decode event", zap.Int64("offset", message.Offset), zap.Error(err))
		return nil
	}

	if err := consumer.recordHandler(ctx, event); err != nil {
		if errors.Is(err, errs.ErrInvalidEvent) {
			consumer.log.Warn("drop event", zap.Error(err))
			return nil
		}
		consumer.log.Error("consumer.recordHandler", zap.String("id", event.ID), zap.Error(err))
		return errors.Wrapf(err, "record event %s", event.ID)
	}

	consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
	return nil
}
