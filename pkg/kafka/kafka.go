package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	ActivityTopic         = "console.activity"
	ActivityConsumerGroup = "activity"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

// EventActivity is one successful write made through the console.
type EventActivity struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Action    string    `json:"action"`
	Summary   string    `json:"summary"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer group session loop until ctx is done.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log *zap.Logger, topics ...string) {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			log.Error("kafka consume", zap.Error(err))
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
