package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/library-admin/console/internal/event"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublisher_Record(t *testing.T) {
	t.Parallel()
	e := kafka.EventActivity{
		ID:        "e1",
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Actor:     "ann@lib.org",
		Entity:    "book",
		EntityID:  "b1",
		Action:    "create",
		Summary:   "Dune",
	}

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, kafka.ActivityTopic, msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "b1", string(key))

		data, err := msg.Value.Encode()
		require.NoError(t, err)
		var got kafka.EventActivity
		require.NoError(t, jsoniter.ConfigFastest.Unmarshal(data, &got))
		require.Equal(t, e, got)
		return nil
	})

	p := event.NewPublisher(producer, kafka.ActivityTopic, zap.NewNop())
	p.Record(context.Background(), e)
	require.NoError(t, p.Close())
}

func TestPublisher_RecordFailure(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	p := event.NewPublisher(producer, kafka.ActivityTopic, zap.NewNop())
	require.NotPanics(t, func() {
		p.Record(context.Background(), kafka.EventActivity{ID: "e1"})
	})
	require.NoError(t, p.Close())
}

func TestPublisher_Nil(t *testing.T) {
	t.Parallel()
	var p *event.Publisher
	require.NotPanics(t, func() {
		p.Record(context.Background(), kafka.EventActivity{ID: "e1"})
	})
	require.NoError(t, p.Close())
}
