package handler

import (
	"context"
	"testing"

	"github.com/Astemirdum/library-admin/activity/internal/errs"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsumer_Process(t *testing.T) {
	t.Parallel()
	const payload = `{"id":"3f1c2a9e-6a0b-4f0e-9d55-1a3b2c4d5e6f","timestamp":"2025-01-02T03:04:05Z","actor":"admin@lib.org","entity":"reader","entityId":"r1","action":"delete","summary":"Ann Lee"}`

	tests := []struct {
		name      string
		value     string
		recordErr error
		wantCalls int
		wantErr   bool
	}{
		{name: "ok", value: payload, wantCalls: 1},
		{name: "err. not json", value: "{", wantCalls: 0},
		{name: "err. invalid event", value: payload, recordErr: errors.Wrap(errs.ErrInvalidEvent, "id"), wantCalls: 1},
		{name: "err. storage", value: payload, recordErr: errors.New("db is down"), wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []kafka.EventActivity
			consumer := NewConsumer(func(_ context.Context, e kafka.EventActivity) error {
				got = append(got, e)
				return tt.recordErr
			}, zap.NewNop())

			err := consumer.process(context.Background(), &sarama.ConsumerMessage{
				Topic: kafka.ActivityTopic,
				Value: []byte(tt.value),
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, got, tt.wantCalls)
			if tt.wantCalls > 0 {
				require.Equal(t, "reader", got[0].Entity)
				require.Equal(t, "r1", got[0].EntityID)
				require.Equal(t, "Ann Lee", got[0].Summary)
			}
		})
	}
}

func TestConsumer_Setup(t *testing.T) {
	t.Parallel()
	consumer := NewConsumer(nil, zap.NewNop())
	require.NoError(t, consumer.Setup(nil))
	require.NoError(t, consumer.Setup(nil))
	_, open := <-consumer.ready
	require.False(t, open)
}
