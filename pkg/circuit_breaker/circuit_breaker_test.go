package circuit_breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/library-admin/pkg/circuit_breaker"
	"github.com/stretchr/testify/require"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()
	successfulService := func() error { return nil }
	errService := errors.New("service error")
	failingService := func() error { return errService }

	type fields struct {
		recordLength     int
		timeout          time.Duration
		percentile       float64
		recoveryRequests int
	}
	tests := []struct {
		name      string
		fields    fields
		calls     []func() error
		wantState circuit_breaker.Status
	}{
		{
			name:      "stays closed on success",
			fields:    fields{recordLength: 10, timeout: time.Hour, percentile: 0.3, recoveryRequests: 1},
			calls:     []func() error{successfulService, successfulService, successfulService},
			wantState: circuit_breaker.Closed,
		},
		{
			name:      "opens past failure ratio",
			fields:    fields{recordLength: 10, timeout: time.Hour, percentile: 0.3, recoveryRequests: 1},
			calls:     []func() error{failingService, successfulService, failingService, failingService},
			wantState: circuit_breaker.Open,
		},
		{
			name:      "below ratio stays closed",
			fields:    fields{recordLength: 10, timeout: time.Hour, percentile: 0.3, recoveryRequests: 1},
			calls:     []func() error{failingService, successfulService, failingService},
			wantState: circuit_breaker.Closed,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cb := circuit_breaker.New(tt.fields.recordLength, tt.fields.timeout, tt.fields.percentile, tt.fields.recoveryRequests)
			for _, call := range tt.calls {
				_ = cb.Call(call)
			}
			require.Equal(t, tt.wantState, cb.State())
		})
	}
}

func Test_circuitBreaker_OpenRejects(t *testing.T) {
	t.Parallel()
	cb := circuit_breaker.New(2, time.Hour, 0.5, 1)
	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	require.Equal(t, circuit_breaker.Open, cb.State())

	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)
	require.False(t, called)

	cb.Reset()
	require.Equal(t, circuit_breaker.Closed, cb.State())
}

func Test_circuitBreaker_Recovery(t *testing.T) {
	t.Parallel()
	cb := circuit_breaker.New(2, 10*time.Millisecond, 0.5, 1)
	_ = cb.Call(func() error { return errors.New("boom") })
	require.Equal(t, circuit_breaker.Open, cb.State())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Call(func() error { return nil }))
	require.Equal(t, circuit_breaker.HalfOpen, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
	require.Equal(t, circuit_breaker.Closed, cb.State())
}
