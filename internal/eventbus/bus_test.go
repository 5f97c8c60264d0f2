package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToCoreDelivers(t *testing.T) {
	eb := NewEventBus()
	require.NoError(t, eb.SendToCore(TransferEvent{To: "0xabc", Amount: "1"}))

	select {
	case ev := <-eb.UIToCore():
		assert.Equal(t, TransferEvent{To: "0xabc", Amount: "1"}, ev)
	default:
		t.Fatal("event not delivered")
	}
}

func TestFullChannelReportsAndTripsBreaker(t *testing.T) {
	eb := NewEventBusWithSize(1)
	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	require.NoError(t, eb.SendToUI(CommandClearedEvent{}))
	for i := 0; i < 5; i++ {
		err := eb.SendToUI(CommandClearedEvent{})
		assert.ErrorIs(t, err, ErrChannelFull)
	}
	assert.Len(t, reported, 5)
	assert.Equal(t, "SendToUI", reported[0].Operation)
	assert.Equal(t, CircuitOpen, eb.CircuitBreakerState())

	<-eb.CoreToUI()
	err := eb.SendToUI(CommandClearedEvent{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestRefusedSendsDoNotExtendOpenBreaker(t *testing.T) {
	eb := NewEventBusWithSize(1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eb.circuitBreaker.now = func() time.Time { return now }

	require.NoError(t, eb.SendToUI(CommandClearedEvent{}))
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, eb.SendToUI(CommandClearedEvent{}), ErrChannelFull)
	}
	<-eb.CoreToUI()

	for i := 0; i < 5; i++ {
		now = now.Add(5 * time.Second)
		assert.ErrorIs(t, eb.SendToUI(CommandClearedEvent{}), ErrCircuitOpen)
	}

	now = now.Add(6 * time.Second)
	require.NoError(t, eb.SendToUI(PassphraseRequestEvent{ID: "p1"}))
	assert.Equal(t, CircuitClosed, eb.CircuitBreakerState())
}

func TestCircuitBreakerHalfOpenTrial(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	now = now.Add(2 * time.Minute)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	assert.False(t, cb.IsOpen())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCloseIsIdempotent(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Close()

	_, ok := <-eb.CoreToUI()
	assert.False(t, ok)
}
