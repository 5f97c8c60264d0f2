package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/internal/session"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrChannelFull = errors.New("channel is full")
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

type ConnectEvent struct{}

func (e ConnectEvent) UIEvent() {}

type DisconnectEvent struct{}

func (e DisconnectEvent) UIEvent() {}

type RefreshBalanceEvent struct{}

func (e RefreshBalanceEvent) UIEvent() {}

// TransferEvent carries the transfer form exactly as typed.
type TransferEvent struct {
	To     string
	Amount string
}

func (e TransferEvent) UIEvent() {}

type SendCommandEvent struct {
	Raw string
}

func (e SendCommandEvent) UIEvent() {}

// PassphraseResponseEvent - UI answers a PassphraseRequestEvent
type PassphraseResponseEvent struct {
	ID         string // Must match the ID from PassphraseRequestEvent
	Passphrase string
	Approved   bool // false when the user dismissed the prompt
}

func (e PassphraseResponseEvent) UIEvent() {}

// StateUpdateEvent - Core pushes state changes to UI
type StateUpdateEvent struct {
	Snapshot session.Snapshot
	Messages []models.Message // only entries not sent before
}

func (e StateUpdateEvent) CoreEvent() {}

// PassphraseRequestEvent - Core needs the keystore passphrase for an account
type PassphraseRequestEvent struct {
	ID      string
	Account string
}

func (e PassphraseRequestEvent) CoreEvent() {}

// TransferClearedEvent tells the UI a transfer confirmed and its form can be reset.
type TransferClearedEvent struct{}

func (e TransferClearedEvent) CoreEvent() {}

// CommandClearedEvent tells the UI a command succeeded and its input can be reset.
type CommandClearedEvent struct{}

func (e CommandClearedEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

func (e EventBusError) Unwrap() error {
	return e.Err
}

type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker trips after maxFailures consecutive failures and lets a
// single trial send through once resetTimeout has passed.
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
	now             func() time.Time
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	if cb.failureCount >= cb.maxFailures || cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
}

// EventBus handles communication between UI and Core with circuit breaker
type EventBus struct {
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
	closeOnce      sync.Once
}

func NewEventBus() *EventBus {
	return NewEventBusWithSize(100)
}

func NewEventBusWithSize(size int) *EventBus {
	return &EventBus{
		uiToCore:       make(chan UIEvent, size),
		coreToUI:       make(chan CoreEvent, size),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) error {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	// A send the open breaker refused is not a new failure; counting it
	// would push the reset window out for as long as senders keep trying.
	if !errors.Is(err, ErrCircuitOpen) {
		eb.circuitBreaker.RecordFailure()
	}

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
	return busError
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	if eb.circuitBreaker.IsOpen() {
		return eb.reportError("SendToCore", ErrCircuitOpen)
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		return eb.reportError("SendToCore", ErrChannelFull)
	}
}

func (eb *EventBus) SendToUI(event CoreEvent) error {
	if eb.circuitBreaker.IsOpen() {
		return eb.reportError("SendToUI", ErrCircuitOpen)
	}

	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		return eb.reportError("SendToUI", ErrChannelFull)
	}
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) CircuitBreakerState() CircuitBreakerState {
	return eb.circuitBreaker.State()
}

// Close closes both channels. Senders must be stopped first.
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		close(eb.uiToCore)
		close(eb.coreToUI)
	})
}
