package event

import (
	"context"
	"errors"
	"testing"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	name       string
	eventTypes []string
	received   []shared.DomainEvent
	fail       bool
	panic      bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panic {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	if h.fail {
		return errors.New("handler failure")
	}
	return nil
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "shipment", uuid.New())
	return &e
}

func TestInMemoryEventBus_PublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{name: "audit", eventTypes: []string{"shipment.actual_costs_applied"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("shipment.actual_costs_applied"),
		newTestEvent("shipment.invoice_status_changed"),
	)
	require.NoError(t, err)

	require.Len(t, handler.received, 1)
	assert.Equal(t, "shipment.actual_costs_applied", handler.received[0].EventType())
}

func TestInMemoryEventBus_WildcardHandlerReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{name: "all"}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("shipment.actual_costs_applied"),
		newTestEvent("shipment.actual_costs_unapplied"),
	)
	require.NoError(t, err)
	assert.Len(t, handler.received, 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{name: "failing", eventTypes: []string{"shipment.charges_overridden"}, fail: true}
	healthy := &recordingHandler{name: "healthy", eventTypes: []string{"shipment.charges_overridden"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("shipment.charges_overridden"))
	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{name: "panicking", eventTypes: []string{"shipment.actual_costs_applied"}, panic: true}
	bus.Subscribe(panicking)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("shipment.actual_costs_applied"))
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{name: "audit", eventTypes: []string{"shipment.actual_costs_applied"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("shipment.actual_costs_applied"))
	require.NoError(t, err)
	assert.Empty(t, handler.received)
}
