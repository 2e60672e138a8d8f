package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return NewBus(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := newTestBus()

	var received []*Event
	bus.Subscribe(TradesImported, func(e *Event) {
		received = append(received, e)
	})
	bus.Subscribe(TradeDeleted, func(e *Event) {
		t.Fatalf("unexpected event %s", e.Type)
	})

	bus.Emit(TradesImported, "imports", map[string]interface{}{"imported": 3})

	require.Len(t, received, 1)
	assert.Equal(t, TradesImported, received[0].Type)
	assert.Equal(t, "imports", received[0].Module)
	assert.Equal(t, 3, received[0].Data["imported"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := newTestBus()

	calls := 0
	unsubscribe := bus.Subscribe(TradeCreated, func(*Event) { calls++ })
	assert.Equal(t, 1, bus.SubscriberCount(TradeCreated))

	bus.Emit(TradeCreated, "journal", nil)
	unsubscribe()
	unsubscribe() // idempotent
	bus.Emit(TradeCreated, "journal", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.SubscriberCount(TradeCreated))
}

func TestBus_UnsubscribeKeepsOtherHandlers(t *testing.T) {
	bus := newTestBus()

	var first, second int
	unsubscribeFirst := bus.Subscribe(TradeUpdated, func(*Event) { first++ })
	bus.Subscribe(TradeUpdated, func(*Event) { second++ })

	unsubscribeFirst()
	bus.Emit(TradeUpdated, "journal", nil)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := newTestBus()

	delivered := false
	bus.Subscribe(ErrorOccurred, func(*Event) { panic("boom") })
	bus.Subscribe(ErrorOccurred, func(*Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Emit(ErrorOccurred, "test", nil)
	})
	assert.True(t, delivered)
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(TradeCreated, func(*Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(TradeCreated, "journal", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}

func TestManager_EmitTyped(t *testing.T) {
	bus := newTestBus()
	manager := NewManager(bus, zerolog.New(nil).Level(zerolog.Disabled))

	var got *Event
	bus.Subscribe(TradesImported, func(e *Event) { got = e })

	manager.EmitTyped(TradesImported, "imports", &TradesImportedData{
		BatchID:     "batch-1",
		TotalRows:   10,
		Imported:    8,
		Skipped:     2,
		Tradovate:   8,
		TradingView: 0,
	})

	require.NotNil(t, got)
	assert.Equal(t, "batch-1", got.Data["batch_id"])
	// JSON round trip turns ints into float64
	assert.Equal(t, float64(8), got.Data["imported"])

	typed, ok := got.GetTypedData().(*TradesImportedData)
	require.True(t, ok)
	assert.Equal(t, 10, typed.TotalRows)
	assert.Equal(t, 2, typed.Skipped)
}

func TestManager_EmitError(t *testing.T) {
	bus := newTestBus()
	manager := NewManager(bus, zerolog.New(nil).Level(zerolog.Disabled))

	var got *Event
	bus.Subscribe(ErrorOccurred, func(e *Event) { got = e })

	manager.EmitError("reliability", errors.New("upload failed"), map[string]interface{}{"bucket": "b"})

	require.NotNil(t, got)
	data, ok := got.GetTypedData().(*ErrorEventData)
	require.True(t, ok)
	assert.Equal(t, "upload failed", data.Error)
	assert.Equal(t, "b", data.Context["bucket"])
}

func TestGetTypedData(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		check func(*testing.T, EventData)
	}{
		{
			name:  "trade deleted keeps its type",
			event: Event{Type: TradeDeleted, Data: map[string]interface{}{"id": float64(7), "symbol": "ES"}},
			check: func(t *testing.T, d EventData) {
				data := d.(*TradeChangedData)
				assert.Equal(t, TradeDeleted, data.EventType())
				assert.Equal(t, int64(7), data.ID)
			},
		},
		{
			name:  "backup completed",
			event: Event{Type: BackupCompleted, Data: map[string]interface{}{"filename": "journal-backup.tar.gz"}},
			check: func(t *testing.T, d EventData) {
				assert.Equal(t, "journal-backup.tar.gz", d.(*BackupCompletedData).Filename)
			},
		},
		{
			name:  "nil data",
			event: Event{Type: TradesImported},
			check: func(t *testing.T, d EventData) { assert.Nil(t, d) },
		},
		{
			name:  "unknown type",
			event: Event{Type: EventType("SOMETHING_ELSE"), Data: map[string]interface{}{}},
			check: func(t *testing.T, d EventData) { assert.Nil(t, d) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.event.GetTypedData())
		})
	}
}
