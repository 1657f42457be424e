package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	results []*FrameResult
}

func (h *recordingHandler) OnFrameResult(result *FrameResult) {
	h.results = append(h.results, result)
}

func TestBusHandlerSubscription(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	h := &recordingHandler{}
	unsubscribe := bus.Subscribe(h)
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Publish(&FrameResult{FrameNum: 1})
	bus.Publish(&FrameResult{FrameNum: 2})
	require.Len(t, h.results, 2)
	assert.Equal(t, 1, h.results[0].FrameNum)
	assert.Equal(t, 2, h.results[1].FrameNum)

	unsubscribe()
	assert.Equal(t, 0, bus.SubscriberCount())
	bus.Publish(&FrameResult{FrameNum: 3})
	assert.Len(t, h.results, 2)
}

func TestBusChannelSubscription(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.SubscribeChannel(2)

	bus.Publish(&FrameResult{FrameNum: 1})
	result := <-ch
	assert.Equal(t, 1, result.FrameNum)

	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice must not close the channel again.
	unsubscribe()
}

func TestBusSkipsSlowChannelSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.SubscribeChannel(1)
	defer unsubscribe()

	// Second publish would block on the full buffer; it is dropped
	// instead.
	bus.Publish(&FrameResult{FrameNum: 1})
	bus.Publish(&FrameResult{FrameNum: 2})

	result := <-ch
	assert.Equal(t, 1, result.FrameNum)
	select {
	case r := <-ch:
		t.Fatalf("expected dropped frame, got %d", r.FrameNum)
	default:
	}
}

func TestBusIgnoresNilResults(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	h := &recordingHandler{}
	defer bus.Subscribe(h)()

	bus.Publish(nil)
	assert.Empty(t, h.results)
}

func TestBusCloseClosesChannels(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.SubscribeChannel(1)

	bus.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.SubscriberCount())
}
