package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Progress) Progress {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
		return Progress{}
	}
}

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("session-a")
	defer cancel()

	h.Publish("session-a", Progress{Name: "feed.jpg", Percentage: 40})

	p := receive(t, ch)
	assert.Equal(t, "feed.jpg", p.Name)
	assert.Equal(t, 40, p.Percentage)
}

func TestHubSessionsAreIsolated(t *testing.T) {
	h := NewHub()

	chA, cancelA := h.Subscribe("session-a")
	defer cancelA()
	chB, cancelB := h.Subscribe("session-b")
	defer cancelB()

	h.Publish("session-b", Progress{Name: "other.png", Percentage: 10})

	p := receive(t, chB)
	assert.Equal(t, "other.png", p.Name)

	select {
	case p := <-chA:
		t.Fatalf("session-a received foreign event %+v", p)
	default:
	}
}

func TestHubCancelRemovesOnlyThatSubscriber(t *testing.T) {
	h := NewHub()

	_, cancelFirst := h.Subscribe("session-a")
	second, cancelSecond := h.Subscribe("session-a")
	defer cancelSecond()

	require.Equal(t, 2, h.Subscribers("session-a"))

	cancelFirst()
	assert.Equal(t, 1, h.Subscribers("session-a"))

	h.Publish("session-a", Progress{Name: "feed.jpg", Percentage: 100})
	p := receive(t, second)
	assert.Equal(t, 100, p.Percentage)
}

func TestHubCancelIsIdempotent(t *testing.T) {
	h := NewHub()

	_, cancel := h.Subscribe("session-a")
	cancel()
	cancel()

	assert.Zero(t, h.Subscribers("session-a"))
}

func TestHubPublishNeverBlocks(t *testing.T) {
	h := NewHub()

	_, cancel := h.Subscribe("session-a")
	defer cancel()

	// Way past the channel buffer; a blocking send would hang the test
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish("session-a", Progress{Name: "big.bin", Percentage: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	h := NewHub()
	// Must be a no-op
	h.Publish("nobody", Progress{Name: "feed.jpg", Percentage: 50})
	assert.Zero(t, h.Subscribers("nobody"))
}
