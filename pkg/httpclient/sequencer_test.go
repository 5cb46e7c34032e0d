package httpclient

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSequencerDropsStaleResult(t *testing.T) {
	var s Sequencer

	first := s.Next()
	second := s.Next()

	var applied []string

	// The newer request resolves first
	assert.True(t, s.Apply(second, func() { applied = append(applied, "second") }))

	// The older one resolves late and must be dropped
	assert.False(t, s.Apply(first, func() { applied = append(applied, "first") }))

	assert.Equal(t, []string{"second"}, applied)
}

func TestSequencerAppliesOnlyOnce(t *testing.T) {
	var s Sequencer

	seq := s.Next()
	calls := 0
	assert.True(t, s.Apply(seq, func() { calls++ }))
	assert.False(t, s.Apply(seq, func() { calls++ }))
	assert.Equal(t, 1, calls)
}

func TestSequencerLatest(t *testing.T) {
	var s Sequencer

	first := s.Next()
	assert.True(t, s.Latest(first))

	second := s.Next()
	assert.False(t, s.Latest(first))
	assert.True(t, s.Latest(second))
}

func TestSequencerConcurrentNext(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup

	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]bool{}
	for seq := range seen {
		assert.False(t, unique[seq], "duplicate sequence %d", seq)
		unique[seq] = true
	}
	assert.Len(t, unique, 100)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var fired []int

	for i := 0; i < 5; i++ {
		i := i
		d.Do(func() {
			mu.Lock()
			fired = append(fired, i)
			mu.Unlock()
		})
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{4}, fired)
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	called := false
	d.Do(func() {
		mu.Lock()
		called = true
		mu.Unlock()
	})
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called)
}
