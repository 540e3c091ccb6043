package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []int
}

func (r *recorder) add(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func TestHub_DeliversInOrderToEverySubscriber(t *testing.T) {
	h := NewHub[int]("test")
	a, b := &recorder{}, &recorder{}
	h.Subscribe(a.add)
	h.Subscribe(b.add)

	for i := 1; i <= 100; i++ {
		h.Publish(i)
	}
	h.Wait()

	want := make([]int, 100)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, a.snapshot())
	assert.Equal(t, want, b.snapshot())
}

func TestHub_NoOverlappingCallbacks(t *testing.T) {
	h := NewHub[int]("test")
	var inFlight, maxInFlight atomic.Int32
	cb := func(int) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
	}
	h.Subscribe(cb)
	h.Subscribe(cb)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			h.Publish(v)
		}(i)
	}
	wg.Wait()
	h.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestHub_UnsubscribeIsIdempotentAndIsolated(t *testing.T) {
	h := NewHub[int]("test")
	a, b := &recorder{}, &recorder{}
	unsubA := h.Subscribe(a.add)
	h.Subscribe(b.add)

	h.Publish(1)
	h.Wait()

	unsubA()
	unsubA()
	assert.Equal(t, 1, h.Len())

	h.Publish(2)
	h.Wait()

	assert.Equal(t, []int{1}, a.snapshot())
	assert.Equal(t, []int{1, 2}, b.snapshot())
}

func TestHub_SubscriberOnlySeesFutureValues(t *testing.T) {
	h := NewHub[int]("test")
	h.Publish(1)
	h.Wait()

	r := &recorder{}
	h.Subscribe(r.add)
	h.Publish(2)
	h.Wait()

	assert.Equal(t, []int{2}, r.snapshot())
}

func TestHub_UnsubscribeFromInsideCallback(t *testing.T) {
	h := NewHub[int]("test")
	r := &recorder{}
	var unsub func()
	unsub = h.Subscribe(func(v int) {
		r.add(v)
		unsub()
	})

	h.Publish(1)
	h.Publish(2)
	h.Wait()

	assert.Equal(t, []int{1}, r.snapshot())
}

func TestHub_PanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	h := NewHub[int]("test")
	r := &recorder{}
	h.Subscribe(func(int) { panic("boom") })
	h.Subscribe(r.add)

	h.Publish(1)
	h.Publish(2)
	h.Wait()

	assert.Equal(t, []int{1, 2}, r.snapshot())
}

func TestHub_Close(t *testing.T) {
	h := NewHub[int]("test")
	r := &recorder{}
	h.Subscribe(r.add)
	h.Close()
	h.Close()

	h.Publish(1)
	h.Wait()
	assert.Empty(t, r.snapshot())
	assert.Equal(t, 0, h.Len())

	unsub := h.Subscribe(r.add)
	require.NotNil(t, unsub)
	unsub()
}
