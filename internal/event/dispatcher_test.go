package event

import (
	"context"
	"sync"
	"testing"
	"time"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestDispatcherPriorityOrder(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	var mu sync.Mutex
	var order []int

	record := func(n int) Handler {
		return func(Event) {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}
	}

	// Subscribed out of priority order on purpose.
	d.Subscribe(2, record(2))
	d.Subscribe(0, record(0))
	d.Subscribe(1, record(1))

	d.Publish(MuteEvent{Muted: true})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	want := []int{0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("delivery order = %v, want %v", order, want)
		}
	}
}

func TestDispatcherEqualPrioritySubscriptionOrder(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	var mu sync.Mutex
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		name := name
		d.Subscribe(5, func(Event) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}

	d.Publish(VolumeEvent{Level: 1})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("delivery order = %v, want [a b c]", order)
	}
}

func TestDispatcherApplyRunsBeforeSubscribers(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	var mu sync.Mutex
	var order []string

	d.SetApply(func(Event) {
		mu.Lock()
		order = append(order, "apply")
		mu.Unlock()
	})
	d.Subscribe(0, func(Event) {
		mu.Lock()
		order = append(order, "subscriber")
		mu.Unlock()
	})

	d.Publish(MuteEvent{})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if order[0] != "apply" || order[1] != "subscriber" {
		t.Fatalf("order = %v, want apply before subscriber", order)
	}
}

func TestDispatcherPanicIsolation(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	var mu sync.Mutex
	var survived bool

	d.Subscribe(0, func(Event) { panic("boom") })
	d.Subscribe(1, func(Event) {
		mu.Lock()
		survived = true
		mu.Unlock()
	})

	d.Publish(VolumeEvent{Level: 3})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return survived
	})
}

func TestDispatcherReentrantSubscribe(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	var mu sync.Mutex
	var lateCalls int

	d.Subscribe(0, func(Event) {
		d.Subscribe(0, func(Event) {
			mu.Lock()
			lateCalls++
			mu.Unlock()
		})
	})

	// First event registers the late handler, second event reaches it.
	d.Publish(MuteEvent{})
	d.Publish(MuteEvent{})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return lateCalls == 1
	})
}

func TestDispatcherUnsubscribe(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	var mu sync.Mutex
	var calls int

	id := d.Subscribe(0, func(Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	d.Publish(MuteEvent{})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	})

	d.Unsubscribe(id)
	done := make(chan struct{})
	d.Subscribe(1, func(Event) { close(done) })
	d.Publish(MuteEvent{})
	<-done

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("calls after unsubscribe = %d, want 1", calls)
	}
}

func TestDispatcherAwait(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result := make(chan Event, 1)
	go func() {
		e, err := d.Await(ctx, func(e Event) bool {
			return e.Kind() == KindVolume
		})
		if err == nil {
			result <- e
		}
	}()

	// Publish repeatedly: the waiter may not be registered yet when the
	// first events go out. The unrelated event must never satisfy it.
	for {
		d.Publish(MuteEvent{})
		d.Publish(VolumeEvent{Level: 42})

		select {
		case e := <-result:
			if v, ok := e.(VolumeEvent); !ok || v.Level != 42 {
				t.Fatalf("Await() = %#v, want VolumeEvent level 42", e)
			}
			return
		case <-time.After(10 * time.Millisecond):
		case <-ctx.Done():
			t.Fatal("Await did not return")
		}
	}
}

func TestDispatcherAwaitContextCancel(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Await(ctx, func(Event) bool { return true })
	if err != context.Canceled {
		t.Fatalf("Await() error = %v, want context.Canceled", err)
	}
}

func TestDispatcherPublishAfterClose(t *testing.T) {
	d := NewDispatcher(0)
	d.Close()

	// Must not block or panic.
	d.Publish(MuteEvent{})
	d.Close()
}
