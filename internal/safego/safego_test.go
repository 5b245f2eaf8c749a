package safego

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("background goroutine sent %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestGo_RunsInBackground(t *testing.T) {
	ch := make(chan string, 1)
	Go(func() { ch <- "swept" })
	waitFor(t, ch, "swept")
}

// A panic in one background loop must not take down the process or any other
// loop. This mirrors the production arrangement where the limiter sweep and
// the stats collector run side by side.
func TestGo_PanicLeavesOtherGoroutinesRunning(t *testing.T) {
	ch := make(chan string, 2)

	Go(func() {
		ch <- "collector tick"
		panic("collector blew up")
	})
	waitFor(t, ch, "collector tick")

	// Launched after the panic fired; still has to run.
	Go(func() { ch <- "sweep tick" })
	waitFor(t, ch, "sweep tick")
}

func TestGo_TickerLoopKeepsTicking(t *testing.T) {
	ch := make(chan string, 3)
	Go(func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for i := 0; i < 3; i++ {
			<-ticker.C
			ch <- "tick"
		}
	})
	for i := 0; i < 3; i++ {
		waitFor(t, ch, "tick")
	}
}
