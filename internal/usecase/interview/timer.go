package interview

import (
	"fmt"
	"sync"
	"time"
)

// TickerFactory returns a tick channel and its stop func
type TickerFactory func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Timer counts down whole seconds at 1 Hz. It is inert until Start and after
// Stop or expiry. Callbacks run without the timer lock held.
type Timer struct {
	onTick    func(remaining int)
	onExpire  func()
	newTicker TickerFactory

	mu        sync.Mutex
	remaining int
	running   bool
	stop      chan struct{}
}

func NewTimer(totalSeconds int, onTick func(int), onExpire func(), newTicker TickerFactory) *Timer {
	if newTicker == nil {
		newTicker = realTicker
	}
	return &Timer{
		onTick:    onTick,
		onExpire:  onExpire,
		newTicker: newTicker,
		remaining: max(totalSeconds, 0),
	}
}

func (t *Timer) Start() {
	t.mu.Lock()
	if t.running || t.remaining == 0 {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	ticks, stopTicker := t.newTicker(time.Second)
	go func() {
		defer stopTicker()
		for {
			select {
			case <-stop:
				return
			case <-ticks:
				if t.Tick() {
					return
				}
			}
		}
	}()
}

// Tick advances the countdown by one second and reports whether it expired
func (t *Timer) Tick() bool {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	remaining := t.remaining
	expired := remaining == 0
	if expired {
		t.halt()
	}
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(remaining)
	}
	if expired && t.onExpire != nil {
		t.onExpire()
	}
	return expired
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.halt()
}

func (t *Timer) halt() {
	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// FormatRemaining renders seconds as MM:SS
func FormatRemaining(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
