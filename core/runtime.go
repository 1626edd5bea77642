package orchestration

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/voyceradio/voyce-core/core/events"
)

const sessionEventQueueCapacity = 16

type queuedEvent struct {
	event    events.Event
	queuedAt time.Time
}

// sessionRuntime serializes all control events of one live session onto a
// single goroutine. Intent resolution and state mutation therefore never
// race within a session.
type sessionRuntime struct {
	queue   chan queuedEvent
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started  atomic.Bool
	speaking atomic.Bool
}

func newSessionRuntime() *sessionRuntime {
	return &sessionRuntime{
		queue:   make(chan queuedEvent, sessionEventQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (runtime *sessionRuntime) start(handler func(events.Event)) (started bool) {
	if runtime == nil || runtime.isClosed() {
		return false
	}

	runtime.startOnce.Do(func() {
		started = true
		runtime.started.Store(true)
		go func() {
			defer close(runtime.done)
			for {
				select {
				case <-runtime.closeCh:
					return
				case item := <-runtime.queue:
					handler(item.event)
				}
			}
		}()
	})
	return started
}

// enqueue hands a transport event to the loop. Invoked from the transport's
// reader goroutine so it must never block; an overflowing queue drops the
// event instead.
func (runtime *sessionRuntime) enqueue(event events.Event) {
	if runtime == nil || runtime.isClosed() {
		return
	}

	select {
	case runtime.queue <- queuedEvent{event: event, queuedAt: time.Now()}:
	default:
		logger.Warn("Session event queue full, dropping event", "kind", event.Kind())
	}
}

func (runtime *sessionRuntime) setSpeaking(isSpeaking bool) {
	if runtime == nil {
		return
	}
	runtime.speaking.Store(isSpeaking)
}

func (runtime *sessionRuntime) isSpeaking() bool {
	if runtime == nil {
		return false
	}
	return runtime.speaking.Load()
}

func (runtime *sessionRuntime) isClosed() bool {
	if runtime == nil {
		return true
	}
	select {
	case <-runtime.closeCh:
		return true
	default:
		return false
	}
}

func (runtime *sessionRuntime) end() {
	if runtime == nil {
		return
	}
	runtime.endOnce.Do(func() {
		close(runtime.closeCh)
	})
}

func (runtime *sessionRuntime) awaitCompletion() {
	if runtime == nil || !runtime.started.Load() {
		return
	}
	<-runtime.done
}
