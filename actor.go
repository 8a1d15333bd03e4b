package rcv

import "sync"

// Buffer size to instantiate actor channels with
const actorEventBufferSize = 1024

// Actor objects listen for events (messages) and handle them one at a time
// so that the state they modify needs no locks of its own. Elections are not
// thread-safe; the tabulation server funnels every request through an actor
// so that ballots are cast and tallies run in the order requests arrive.
type Actor interface {
	Listen() error        // Run the actor model listen for events and handle them
	Close() error         // Stop the actor from receiving new events (handles remaining pending events)
	Dispatch(Event) error // Outside callers can dispatch events to the actor
	Handle(Event) error   // Handler method for each event in sequence
}

// NewActor returns a new actor that passes events one at a time to the
// callback function specified by looping on an internal buffered channel so
// that event dispatchers are not blocked.
func NewActor(callback Callback) Actor {
	return &actor{
		handler: callback,
		events:  make(chan Event, actorEventBufferSize),
		stopped: make(chan struct{}),
	}
}

// A channel based implementation of the Actor interface. The mutex guards
// the closed flag so that dispatching to a closed actor returns an error
// rather than panicking on a send to a closed channel. The stopped channel is
// closed once Listen returns so that blocked dispatchers are released.
type actor struct {
	sync.RWMutex
	handler Callback
	events  chan Event
	stopped chan struct{}
	stop    sync.Once
	closed  bool
}

// Listen for events, handling them with the callback handler. If the
// callback returns an error, then Listen will return with that error. If the
// actor is closed externally, then Listen will finish all remaining events
// and return nil.
func (a *actor) Listen() error {
	defer a.stop.Do(func() { close(a.stopped) })

	// Continue reading events off the channel until its closed
	for event := range a.events {
		if err := a.Handle(event); err != nil {
			return err
		}
	}

	return nil
}

// Close the actor by shutting down the events channel, allowing the listener
// to complete all remaining events then stop listening gracefully.
func (a *actor) Close() error {
	a.Lock()
	defer a.Unlock()

	if a.closed {
		return ErrNotListening
	}

	a.closed = true
	close(a.events)
	return nil
}

// Dispatch an event on the actor for the listener to handle. If the listener
// has stopped, ErrNotListening is returned instead of blocking on a full
// buffer.
func (a *actor) Dispatch(e Event) error {
	a.RLock()
	defer a.RUnlock()

	if a.closed {
		return ErrNotListening
	}

	select {
	case a.events <- e:
		return nil
	case <-a.stopped:
		return ErrNotListening
	}
}

// Handle each event by passing it to the callback function.
func (a *actor) Handle(e Event) error {
	return a.handler(e)
}
