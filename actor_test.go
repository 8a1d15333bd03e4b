package rcv_test

import (
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/bbengfort/rcv"
)

var _ = Describe("Actor", func() {

	var actor Actor
	var events []*testEvent

	BeforeEach(func() {
		events = make([]*testEvent, 0)
		actor = NewActor(func(e Event) error {
			events = append(events, e.(*testEvent))
			return nil
		})
	})

	It("should concurrently append to the events slice, one event at a time", func() {

		// Dispatch a number of test event generators in its own routine
		go func() {
			defer GinkgoRecover()
			var wg sync.WaitGroup

			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					for j := 0; j < 10; j++ {
						time.Sleep(1 * time.Millisecond)
						actor.Dispatch(&testEvent{i, j})
					}
				}(i)
			}

			// Join on the event dispatchers, then close
			wg.Wait()
			Ω(actor.Close()).Should(Succeed())
		}()

		// Close and wait for actor to finish
		Ω(actor.Listen()).Should(Succeed())
		Ω(events).Should(HaveLen(100))

	})

	It("should handle pending events after close", func() {
		for i := 0; i < 10; i++ {
			Ω(actor.Dispatch(&testEvent{i, 0})).Should(Succeed())
		}

		Ω(actor.Close()).Should(Succeed())
		Ω(actor.Listen()).Should(Succeed())
		Ω(events).Should(HaveLen(10))
	})

	It("should not dispatch events once closed", func() {
		Ω(actor.Close()).Should(Succeed())
		Ω(actor.Dispatch(&testEvent{})).Should(MatchError(ErrNotListening))
		Ω(actor.Close()).Should(MatchError(ErrNotListening))
	})

	It("should stop listening when the handler returns an error", func() {
		stop := errors.New("stop listening")
		actor = NewActor(func(e Event) error {
			if e.(*testEvent).idx == 3 {
				return stop
			}
			events = append(events, e.(*testEvent))
			return nil
		})

		for i := 0; i < 5; i++ {
			Ω(actor.Dispatch(&testEvent{i, 0})).Should(Succeed())
		}

		Ω(actor.Listen()).Should(MatchError(stop))
		Ω(events).Should(HaveLen(3))
	})

	It("should not block dispatchers once the listener has stopped", func() {
		stop := errors.New("stop listening")
		actor = NewActor(func(e Event) error {
			return stop
		})

		Ω(actor.Dispatch(&testEvent{})).Should(Succeed())
		Ω(actor.Listen()).Should(MatchError(stop))

		// Fill the buffer; dispatches past it must return rather than block
		dispatched := make(chan error, 1)
		go func() {
			var err error
			for i := 0; i < 2048 && err == nil; i++ {
				err = actor.Dispatch(&testEvent{i, 0})
			}
			dispatched <- err
		}()

		Eventually(dispatched).Should(Receive(MatchError(ErrNotListening)))
		Ω(actor.Close()).Should(Succeed())
	})

})
