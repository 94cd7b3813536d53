// Package notify fans out "topic changed" signals to registered
// observers. Signals carry no payload; observers re-query the store
// they care about. Multiple publishes that land while an observer has
// not yet drained its channel coalesce into a single pending signal,
// so a burst of writes triggers at most one refresh per observer.
package notify

import "sync"

// Topic names one of the logical change feeds.
type Topic string

const (
	TopicAccessEvents Topic = "access_events"
	TopicAlerts       Topic = "alerts"
	TopicConfig       Topic = "config"
)

type Dispatcher struct {
	mu   sync.Mutex
	subs map[Topic]map[*Subscription]struct{}
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[Topic]map[*Subscription]struct{})}
}

// Subscription is one observer's registration on a single topic.
type Subscription struct {
	d     *Dispatcher
	topic Topic

	// ch has capacity 1: a publish that finds the buffer full is
	// dropped, which is exactly the at-most-one-pending coalescing
	// rule. The observer is guaranteed a signal for every change
	// committed while it is subscribed, just not one signal per change.
	ch chan struct{}

	once sync.Once
}

// C returns the signal channel. It is closed when the subscription is
// cancelled, so `for range sub.C()` loops terminate on Unsubscribe.
func (s *Subscription) C() <-chan struct{} { return s.ch }

// Unsubscribe removes the registration and closes the channel. It is
// synchronous: once it returns, no further signal is delivered. Safe
// to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.d.mu.Lock()
		defer s.d.mu.Unlock()
		if set, ok := s.d.subs[s.topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.d.subs, s.topic)
			}
		}
		close(s.ch)
	})
}

func (d *Dispatcher) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{d: d, topic: topic, ch: make(chan struct{}, 1)}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs[topic] == nil {
		d.subs[topic] = make(map[*Subscription]struct{})
	}
	d.subs[topic][sub] = struct{}{}
	return sub
}

// Publish signals every current subscriber of the topic. It never
// blocks: a subscriber that already has a signal pending is skipped.
// Sends happen under the same lock as Unsubscribe's removal, so a
// publish can never hit a closed channel.
func (d *Dispatcher) Publish(topic Topic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for sub := range d.subs[topic] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}
