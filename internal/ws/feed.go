package ws

import (
	"sync"

	"skyroute/internal/navigation"
)

// positionFeed adapts the client's incoming position messages to the
// tracker's PositionSource. Samples arrive from the client's read pump, a
// single goroutine, so delivery is serial in arrival order by construction.
type positionFeed struct {
	mu       sync.Mutex
	onSample func(navigation.Sample)
	onError  func(error)
	last     *navigation.Sample
}

func (f *positionFeed) Watch(onSample func(navigation.Sample), onError func(error)) (navigation.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSample = onSample
	f.onError = onError
	return f, nil
}

func (f *positionFeed) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSample = nil
	f.onError = nil
}

// deliver hands a sample to the watcher, if any. The callback is invoked
// outside the feed lock; a sample racing a Cancel may still be delivered
// once, which the tracker tolerates.
func (f *positionFeed) deliver(s navigation.Sample) {
	f.mu.Lock()
	f.last = &s
	onSample := f.onSample
	f.mu.Unlock()

	if onSample != nil {
		onSample(s)
	}
}

func (f *positionFeed) fail(err error) {
	f.mu.Lock()
	onError := f.onError
	f.mu.Unlock()

	if onError != nil {
		onError(err)
	}
}

// Last returns the most recent sample seen on this connection, whether or
// not a session was active. Used for the single-shot "use current location"
// request.
func (f *positionFeed) Last() *navigation.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
