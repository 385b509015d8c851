package comment

import "sync"

// Outside is an OutsideSource the host view notifies whenever the user
// interacts with something other than the open menu.
type Outside struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewOutside creates an Outside with no subscribers.
func NewOutside() *Outside {
	return &Outside{subs: make(map[int]func())}
}

// Subscribe registers fn and returns its release function. Releasing more
// than once is harmless.
func (o *Outside) Subscribe(fn func()) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// Notify invokes every current subscriber. Subscribers may release
// themselves from inside the callback.
func (o *Outside) Notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of live subscriptions.
func (o *Outside) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}
