package service

import (
	"sync"
	"time"

	"github.com/Strob0t/lukthan/internal/domain/event"
)

// observers is a set of synchronous event handlers. emit must be called
// without the owner's lock held so handlers may read the owner back.
type observers struct {
	mu   sync.Mutex
	next int
	hs   map[int]event.Handler
}

func (o *observers) add(h event.Handler) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hs == nil {
		o.hs = make(map[int]event.Handler)
	}
	id := o.next
	o.next++
	o.hs[id] = h
	return func() {
		o.mu.Lock()
		delete(o.hs, id)
		o.mu.Unlock()
	}
}

func (o *observers) emit(e event.Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	o.mu.Lock()
	hs := make([]event.Handler, 0, len(o.hs))
	// Registration order.
	for i := 0; i < o.next; i++ {
		if h, ok := o.hs[i]; ok {
			hs = append(hs, h)
		}
	}
	o.mu.Unlock()
	for _, h := range hs {
		h(e)
	}
}
