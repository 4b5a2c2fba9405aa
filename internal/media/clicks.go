package media

import (
	"sort"
	"sync/atomic"

	"github.com/momentum-xyz/media-placer/internal/eventloop"
	"github.com/momentum-xyz/media-placer/utils"
)

type clickListener struct {
	fn   func()
	once bool
}

// ClickBus dispatches clicks to listeners on the event loop.
type ClickBus struct {
	loop      *eventloop.Loop
	listeners *utils.SyncMap[uint64, clickListener]
	nextID    uint64
	activated utils.TAtomBool
}

var _ Gestures = (*ClickBus)(nil)

func NewClickBus(loop *eventloop.Loop) *ClickBus {
	return &ClickBus{
		loop:      loop,
		listeners: utils.NewSyncMap[uint64, clickListener](),
	}
}

func (b *ClickBus) OnClick(fn func()) func() {
	return b.add(clickListener{fn: fn})
}

func (b *ClickBus) OnceClick(fn func()) func() {
	return b.add(clickListener{fn: fn, once: true})
}

func (b *ClickBus) add(l clickListener) func() {
	id := atomic.AddUint64(&b.nextID, 1)
	b.listeners.Store(id, l)
	return func() { b.listeners.Remove(id) }
}

// Click records a user gesture and queues listener dispatch.
func (b *ClickBus) Click() {
	b.activated.Set(true)
	b.loop.Post(b.dispatch)
}

// Activated reports whether any click has happened yet.
func (b *ClickBus) Activated() bool {
	return b.activated.Get()
}

// Listeners is the number of registered listeners.
func (b *ClickBus) Listeners() int {
	b.listeners.Mu.Lock()
	defer b.listeners.Mu.Unlock()
	return len(b.listeners.Data)
}

func (b *ClickBus) dispatch() {
	b.listeners.Mu.Lock()
	ids := make([]uint64, 0, len(b.listeners.Data))
	for id := range b.listeners.Data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		l := b.listeners.Data[id]
		if l.once {
			delete(b.listeners.Data, id)
		}
		fns = append(fns, l.fn)
	}
	b.listeners.Mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
