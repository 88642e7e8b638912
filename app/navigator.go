package app

import (
	"sync"

	"github.com/jrsteele09/go-journal-client/internal/events"
)

// Navigated is emitted on every route change.
type Navigated struct {
	From string
	To   string
}

// Navigator tracks the current route.
type Navigator struct {
	mu      sync.RWMutex
	current string
	history []string
	bus     *events.Bus[Navigated]
}

func NewNavigator(start string) *Navigator {
	start = Resolve(start)
	return &Navigator{
		current: start,
		history: []string{start},
		bus:     events.NewBus[Navigated](),
	}
}

func (n *Navigator) Current() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Navigate moves to route and returns the route actually shown.
func (n *Navigator) Navigate(route string) string {
	to := Resolve(route)
	n.mu.Lock()
	from := n.current
	n.current = to
	n.history = append(n.history, to)
	n.mu.Unlock()

	n.bus.Emit(Navigated{From: from, To: to})
	return to
}

// History returns every route shown so far, oldest first.
func (n *Navigator) History() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.history...)
}

func (n *Navigator) OnNavigate(callback func(Navigated)) func() {
	sub := n.bus.Subscribe(callback)
	return func() { n.bus.Unsubscribe(sub) }
}
