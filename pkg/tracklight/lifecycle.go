package tracklight

import "sync"

// Phase is an application lifecycle phase.
type Phase string

// Lifecycle phases.
const (
	// PhaseActive means the app moved to the foreground.
	PhaseActive Phase = "active"

	// PhaseBackground means the app moved to the background.
	PhaseBackground Phase = "background"
)

// Notifier fans application lifecycle phases out to subscribers. The UI
// binding calls Emit on every transition; the orchestrator subscribes during
// Start when lifecycle events are enabled and unsubscribes on Stop.
type Notifier struct {
	mu     sync.Mutex
	subs   map[int]func(Phase)
	nextID int
}

// NewNotifier creates an empty lifecycle notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[int]func(Phase)),
	}
}

// Subscribe registers fn for future phase changes and returns a cancel
// function. Cancelling twice is a no-op.
func (n *Notifier) Subscribe(fn func(Phase)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Emit delivers a phase change to every subscriber.
// Delivery order is not guaranteed.
func (n *Notifier) Emit(phase Phase) {
	n.mu.Lock()
	fns := make([]func(Phase), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(phase)
	}
}
