// internal/domain/plan/notifier.go
package plan

import "sync"

// ChangeTopic identifies a class of store mutations.
type ChangeTopic string

const (
	TopicCycles     ChangeTopic = "cycles"
	TopicDayRecords ChangeTopic = "day_records"
)

// ChangeNotifier is an in-process subscribe/callback registry that the store
// publishes to after mutations. Correctness of the services never depends on
// it; reads are read-after-write consistent. It only carries a change signal
// for observers.
type ChangeNotifier struct {
	mu   sync.Mutex
	subs map[ChangeTopic][]func()
}

func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{subs: make(map[ChangeTopic][]func())}
}

// Subscribe registers a callback for a topic. Callbacks run synchronously on
// the publishing goroutine and must not block.
func (n *ChangeNotifier) Subscribe(topic ChangeTopic, fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[topic] = append(n.subs[topic], fn)
}

// Publish invokes every callback registered for the topic.
// A nil notifier is a valid no-op publisher.
func (n *ChangeNotifier) Publish(topic ChangeTopic) {
	if n == nil {
		return
	}
	n.mu.Lock()
	fns := append([]func(){}, n.subs[topic]...)
	n.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
