// Package notify provides in-process pub/sub for job status events.
// Delivery is best effort: subscribers that fall behind lose the oldest
// buffered event, and publishers never block.
package notify

import (
	"log/slog"
	"sync"

	"github.com/defectlens/defectlens/domain/analysis"
)

// DefaultBufferSize is the per-subscription event buffer.
const DefaultBufferSize = 16

// Notifier fans out job events to subscribers keyed by job ID.
// Events are not replayed: a subscription only sees events published
// after it was created.
type Notifier struct {
	subscribers map[string]map[*Subscription]struct{}
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewNotifier creates a new Notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		subscribers: make(map[string]map[*Subscription]struct{}),
		logger:      logger,
	}
}

// Subscribe registers interest in events for the given job ID.
// The caller must Cancel the subscription when done.
func (n *Notifier) Subscribe(jobID string) *Subscription {
	sub := &Subscription{
		jobID:    jobID,
		ch:       make(chan analysis.JobEvent, DefaultBufferSize),
		notifier: n,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	subs, ok := n.subscribers[jobID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		n.subscribers[jobID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Publish delivers an event to every subscription for its job ID.
// When a subscriber's buffer is full the oldest buffered event is dropped
// so the latest state always gets through.
func (n *Notifier) Publish(event analysis.JobEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for sub := range n.subscribers[event.JobID()] {
		select {
		case sub.ch <- event:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
				n.logger.Warn("dropped job event",
					slog.String("job_id", event.JobID()),
					slog.String("status", event.Status().String()),
				)
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions for a job.
func (n *Notifier) SubscriberCount(jobID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers[jobID])
}

func (n *Notifier) remove(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	subs, ok := n.subscribers[sub.jobID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(n.subscribers, sub.jobID)
	}
	close(sub.ch)
}

// Subscription is a handle on a single subscriber's event stream.
type Subscription struct {
	jobID    string
	ch       chan analysis.JobEvent
	notifier *Notifier
	once     sync.Once
}

// JobID returns the job this subscription watches.
func (s *Subscription) JobID() string { return s.jobID }

// C returns the event channel. The channel is closed by Cancel.
func (s *Subscription) C() <-chan analysis.JobEvent { return s.ch }

// Cancel removes the subscription and closes its channel. Safe to call
// more than once and from any goroutine.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.notifier.remove(s)
	})
}
