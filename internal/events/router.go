package events

import (
	"strings"
	"sync"
	"time"
)

const (
	defaultSubscriberCapacity = 100
	defaultBacklogLimit       = 50
	defaultDedupeWindow       = 1024
)

// allDocuments is the topic used by subscribers that want every document.
const allDocuments = "*"

// RouterOption customizes Router construction.
type RouterOption func(*Router)

// Router fans events out to per-document subscribers with buffering,
// deduplication and bounded channels.
type Router struct {
	mu           sync.RWMutex
	subscribers  map[string]map[*subscriber]struct{}
	backlog      map[string][]Event
	recentIDs    map[string]struct{}
	recentOrder  []string
	channelSize  int
	backlogLimit int
	dedupeWindow int
	logger       Logger
	clock        func() time.Time
	closed       bool
}

// Subscription is an active listener.
type Subscription struct {
	Events <-chan Event
	cancel func()
}

// Close terminates the subscription and closes its channel.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// NewRouter constructs a router with sane defaults.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		subscribers:  map[string]map[*subscriber]struct{}{},
		backlog:      map[string][]Event{},
		recentIDs:    map[string]struct{}{},
		recentOrder:  make([]string, 0, defaultDedupeWindow),
		channelSize:  defaultSubscriberCapacity,
		backlogLimit: defaultBacklogLimit,
		dedupeWindow: defaultDedupeWindow,
		clock:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithLogger injects a logger for drop diagnostics.
func WithLogger(logger Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithSubscriberCapacity overrides the buffered channel size per subscriber.
func WithSubscriberCapacity(capacity int) RouterOption {
	return func(r *Router) {
		if capacity > 0 {
			r.channelSize = capacity
		}
	}
}

// WithBacklogLimit overrides how many events are held for a document with
// no subscriber yet.
func WithBacklogLimit(limit int) RouterOption {
	return func(r *Router) {
		if limit > 0 {
			r.backlogLimit = limit
		}
	}
}

// WithClock injects the time source used to stamp events.
func WithClock(clock func() time.Time) RouterOption {
	return func(r *Router) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// Subscribe registers for events of one document. An empty id subscribes to
// every document.
func (r *Router) Subscribe(documentID string) Subscription {
	topic := normalizeTopic(documentID)
	sub := newSubscriber(r.channelSize, r.logger)
	var backlog []Event
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sub.close()
		return Subscription{Events: sub.channel()}
	}
	if r.subscribers[topic] == nil {
		r.subscribers[topic] = map[*subscriber]struct{}{}
	}
	r.subscribers[topic][sub] = struct{}{}
	if existing := r.backlog[topic]; len(existing) > 0 && topic != allDocuments {
		backlog = append(backlog, existing...)
		delete(r.backlog, topic)
	}
	r.mu.Unlock()
	for _, event := range backlog {
		sub.deliver(event)
	}
	return Subscription{
		Events: sub.channel(),
		cancel: func() {
			r.removeSubscriber(topic, sub)
		},
	}
}

// Publish delivers the event to document and wildcard subscribers, or
// buffers it when the document has no subscriber yet.
func (r *Router) Publish(event Event) {
	event.Normalize(r.clock())
	if r.isDuplicate(event.ID) {
		return
	}
	topic := normalizeTopic(event.DocumentID)
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return
	}
	subs := r.snapshotSubscribers(topic)
	watchers := r.snapshotSubscribers(allDocuments)
	r.mu.RUnlock()
	for _, sub := range watchers {
		sub.deliver(event)
	}
	if topic == allDocuments {
		return
	}
	if len(subs) == 0 {
		r.bufferEvent(topic, event)
		return
	}
	for _, sub := range subs {
		sub.deliver(event)
	}
}

// Close closes every subscription. Later publishes are dropped.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	var all []*subscriber
	for _, subs := range r.subscribers {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	r.subscribers = map[string]map[*subscriber]struct{}{}
	r.backlog = map[string][]Event{}
	r.mu.Unlock()
	for _, sub := range all {
		sub.close()
	}
}

func (r *Router) snapshotSubscribers(topic string) []*subscriber {
	live := r.subscribers[topic]
	if len(live) == 0 {
		return nil
	}
	items := make([]*subscriber, 0, len(live))
	for sub := range live {
		items = append(items, sub)
	}
	return items
}

func (r *Router) removeSubscriber(topic string, sub *subscriber) {
	r.mu.Lock()
	if subs := r.subscribers[topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(r.subscribers, topic)
		}
	}
	r.mu.Unlock()
	sub.close()
}

func (r *Router) bufferEvent(topic string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.backlog[topic]
	if len(queue) >= r.backlogLimit {
		queue = queue[1:]
		if r.logger != nil {
			r.logger.Printf("events: backlog drop for %s (limit %d)", topic, r.backlogLimit)
		}
	}
	r.backlog[topic] = append(queue, event)
}

func (r *Router) isDuplicate(eventID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recentIDs[eventID]; ok {
		return true
	}
	r.recentIDs[eventID] = struct{}{}
	r.recentOrder = append(r.recentOrder, eventID)
	if len(r.recentOrder) > r.dedupeWindow {
		oldest := r.recentOrder[0]
		r.recentOrder = r.recentOrder[1:]
		delete(r.recentIDs, oldest)
	}
	return false
}

func normalizeTopic(documentID string) string {
	topic := strings.TrimSpace(documentID)
	if topic == "" {
		return allDocuments
	}
	return topic
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan Event
	logger Logger
	closed bool
}

func newSubscriber(capacity int, logger Logger) *subscriber {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber{
		ch:     make(chan Event, capacity),
		logger: logger,
	}
}

func (s *subscriber) channel() <-chan Event {
	return s.ch
}

// deliver never blocks: when the buffer is full one event is dropped,
// preferring to keep critical events.
func (s *subscriber) deliver(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- event:
		return
	default:
	}
	var oldest Event
	select {
	case oldest = <-s.ch:
	default:
		// Reader drained the queue meanwhile.
		s.ch <- event
		return
	}
	if shouldDropOldest(oldest, event) {
		s.logDrop(oldest, "queue overflow")
		s.ch <- event
		return
	}
	s.ch <- oldest
	s.logDrop(event, "queue overflow:incoming")
}

func (s *subscriber) logDrop(event Event, reason string) {
	if s.logger == nil {
		return
	}
	s.logger.Printf("events: dropped %s (%s)", event.Type, reason)
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func shouldDropOldest(oldest, incoming Event) bool {
	oldestCritical := isCritical(oldest.Type)
	incomingCritical := isCritical(incoming.Type)
	switch {
	case oldestCritical && !incomingCritical:
		return false
	case !oldestCritical && incomingCritical:
		return true
	}
	oldestPreferred := oldest.Type == StepDataUpdated
	incomingPreferred := incoming.Type == StepDataUpdated
	if !oldestPreferred && incomingPreferred {
		return false
	}
	return true
}

func isCritical(kind Type) bool {
	return kind == PersistenceFailed || kind == StageCompleted
}
