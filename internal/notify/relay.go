// Package notify surfaces ambient events to the presentation layer: a
// transient toast that auto-expires and is replaced (never queued) by newer
// events, plus a sticky "unseen" indicator for feed activity that only clears
// when the user opens the feed tab.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind enumerates the event types the relay carries.
type Kind int

const (
	// KindIncomingMessage is a chat message arriving while its conversation
	// is not open.
	KindIncomingMessage Kind = iota
	// KindPostPublished is a new post appearing in the feed.
	KindPostPublished
	// KindNewComment is a comment landing on a feed post.
	KindNewComment
)

func (k Kind) String() string {
	switch k {
	case KindIncomingMessage:
		return "incoming_message"
	case KindPostPublished:
		return "post_published"
	case KindNewComment:
		return "new_comment"
	default:
		return "unknown"
	}
}

// Event is one transient signal. Feed-related kinds additionally set the
// unseen indicator.
type Event struct {
	Kind      Kind
	ActorID   string
	ActorName string
	Avatar    string
	Body      string
	PostID    string
}

func (e Event) feedRelated() bool {
	return e.Kind == KindPostPublished || e.Kind == KindNewComment
}

// Listener receives each published event. It is invoked synchronously on the
// publisher's goroutine and must not block; panics are contained.
type Listener func(Event)

// Relay holds at most one current event. Publishing replaces whatever is
// showing; nothing is ever queued.
type Relay struct {
	mu       sync.Mutex
	current  *Event
	gen      uint64
	unseen   bool
	ttl      time.Duration
	listener Listener
	log      zerolog.Logger
}

// DefaultTTL is how long a toast stays current before it expires on its own.
const DefaultTTL = 3 * time.Second

// New constructs a relay. A zero ttl means DefaultTTL; listener may be nil.
func New(ttl time.Duration, listener Listener, log zerolog.Logger) *Relay {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Relay{ttl: ttl, listener: listener, log: log}
}

// Publish makes ev the current toast, arms its expiry, raises the unseen
// indicator for feed events, and hands ev to the listener. Never blocks on
// the presentation layer.
func (r *Relay) Publish(ev Event) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.current = &ev
	if ev.feedRelated() {
		r.unseen = true
	}
	listener := r.listener
	r.mu.Unlock()

	time.AfterFunc(r.ttl, func() { r.expire(gen) })

	if listener != nil {
		r.dispatch(listener, ev)
	}
}

// Current returns the toast now showing, if any.
func (r *Relay) Current() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Event{}, false
	}
	return *r.current, true
}

// Unseen reports whether feed activity happened since the feed tab was last
// opened.
func (r *Relay) Unseen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unseen
}

// MarkSeen clears the unseen indicator; called when the user opens the feed.
func (r *Relay) MarkSeen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unseen = false
}

// Dismiss clears the current toast immediately (e.g. the user tapped it).
func (r *Relay) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

// expire clears the toast only if no newer event replaced it since.
func (r *Relay) expire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen {
		r.current = nil
	}
}

func (r *Relay) dispatch(listener Listener, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("kind", ev.Kind.String()).Msg("notification listener panicked")
		}
	}()
	listener(ev)
}
