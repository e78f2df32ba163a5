package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPublish_ReplacesNotQueues(t *testing.T) {
	r := New(time.Hour, nil, zerolog.Nop())

	r.Publish(Event{Kind: KindPostPublished, Body: "first"})
	r.Publish(Event{Kind: KindNewComment, Body: "second"})

	cur, ok := r.Current()
	if !ok || cur.Body != "second" {
		t.Fatalf("current = %+v %v, want the newest event", cur, ok)
	}
}

func TestPublish_AutoExpires(t *testing.T) {
	r := New(20*time.Millisecond, nil, zerolog.Nop())
	r.Publish(Event{Kind: KindIncomingMessage, Body: "hi"})

	if _, ok := r.Current(); !ok {
		t.Fatal("event should be current immediately after publish")
	}
	time.Sleep(80 * time.Millisecond)
	if _, ok := r.Current(); ok {
		t.Fatal("event should have expired")
	}
}

func TestExpiry_DoesNotClearNewerEvent(t *testing.T) {
	r := New(30*time.Millisecond, nil, zerolog.Nop())
	r.Publish(Event{Kind: KindPostPublished, Body: "old"})
	time.Sleep(15 * time.Millisecond)
	r.Publish(Event{Kind: KindPostPublished, Body: "new"})

	// The first event's timer fires around t=30ms; the second event must
	// survive it.
	time.Sleep(25 * time.Millisecond)
	cur, ok := r.Current()
	if !ok || cur.Body != "new" {
		t.Fatalf("stale expiry cleared the newer event: %+v %v", cur, ok)
	}
}

func TestUnseen_FeedEventsOnly(t *testing.T) {
	r := New(time.Hour, nil, zerolog.Nop())

	r.Publish(Event{Kind: KindIncomingMessage})
	if r.Unseen() {
		t.Fatal("chat message must not raise the feed indicator")
	}

	r.Publish(Event{Kind: KindNewComment})
	if !r.Unseen() {
		t.Fatal("feed comment should raise the indicator")
	}

	r.MarkSeen()
	if r.Unseen() {
		t.Fatal("MarkSeen did not clear the indicator")
	}

	r.Publish(Event{Kind: KindPostPublished})
	if !r.Unseen() {
		t.Fatal("new post should raise the indicator again")
	}
}

func TestListener_ReceivesEventsAndPanicsAreContained(t *testing.T) {
	var mu sync.Mutex
	var got []Event
	r := New(time.Hour, func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		if ev.Body == "bad" {
			panic("listener bug")
		}
	}, zerolog.Nop())

	r.Publish(Event{Kind: KindPostPublished, Body: "bad"})
	r.Publish(Event{Kind: KindNewComment, Body: "fine"})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0].Body != "bad" || got[1].Body != "fine" {
		t.Fatalf("listener deliveries = %+v", got)
	}
}

func TestDismiss(t *testing.T) {
	r := New(time.Hour, nil, zerolog.Nop())
	r.Publish(Event{Kind: KindPostPublished})
	r.Dismiss()
	if _, ok := r.Current(); ok {
		t.Fatal("dismissed event still current")
	}
}
