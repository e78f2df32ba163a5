package feed

import (
	"sort"
	"strings"
	"sync"
)

// Store owns every post collection. All mutations take the write lock; reads
// return deep copies so callers can never alias live state.
//
// There is deliberately no post-id index: lookups scan the user collection and
// then each character collection in turn. At the expected scale (tens of
// owners, hundreds of posts) the scan is cheaper than keeping an index
// consistent, and it makes the no-op-on-miss contract trivial.
type Store struct {
	mu sync.RWMutex

	user  []*Post            // user persona's posts
	chars map[string][]*Post // character id -> that character's posts

	nextSeq int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{chars: make(map[string][]*Post)}
}

// PublishUser appends a post to the user persona's collection and stamps its
// insertion sequence. The post's ID, timestamp and visibility must already be
// set by the caller.
func (s *Store) PublishUser(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	p.seq = s.nextSeq
	s.user = append(s.user, &p)
}

// PublishCharacter appends a post to exactly one character's collection,
// creating the collection on first use.
func (s *Store) PublishCharacter(charID string, p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	p.seq = s.nextSeq
	s.chars[charID] = append(s.chars[charID], &p)
}

// Merged returns the union of all collections sorted strictly descending by
// timestamp, ties broken by insertion order. It is a pure projection: the
// returned posts are deep copies and repeated calls between mutations yield
// identical results.
func (s *Store) Merged() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, len(s.user)+8)
	for _, p := range s.user {
		out = append(out, p.clone())
	}
	for _, posts := range s.chars {
		for _, p := range posts {
			out = append(out, p.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Find returns a deep copy of the post with the given id, scanning all owners.
func (s *Store) Find(postID string) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.locate(postID); p != nil {
		return p.clone(), true
	}
	return Post{}, false
}

// Owner reports which actor's collection holds the post: UserActor, a
// character id, or ok=false when the id resolves nowhere.
func (s *Store) Owner(postID string) (ActorID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.user {
		if p.ID == postID {
			return UserActor, true
		}
	}
	for charID, posts := range s.chars {
		for _, p := range posts {
			if p.ID == postID {
				return ActorID(charID), true
			}
		}
	}
	return "", false
}

// ToggleLike flips actor's membership in the post's like set and returns the
// new state. A miss is a silent no-op (reaction timers may fire after the
// owner set changed), reported through found.
func (s *Store) ToggleLike(postID string, actor ActorID) (liked, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.locate(postID)
	if p == nil {
		return false, false
	}
	for i, id := range p.Likes {
		if id == actor {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return false, true
		}
	}
	p.Likes = append(p.Likes, actor)
	return true, true
}

// ApplyLike adds actor to the like set if not already present. Scheduled
// reactions use this instead of ToggleLike so a racing user interaction can
// never be un-applied by a late timer.
func (s *Store) ApplyLike(postID string, actor ActorID) (found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.locate(postID)
	if p == nil {
		return false
	}
	for _, id := range p.Likes {
		if id == actor {
			return true
		}
	}
	p.Likes = append(p.Likes, actor)
	return true
}

// AppendComment appends c to the owning post's comment list, locating the
// owner by scan. A miss is a silent no-op.
func (s *Store) AppendComment(postID string, c Comment) (found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.locate(postID)
	if p == nil {
		return false
	}
	p.Comments = append(p.Comments, c)
	return true
}

// RemoveCharacter drops a character's entire collection. Posts are never
// deleted individually; this models the owner disappearing (e.g. the contact
// being removed), after which ledger operations on its posts become no-ops.
func (s *Store) RemoveCharacter(charID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chars, charID)
}

// Counts returns the number of user posts and the total character post count.
func (s *Store) Counts() (user, character int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, posts := range s.chars {
		character += len(posts)
	}
	return len(s.user), character
}

// locate must be called with at least the read lock held.
func (s *Store) locate(postID string) *Post {
	for _, p := range s.user {
		if p.ID == postID {
			return p
		}
	}
	for _, posts := range s.chars {
		for _, p := range posts {
			if p.ID == postID {
				return p
			}
		}
	}
	return nil
}

// ValidateDraft rejects a draft that has neither text (after trimming
// whitespace) nor images. The check runs before any state mutation or
// reaction scheduling.
func ValidateDraft(content string, images []Image) bool {
	return strings.TrimSpace(content) != "" || len(images) > 0
}
