// Package feed holds the canonical moments state: one post collection for the
// user persona and one per character, plus the like/comment ledger that
// mutates them in place.
package feed

import "time"

// ActorID identifies the author of a post, like, or comment.
type ActorID string

// UserActor is the sentinel identity of the user persona. Every other actor id
// is a character id from the directory.
const UserActor ActorID = "USER"

// ImageKind discriminates the two image variants a post may carry.
type ImageKind int

const (
	// ImageKindRef is a literal image reference (URL or data URI).
	ImageKindRef ImageKind = iota
	// ImageKindImagined is a free-text description standing in for a photo.
	ImageKindImagined
)

// Image is a tagged union: either a reference to real image bytes or an
// "imagined" textual description. The two are not interchangeable.
type Image struct {
	Kind  ImageKind `json:"kind"`
	Value string    `json:"value"`
}

// ImageRef builds the literal-reference variant.
func ImageRef(ref string) Image { return Image{Kind: ImageKindRef, Value: ref} }

// ImaginedImage builds the free-text variant.
func ImaginedImage(desc string) Image { return Image{Kind: ImageKindImagined, Value: desc} }

// Comment is a single entry in a post's append-only comment list.
// AuthorName is snapshotted at creation time; renaming a character later must
// not rewrite history.
type Comment struct {
	ID         string    `json:"commentId"`
	AuthorID   ActorID   `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Generated  bool      `json:"generated,omitempty"`
}

// Post is a single moment. Likes hold each actor at most once; Comments are
// append-only in insertion order. An empty VisibleTo list means public.
type Post struct {
	ID        string    `json:"postId"`
	AuthorID  ActorID   `json:"authorId"`
	Content   string    `json:"content"`
	Images    []Image   `json:"images,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	VisibleTo []string  `json:"visibleTo,omitempty"`
	Likes     []ActorID `json:"likes"`
	Comments  []Comment `json:"comments"`

	// seq is the store-assigned insertion sequence, used only as the stable
	// tie-break when merging posts with equal timestamps.
	seq int64
}

// Public reports whether the post has no visibility allow-list.
func (p *Post) Public() bool { return len(p.VisibleTo) == 0 }

// VisibleToCharacter reports whether the given character may see the post.
// Evaluated at read/simulation time against the current allow-list.
func (p *Post) VisibleToCharacter(charID string) bool {
	if p.Public() {
		return true
	}
	for _, id := range p.VisibleTo {
		if id == charID {
			return true
		}
	}
	return false
}

// LikedBy reports whether actor is a member of the like set.
func (p *Post) LikedBy(actor ActorID) bool {
	for _, id := range p.Likes {
		if id == actor {
			return true
		}
	}
	return false
}

func (p *Post) clone() Post {
	cp := *p
	if p.Images != nil {
		cp.Images = append([]Image(nil), p.Images...)
	}
	if p.VisibleTo != nil {
		cp.VisibleTo = append([]string(nil), p.VisibleTo...)
	}
	if p.Likes != nil {
		cp.Likes = append([]ActorID(nil), p.Likes...)
	}
	if p.Comments != nil {
		cp.Comments = append([]Comment(nil), p.Comments...)
	}
	return cp
}
