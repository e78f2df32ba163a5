// Package mirage is a simulated social feed engine. A user persona and a cast
// of AI characters share a moments timeline; when the user posts, a random
// subset of characters likes and comments back after humanlike delays, with
// comment text produced by a pluggable completion provider.
//
// The Engine is the single entry point. It owns the feed state, the reaction
// scheduler, the notification relay and the task executor; callers supply a
// character directory and (optionally) a completion provider.
package mirage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mirage-social/mirage/internal/directory"
	"github.com/mirage-social/mirage/internal/feed"
	"github.com/mirage-social/mirage/internal/gateway"
	"github.com/mirage-social/mirage/internal/notify"
	"github.com/mirage-social/mirage/internal/reactor"
	"github.com/mirage-social/mirage/internal/taskqueue"
	"github.com/mirage-social/mirage/prompts"
)

// Draft is the input to publishing a post. Content and Images may not both be
// empty. An empty VisibleTo means the post is public to every character.
type Draft struct {
	Content   string
	Images    []feed.Image
	VisibleTo []string
}

// Engine coordinates the feed, the reaction scheduler and the notification
// relay. All methods are safe for concurrent use.
type Engine struct {
	dir      directory.Directory
	provider gateway.Provider

	store *feed.Store
	exec  *taskqueue.Executor
	sched *reactor.Scheduler
	relay *notify.Relay

	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	// Construction-time knobs, consumed by New after options run.
	dice        reactor.Dice
	timers      reactor.Timers
	listener    notify.Listener
	reactionCfg reactor.Config
	execCfg     taskqueue.Config
	noticeTTL   time.Duration

	closedOnce int32
}

// New builds an Engine around the given directory. provider may be nil, in
// which case characters still like posts but never comment.
func New(dir directory.Directory, provider gateway.Provider, opts ...Option) (*Engine, error) {
	if dir == nil {
		return nil, errors.New("mirage: directory is required")
	}

	e := &Engine{
		dir:       dir,
		provider:  provider,
		store:     feed.NewStore(),
		log:       zerolog.Nop(),
		now:       time.Now,
		newID:     uuid.NewString,
		noticeTTL: notify.DefaultTTL,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.exec = taskqueue.New(e.execCfg)
	e.relay = notify.New(e.noticeTTL, e.listener, e.log)

	deps := reactor.Deps{
		Directory: dir,
		Ledger:    e.store,
		Submit: func(ctx context.Context, key string, fn func(context.Context) error) error {
			return e.exec.Submit(ctx, key, taskqueue.JobFunc(fn))
		},
		OnComment: e.onGeneratedComment,
		NewID:     e.newID,
		Now:       e.now,
	}
	if provider != nil {
		deps.Compose = e.compose
	}
	e.sched = reactor.NewScheduler(e.reactionCfg, e.dice, e.timers, deps, e.log)

	e.log.Info().Bool("provider", provider != nil).Msg("engine ready")
	return e, nil
}

// PublishUserPost validates the draft, appends it to the user's timeline and
// arms the character reaction fan-out. Nothing mutates on a rejected draft.
func (e *Engine) PublishUserPost(ctx context.Context, d Draft) (feed.Post, error) {
	if e.isClosed() {
		return feed.Post{}, ErrEngineClosed
	}
	if !feed.ValidateDraft(d.Content, d.Images) {
		return feed.Post{}, ErrEmptyDraft
	}

	p := feed.Post{
		ID:        e.newID(),
		AuthorID:  feed.UserActor,
		Content:   d.Content,
		Images:    d.Images,
		Timestamp: e.now(),
		VisibleTo: d.VisibleTo,
	}
	e.store.PublishUser(p)
	postsPublishedTotal.WithLabelValues("user").Inc()

	n := e.sched.ScheduleReactions(p.ID)
	e.log.Info().Str("post_id", p.ID).Int("reactors", n).Msg("user post published")

	got, _ := e.store.Find(p.ID)
	return got, nil
}

// PublishCharacterPost appends a post authored by a character and raises a
// "posted" notification. It does not trigger reactions; characters do not
// react to each other.
func (e *Engine) PublishCharacterPost(ctx context.Context, charID string, d Draft) (feed.Post, error) {
	if e.isClosed() {
		return feed.Post{}, ErrEngineClosed
	}
	char, ok := e.dir.Character(charID)
	if !ok {
		return feed.Post{}, ErrUnknownCharacter
	}
	if !feed.ValidateDraft(d.Content, d.Images) {
		return feed.Post{}, ErrEmptyDraft
	}

	p := feed.Post{
		ID:        e.newID(),
		AuthorID:  feed.ActorID(charID),
		Content:   d.Content,
		Images:    d.Images,
		Timestamp: e.now(),
		VisibleTo: d.VisibleTo,
	}
	e.store.PublishCharacter(charID, p)
	postsPublishedTotal.WithLabelValues("character").Inc()

	e.relay.Publish(notify.Event{
		Kind:      notify.KindPostPublished,
		ActorID:   charID,
		ActorName: char.DisplayName,
		Avatar:    char.Avatar,
		Body:      previewBody(d.Content, d.Images),
		PostID:    p.ID,
	})
	e.log.Info().Str("post_id", p.ID).Str("character_id", charID).Msg("character post published")

	got, _ := e.store.Find(p.ID)
	return got, nil
}

// ToggleLike flips the user's like on a post and reports the new state.
func (e *Engine) ToggleLike(postID string) (bool, error) {
	if e.isClosed() {
		return false, ErrEngineClosed
	}
	liked, found := e.store.ToggleLike(postID, feed.UserActor)
	if !found {
		return false, ErrUnknownPost
	}
	likesToggledTotal.Inc()
	return liked, nil
}

// SubmitComment appends a user comment to a post. When the post belongs to a
// character and a completion provider is configured, the character owes one
// typing-delayed reply.
func (e *Engine) SubmitComment(ctx context.Context, postID, content string) (feed.Comment, error) {
	if e.isClosed() {
		return feed.Comment{}, ErrEngineClosed
	}
	if !feed.ValidateDraft(content, nil) {
		return feed.Comment{}, ErrEmptyDraft
	}
	owner, ok := e.store.Owner(postID)
	if !ok {
		return feed.Comment{}, ErrUnknownPost
	}

	c := feed.Comment{
		ID:         e.newID(),
		AuthorID:   feed.UserActor,
		AuthorName: e.dir.Persona().Name,
		Content:    content,
		Timestamp:  e.now(),
	}
	if !e.store.AppendComment(postID, c) {
		return feed.Comment{}, ErrUnknownPost
	}
	commentsSubmittedTotal.Inc()

	if owner != feed.UserActor && e.provider != nil {
		e.sched.ScheduleReply(postID, string(owner), content)
	}
	return c, nil
}

// NotifyIncomingMessage surfaces a chat message arriving while its
// conversation is not open. It produces a toast but never the feed indicator.
func (e *Engine) NotifyIncomingMessage(charID, preview string) error {
	if e.isClosed() {
		return ErrEngineClosed
	}
	char, ok := e.dir.Character(charID)
	if !ok {
		return ErrUnknownCharacter
	}
	e.relay.Publish(notify.Event{
		Kind:      notify.KindIncomingMessage,
		ActorID:   charID,
		ActorName: char.DisplayName,
		Avatar:    char.Avatar,
		Body:      preview,
	})
	return nil
}

// Feed returns the merged timeline, newest first. The result is a deep copy.
func (e *Engine) Feed() []feed.Post { return e.store.Merged() }

// OpenFeed is Feed plus clearing the unseen indicator, matching the user
// opening the moments tab.
func (e *Engine) OpenFeed() []feed.Post {
	e.relay.MarkSeen()
	return e.store.Merged()
}

// HasUnseen reports whether feed activity happened since the user last opened
// the feed.
func (e *Engine) HasUnseen() bool { return e.relay.Unseen() }

// CurrentNotice returns the toast currently showing, if any.
func (e *Engine) CurrentNotice() (notify.Event, bool) { return e.relay.Current() }

// DismissNotice clears the current toast without touching the unseen
// indicator.
func (e *Engine) DismissNotice() { e.relay.Dismiss() }

// RemoveCharacter drops a character's posts from the feed. Pending reactions
// from that character become no-ops.
func (e *Engine) RemoveCharacter(charID string) { e.store.RemoveCharacter(charID) }

// Flush blocks until every armed reaction and reply has run. Intended for
// tests and graceful shutdown.
func (e *Engine) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.sched.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the executor after draining queued tasks. Subsequent calls are
// no-ops; subsequent operations return ErrEngineClosed.
func (e *Engine) Close() error {
	if !atomic.CompareAndSwapInt32(&e.closedOnce, 0, 1) {
		return nil
	}
	e.exec.Stop()
	e.log.Info().Msg("engine closed")
	return nil
}

func (e *Engine) isClosed() bool { return atomic.LoadInt32(&e.closedOnce) == 1 }

// compose renders the reply prompt and runs it through the provider. The
// returned text is already stripped of the quote wrapping models tend to add.
func (e *Engine) compose(ctx context.Context, char directory.Character, momentContent, userComment string) (string, error) {
	tmpl, err := prompts.MomentReply()
	if err != nil {
		return "", errors.Wrap(err, "load reply prompt")
	}
	prompt := prompts.Interpolate(tmpl, map[string]string{
		"ai_name":        char.Name,
		"user_name":      e.dir.Persona().Name,
		"moment_content": momentContent,
		"user_comment":   userComment,
	})

	turns := make([]gateway.Turn, 0, 2)
	if char.Personality != "" {
		turns = append(turns, gateway.Turn{Role: gateway.RoleSystem, Content: char.Personality})
	}
	turns = append(turns, gateway.Turn{Role: gateway.RoleUser, Content: prompt})

	text, err := e.provider.Complete(ctx, turns)
	if err != nil {
		return "", err
	}
	return gateway.StripReply(text), nil
}

func (e *Engine) onGeneratedComment(char directory.Character, postID string, c feed.Comment) {
	e.relay.Publish(notify.Event{
		Kind:      notify.KindNewComment,
		ActorID:   char.ID,
		ActorName: char.DisplayName,
		Avatar:    char.Avatar,
		Body:      c.Content,
		PostID:    postID,
	})
}

func previewBody(content string, images []feed.Image) string {
	if content != "" {
		return content
	}
	if len(images) > 0 {
		return "[photo]"
	}
	return ""
}
