// Package reactor simulates organic engagement: when the user publishes a
// post, a random subset of characters reacts after a random delay with a like
// and/or an AI-generated comment. It also schedules the single typing-delayed
// reply a character owes the user after being commented on.
//
// Every scheduled task re-reads the directory and the feed when it fires, so
// it observes renames, removals and visibility as they are at that moment,
// not as they were at schedule time.
package reactor

import (
	"context"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/mirage-social/mirage/internal/directory"
	"github.com/mirage-social/mirage/internal/feed"
)

// Config tunes the fan-out. Zero values get defaults in NewScheduler.
type Config struct {
	// MaxReactors bounds the uniform reactor-count draw.
	MaxReactors int `envconfig:"MAX_REACTORS" default:"3"`
	// LikeProbability is each reactor's chance to like the post.
	LikeProbability float64 `envconfig:"LIKE_PROBABILITY" default:"0.8"`
	// CommentProbability is each reactor's independent chance to comment.
	CommentProbability float64 `envconfig:"COMMENT_PROBABILITY" default:"0.5"`
	// DelayMin/DelayMax bound the uniform per-reactor firing delay.
	DelayMin time.Duration `envconfig:"DELAY_MIN" default:"2s"`
	DelayMax time.Duration `envconfig:"DELAY_MAX" default:"12s"`
	// TypingDelay is the latency floor before a character replies to a user
	// comment on its own post.
	TypingDelay time.Duration `envconfig:"TYPING_DELAY" default:"2s"`
}

// LoadConfig reads Config from MIRAGE_REACTOR_* environment variables.
func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process("MIRAGE_REACTOR", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) withDefaults() Config {
	if c.MaxReactors <= 0 {
		c.MaxReactors = 3
	}
	if c.LikeProbability <= 0 {
		c.LikeProbability = 0.8
	}
	if c.CommentProbability <= 0 {
		c.CommentProbability = 0.5
	}
	if c.DelayMin <= 0 {
		c.DelayMin = 2 * time.Second
	}
	if c.DelayMax <= c.DelayMin {
		c.DelayMax = c.DelayMin + 10*time.Second
	}
	if c.TypingDelay <= 0 {
		c.TypingDelay = 2 * time.Second
	}
	return c
}

// Ledger is the slice of the feed store a task needs: fresh reads plus the
// two mutations. All three are no-ops on an unresolvable post id.
type Ledger interface {
	Find(postID string) (feed.Post, bool)
	ApplyLike(postID string, actor feed.ActorID) bool
	AppendComment(postID string, c feed.Comment) bool
}

// ComposeFunc asks the completion gateway for an in-character comment on a
// moment. userComment is either the user's actual comment (reply path) or the
// fixed fan-out instruction. A nil ComposeFunc disables comment generation.
type ComposeFunc func(ctx context.Context, char directory.Character, momentContent, userComment string) (string, error)

// SubmitFunc hands a task body to the engine's executor, keyed so that all
// work for one post runs in FIFO order.
type SubmitFunc func(ctx context.Context, key string, fn func(context.Context) error) error

// Deps are the shared state handles every task re-reads at fire time.
type Deps struct {
	Directory directory.Directory
	Ledger    Ledger
	Submit    SubmitFunc
	Compose   ComposeFunc
	// OnComment fires after a generated comment lands, for notifications.
	OnComment func(char directory.Character, postID string, c feed.Comment)
	// NewID mints comment ids; Now stamps them.
	NewID func() string
	Now   func() time.Time
}

// Scheduler fans reactions out. Safe for concurrent use.
type Scheduler struct {
	cfg    Config
	dice   Dice
	timers Timers
	deps   Deps
	log    zerolog.Logger

	pending sync.WaitGroup
}

// NewScheduler wires a scheduler. dice and timers may be nil for the
// production defaults.
func NewScheduler(cfg Config, dice Dice, timers Timers, deps Deps, log zerolog.Logger) *Scheduler {
	if dice == nil {
		dice = SystemDice()
	}
	if timers == nil {
		timers = RealTimers()
	}
	if deps.NewID == nil {
		panic("reactor: Deps.NewID is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Scheduler{cfg: cfg.withDefaults(), dice: dice, timers: timers, deps: deps, log: log}
}

// reactionInstruction stands in for the user's comment when a reaction is to
// a fresh post rather than a reply.
const reactionInstruction = "(Your friend just shared this moment on their feed. Reply with one short, natural comment, the way a close friend would. Do not use quotation marks.)"

// ScheduleReactions picks 1..MaxReactors distinct characters and arms one
// delayed task per reactor. It returns the number of tasks armed and never
// blocks on the tasks themselves. The selection samples without replacement;
// when fewer characters exist than the drawn count, all of them react.
func (s *Scheduler) ScheduleReactions(postID string) int {
	chars := s.deps.Directory.Characters()
	if len(chars) == 0 {
		return 0
	}

	n := s.dice.Count(s.cfg.MaxReactors)
	if n > len(chars) {
		n = len(chars)
	}
	perm := s.dice.Perm(len(chars))

	for i := 0; i < n; i++ {
		// Capture only the id; the task resolves the character again when it
		// fires so renames and removals are honored.
		charID := chars[perm[i]].ID
		delay := s.dice.Delay(s.cfg.DelayMin, s.cfg.DelayMax)

		s.pending.Add(1)
		s.timers.AfterFunc(delay, func() {
			s.submitTask(postID, func(ctx context.Context) error {
				return s.react(ctx, postID, charID)
			})
		})

		s.log.Debug().
			Str("post_id", postID).
			Str("character_id", charID).
			Dur("delay", delay).
			Msg("reaction scheduled")
	}
	return n
}

// ScheduleReply arms the single typing-delayed reply a character produces
// after the user comments on one of its posts.
func (s *Scheduler) ScheduleReply(postID, charID, userComment string) {
	s.pending.Add(1)
	s.timers.AfterFunc(s.cfg.TypingDelay, func() {
		s.submitTask(postID, func(ctx context.Context) error {
			return s.reply(ctx, postID, charID, userComment)
		})
	})
	s.log.Debug().Str("post_id", postID).Str("character_id", charID).Msg("reply scheduled")
}

// Wait blocks until every armed task has finished. Used by Flush and tests.
func (s *Scheduler) Wait() { s.pending.Wait() }

func (s *Scheduler) submitTask(postID string, fn func(context.Context) error) {
	// The executor may run the job more than once when retries are
	// configured; the pending count must drop exactly once per task.
	var once sync.Once
	finish := func() { once.Do(s.pending.Done) }

	err := s.deps.Submit(context.Background(), postID, func(ctx context.Context) error {
		defer finish()
		return fn(ctx)
	})
	if err != nil {
		// The queue rejected the task (closed or full). Reactions are best
		// effort, so drop it.
		finish()
		s.log.Warn().Err(err).Str("post_id", postID).Msg("reaction task dropped")
	}
}

// react is one character's reaction firing: maybe a like, independently maybe
// a generated comment. The task races user edits, so every miss along the way
// is a silent no-op.
func (s *Scheduler) react(ctx context.Context, postID, charID string) error {
	char, ok := s.deps.Directory.Character(charID)
	if !ok {
		s.log.Debug().Str("character_id", charID).Msg("reactor removed before firing")
		return nil
	}
	post, ok := s.deps.Ledger.Find(postID)
	if !ok {
		s.log.Debug().Str("post_id", postID).Msg("reaction target gone")
		return nil
	}
	if !post.VisibleToCharacter(charID) {
		return nil
	}

	if s.dice.Coin(s.cfg.LikeProbability) {
		// Apply-only: this is the character's first interaction, so a toggle
		// could only ever un-apply a like the user saw arrive.
		s.deps.Ledger.ApplyLike(postID, feed.ActorID(charID))
		reactionLikesTotal.Inc()
	}

	if s.dice.Coin(s.cfg.CommentProbability) {
		s.generate(ctx, char, postID, post.Content, reactionInstruction)
	}
	return nil
}

// reply is the typing-delayed answer to a user comment on a character's post.
func (s *Scheduler) reply(ctx context.Context, postID, charID, userComment string) error {
	char, ok := s.deps.Directory.Character(charID)
	if !ok {
		return nil
	}
	post, ok := s.deps.Ledger.Find(postID)
	if !ok {
		return nil
	}
	s.generate(ctx, char, postID, post.Content, userComment)
	return nil
}

// generate runs the gateway call and appends the comment on success. Gateway
// failure means "no comment produced": logged, counted, never propagated,
// never retried.
func (s *Scheduler) generate(ctx context.Context, char directory.Character, postID, momentContent, userComment string) {
	if s.deps.Compose == nil {
		s.log.Warn().Str("character_id", char.ID).Msg("no completion provider, skipping comment")
		return
	}
	if momentContent == "" {
		momentContent = "[photo]"
	}

	text, err := s.deps.Compose(ctx, char, momentContent, userComment)
	if err != nil {
		gatewayFailuresTotal.Inc()
		s.log.Warn().Err(err).
			Str("character_id", char.ID).
			Str("post_id", postID).
			Msg("comment generation failed")
		return
	}

	c := feed.Comment{
		ID:         s.deps.NewID(),
		AuthorID:   feed.ActorID(char.ID),
		AuthorName: char.DisplayName,
		Content:    text,
		Timestamp:  s.deps.Now(),
		Generated:  true,
	}
	if !s.deps.Ledger.AppendComment(postID, c) {
		s.log.Debug().Str("post_id", postID).Msg("comment target gone")
		return
	}
	generatedCommentsTotal.Inc()
	if s.deps.OnComment != nil {
		s.deps.OnComment(char, postID, c)
	}
}
