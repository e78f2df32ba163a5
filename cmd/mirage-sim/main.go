// mirage-sim runs one feed round-trip from the terminal: it publishes a post
// as the user persona, lets the characters react, then prints the resulting
// timeline. Useful for smoke-testing a completion provider configuration.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	mirage "github.com/mirage-social/mirage"
	"github.com/mirage-social/mirage/internal/directory"
	"github.com/mirage-social/mirage/internal/feed"
	"github.com/mirage-social/mirage/internal/gateway"
	"github.com/mirage-social/mirage/internal/notify"
	"github.com/mirage-social/mirage/internal/platform/logger"
	"github.com/mirage-social/mirage/internal/reactor"
)

var (
	seedFlag    int64
	offlineFlag bool
	delayFlag   time.Duration
	waitFlag    time.Duration
	rootCmd     = &cobra.Command{
		Use:   "mirage-sim [post text]",
		Short: "Publish a post into a simulated social feed and watch it react",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
)

func main() {
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Seed for the reaction dice (0 = wall clock)")
	rootCmd.Flags().BoolVar(&offlineFlag, "offline", false, "Skip the completion provider; characters only like")
	rootCmd.Flags().DurationVar(&delayFlag, "max-delay", 0, "Override the upper bound on reaction delays (default from MIRAGE_REACTOR_DELAY_MAX)")
	rootCmd.Flags().DurationVar(&waitFlag, "wait", 30*time.Second, "How long to wait for reactions before giving up")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.New("mirage-sim")

	var provider gateway.Provider
	if !offlineFlag {
		var cfg gateway.Config
		if err := envconfig.Process("MIRAGE_GATEWAY", &cfg); err != nil {
			return err
		}
		if cfg.APIKey == "" {
			log.Warn().Msg("MIRAGE_GATEWAY_API_KEY not set, running without comments")
		} else {
			p, err := gateway.New(cfg)
			if err != nil {
				return err
			}
			provider = p
		}
	}

	dir := sampleDirectory()

	var dice reactor.Dice
	if seedFlag != 0 {
		dice = reactor.NewDice(seedFlag)
	}

	rcfg, err := reactor.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-delay") {
		rcfg.DelayMax = delayFlag
	}

	e, err := mirage.New(dir, provider,
		mirage.WithLogger(log),
		mirage.WithDice(dice),
		mirage.WithReactionConfig(rcfg),
		mirage.WithListener(func(ev notify.Event) {
			fmt.Printf("  🔔 %s: %s\n", ev.ActorName, ev.Body)
		}),
	)
	if err != nil {
		return err
	}
	defer e.Close()

	post, err := e.PublishUserPost(cmd.Context(), mirage.Draft{Content: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	fmt.Printf("published %s, waiting for reactions...\n", post.ID)

	ctx, cancel := context.WithTimeout(cmd.Context(), waitFlag)
	defer cancel()
	if err := e.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("gave up waiting for reactions")
	}

	printFeed(dir, e.OpenFeed())
	return nil
}

func sampleDirectory() *directory.InMemory {
	return directory.NewInMemory(
		directory.Persona{Name: "You"},
		directory.Character{ID: "luna", Name: "Luna", DisplayName: "Luna", Personality: "A dreamy night owl who finds poetry in small things."},
		directory.Character{ID: "rex", Name: "Rex", DisplayName: "Rex", Personality: "A blunt gym rat with a soft spot for dogs."},
		directory.Character{ID: "ivy", Name: "Ivy", DisplayName: "Ivy", Personality: "A sarcastic barista who has seen everything."},
	)
}

func printFeed(dir directory.Directory, posts []feed.Post) {
	persona := dir.Persona()
	for _, p := range posts {
		author := persona.Name
		if p.AuthorID != feed.UserActor {
			if c, ok := dir.Character(string(p.AuthorID)); ok {
				author = c.DisplayName
			}
		}
		body := p.Content
		if body == "" && len(p.Images) > 0 {
			body = "[photo]"
		}
		fmt.Printf("\n%s: %s\n", author, body)
		if len(p.Likes) > 0 {
			names := make([]string, 0, len(p.Likes))
			for _, actor := range p.Likes {
				if c, ok := dir.Character(string(actor)); ok {
					names = append(names, c.DisplayName)
				} else if actor == feed.UserActor {
					names = append(names, persona.Name)
				}
			}
			fmt.Printf("  ❤ %s\n", strings.Join(names, ", "))
		}
		for _, c := range p.Comments {
			fmt.Printf("  💬 %s: %s\n", c.AuthorName, c.Content)
		}
	}
}
