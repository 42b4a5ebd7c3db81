package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marchallab/netview/internal/events"
	"github.com/marchallab/netview/internal/server"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/pipeline"
)

// serveFlags holds the serve command's flags. Zero values fall back to the
// configuration file.
type serveFlags struct {
	addr       string
	fps        int
	sessionTTL time.Duration
	natsURL    string
}

// serveCommand creates the serve command for interactive HTTP sessions.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags serveFlags
		in    inputFlags
		opts  pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "serve [network.json]",
		Short: "Serve interactive viewer sessions over HTTP",
		Long: `Serve interactive viewer sessions over HTTP.

Each session runs its own force simulation and highlight state. Clients create
a session with POST /api/sessions, stream frames from
GET /api/sessions/{id}/stream and post focus, click, drag and mode
interactions. Session lifecycle and focus changes are published to NATS when
--nats-url (or events.nats_url) is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.apply(&opts, args[0])
			return c.runServe(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().IntVar(&flags.fps, "fps", 0, "session frame rate (default from config)")
	cmd.Flags().DurationVar(&flags.sessionTTL, "session-ttl", 0, "close sessions idle for longer (default from config)")
	cmd.Flags().StringVar(&flags.natsURL, "nats-url", "", "publish session events to this NATS server")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "default session seed (default from config)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "default session highlight mode")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "skip label placement")
	in.register(cmd)
	withModeCompletion(cmd)

	return cmd
}

// runServe loads the network once and serves sessions over it until ctx is
// cancelled.
func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, flags serveFlags) error {
	c.setCLIDefaults(&opts)
	mode, err := highlight.ParseMode(opts.Mode)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	_, m, docHash, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load network %s: %w", opts.Network, err)
	}

	cfg := c.Config.Server
	addr := cfg.Addr
	if flags.addr != "" {
		addr = flags.addr
	}
	fps := cfg.FPS
	if flags.fps > 0 {
		fps = flags.fps
	}
	ttl := cfg.SessionTTL.Duration
	if flags.sessionTTL > 0 {
		ttl = flags.sessionTTL
	}
	natsURL := c.Config.Events.NATSURL
	if flags.natsURL != "" {
		natsURL = flags.natsURL
	}

	pub, err := events.Open(natsURL, c.Config.Events.Subject)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer pub.Close()

	srv := server.New(m, docHash, server.Options{
		FPS:        fps,
		SessionTTL: ttl,
		Seed:       opts.Seed,
		Mode:       mode,
		NoLabels:   opts.NoLabels,
		Cooldown:   cfg.Cooldown.Duration,
		Logger:     c.Logger,
		Publisher:  pub,
	})

	printSuccess("Serving %s", opts.Network)
	printKeyValue("Address", addr)
	printStats(len(m.Nodes), len(m.Links), false)
	if natsURL != "" {
		printKeyValue("Events", natsURL)
	}
	printNewline()
	printNextStep("Open a session", "curl -X POST http://localhost"+addr+"/api/sessions")

	return srv.ListenAndServe(ctx, addr)
}
