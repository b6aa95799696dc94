// Package cli wires the board client and the hub server behind one cobra
// command tree. Bare invocation opens the interactive board.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boardsync/internal/admin"
	"boardsync/internal/mutate"
	"boardsync/internal/push"
	"boardsync/internal/reconcile"
	"boardsync/internal/remote"
	"boardsync/internal/session"
	"boardsync/internal/store"
	"boardsync/internal/subscribe"
	"boardsync/internal/tui"
)

type App struct {
	HubURL       string
	Token        string
	PollInterval time.Duration
	Debug        bool
	ConfigDir    string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "boardsync",
		Short:        "Shared project board with optimistic edits and live sync",
		SilenceUsage: true,
		Example: `  # Open the interactive board
  boardsync --hub http://localhost:8333 --token <user-id>

  # Run a hub
  boardsync serve --db board.db --listen :8333

  # Scriptable reads
  boardsync projects list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive board.
			if len(args) == 0 {
				return runBoard(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.loadConfig()
	}

	cmd.PersistentFlags().StringVar(&app.HubURL, "hub", "", "Hub base URL (default from config file or BOARDSYNC_HUB)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "Bearer token identifying the user")
	cmd.PersistentFlags().DurationVar(&app.PollInterval, "poll", 0, "Snapshot poll interval (default 3s)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", "", "Config directory (default ~/.config/boardsync)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newUsersCmd(app))

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *App) logger() (*zap.Logger, error) {
	if a.Debug {
		return zap.NewDevelopment()
	}
	// The TUI owns the terminal; keep production logging quiet.
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func (a *App) requireSession() (session.Session, error) {
	if a.Token == "" {
		return session.Session{}, fmt.Errorf("no token configured; pass --token or set it in the config file")
	}
	// Tokens are user ids under the hub's bearer scheme.
	return session.Session{UserID: a.Token, Token: a.Token}, nil
}

func runBoard(app *App) error {
	sess, err := app.requireSession()
	if err != nil {
		return err
	}
	log, err := app.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	st := store.New()
	rem := remote.NewClient(app.HubURL, sess.Token)
	adm := admin.NewClient(app.HubURL, sess.Token)
	mut := mutate.New(st, rem, adm, sess, log)

	merger := reconcile.NewMerger(st, sess.UserID, log)
	mgr := subscribe.NewManager(rem, merger, push.DialWebSocket, app.HubURL+"/realtime", log)
	if app.PollInterval > 0 {
		mgr.SetPollInterval(app.PollInterval)
	}
	mgr.SetSession(sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Close()

	return tui.Run(st, mut, mgr, sess)
}
