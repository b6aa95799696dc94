package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"boardsync/internal/export"
	"boardsync/internal/model"
	"boardsync/internal/remote"
	"boardsync/internal/view"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Scriptable project reads",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsExportCmd(app))
	return cmd
}

func newProjectsExportCmd(app *App) *cobra.Command {
	var toDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.requireSession()
			if err != nil {
				return err
			}
			c := remote.NewClient(app.HubURL, sess.Token)
			snap, err := c.FetchSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			opt := export.Options{}
			if snap.Settings != nil {
				opt.DueSoonDays = snap.Settings.DueSoonDays
			}
			path, err := export.WriteBoard(snap, toDir, opt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&toDir, "to", ".", "Output directory")
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var (
		search string
		user   string
		color  string
		due    string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects grouped by column",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.requireSession()
			if err != nil {
				return err
			}
			c := remote.NewClient(app.HubURL, sess.Token)
			snap, err := c.FetchSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			dueSoon := model.DefaultDueSoonDays
			if snap.Settings != nil {
				dueSoon = snap.Settings.DueSoonDays
			}
			names := map[string]string{}
			for _, p := range snap.Profiles {
				names[p.ID] = p.DisplayName()
			}

			q := view.Query{
				Search: search,
				UserID: resolveUser(snap.Profiles, user),
				Color:  model.ColorStatus(color),
				Due:    view.DueFilter(due),
			}
			projects := view.Filter(snap.Projects, snap.Tasks, q, time.Now(), dueSoon)
			board := view.Board(projects)
			out := cmd.OutOrStdout()
			for _, col := range model.Columns() {
				fmt.Fprintf(out, "%s (%d)\n", col.Label, len(board[col.ID]))
				for _, p := range board[col.ID] {
					line := "  " + p.Title
					if p.Pinned {
						line += " *"
					}
					if p.AssignedUserID != nil {
						if name, ok := names[*p.AssignedUserID]; ok {
							line += "  @" + name
						}
					}
					if bucket := view.DueBucket(p.Deadline, time.Now(), dueSoon); bucket != view.BucketNone {
						line += "  [" + string(bucket) + "]"
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Free-text search (titles, descriptions, task text)")
	cmd.Flags().StringVar(&user, "user", "", "Filter by assignee (id or display name)")
	cmd.Flags().StringVar(&color, "color", "", "Filter by color (white|red|yellow|green)")
	cmd.Flags().StringVar(&due, "due", "", "Filter by due bucket (overdue|today|soon)")
	return cmd
}

// resolveUser accepts a profile id or a display name; unknown values pass
// through as-is so filtering by a raw id still works before profiles load.
func resolveUser(profiles []model.Profile, value string) string {
	if value == "" {
		return ""
	}
	for _, p := range profiles {
		if p.ID == value || p.DisplayName() == value {
			return p.ID
		}
	}
	return value
}
