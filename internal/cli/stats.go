package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"boardsync/internal/model"
	"boardsync/internal/remote"
	"boardsync/internal/view"
)

func newStatsCmd(app *App) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Board counters: columns, colors, due buckets, top assignees",
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

			counters := view.Count(snap.Projects)
			out := cmd.OutOrStdout()

			done, total := view.DoneCount(snap.Tasks)
			fmt.Fprintf(out, "Projects: %d  Tasks done: %d/%d\n", len(snap.Projects), done, total)

			fmt.Fprintln(out, "\nBy column:")
			for _, col := range model.Columns() {
				fmt.Fprintf(out, "  %-10s %d\n", col.Label, counters.ByColumn[col.ID])
			}

			fmt.Fprintln(out, "\nBy color:")
			for _, color := range model.ColorOptions() {
				fmt.Fprintf(out, "  %-10s %d\n", color, counters.ByColor[color])
			}

			today := time.Now()
			buckets := map[view.Bucket]int{}
			for _, p := range snap.Projects {
				buckets[view.DueBucket(p.Deadline, today, dueSoon)]++
			}
			fmt.Fprintln(out, "\nBy due date:")
			for _, b := range []view.Bucket{view.BucketOverdue, view.BucketToday, view.BucketSoon, view.BucketNone} {
				fmt.Fprintf(out, "  %-10s %d\n", b, buckets[b])
			}

			assignees := counters.TopAssignees(top)
			if len(assignees) > 0 {
				fmt.Fprintln(out, "\nTop assignees:")
				for _, a := range assignees {
					name := a.UserID
					if n, ok := names[a.UserID]; ok {
						name = n
					}
					fmt.Fprintf(out, "  %-20s %d\n", name, a.Count)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "How many assignees to list")
	return cmd
}
