// Package export renders the board to markdown for sharing outside the tool.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"boardsync/internal/model"
	"boardsync/internal/order"
	"boardsync/internal/remote"
	"boardsync/internal/view"
)

type Options struct {
	// Today anchors due buckets; zero means time.Now().
	Today       time.Time
	DueSoonDays int
}

// RenderBoard produces one markdown document: a section per column, a bullet
// per card, and an indented checklist per card.
func RenderBoard(snap remote.Snapshot, opt Options) string {
	today := opt.Today
	if today.IsZero() {
		today = time.Now()
	}
	dueSoon := opt.DueSoonDays
	if dueSoon < 1 {
		dueSoon = model.DefaultDueSoonDays
	}

	names := map[string]string{}
	for _, p := range snap.Profiles {
		names[p.ID] = p.DisplayName()
	}
	tasksByProject := map[string][]model.Task{}
	for _, t := range snap.Tasks {
		tasksByProject[t.ProjectID] = append(tasksByProject[t.ProjectID], t)
	}

	board := view.Board(snap.Projects)

	var b strings.Builder
	b.WriteString("# Board\n")
	fmt.Fprintf(&b, "\nExported %s\n", today.Format("2006-01-02"))

	for _, col := range model.Columns() {
		fmt.Fprintf(&b, "\n## %s\n\n", col.Label)
		cards := board[col.ID]
		if len(cards) == 0 {
			b.WriteString("_empty_\n")
			continue
		}
		for _, p := range cards {
			b.WriteString(renderCard(p, tasksByProject[p.ID], names, today, dueSoon))
		}
	}
	return b.String()
}

func renderCard(p model.Project, tasks []model.Task, names map[string]string, today time.Time, dueSoon int) string {
	var b strings.Builder

	title := p.Title
	if p.Pinned {
		title = title + " 📌"
	}
	fmt.Fprintf(&b, "- **%s**", title)

	var tags []string
	if p.ColorStatus != "" && p.ColorStatus != model.ColorWhite {
		tags = append(tags, string(p.ColorStatus))
	}
	if p.AssignedUserID != nil {
		if name, ok := names[*p.AssignedUserID]; ok {
			tags = append(tags, "@"+name)
		}
	}
	if p.Deadline != nil && *p.Deadline != "" {
		tag := "due " + *p.Deadline
		if bucket := view.DueBucket(p.Deadline, today, dueSoon); bucket != view.BucketNone {
			tag += " (" + string(bucket) + ")"
		}
		tags = append(tags, tag)
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, " — %s", strings.Join(tags, ", "))
	}
	b.WriteString("\n")

	if p.Description != nil && strings.TrimSpace(*p.Description) != "" {
		fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(*p.Description))
	}

	sorted := append([]model.Task{}, tasks...)
	order.SortTasks(sorted)
	for _, t := range sorted {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		fmt.Fprintf(&b, "  - %s %s\n", box, t.Text)
	}
	return b.String()
}

// WriteBoard renders the board and writes it to <dir>/board.md, creating the
// directory as needed.
func WriteBoard(snap remote.Snapshot, dir string, opt Options) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("missing output directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "board.md")
	if err := os.WriteFile(path, []byte(RenderBoard(snap, opt)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
