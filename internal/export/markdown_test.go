package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boardsync/internal/model"
	"boardsync/internal/remote"
)

func testSnapshot() remote.Snapshot {
	return remote.Snapshot{
		Projects: []model.Project{
			{
				ID:             "p1",
				Title:          "Website relaunch",
				Column:         model.ColumnCurrent,
				ColorStatus:    model.ColorRed,
				Deadline:       model.StrPtr("2024-01-09"),
				AssignedUserID: model.StrPtr("u1"),
				Pinned:         true,
			},
			{ID: "p2", Title: "Intake", Column: model.ColumnNew, ColorStatus: model.ColorWhite},
		},
		Tasks: []model.Task{
			{ID: "t2", ProjectID: "p1", Text: "second", SortOrder: 1},
			{ID: "t1", ProjectID: "p1", Text: "first", Done: true, SortOrder: 0},
		},
		Profiles: []model.Profile{
			{ID: "u1", Name: model.StrPtr("Dana")},
		},
	}
}

func TestRenderBoard(t *testing.T) {
	out := RenderBoard(testSnapshot(), Options{
		Today:       time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		DueSoonDays: 3,
	})

	for _, want := range []string{
		"## Current",
		"**Website relaunch 📌**",
		"red, @Dana, due 2024-01-09 (overdue)",
		"- [x] first",
		"- [ ] second",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	// Task order follows sort keys, not input order.
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Fatal("tasks should render in sort order")
	}
	if !strings.Contains(out, "## Financial\n\n_empty_") {
		t.Fatal("empty columns should render as empty sections")
	}
}

func TestWriteBoard(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteBoard(testSnapshot(), dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "board.md") {
		t.Fatalf("unexpected path %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "# Board") {
		t.Fatal("file should contain the rendered board")
	}

	if _, err := WriteBoard(testSnapshot(), " ", Options{}); err == nil {
		t.Fatal("blank directory must be rejected")
	}
}
