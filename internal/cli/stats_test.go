package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boardsync/internal/hub"
	"boardsync/internal/model"
	"boardsync/internal/remote"
)

func newSeededHub(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	db, err := hub.OpenDB(ctx, filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	srv := hub.NewServer(db, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	if err := db.InsertProfile(ctx, model.Profile{
		ID:   "u1",
		Name: model.StrPtr("Dana"),
		Role: model.RoleMember,
	}, nil); err != nil {
		t.Fatal(err)
	}

	c := remote.NewClient(ts.URL, "u1")
	overdue := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	seed := []model.Project{
		{
			ID: "p1", Title: "Red alert", Column: model.ColumnCurrent,
			ColorStatus: model.ColorRed, AssignedUserID: model.StrPtr("u1"),
			Deadline: model.StrPtr(overdue),
		},
		{ID: "p2", Title: "Quiet one", Column: model.ColumnNew, ColorStatus: model.ColorWhite},
	}
	for _, p := range seed {
		if err := c.InsertProject(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	return ts.URL
}

func runCommand(t *testing.T, hubURL string, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{
		"--hub", hubURL,
		"--token", "u1",
		"--config-dir", t.TempDir(),
	}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v\n%s", err, buf.String())
	}
	return buf.String()
}

func TestStatsCommand(t *testing.T) {
	url := newSeededHub(t)
	out := runCommand(t, url, "stats")

	for _, want := range []string{
		"Projects: 2",
		"Current    1",
		"red        1",
		"overdue    1",
		"Dana",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestProjectsListFilters(t *testing.T) {
	url := newSeededHub(t)

	out := runCommand(t, url, "projects", "list", "--color", "red")
	if !strings.Contains(out, "Red alert") || strings.Contains(out, "Quiet one") {
		t.Fatalf("color filter output:\n%s", out)
	}

	out = runCommand(t, url, "projects", "list", "--user", "Dana")
	if !strings.Contains(out, "Red alert") || strings.Contains(out, "Quiet one") {
		t.Fatalf("user filter should resolve display names:\n%s", out)
	}

	out = runCommand(t, url, "projects", "list", "--due", "overdue")
	if !strings.Contains(out, "Red alert") || strings.Contains(out, "Quiet one") {
		t.Fatalf("due filter output:\n%s", out)
	}
}
