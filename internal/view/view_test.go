package view

import (
	"testing"
	"time"

	"boardsync/internal/model"
)

func TestDueBucket(t *testing.T) {
	today := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC) // time-of-day must not matter
	cases := []struct {
		deadline string
		want     Bucket
	}{
		{"2024-01-09", BucketOverdue},
		{"2024-01-10", BucketToday},
		{"2024-01-11", BucketSoon},
		{"2024-01-13", BucketSoon},
		{"2024-01-14", BucketNone},
		{"2024-01-20", BucketNone},
		{"not-a-date", BucketNone},
	}
	for _, tc := range cases {
		if got := DueBucket(&tc.deadline, today, 3); got != tc.want {
			t.Errorf("deadline %s: got %s, want %s", tc.deadline, got, tc.want)
		}
	}
	if got := DueBucket(nil, today, 3); got != BucketNone {
		t.Errorf("nil deadline: got %s", got)
	}
}

func TestFilterSearchIncludesTaskText(t *testing.T) {
	projects := []model.Project{
		{ID: "p1", Title: "Website", Column: model.ColumnNew},
		{ID: "p2", Title: "Payroll", Column: model.ColumnNew},
	}
	tasks := []model.Task{
		{ID: "t1", ProjectID: "p2", Text: "migrate the website forms"},
	}
	got := Filter(projects, tasks, Query{Search: "WEBSITE"}, time.Now(), 3)
	if len(got) != 2 {
		t.Fatalf("search should match titles and task text, got %v", got)
	}

	got = Filter(projects, tasks, Query{Search: "payroll"}, time.Now(), 3)
	if len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("search miss: %v", got)
	}
}

func TestFilterByUserColorAndDue(t *testing.T) {
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	projects := []model.Project{
		{ID: "p1", Title: "a", ColorStatus: model.ColorRed, AssignedUserID: model.StrPtr("u1"), Deadline: model.StrPtr("2024-01-09")},
		{ID: "p2", Title: "b", ColorStatus: model.ColorGreen, AssignedUserID: model.StrPtr("u2"), Deadline: model.StrPtr("2024-01-10")},
		{ID: "p3", Title: "c", ColorStatus: model.ColorRed},
	}

	if got := Filter(projects, nil, Query{UserID: "u1"}, today, 3); len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("user filter: %v", got)
	}
	if got := Filter(projects, nil, Query{Color: model.ColorRed}, today, 3); len(got) != 2 {
		t.Fatalf("color filter: %v", got)
	}
	if got := Filter(projects, nil, Query{Due: DueOverdue}, today, 3); len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("due filter: %v", got)
	}
	if got := Filter(projects, nil, Query{Due: DueToday}, today, 3); len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("today filter: %v", got)
	}
}

func TestBoardGroupsAndSorts(t *testing.T) {
	projects := []model.Project{
		{ID: "p2", Column: model.ColumnNew, SortOrder: 1},
		{ID: "p1", Column: model.ColumnNew, SortOrder: 0},
		{ID: "p3", Column: model.ColumnSupport, SortOrder: 0},
	}
	board := Board(projects)
	if len(board) != len(model.Columns()) {
		t.Fatalf("every fixed column should be present, got %d", len(board))
	}
	newCol := board[model.ColumnNew]
	if len(newCol) != 2 || newCol[0].ID != "p1" || newCol[1].ID != "p2" {
		t.Fatalf("column should sort by sort key: %v", newCol)
	}
	if len(board[model.ColumnFinancial]) != 0 {
		t.Fatal("empty columns stay present and empty")
	}
}

func TestCountersAndTopAssignees(t *testing.T) {
	projects := []model.Project{
		{ID: "p1", Column: model.ColumnNew, ColorStatus: model.ColorRed, AssignedUserID: model.StrPtr("u1")},
		{ID: "p2", Column: model.ColumnNew, ColorStatus: model.ColorRed, AssignedUserID: model.StrPtr("u1")},
		{ID: "p3", Column: model.ColumnCurrent, ColorStatus: model.ColorWhite, AssignedUserID: model.StrPtr("u2")},
		{ID: "p4", Column: model.ColumnCurrent, ColorStatus: model.ColorWhite},
	}
	c := Count(projects)
	if c.ByColumn[model.ColumnNew] != 2 || c.ByColumn[model.ColumnCurrent] != 2 {
		t.Fatalf("column counters: %v", c.ByColumn)
	}
	if c.ByColor[model.ColorRed] != 2 {
		t.Fatalf("color counters: %v", c.ByColor)
	}

	top := c.TopAssignees(1)
	if len(top) != 1 || top[0].UserID != "u1" || top[0].Count != 2 {
		t.Fatalf("top assignees: %v", top)
	}
}

func TestFirstURL(t *testing.T) {
	if got := FirstURL("see https://example.com/x and more"); got != "https://example.com/x" {
		t.Fatalf("got %q", got)
	}
	if got := FirstURL("no links here"); got != "" {
		t.Fatalf("got %q", got)
	}
}
