// Package view derives presentation projections from the local store:
// grouping, filtering, and dashboard counters. Everything here is pure and
// recomputed on change; the store's version counter is the memo key.
package view

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"boardsync/internal/model"
	"boardsync/internal/order"
)

// DueFilter widens Bucket with the "show everything" default.
type DueFilter string

const (
	DueAll     DueFilter = "all"
	DueToday   DueFilter = DueFilter(BucketToday)
	DueSoon    DueFilter = DueFilter(BucketSoon)
	DueOverdue DueFilter = DueFilter(BucketOverdue)
)

// Query is the board's filter bar.
type Query struct {
	Search string
	UserID string
	Color  model.ColorStatus
	Due    DueFilter
}

// Filter keeps the projects matching every set criterion. Free-text search
// matches the lowercase haystack of title, description, and all task text.
func Filter(projects []model.Project, tasks []model.Task, q Query, today time.Time, dueSoonDays int) []model.Project {
	if q.Due == "" {
		q.Due = DueAll
	}
	textByProject := map[string][]string{}
	if strings.TrimSpace(q.Search) != "" {
		for _, t := range tasks {
			textByProject[t.ProjectID] = append(textByProject[t.ProjectID], t.Text)
		}
	}

	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if q.UserID != "" && (p.AssignedUserID == nil || *p.AssignedUserID != q.UserID) {
			continue
		}
		if q.Color != "" && p.ColorStatus != q.Color {
			continue
		}
		if q.Due != DueAll && DueBucket(p.Deadline, today, dueSoonDays) != Bucket(q.Due) {
			continue
		}
		if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
			haystack := strings.ToLower(p.Title)
			if p.Description != nil {
				haystack += " " + strings.ToLower(*p.Description)
			}
			haystack += " " + strings.ToLower(strings.Join(textByProject[p.ID], " "))
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Board groups projects by column, each sorted by sort key. Every column of
// the fixed set is present, possibly empty.
func Board(projects []model.Project) map[model.ColumnID][]model.Project {
	board := map[model.ColumnID][]model.Project{}
	for _, col := range model.Columns() {
		board[col.ID] = []model.Project{}
	}
	for _, p := range projects {
		if _, ok := board[p.Column]; !ok {
			// Rows from unknown columns are dropped rather than invented.
			continue
		}
		board[p.Column] = append(board[p.Column], p)
	}
	for id := range board {
		order.SortProjects(board[id])
	}
	return board
}

// Counters aggregates dashboard numbers over the (already filtered) projects.
type Counters struct {
	ByColumn map[model.ColumnID]int
	ByColor  map[model.ColorStatus]int
	ByUser   map[string]int
}

func Count(projects []model.Project) Counters {
	c := Counters{
		ByColumn: map[model.ColumnID]int{},
		ByColor:  map[model.ColorStatus]int{},
		ByUser:   map[string]int{},
	}
	for _, p := range projects {
		c.ByColumn[p.Column]++
		c.ByColor[p.ColorStatus]++
		if p.AssignedUserID != nil {
			c.ByUser[*p.AssignedUserID]++
		}
	}
	return c
}

// UserCount is one row of the top-assignees dashboard list.
type UserCount struct {
	UserID string
	Count  int
}

// TopAssignees returns the n busiest assignees, ties broken by user id for
// deterministic output.
func (c Counters) TopAssignees(n int) []UserCount {
	out := make([]UserCount, 0, len(c.ByUser))
	for id, count := range c.ByUser {
		out = append(out, UserCount{UserID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var urlRe = regexp.MustCompile(`https?://\S+`)

// FirstURL extracts the first http(s) link in the text, for link chips on
// cards. Empty when there is none.
func FirstURL(text string) string {
	return urlRe.FindString(text)
}

// DoneCount returns completed/total for a project's checklist.
func DoneCount(tasks []model.Task) (done, total int) {
	for _, t := range tasks {
		total++
		if t.Done {
			done++
		}
	}
	return done, total
}
