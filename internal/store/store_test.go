package store

import (
	"testing"

	"boardsync/internal/model"
)

func TestInFlightCounterNeverNegative(t *testing.T) {
	s := New()
	s.EndSave()
	s.EndSave()
	if s.Saving() {
		t.Fatal("counter went negative")
	}
	s.BeginSave()
	if !s.Saving() {
		t.Fatal("expected saving after BeginSave")
	}
	s.EndSave()
	if s.Saving() {
		t.Fatal("expected idle after EndSave")
	}
}

func TestRemoveProjectCascadesTasks(t *testing.T) {
	s := New()
	s.UpsertProject(model.Project{ID: "p1", Column: model.ColumnNew})
	s.UpsertTask(model.Task{ID: "t1", ProjectID: "p1"})
	s.UpsertTask(model.Task{ID: "t2", ProjectID: "p2"})

	s.RemoveProject("p1")

	if _, ok := s.FindProject("p1"); ok {
		t.Fatal("project should be gone")
	}
	if _, ok := s.FindTask("t1"); ok {
		t.Fatal("cascade should remove the project's tasks")
	}
	if _, ok := s.FindTask("t2"); !ok {
		t.Fatal("unrelated tasks must survive")
	}
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	s := New()
	s.UpsertProject(model.Project{ID: "p1", Title: "before", Pinned: true})
	s.UpsertProject(model.Project{ID: "p1", Title: "after"})

	p, ok := s.FindProject("p1")
	if !ok {
		t.Fatal("project missing")
	}
	if p.Title != "after" || p.Pinned {
		t.Fatalf("upsert must replace field-for-field, got %+v", p)
	}
	if got := len(s.Projects()); got != 1 {
		t.Fatalf("expected 1 project, got %d", got)
	}
}

func TestVersionBumpsOnChange(t *testing.T) {
	s := New()
	v0 := s.Version()
	s.UpsertProject(model.Project{ID: "p1"})
	if s.Version() == v0 {
		t.Fatal("version should advance on write")
	}
	select {
	case <-s.Watch():
	default:
		t.Fatal("watch channel should hold a pending signal")
	}
}

func TestDueSoonDaysDefault(t *testing.T) {
	s := New()
	if got := s.DueSoonDays(); got != model.DefaultDueSoonDays {
		t.Fatalf("default threshold: got %d", got)
	}
	s.SetSettings(&model.UserSettings{UserID: "u1", DueSoonDays: 7})
	if got := s.DueSoonDays(); got != 7 {
		t.Fatalf("stored threshold: got %d", got)
	}
}
