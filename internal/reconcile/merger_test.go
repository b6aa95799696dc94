package reconcile

import (
	"encoding/json"
	"reflect"
	"testing"

	"boardsync/internal/model"
	"boardsync/internal/push"
	"boardsync/internal/remote"
	"boardsync/internal/store"
)

func upsertEvent(t *testing.T, table push.Table, row any) push.Event {
	t.Helper()
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	return push.Event{Table: table, Type: push.EventUpdate, New: b}
}

func deleteEvent(t *testing.T, table push.Table, row any) push.Event {
	t.Helper()
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	return push.Event{Table: table, Type: push.EventDelete, Old: b}
}

func TestUpsertReplacesOrAppends(t *testing.T) {
	st := store.New()
	m := NewMerger(st, "u1", nil)

	m.Apply(upsertEvent(t, push.TableProjects, model.Project{ID: "p1", Title: "incoming"}))
	if p, ok := st.FindProject("p1"); !ok || p.Title != "incoming" {
		t.Fatalf("absent id should append: %+v", p)
	}

	m.Apply(upsertEvent(t, push.TableProjects, model.Project{ID: "p1", Title: "replaced", Pinned: true}))
	p, _ := st.FindProject("p1")
	if p.Title != "replaced" || !p.Pinned {
		t.Fatalf("existing id should be replaced field-for-field: %+v", p)
	}
	if len(st.Projects()) != 1 {
		t.Fatal("upsert must not duplicate")
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	st := store.New()
	m := NewMerger(st, "u1", nil)

	ev := upsertEvent(t, push.TableTasks, model.Task{ID: "t1", ProjectID: "p1", Text: "x"})
	m.Apply(ev)
	first := st.Tasks()
	m.Apply(ev)
	second := st.Tasks()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second identical upsert changed state:\n%+v\n%+v", first, second)
	}
}

func TestDeleteAbsentIsNotAnError(t *testing.T) {
	st := store.New()
	m := NewMerger(st, "u1", nil)

	m.Apply(deleteEvent(t, push.TableProjects, map[string]string{"id": "ghost"}))
	if len(st.Projects()) != 0 {
		t.Fatal("state should stay empty")
	}
}

func TestDeleteRemovesMatchingRow(t *testing.T) {
	st := store.New()
	st.UpsertTask(model.Task{ID: "t1", ProjectID: "p1"})
	m := NewMerger(st, "u1", nil)

	m.Apply(deleteEvent(t, push.TableTasks, map[string]string{"id": "t1"}))
	if _, ok := st.FindTask("t1"); ok {
		t.Fatal("task should be removed")
	}
}

func TestUserSettingsFilteredToSessionUser(t *testing.T) {
	st := store.New()
	m := NewMerger(st, "u1", nil)

	m.Apply(upsertEvent(t, push.TableUserSettings, model.UserSettings{UserID: "u2", DueSoonDays: 9}))
	if st.Settings() != nil {
		t.Fatal("another user's settings must not apply")
	}

	m.Apply(upsertEvent(t, push.TableUserSettings, model.UserSettings{UserID: "u1", DueSoonDays: 9}))
	s := st.Settings()
	if s == nil || s.DueSoonDays != 9 {
		t.Fatalf("session user's settings should apply: %+v", s)
	}
}

func TestAppSettingsUpsert(t *testing.T) {
	st := store.New()
	m := NewMerger(st, "u1", nil)

	m.Apply(upsertEvent(t, push.TableAppSettings, model.AppSettings{ID: 1, AllowAllEdits: true}))
	if !st.Config().AllowAllEdits {
		t.Fatal("config flag should be set")
	}
}

func TestSnapshotReplacesCollectionsVerbatim(t *testing.T) {
	st := store.New()
	// A locally created row whose insert commit is still pending.
	st.UpsertProject(model.Project{ID: "optimistic", Title: "pending"})
	m := NewMerger(st, "u1", nil)

	snap := remote.Snapshot{
		Projects: []model.Project{{ID: "p1", Title: "authoritative"}},
		Tasks:    []model.Task{{ID: "t1", ProjectID: "p1"}},
		Profiles: []model.Profile{{ID: "u1"}},
		Config:   &model.AppSettings{ID: 1, AllowAllEdits: true},
	}
	m.ApplySnapshot(snap)

	// The optimistic row disappears until a later poll includes it: the
	// documented inconsistency window, not a bug to paper over.
	if _, ok := st.FindProject("optimistic"); ok {
		t.Fatal("snapshot must overwrite local-only rows")
	}
	if len(st.Projects()) != 1 || len(st.Tasks()) != 1 || len(st.Profiles()) != 1 {
		t.Fatal("collections should match the snapshot verbatim")
	}
	if !st.Config().AllowAllEdits {
		t.Fatal("config should come from the snapshot")
	}

	// Absent settings leave the local value untouched.
	st.SetSettings(&model.UserSettings{UserID: "u1", DueSoonDays: 5})
	m.ApplySnapshot(remote.Snapshot{})
	if s := st.Settings(); s == nil || s.DueSoonDays != 5 {
		t.Fatal("nil snapshot settings must not clear local settings")
	}
}

func TestSessionUserSwapDuringApply(t *testing.T) {
	st := store.New()
	m := NewMerger(st, "u1", nil)
	ev := upsertEvent(t, push.TableUserSettings, model.UserSettings{UserID: "u2", DueSoonDays: 9})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			m.Apply(ev)
		}
	}()
	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			m.SetSessionUser("u2")
		} else {
			m.SetSessionUser("u1")
		}
	}
	<-done

	m.SetSessionUser("u2")
	m.Apply(ev)
	s := st.Settings()
	if s == nil || s.UserID != "u2" || s.DueSoonDays != 9 {
		t.Fatalf("settings after swap: %+v", s)
	}
}
