package hub

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardsync/internal/admin"
	"boardsync/internal/model"
	"boardsync/internal/push"
	"boardsync/internal/remote"
)

func newTestHub(t *testing.T) (*httptest.Server, *DB) {
	t.Helper()
	db, err := OpenDB(context.Background(), filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := NewServer(db, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return ts, db
}

func seedUser(t *testing.T, db *DB, id string, role model.Role) {
	t.Helper()
	email := id + "@example.com"
	require.NoError(t, db.InsertProfile(context.Background(), model.Profile{
		ID:    id,
		Email: &email,
		Role:  role,
	}, nil))
}

func TestProjectLifecycle(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "u1", model.RoleMember)
	c := remote.NewClient(ts.URL, "u1")
	ctx := context.Background()

	p := model.Project{
		ID:          "p1",
		Title:       "New project",
		Column:      model.ColumnNew,
		ColorStatus: model.ColorWhite,
	}
	require.NoError(t, c.InsertProject(ctx, p))

	p.Title = "Renamed"
	p.ColorStatus = model.ColorRed
	require.NoError(t, c.UpdateProject(ctx, p))

	snap, err := c.FetchSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "Renamed", snap.Projects[0].Title)
	assert.Equal(t, model.ColorRed, snap.Projects[0].ColorStatus)
	require.NotNil(t, snap.Config)
	assert.False(t, snap.Config.AllowAllEdits)

	require.NoError(t, c.DeleteProject(ctx, "p1"))
	snap, err = c.FetchSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Projects)
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "u1", model.RoleMember)
	c := remote.NewClient(ts.URL, "u1")
	ctx := context.Background()

	require.NoError(t, c.InsertProject(ctx, model.Project{
		ID: "p1", Title: "x", Column: model.ColumnNew, ColorStatus: model.ColorWhite,
	}))
	require.NoError(t, c.InsertTasks(ctx, []model.Task{
		{ID: "t1", ProjectID: "p1", Text: "a"},
		{ID: "t2", ProjectID: "p1", Text: "b"},
	}))
	require.NoError(t, c.DeleteProject(ctx, "p1"))

	snap, err := c.FetchSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Tasks)
}

func TestPositionBatchMovesColumns(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "u1", model.RoleMember)
	c := remote.NewClient(ts.URL, "u1")
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, c.InsertProject(ctx, model.Project{
			ID: id, Title: id, Column: model.ColumnNew, ColorStatus: model.ColorWhite,
		}))
	}
	require.NoError(t, c.UpsertProjectPositions(ctx, []remote.ProjectPosition{
		{ID: "a", Column: model.ColumnCurrent, SortOrder: 0},
		{ID: "b", Column: model.ColumnNew, SortOrder: 0},
	}))

	got, err := db.GetProject(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.ColumnCurrent, got.Column)
}

func TestMarkTasksDone(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "u1", model.RoleMember)
	c := remote.NewClient(ts.URL, "u1")
	ctx := context.Background()

	require.NoError(t, c.InsertProject(ctx, model.Project{
		ID: "p1", Title: "x", Column: model.ColumnNew, ColorStatus: model.ColorWhite,
	}))
	require.NoError(t, c.InsertTasks(ctx, []model.Task{
		{ID: "t1", ProjectID: "p1", Text: "a"},
		{ID: "t2", ProjectID: "p1", Text: "b", Done: true},
	}))
	require.NoError(t, c.MarkProjectTasksDone(ctx, "p1"))

	snap, err := c.FetchSnapshot(ctx)
	require.NoError(t, err)
	for _, task := range snap.Tasks {
		assert.True(t, task.Done, "task %s", task.ID)
	}
}

func TestUserSettingsScopedToCaller(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "u1", model.RoleMember)
	seedUser(t, db, "u2", model.RoleMember)
	ctx := context.Background()

	c1 := remote.NewClient(ts.URL, "u1")
	require.NoError(t, c1.UpsertUserSettings(ctx, model.UserSettings{UserID: "u2", DueSoonDays: 7}))

	snap, err := c1.FetchSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Settings, "caller should see their own row")
	assert.Equal(t, "u1", snap.Settings.UserID)
	assert.Equal(t, 7, snap.Settings.DueSoonDays)

	c2 := remote.NewClient(ts.URL, "u2")
	snap2, err := c2.FetchSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap2.Settings, "spoofed user_id must not leak across users")
}

func TestAppSettingsRequiresAdmin(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "member", model.RoleMember)
	seedUser(t, db, "boss", model.RoleAdmin)
	ctx := context.Background()

	err := remote.NewClient(ts.URL, "member").UpdateAppSettings(ctx, model.AppSettings{AllowAllEdits: true})
	var rerr *remote.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 403, rerr.Status)
	assert.Equal(t, "admin role required", rerr.Message)

	require.NoError(t, remote.NewClient(ts.URL, "boss").UpdateAppSettings(ctx, model.AppSettings{AllowAllEdits: true}))
	snap, err := remote.NewClient(ts.URL, "member").FetchSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Config)
	assert.True(t, snap.Config.AllowAllEdits)
}

func TestAdminUserManagement(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "boss", model.RoleAdmin)
	seedUser(t, db, "member", model.RoleMember)
	ctx := context.Background()

	_, err := admin.NewClient(ts.URL, "member").CreateUser(ctx, admin.CreateUserRequest{Email: "x@example.com"})
	var aerr *admin.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 403, aerr.Status)

	ac := admin.NewClient(ts.URL, "boss")
	id, err := ac.CreateUser(ctx, admin.CreateUserRequest{
		Email: "new@example.com",
		Name:  model.StrPtr("New Person"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, ac.UpdateUser(ctx, id, admin.UserUpdate{Name: model.StrPtr("Renamed")}))
	p, err := db.GetProfile(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Renamed", *p.Name)
	assert.Equal(t, model.RoleMember, p.Role)

	require.NoError(t, ac.DeleteUser(ctx, id))
	_, err = db.GetProfile(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingTokenRejected(t *testing.T) {
	ts, _ := newTestHub(t)
	_, err := remote.NewClient(ts.URL, "").FetchSnapshot(context.Background())
	var rerr *remote.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 401, rerr.Status)
}

func TestRealtimeBroadcastsWrites(t *testing.T) {
	ts, db := newTestHub(t)
	seedUser(t, db, "u1", model.RoleMember)
	ctx := context.Background()

	ch, err := push.DialWebSocket(ctx, ts.URL+"/realtime", "u1")
	require.NoError(t, err)
	defer ch.Close()

	c := remote.NewClient(ts.URL, "u1")
	require.NoError(t, c.InsertProject(ctx, model.Project{
		ID: "p1", Title: "pushed", Column: model.ColumnNew, ColorStatus: model.ColorWhite,
	}))
	require.NoError(t, c.DeleteProject(ctx, "p1"))

	var got []push.Event
	timeout := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case ev, ok := <-ch.Events():
			require.True(t, ok, "channel closed early")
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("expected 2 events, have %d", len(got))
		}
	}

	assert.Equal(t, push.TableProjects, got[0].Table)
	assert.Equal(t, push.EventInsert, got[0].Type)
	assert.Equal(t, push.EventDelete, got[1].Type)
	assert.Equal(t, "p1", got[1].OldID())
}
