package hub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"boardsync/internal/model"
	"boardsync/internal/remote"
)

// DB is the hub's authoritative store, one SQLite file.
type DB struct {
	sql *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT,
	"column"         TEXT NOT NULL,
	color_status     TEXT NOT NULL,
	deadline         TEXT,
	assigned_user_id TEXT,
	pinned           INTEGER NOT NULL DEFAULT 0,
	link             TEXT,
	sort_order       INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL,
	text             TEXT NOT NULL,
	done             INTEGER NOT NULL DEFAULT 0,
	assigned_user_id TEXT,
	color_status     TEXT NOT NULL DEFAULT 'white',
	sort_order       INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY,
	email         TEXT,
	name          TEXT,
	role          TEXT NOT NULL DEFAULT 'member',
	password_hash TEXT
);
CREATE TABLE IF NOT EXISTS user_settings (
	user_id       TEXT PRIMARY KEY,
	due_soon_days INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS app_settings (
	id              INTEGER PRIMARY KEY CHECK (id = 1),
	allow_all_edits INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO app_settings (id, allow_all_edits) VALUES (1, 0);
`

// OpenDB opens (creating if needed) the hub database. The modernc.org/sqlite
// driver name is "sqlite".
func OpenDB(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps modernc's file locking happy.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

const timeLayout = time.RFC3339Nano

var ErrNotFound = errors.New("row not found")

func (d *DB) Snapshot(ctx context.Context, userID string) (remote.Snapshot, error) {
	var snap remote.Snapshot

	rows, err := d.sql.QueryContext(ctx, `SELECT id, title, description, "column", color_status, deadline, assigned_user_id, pinned, link, sort_order, created_at, updated_at FROM projects`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return snap, err
		}
		snap.Projects = append(snap.Projects, p)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	taskRows, err := d.sql.QueryContext(ctx, `SELECT id, project_id, text, done, assigned_user_id, color_status, sort_order, created_at FROM tasks`)
	if err != nil {
		return snap, err
	}
	defer taskRows.Close()
	for taskRows.Next() {
		t, err := scanTask(taskRows)
		if err != nil {
			return snap, err
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	if err := taskRows.Err(); err != nil {
		return snap, err
	}

	profRows, err := d.sql.QueryContext(ctx, `SELECT id, email, name, role FROM profiles`)
	if err != nil {
		return snap, err
	}
	defer profRows.Close()
	for profRows.Next() {
		var p model.Profile
		var role string
		if err := profRows.Scan(&p.ID, &p.Email, &p.Name, &role); err != nil {
			return snap, err
		}
		p.Role = model.Role(role)
		snap.Profiles = append(snap.Profiles, p)
	}
	if err := profRows.Err(); err != nil {
		return snap, err
	}

	if userID != "" {
		var s model.UserSettings
		err := d.sql.QueryRowContext(ctx, `SELECT user_id, due_soon_days FROM user_settings WHERE user_id = ?`, userID).
			Scan(&s.UserID, &s.DueSoonDays)
		switch {
		case err == nil:
			snap.Settings = &s
		case errors.Is(err, sql.ErrNoRows):
		default:
			return snap, err
		}
	}

	var cfg model.AppSettings
	var allow int
	if err := d.sql.QueryRowContext(ctx, `SELECT id, allow_all_edits FROM app_settings WHERE id = 1`).Scan(&cfg.ID, &allow); err != nil {
		return snap, err
	}
	cfg.AllowAllEdits = allow != 0
	snap.Config = &cfg

	return snap, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (model.Project, error) {
	var p model.Project
	var column, color string
	var pinned int
	var createdAt, updatedAt string
	err := r.Scan(&p.ID, &p.Title, &p.Description, &column, &color, &p.Deadline,
		&p.AssignedUserID, &pinned, &p.Link, &p.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.Column = model.ColumnID(column)
	p.ColorStatus = model.ColorStatus(color)
	p.Pinned = pinned != 0
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return p, nil
}

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	var done int
	var color, createdAt string
	err := r.Scan(&t.ID, &t.ProjectID, &t.Text, &done, &t.AssignedUserID, &color, &t.SortOrder, &createdAt)
	if err != nil {
		return t, err
	}
	t.Done = done != 0
	t.ColorStatus = model.ColorStatus(color)
	t.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return t, nil
}

func (d *DB) InsertProject(ctx context.Context, p model.Project) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO projects (id, title, description, "column", color_status, deadline, assigned_user_id, pinned, link, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, string(p.Column), string(p.ColorStatus), p.Deadline,
		p.AssignedUserID, boolInt(p.Pinned), p.Link, p.SortOrder,
		p.CreatedAt.UTC().Format(timeLayout), p.UpdatedAt.UTC().Format(timeLayout))
	return err
}

func (d *DB) UpdateProject(ctx context.Context, p model.Project) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE projects SET title = ?, description = ?, "column" = ?, color_status = ?, deadline = ?, assigned_user_id = ?, pinned = ?, link = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Description, string(p.Column), string(p.ColorStatus), p.Deadline,
		p.AssignedUserID, boolInt(p.Pinned), p.Link, p.SortOrder,
		p.UpdatedAt.UTC().Format(timeLayout), p.ID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (d *DB) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, title, description, "column", color_status, deadline, assigned_user_id, pinned, link, sort_order, created_at, updated_at FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// DeleteProject removes the project and cascades to its tasks in one
// transaction. Returns the cascaded task ids for event fan-out.
func (d *DB) DeleteProject(ctx context.Context, id string) ([]string, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM tasks WHERE project_id = ?`, id)
	if err != nil {
		return nil, err
	}
	var taskIDs []string
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			rows.Close()
			return nil, err
		}
		taskIDs = append(taskIDs, tid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := requireRows(res); err != nil {
		return nil, err
	}
	return taskIDs, tx.Commit()
}

// UpsertProjectPositions writes each (column, sort_order) pair atomically per
// row, all rows in one transaction.
func (d *DB) UpsertProjectPositions(ctx context.Context, positions []remote.ProjectPosition) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, pos := range positions {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET "column" = ?, sort_order = ? WHERE id = ?`,
			string(pos.Column), pos.SortOrder, pos.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) InsertTask(ctx context.Context, t model.Task) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, text, done, assigned_user_id, color_status, sort_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Text, boolInt(t.Done), t.AssignedUserID,
		string(t.ColorStatus), t.SortOrder, t.CreatedAt.UTC().Format(timeLayout))
	return err
}

func (d *DB) UpdateTask(ctx context.Context, t model.Task) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE tasks SET text = ?, done = ?, assigned_user_id = ?, color_status = ?, sort_order = ? WHERE id = ?`,
		t.Text, boolInt(t.Done), t.AssignedUserID, string(t.ColorStatus), t.SortOrder, t.ID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (d *DB) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, project_id, text, done, assigned_user_id, color_status, sort_order, created_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (d *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (d *DB) UpsertTaskPositions(ctx context.Context, positions []remote.TaskPosition) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, pos := range positions {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET sort_order = ? WHERE id = ?`, pos.SortOrder, pos.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkProjectTasksDone completes all of the project's tasks and returns the
// updated rows for fan-out.
func (d *DB) MarkProjectTasksDone(ctx context.Context, projectID string) ([]model.Task, error) {
	if _, err := d.sql.ExecContext(ctx, `UPDATE tasks SET done = 1 WHERE project_id = ?`, projectID); err != nil {
		return nil, err
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, project_id, text, done, assigned_user_id, color_status, sort_order, created_at FROM tasks WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (d *DB) UpsertUserSettings(ctx context.Context, s model.UserSettings) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, due_soon_days) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET due_soon_days = excluded.due_soon_days`,
		s.UserID, s.DueSoonDays)
	return err
}

func (d *DB) UpdateAppSettings(ctx context.Context, cfg model.AppSettings) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE app_settings SET allow_all_edits = ? WHERE id = 1`, boolInt(cfg.AllowAllEdits))
	return err
}

func (d *DB) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	var role string
	err := d.sql.QueryRowContext(ctx, `SELECT id, email, name, role FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.Email, &p.Name, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.Role = model.Role(role)
	return p, nil
}

func (d *DB) InsertProfile(ctx context.Context, p model.Profile, passwordHash *string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO profiles (id, email, name, role, password_hash) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Name, string(p.Role), passwordHash)
	return err
}

func (d *DB) UpdateProfile(ctx context.Context, id string, email, name, passwordHash *string) (model.Profile, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return model.Profile{}, err
	}
	defer tx.Rollback()

	if email != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET email = ? WHERE id = ?`, *email, id); err != nil {
			return model.Profile{}, err
		}
	}
	if name != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET name = ? WHERE id = ?`, *name, id); err != nil {
			return model.Profile{}, err
		}
	}
	if passwordHash != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET password_hash = ? WHERE id = ?`, *passwordHash, id); err != nil {
			return model.Profile{}, err
		}
	}

	var p model.Profile
	var role string
	err = tx.QueryRowContext(ctx, `SELECT id, email, name, role FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.Email, &p.Name, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.Role = model.Role(role)
	return p, tx.Commit()
}

func (d *DB) DeleteProfile(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
