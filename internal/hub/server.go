// Package hub is the self-hostable authoritative side of boardsync: a JSON
// REST API over SQLite plus a /realtime websocket that fans every committed
// write out to connected boards.
package hub

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boardsync/internal/model"
	"boardsync/internal/push"
	"boardsync/internal/remote"
)

type Server struct {
	db  *DB
	log *zap.Logger
	bc  *broadcaster

	newID func() string
	now   func() time.Time
}

func NewServer(db *DB, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		db:    db,
		log:   log,
		bc:    newBroadcaster(log),
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/snapshot", s.auth(s.handleSnapshot))

	mux.HandleFunc("POST /api/projects", s.auth(s.handleInsertProject))
	mux.HandleFunc("PATCH /api/projects/{id}", s.auth(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.auth(s.handleDeleteProject))
	mux.HandleFunc("POST /api/projects/positions", s.auth(s.handleProjectPositions))
	mux.HandleFunc("POST /api/projects/{id}/tasks/done", s.auth(s.handleMarkTasksDone))

	mux.HandleFunc("POST /api/tasks", s.auth(s.handleInsertTask))
	mux.HandleFunc("POST /api/tasks/batch", s.auth(s.handleInsertTasks))
	mux.HandleFunc("PATCH /api/tasks/{id}", s.auth(s.handleUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.auth(s.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/positions", s.auth(s.handleTaskPositions))

	mux.HandleFunc("PUT /api/user-settings", s.auth(s.handleUserSettings))
	mux.HandleFunc("PUT /api/app-settings", s.auth(s.handleAppSettings))

	mux.HandleFunc("POST /api/admin/users", s.admin(s.handleCreateUser))
	mux.HandleFunc("PATCH /api/admin/users/{id}", s.admin(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.admin(s.handleDeleteUser))

	mux.HandleFunc("GET /realtime", s.handleRealtime)

	return mux
}

func (s *Server) Close() {
	s.bc.closeAll()
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// bearerUser resolves the caller from the Authorization header. Tokens are
// user ids; swapping in real token verification only touches this function.
func bearerUser(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) auth(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := bearerUser(r)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		h(w, r, userID)
	}
}

func (s *Server) admin(h authedHandler) http.HandlerFunc {
	return s.auth(func(w http.ResponseWriter, r *http.Request, userID string) {
		p, err := s.db.GetProfile(r.Context(), userID)
		if err != nil || p.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		h(w, r, userID)
	})
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if bearerUser(r) == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	s.bc.serve(w, r)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, userID string) {
	snap, err := s.db.Snapshot(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleInsertProject(w http.ResponseWriter, r *http.Request, _ string) {
	var p model.Project
	if !decode(w, r, &p) {
		return
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if !model.ValidColumn(p.Column) {
		writeError(w, http.StatusBadRequest, "unknown column")
		return
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.db.InsertProject(r.Context(), p); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableProjects, push.EventInsert, p, nil)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, _ string) {
	var p model.Project
	if !decode(w, r, &p) {
		return
	}
	p.ID = r.PathValue("id")
	if !model.ValidColumn(p.Column) {
		writeError(w, http.StatusBadRequest, "unknown column")
		return
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.db.UpdateProject(r.Context(), p); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableProjects, push.EventUpdate, p, nil)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, _ string) {
	id := r.PathValue("id")
	old, err := s.db.GetProject(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	taskIDs, err := s.db.DeleteProject(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	for _, tid := range taskIDs {
		s.emit(push.TableTasks, push.EventDelete, nil, idRow{ID: tid})
	}
	s.emit(push.TableProjects, push.EventDelete, nil, old)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProjectPositions(w http.ResponseWriter, r *http.Request, _ string) {
	var positions []remote.ProjectPosition
	if !decode(w, r, &positions) {
		return
	}
	if err := s.db.UpsertProjectPositions(r.Context(), positions); err != nil {
		s.fail(w, err)
		return
	}
	for _, pos := range positions {
		p, err := s.db.GetProject(r.Context(), pos.ID)
		if err != nil {
			continue
		}
		s.emit(push.TableProjects, push.EventUpdate, p, nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkTasksDone(w http.ResponseWriter, r *http.Request, _ string) {
	tasks, err := s.db.MarkProjectTasksDone(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	for _, t := range tasks {
		s.emit(push.TableTasks, push.EventUpdate, t, nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsertTask(w http.ResponseWriter, r *http.Request, _ string) {
	var t model.Task
	if !decode(w, r, &t) {
		return
	}
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.ColorStatus == "" {
		t.ColorStatus = model.ColorWhite
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	if err := s.db.InsertTask(r.Context(), t); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableTasks, push.EventInsert, t, nil)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleInsertTasks(w http.ResponseWriter, r *http.Request, _ string) {
	var tasks []model.Task
	if !decode(w, r, &tasks) {
		return
	}
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = s.newID()
		}
		if tasks[i].ColorStatus == "" {
			tasks[i].ColorStatus = model.ColorWhite
		}
		if tasks[i].CreatedAt.IsZero() {
			tasks[i].CreatedAt = s.now().UTC()
		}
		if err := s.db.InsertTask(r.Context(), tasks[i]); err != nil {
			s.fail(w, err)
			return
		}
		s.emit(push.TableTasks, push.EventInsert, tasks[i], nil)
	}
	writeJSON(w, http.StatusCreated, tasks)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, _ string) {
	var t model.Task
	if !decode(w, r, &t) {
		return
	}
	t.ID = r.PathValue("id")
	if err := s.db.UpdateTask(r.Context(), t); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableTasks, push.EventUpdate, t, nil)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, _ string) {
	id := r.PathValue("id")
	old, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.db.DeleteTask(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableTasks, push.EventDelete, nil, old)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskPositions(w http.ResponseWriter, r *http.Request, _ string) {
	var positions []remote.TaskPosition
	if !decode(w, r, &positions) {
		return
	}
	if err := s.db.UpsertTaskPositions(r.Context(), positions); err != nil {
		s.fail(w, err)
		return
	}
	for _, pos := range positions {
		t, err := s.db.GetTask(r.Context(), pos.ID)
		if err != nil {
			continue
		}
		s.emit(push.TableTasks, push.EventUpdate, t, nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserSettings(w http.ResponseWriter, r *http.Request, userID string) {
	var settings model.UserSettings
	if !decode(w, r, &settings) {
		return
	}
	// Callers can only write their own row.
	settings.UserID = userID
	if settings.DueSoonDays < 1 {
		writeError(w, http.StatusBadRequest, "due_soon_days must be at least 1")
		return
	}
	if err := s.db.UpsertUserSettings(r.Context(), settings); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableUserSettings, push.EventUpdate, settings, nil)
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleAppSettings(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := s.db.GetProfile(r.Context(), userID)
	if err != nil || p.Role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	var cfg model.AppSettings
	if !decode(w, r, &cfg) {
		return
	}
	cfg.ID = 1
	if err := s.db.UpdateAppSettings(r.Context(), cfg); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableAppSettings, push.EventUpdate, cfg, nil)
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, _ string) {
	var req struct {
		Email    string  `json:"email"`
		Password *string `json:"password,omitempty"`
		Name     *string `json:"name,omitempty"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	p := model.Profile{
		ID:    s.newID(),
		Email: model.StrPtr(strings.TrimSpace(req.Email)),
		Name:  req.Name,
		Role:  model.RoleMember,
	}
	if err := s.db.InsertProfile(r.Context(), p, hashPtr(req.Password)); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableProfiles, push.EventInsert, p, nil)
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, _ string) {
	var upd struct {
		Email    *string `json:"email,omitempty"`
		Name     *string `json:"name,omitempty"`
		Password *string `json:"password,omitempty"`
	}
	if !decode(w, r, &upd) {
		return
	}
	p, err := s.db.UpdateProfile(r.Context(), r.PathValue("id"), upd.Email, upd.Name, hashPtr(upd.Password))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableProfiles, push.EventUpdate, p, nil)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, _ string) {
	id := r.PathValue("id")
	old, err := s.db.GetProfile(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.db.DeleteProfile(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	s.emit(push.TableProfiles, push.EventDelete, nil, old)
	w.WriteHeader(http.StatusNoContent)
}

type idRow struct {
	ID string `json:"id"`
}

func (s *Server) emit(table push.Table, typ push.EventType, newRow, oldRow any) {
	ev := push.Event{Table: table, Type: typ}
	if newRow != nil {
		b, err := json.Marshal(newRow)
		if err != nil {
			s.log.Error("encode row", zap.Error(err))
			return
		}
		ev.New = b
	}
	if oldRow != nil {
		b, err := json.Marshal(oldRow)
		if err != nil {
			s.log.Error("encode row", zap.Error(err))
			return
		}
		ev.Old = b
	}
	s.bc.publish(ev)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func hashPtr(password *string) *string {
	if password == nil || *password == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(*password))
	h := hex.EncodeToString(sum[:])
	return &h
}
