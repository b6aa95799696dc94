package store

import (
	"boardsync/internal/model"
	"boardsync/internal/order"
)

// Projects returns a copy of the project collection.
func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Project{}, s.projects...)
}

func (s *Store) FindProject(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

// UpsertProject replaces the record with the same id field-for-field, or
// appends it when absent.
func (s *Store) UpsertProject(p model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			s.bump()
			return
		}
	}
	s.projects = append(s.projects, p)
	s.bump()
}

// ApplyProjects upserts a batch in one visible change (drag reorders).
func (s *Store) ApplyProjects(updated []model.Project) {
	if len(updated) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range updated {
		replaced := false
		for i := range s.projects {
			if s.projects[i].ID == p.ID {
				s.projects[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			s.projects = append(s.projects, p)
		}
	}
	s.bump()
}

// RemoveProject deletes the project and cascades to its tasks. Absence is not
// an error.
func (s *Store) RemoveProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	tasks := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ProjectID != id {
			tasks = append(tasks, t)
		}
	}
	s.tasks = tasks
	s.bump()
}

// ReplaceProjects swaps the whole collection (poll snapshot; rollback).
func (s *Store) ReplaceProjects(projects []model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append([]model.Project{}, projects...)
	s.bump()
}

func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task{}, s.tasks...)
}

// ProjectTasks returns the project's tasks sorted by sort_order.
func (s *Store) ProjectTasks(projectID string) []model.Task {
	s.mu.Lock()
	list := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			list = append(list, t)
		}
	}
	s.mu.Unlock()
	order.SortTasks(list)
	return list
}

func (s *Store) FindTask(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Store) UpsertTask(t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			s.bump()
			return
		}
	}
	s.tasks = append(s.tasks, t)
	s.bump()
}

func (s *Store) ApplyTasks(updated []model.Task) {
	if len(updated) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range updated {
		replaced := false
		for i := range s.tasks {
			if s.tasks[i].ID == t.ID {
				s.tasks[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			s.tasks = append(s.tasks, t)
		}
	}
	s.bump()
}

func (s *Store) RemoveTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.bump()
}

func (s *Store) ReplaceTasks(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task{}, tasks...)
	s.bump()
}

func (s *Store) Profiles() []model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Profile{}, s.profiles...)
}

func (s *Store) FindProfile(id string) (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return model.Profile{}, false
}

func (s *Store) UpsertProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.profiles {
		if s.profiles[i].ID == p.ID {
			s.profiles[i] = p
			s.bump()
			return
		}
	}
	s.profiles = append(s.profiles, p)
	s.bump()
}

func (s *Store) RemoveProfile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.profiles[:0]
	for _, p := range s.profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.profiles = kept
	s.bump()
}

func (s *Store) ReplaceProfiles(profiles []model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append([]model.Profile{}, profiles...)
	s.bump()
}

// Settings returns the session user's settings, or nil when none are stored.
func (s *Store) Settings() *model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil
	}
	v := *s.settings
	return &v
}

// DueSoonDays falls back to the default threshold when no settings exist.
func (s *Store) DueSoonDays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil || s.settings.DueSoonDays <= 0 {
		return model.DefaultDueSoonDays
	}
	return s.settings.DueSoonDays
}

func (s *Store) SetSettings(settings *model.UserSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings == nil {
		s.settings = nil
	} else {
		v := *settings
		s.settings = &v
	}
	s.bump()
}

func (s *Store) Config() model.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

func (s *Store) SetConfig(config model.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
	s.bump()
}
