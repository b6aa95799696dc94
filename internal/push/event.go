// Package push carries live change notifications from the hub to the
// reconciliation merger.
package push

import "encoding/json"

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

type Table string

const (
	TableProjects     Table = "projects"
	TableTasks        Table = "tasks"
	TableProfiles     Table = "profiles"
	TableUserSettings Table = "user_settings"
	TableAppSettings  Table = "app_settings"
)

// Event is one tagged change. New carries the full row for inserts/updates;
// Old carries at least the id for deletes. Payloads stay raw so the merger
// decodes them against the right entity type.
type Event struct {
	Table Table           `json:"table"`
	Type  EventType       `json:"eventType"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

// OldID extracts the id from the Old payload of a delete event.
func (e Event) OldID() string {
	var row struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(e.Old, &row); err != nil {
		return ""
	}
	if row.ID != "" {
		return row.ID
	}
	return row.UserID
}
