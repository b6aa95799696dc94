package model

import "time"

// ColumnID is one of the fixed board lanes. The set is closed: the board
// always renders exactly these four columns, in this order.
type ColumnID string

const (
	ColumnNew       ColumnID = "new"
	ColumnCurrent   ColumnID = "current"
	ColumnSupport   ColumnID = "support"
	ColumnFinancial ColumnID = "financial"
)

type Column struct {
	ID    ColumnID
	Label string
}

func Columns() []Column {
	return []Column{
		{ID: ColumnNew, Label: "New"},
		{ID: ColumnCurrent, Label: "Current"},
		{ID: ColumnSupport, Label: "Support"},
		{ID: ColumnFinancial, Label: "Financial"},
	}
}

func ValidColumn(id ColumnID) bool {
	switch id {
	case ColumnNew, ColumnCurrent, ColumnSupport, ColumnFinancial:
		return true
	}
	return false
}

// ColorStatus is the card's traffic-light state.
type ColorStatus string

const (
	ColorWhite  ColorStatus = "white"
	ColorRed    ColorStatus = "red"
	ColorYellow ColorStatus = "yellow"
	ColorGreen  ColorStatus = "green"
)

func ColorOptions() []ColorStatus {
	return []ColorStatus{ColorWhite, ColorRed, ColorYellow, ColorGreen}
}

// NextColor returns the color after c in the fixed cycle order
// white -> red -> yellow -> green -> white. Unknown colors restart at white.
func NextColor(c ColorStatus) ColorStatus {
	opts := ColorOptions()
	for i, o := range opts {
		if o == c {
			return opts[(i+1)%len(opts)]
		}
	}
	return ColorWhite
}

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Project is a card on the board. Deadline is a date-only string (YYYY-MM-DD)
// or nil; time-of-day never participates in due calculations.
type Project struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    *string     `json:"description"`
	Column         ColumnID    `json:"column"`
	ColorStatus    ColorStatus `json:"color_status"`
	Deadline       *string     `json:"deadline"`
	AssignedUserID *string     `json:"assigned_user_id"`
	Pinned         bool        `json:"pinned"`
	Link           *string     `json:"link"`
	SortOrder      int         `json:"sort_order"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Task is a checklist entry owned by exactly one project. Deleting the
// project cascades to its tasks.
type Task struct {
	ID             string      `json:"id"`
	ProjectID      string      `json:"project_id"`
	Text           string      `json:"text"`
	Done           bool        `json:"done"`
	AssignedUserID *string     `json:"assigned_user_id"`
	ColorStatus    ColorStatus `json:"color_status"`
	SortOrder      int         `json:"sort_order"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Profile mirrors an externally provisioned identity.
type Profile struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
	Role  Role    `json:"role"`
}

// UserSettings holds per-user preferences, keyed by user id.
type UserSettings struct {
	UserID      string `json:"user_id"`
	DueSoonDays int    `json:"due_soon_days"`
}

const DefaultDueSoonDays = 3

// AppSettings is a singleton row; ID is always 1.
type AppSettings struct {
	ID            int  `json:"id"`
	AllowAllEdits bool `json:"allow_all_edits"`
}

// DisplayName prefers name, then email, then the id.
func (p Profile) DisplayName() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return p.ID
}

func StrPtr(s string) *string { return &s }
