package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	New      key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Dup      key.Binding
	Color    key.Binding
	Pin      key.Binding
	MoveL    key.Binding
	MoveR    key.Binding
	Raise    key.Binding
	Lower    key.Binding
	Tasks    key.Binding
	AddTask  key.Binding
	Toggle   key.Binding
	DelTask  key.Binding
	AllDone  key.Binding
	Search   key.Binding
	DueDays  key.Binding
	EditFlag key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new project")),
	Rename:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "rename")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Dup:      key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "duplicate")),
	Color:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle color")),
	Pin:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
	MoveL:    key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("shift+←/H", "move left")),
	MoveR:    key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("shift+→/L", "move right")),
	Raise:    key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("shift+↑/K", "raise")),
	Lower:    key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("shift+↓/J", "lower")),
	Tasks:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tasks")),
	AddTask:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle done")),
	DelTask:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete task")),
	AllDone:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "all done")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	DueDays:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "due-soon days")),
	EditFlag: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle open edits")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Rename, k.Color, k.Pin, k.Tasks, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Tasks},
		{k.New, k.Rename, k.Delete, k.Dup, k.Color, k.Pin},
		{k.MoveL, k.MoveR, k.Raise, k.Lower},
		{k.AddTask, k.Toggle, k.DelTask, k.AllDone},
		{k.Search, k.DueDays, k.EditFlag, k.Quit},
	}
}
