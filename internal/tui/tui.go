// Package tui renders the four-column board in the terminal. It is a thin
// shell: every edit goes through the mutator, every refresh comes from the
// store's watch channel. The TUI never talks to the hub directly.
package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"boardsync/internal/model"
	"boardsync/internal/mutate"
	"boardsync/internal/session"
	"boardsync/internal/store"
	"boardsync/internal/subscribe"
	"boardsync/internal/view"
)

type mode int

const (
	modeBoard mode = iota
	modeRename
	modeAddTask
	modeSearch
	modeDueDays
)

type focus int

const (
	focusBoard focus = iota
	focusTasks
)

type storeChangedMsg struct{}

type noticeTickMsg struct{}

const noticeTTL = 4 * time.Second

type Model struct {
	st   *store.Store
	mut  *mutate.Mutator
	mgr  *subscribe.Manager
	sess session.Session

	mode  mode
	focus focus

	colIdx  int
	rowIdx  int
	taskIdx int

	search string
	input  textinput.Model
	spin   spinner.Model
	help   help.Model

	width  int
	height int
}

func newModel(st *store.Store, mut *mutate.Mutator, mgr *subscribe.Manager, sess session.Session) Model {
	ti := textinput.New()
	ti.CharLimit = 200
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	return Model{
		st:    st,
		mut:   mut,
		mgr:   mgr,
		sess:  sess,
		spin:  sp,
		help:  help.New(),
		input: ti,
	}
}

// Run blocks until the user quits, then drains in-flight commits so nothing
// is lost on exit.
func Run(st *store.Store, mut *mutate.Mutator, mgr *subscribe.Manager, sess session.Session) error {
	p := tea.NewProgram(newModel(st, mut, mgr, sess), tea.WithAltScreen())
	_, err := p.Run()
	mut.Exec.Wait()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(watchStore(m.st), m.spin.Tick, noticeTick())
}

func watchStore(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		<-st.Watch()
		return storeChangedMsg{}
	}
}

func noticeTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return noticeTickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		m.clamp()
		return m, watchStore(m.st)

	case noticeTickMsg:
		for _, n := range m.st.Notices() {
			if time.Since(n.At) > noticeTTL {
				m.st.DismissNotice(n.ID)
			}
		}
		return m, noticeTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != modeBoard {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, keys.Left):
		if m.focus == focusBoard && m.colIdx > 0 {
			m.colIdx--
			m.rowIdx = 0
		}
	case key.Matches(msg, keys.Right):
		if m.focus == focusBoard && m.colIdx < len(model.Columns())-1 {
			m.colIdx++
			m.rowIdx = 0
		}
	case key.Matches(msg, keys.Up):
		if m.focus == focusTasks {
			if m.taskIdx > 0 {
				m.taskIdx--
			}
		} else if m.rowIdx > 0 {
			m.rowIdx--
		}
	case key.Matches(msg, keys.Down):
		if m.focus == focusTasks {
			m.taskIdx++
		} else {
			m.rowIdx++
		}

	case key.Matches(msg, keys.Tasks):
		if m.focus == focusBoard {
			if _, ok := m.selected(); ok {
				m.focus = focusTasks
				m.taskIdx = 0
			}
		} else {
			m.focus = focusBoard
		}

	case key.Matches(msg, keys.New):
		created := m.mut.CreateProject(ctx)
		m.selectProject(created.ID)

	case key.Matches(msg, keys.Rename):
		if p, ok := m.selected(); ok {
			m.mode = modeRename
			m.input.SetValue(p.Title)
			m.input.Focus()
		}
	case key.Matches(msg, keys.Delete):
		if p, ok := m.selected(); ok {
			m.mut.DeleteProject(ctx, p.ID)
		}
	case key.Matches(msg, keys.Dup):
		if p, ok := m.selected(); ok {
			m.mut.DuplicateProject(ctx, p.ID)
		}
	case key.Matches(msg, keys.Color):
		if p, ok := m.selected(); ok {
			m.mut.CycleColor(ctx, p.ID)
		}
	case key.Matches(msg, keys.Pin):
		if p, ok := m.selected(); ok {
			m.mut.TogglePin(ctx, p.ID)
		}

	case key.Matches(msg, keys.MoveL):
		if p, ok := m.selected(); ok && m.colIdx > 0 {
			m.mut.MoveProject(ctx, p.ID, model.Columns()[m.colIdx-1].ID)
			m.colIdx--
		}
	case key.Matches(msg, keys.MoveR):
		if p, ok := m.selected(); ok && m.colIdx < len(model.Columns())-1 {
			m.mut.MoveProject(ctx, p.ID, model.Columns()[m.colIdx+1].ID)
			m.colIdx++
		}
	case key.Matches(msg, keys.Raise):
		m.swapWithNeighbor(ctx, -1)
	case key.Matches(msg, keys.Lower):
		m.swapWithNeighbor(ctx, 1)

	case key.Matches(msg, keys.AddTask):
		if _, ok := m.selected(); ok {
			m.mode = modeAddTask
			m.input.SetValue("")
			m.input.Focus()
		}
	case key.Matches(msg, keys.Toggle):
		if m.focus == focusTasks {
			if t, ok := m.selectedTask(); ok {
				t.Done = !t.Done
				m.mut.UpdateTask(ctx, t)
			}
		}
	case key.Matches(msg, keys.DelTask):
		if m.focus == focusTasks {
			if t, ok := m.selectedTask(); ok {
				m.mut.DeleteTask(ctx, t.ID)
			}
		}
	case key.Matches(msg, keys.AllDone):
		if p, ok := m.selected(); ok {
			m.mut.MarkAllTasksDone(ctx, p.ID)
		}

	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.input.SetValue(m.search)
		m.input.Focus()
	case key.Matches(msg, keys.DueDays):
		m.mode = modeDueDays
		m.input.SetValue(strconv.Itoa(m.st.DueSoonDays()))
		m.input.Focus()
	case key.Matches(msg, keys.EditFlag):
		if profile, ok := m.st.FindProfile(m.sess.UserID); ok && profile.Role == model.RoleAdmin {
			m.mut.SetAllowAllEdits(ctx, !m.st.Config().AllowAllEdits)
		}
	}

	m.clamp()
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch msg.String() {
	case "esc":
		m.mode = modeBoard
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		switch m.mode {
		case modeRename:
			if p, ok := m.selected(); ok {
				p.Title = value
				m.mut.UpdateProject(ctx, p)
			}
		case modeAddTask:
			if p, ok := m.selected(); ok {
				m.mut.AddTask(ctx, p.ID, value)
			}
		case modeSearch:
			m.search = value
		case modeDueDays:
			if days, err := strconv.Atoi(value); err == nil {
				m.mut.SetDueSoonDays(ctx, days)
			}
		}
		m.mode = modeBoard
		m.input.Blur()
		m.clamp()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) swapWithNeighbor(ctx context.Context, delta int) {
	col := m.column()
	target := m.rowIdx + delta
	if target < 0 || target >= len(col) || m.rowIdx >= len(col) {
		return
	}
	m.mut.Drag(ctx, col[m.rowIdx].ID, col[target].ID, "")
	m.rowIdx = target
}

// board returns the filtered, grouped projects driving the current frame.
func (m Model) board() map[model.ColumnID][]model.Project {
	projects := view.Filter(m.st.Projects(), m.st.Tasks(), view.Query{Search: m.search}, time.Now(), m.st.DueSoonDays())
	return view.Board(projects)
}

func (m Model) column() []model.Project {
	return m.board()[model.Columns()[m.colIdx].ID]
}

func (m Model) selected() (model.Project, bool) {
	col := m.column()
	if m.rowIdx >= len(col) {
		return model.Project{}, false
	}
	return col[m.rowIdx], true
}

func (m Model) selectedTask() (model.Task, bool) {
	p, ok := m.selected()
	if !ok {
		return model.Task{}, false
	}
	tasks := m.st.ProjectTasks(p.ID)
	if m.taskIdx >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.taskIdx], true
}

func (m *Model) selectProject(id string) {
	board := m.board()
	for ci, col := range model.Columns() {
		for ri, p := range board[col.ID] {
			if p.ID == id {
				m.colIdx = ci
				m.rowIdx = ri
				return
			}
		}
	}
}

func (m *Model) clamp() {
	col := m.column()
	if m.rowIdx >= len(col) {
		m.rowIdx = len(col) - 1
	}
	if m.rowIdx < 0 {
		m.rowIdx = 0
	}
	if p, ok := m.selected(); ok {
		if n := len(m.st.ProjectTasks(p.ID)); m.taskIdx >= n {
			m.taskIdx = n - 1
		}
	}
	if m.taskIdx < 0 {
		m.taskIdx = 0
	}
}
