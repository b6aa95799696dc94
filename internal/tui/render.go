package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"boardsync/internal/model"
	"boardsync/internal/store"
	"boardsync/internal/subscribe"
	"boardsync/internal/view"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	columnFocusStyle = columnStyle.
				BorderForeground(lipgloss.Color("62"))

	columnTitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	cardStyle         = lipgloss.NewStyle().PaddingLeft(1)
	cardSelectedStyle = cardStyle.
				Background(lipgloss.Color("236")).
				Bold(true)

	taskPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	noticeErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noticeSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().Faint(true)

	colorGlyphs = map[model.ColorStatus]string{
		model.ColorWhite:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render("●"),
		model.ColorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●"),
		model.ColorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("●"),
		model.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●"),
	}
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.boardView())
	if m.focus == focusTasks {
		b.WriteString("\n")
		b.WriteString(m.taskView())
	}
	if m.mode != modeBoard {
		b.WriteString("\n")
		b.WriteString(m.inputView())
	}
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	parts := []string{"boardsync"}
	switch m.mgr.State() {
	case subscribe.StateConnected:
		parts = append(parts, dimStyle.Render("live"))
	case subscribe.StateConnecting:
		parts = append(parts, dimStyle.Render("connecting"))
	default:
		parts = append(parts, dimStyle.Render("polling"))
	}
	if m.st.Saving() {
		parts = append(parts, m.spin.View()+" saving")
	}
	if m.search != "" {
		parts = append(parts, dimStyle.Render("search: "+m.search))
	}
	if m.st.Config().AllowAllEdits {
		parts = append(parts, dimStyle.Render("open edits"))
	}
	return headerStyle.Render(strings.Join(parts, "  "))
}

func (m Model) boardView() string {
	board := m.board()
	now := time.Now()
	dueSoon := m.st.DueSoonDays()

	width := m.width/len(model.Columns()) - 4
	if width < 16 {
		width = 16
	}

	rendered := make([]string, 0, len(model.Columns()))
	for ci, col := range model.Columns() {
		lines := []string{columnTitleStyle.Render(fmt.Sprintf("%s (%d)", col.Label, len(board[col.ID])))}
		for ri, p := range board[col.ID] {
			lines = append(lines, m.cardLine(p, width, now, dueSoon, ci == m.colIdx && ri == m.rowIdx))
		}
		style := columnStyle
		if ci == m.colIdx {
			style = columnFocusStyle
		}
		rendered = append(rendered, style.Width(width).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) cardLine(p model.Project, width int, now time.Time, dueSoon int, selected bool) string {
	title := p.Title
	if p.Pinned {
		title = "• " + title
	}
	line := colorGlyphs[p.ColorStatus] + " " + title

	if done, total := view.DoneCount(m.st.ProjectTasks(p.ID)); total > 0 {
		line += dimStyle.Render(fmt.Sprintf(" %d/%d", done, total))
	}
	switch view.DueBucket(p.Deadline, now, dueSoon) {
	case view.BucketOverdue:
		line += " " + noticeErrorStyle.Render("!")
	case view.BucketToday:
		line += " " + lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("◆")
	case view.BucketSoon:
		line += dimStyle.Render(" ◇")
	}

	style := cardStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.MaxWidth(width).Render(line)
}

func (m Model) taskView() string {
	p, ok := m.selected()
	if !ok {
		return ""
	}
	tasks := m.st.ProjectTasks(p.ID)
	lines := []string{columnTitleStyle.Render(p.Title)}
	if p.Description != nil && *p.Description != "" {
		lines = append(lines, dimStyle.Render(*p.Description))
	}
	if url := view.FirstURL(p.Title + " " + deref(p.Description)); url != "" {
		lines = append(lines, dimStyle.Render(url))
	}
	for i, t := range tasks {
		box := "[ ]"
		if t.Done {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, t.Text)
		if i == m.taskIdx {
			line = cardSelectedStyle.Render(line)
		} else {
			line = cardStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(tasks) == 0 {
		lines = append(lines, dimStyle.Render("no tasks"))
	}
	return taskPaneStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) inputView() string {
	label := map[mode]string{
		modeRename:  "title",
		modeAddTask: "new task",
		modeSearch:  "search",
		modeDueDays: "due-soon days",
	}[m.mode]
	return fmt.Sprintf(" %s: %s", label, m.input.View())
}

func (m Model) footerView() string {
	var parts []string
	for _, n := range m.st.Notices() {
		switch n.Kind {
		case store.NoticeError:
			parts = append(parts, noticeErrorStyle.Render(n.Message))
		default:
			parts = append(parts, noticeSuccessStyle.Render(n.Message))
		}
	}
	parts = append(parts, m.help.View(keys))
	return strings.Join(parts, "\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
