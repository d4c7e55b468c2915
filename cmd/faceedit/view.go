package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"facestudio/element"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("faceedit  %s", m.path)))
	b.WriteString("\n\n")

	ids := m.layers()
	rows := m.height - 5
	if rows < 1 {
		rows = len(ids)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	if len(ids) == 0 {
		b.WriteString(dimStyle.Render("  no elements"))
		b.WriteString("\n")
	}
	for i := start; i < len(ids) && i < start+rows; i++ {
		line := "  " + m.describe(ids[i])
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m model) describe(id string) string {
	o := m.object(id)
	if o == nil {
		return id
	}
	s := fmt.Sprintf("%-14s (%4.0f,%4.0f)", o.EleType(), o.Float("left"), o.Float("top"))
	t := element.EleType(o.EleType())
	switch {
	case t == element.TypeBattery || t == element.TypeMoveBar:
		s += fmt.Sprintf("  level %.2g", o.Float("level"))
	case t == element.TypeGoalBar || t == element.TypeGoalArc:
		s += fmt.Sprintf("  progress %.2g", o.Float("progress"))
	}
	if p := o.String("dataProperty"); p != "" {
		s += "  " + dimStyle.Render(p)
	} else if p := o.String("goalProperty"); p != "" {
		s += "  " + dimStyle.Render(p)
	}
	return s
}

func (m model) statusLine() string {
	undo, redo := m.studio.History().Len()
	status := fmt.Sprintf("Elements: %d | Undo: %d Redo: %d", len(m.studio.Layers()), undo, redo)
	if m.studio.TimeUpdatesRunning() {
		status += " | LIVE"
	}
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + successStyle.Render(m.successMessage)
	default:
		status += " | ? for help | q to quit"
	}
	return status
}

func (m model) helpView() string {
	helpLines := []string{
		"faceedit Help",
		"=============",
		"",
		"Layers:",
		"-------",
		"  j/↓/k/↑          Select element (list is front to back)",
		"  ]                Bring forward",
		"  [                Send backward",
		"  d                Delete element",
		"",
		"Editing:",
		"--------",
		"  +/-              Step battery or move bar level, goal progress",
		"  c                Copy element config to clipboard",
		"  v                Paste element config from clipboard",
		"  u/Ctrl+Z         Undo",
		"  r/Ctrl+Y         Redo",
		"",
		"Files:",
		"------",
		"  s                Save design",
		"  p                Export PNG preview",
		"",
		"Other:",
		"------",
		"  t                Toggle live time updates",
		"  ?                Toggle this help",
		"  q/Ctrl+C         Quit",
	}
	return strings.Join(helpLines, "\n")
}
