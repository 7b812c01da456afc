package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// SnapshotListModel - Interactive snapshot file selection
// =============================================================================

// snapshotChoice is one selectable snapshot file with preview counts. A file
// that failed to decode carries its error and is shown dimmed.
type snapshotChoice struct {
	Path       string
	Name       string
	Sources    int
	Records    int
	CapturedAt time.Time
	Err        error
}

// SnapshotSelection holds the result of the snapshot selection.
type SnapshotSelection struct {
	Path string
}

// SnapshotListModel is the bubbletea model for interactive snapshot selection.
type SnapshotListModel struct {
	Choices  []snapshotChoice
	Cursor   int
	Selected *SnapshotSelection
	Height   int
	Offset   int
}

// NewSnapshotListModel creates a new snapshot list model.
func NewSnapshotListModel(choices []snapshotChoice) SnapshotListModel {
	return SnapshotListModel{
		Choices: choices,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m SnapshotListModel) Init() tea.Cmd {
	return nil
}

func (m SnapshotListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			choice := m.Choices[m.Cursor]
			if choice.Err != nil {
				return m, nil
			}
			m.Selected = &SnapshotSelection{Path: choice.Path}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SnapshotListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Snapshot"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Choices) {
		end = len(m.Choices)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		ch := m.Choices[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		sources, records, captured := "—", "—", "—"
		if ch.Err == nil {
			sources = fmt.Sprintf("%d", ch.Sources)
			records = fmt.Sprintf("%d", ch.Records)
			captured = formatRelativeTime(ch.CapturedAt)
		}

		rows = append(rows, []string{cursor, ch.Name, sources, records, captured})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Snapshot", "Sources", "Records", "Captured").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Choices) {
				return lipgloss.NewStyle()
			}
			ch := m.Choices[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 4 {
				if isCurrent {
					base = base.Foreground(colorGray)
				} else {
					base = base.Foreground(colorDim)
				}
			}

			if ch.Err != nil {
				if isCurrent {
					return base.Foreground(colorDim).Bold(true)
				}
				return base.Foreground(colorDim)
			}
			if isCurrent {
				if col != 4 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Choices))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
