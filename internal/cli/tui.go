package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/camalot/fyles/pkg/buildinfo"
	"github.com/camalot/fyles/pkg/pipeline"
	"github.com/camalot/fyles/pkg/stylesheet"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
)

// =============================================================================
// InspectModel - Interactive rule and group browser
// =============================================================================

// inspectTab selects the table shown by the inspector.
type inspectTab int

const (
	tabRules inspectTab = iota
	tabFallbacks
	tabGroups
)

var tabNames = []string{"Rules", "Fallbacks", "Groups"}

// InspectModel is the bubbletea model for browsing a rendered run.
type InspectModel struct {
	Namespace string
	Stats     pipeline.Stats
	Tab       inspectTab
	Cursor    int
	Offset    int
	Height    int

	tables [][][]string
}

// NewInspectModel creates an inspector over a rendered state.
func NewInspectModel(st *pipeline.State) InspectModel {
	return InspectModel{
		Namespace: st.Options.Namespace,
		Stats:     st.Stats,
		Height:    15,
		tables: [][][]string{
			ruleRows(st.Sheet.Rules),
			ruleRows(st.Sheet.Fallbacks),
			groupRows(st),
		},
	}
}

func (m InspectModel) rows() [][]string {
	return m.tables[m.Tab]
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.Tab = (m.Tab + 1) % inspectTab(len(tabNames))
			m.Cursor, m.Offset = 0, 0
		case "shift+tab", "left", "h":
			m.Tab = (m.Tab + inspectTab(len(tabNames)) - 1) % inspectTab(len(tabNames))
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 9
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Namespace))
	b.WriteString(listDimStyle.Render("  " + appName + " " + buildinfo.Short()))
	b.WriteString("\n")
	for i, name := range tabNames {
		label := fmt.Sprintf("%s (%d)", name, len(m.tables[i]))
		if inspectTab(i) == m.Tab {
			b.WriteString(tabActiveStyle.Render(label))
		} else {
			b.WriteString(listDimStyle.Render(label))
		}
		b.WriteString("   ")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ switch  ↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to show"))
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(rows) {
		end = len(rows)
	}
	visible := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		visible = append(visible, rows[i])
	}

	cursor := m.Cursor - m.Offset
	t := newTable(headers(m.Tab), visible, func(row int) lipgloss.Style {
		if row == cursor {
			return listSelectedStyle
		}
		return lipgloss.NewStyle()
	})
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(rows))))

	return b.String()
}

// =============================================================================
// Tables
// =============================================================================

func headers(tab inspectTab) []string {
	if tab == tabGroups {
		return []string{"Survivor", "Members", "Hash"}
	}
	return []string{"Selector", "Position", "Size"}
}

// newTable builds a bordered table; style picks the style of body rows.
func newTable(headers []string, rows [][]string, style func(row int) lipgloss.Style) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return style(row)
		})
}

func ruleRows(rules []stylesheet.Rule) [][]string {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{
			r.Selector(),
			stylesheet.Coord(r.X) + " " + stylesheet.Coord(r.Y),
			fmt.Sprintf("%dpx", r.Size),
		}
	}
	return rows
}

func groupRows(st *pipeline.State) [][]string {
	rows := make([][]string, len(st.Groups))
	for i, g := range st.Groups {
		members := make([]string, len(g.Members))
		for j, k := range g.Members {
			members[j] = k.String()
		}
		rows[i] = []string{g.Survivor.String(), strings.Join(members, ", "), shortHash(g.Hash)}
	}
	return rows
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
