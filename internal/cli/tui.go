package cli

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	borderStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// level is one horizontal band of a laid-out diagram, top first.
type level struct {
	centerY  float64
	entities []*diagram.Entity
}

// levelsOf groups the entities of a laid-out diagram by vertical center and
// orders each band left to right.
func levelsOf(d *diagram.Diagram) []level {
	byCenter := make(map[float64][]*diagram.Entity)
	for _, e := range d.Entities() {
		cy := math.Round(e.Bounds.Y + e.Bounds.Height/2)
		byCenter[cy] = append(byCenter[cy], e)
	}

	levels := make([]level, 0, len(byCenter))
	for cy, ents := range byCenter {
		slices.SortFunc(ents, func(a, b *diagram.Entity) int { return cmp.Compare(a.Bounds.X, b.Bounds.X) })
		levels = append(levels, level{centerY: cy, entities: ents})
	}
	slices.SortFunc(levels, func(a, b level) int { return cmp.Compare(a.centerY, b.centerY) })
	return levels
}

// degrees counts outgoing and incoming relationships per entity ID.
func degrees(d *diagram.Diagram) (out, in map[string]int) {
	out, in = make(map[string]int), make(map[string]int)
	for _, r := range d.Relationships() {
		out[r.From.ID]++
		in[r.To.ID]++
	}
	return out, in
}

// =============================================================================
// LevelModel - interactive level browser
// =============================================================================

// LevelModel is the bubbletea model of the inspect command.
type LevelModel struct {
	Name   string
	Stats  layout.Stats
	Levels []level
	Cursor int
	Width  int

	out, in map[string]int
}

// NewLevelModel creates a browser for a laid-out diagram.
func NewLevelModel(d *diagram.Diagram, stats layout.Stats) LevelModel {
	out, in := degrees(d)
	return LevelModel{Name: d.Name, Stats: stats, Levels: levelsOf(d), out: out, in: in}
}

func (m LevelModel) Init() tea.Cmd {
	return nil
}

func (m LevelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Levels)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Levels)-1, 0)
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

func (m LevelModel) View() string {
	var b strings.Builder

	title := "Layout"
	if m.Name != "" {
		title += " · " + m.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(statsLine(m.Stats, false))
	b.WriteString("\n\n")

	for i, lv := range m.Levels {
		line := fmt.Sprintf("level %d  y=%-6.0f %d entities", len(m.Levels)-1-i, lv.centerY, len(lv.entities))
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(dimStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(m.Levels) > 0 {
		b.WriteString("\n")
		b.WriteString(m.levelTable(m.Levels[m.Cursor]))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("↑/↓ level  g/G first/last  q quit"))
	return b.String()
}

func (m LevelModel) levelTable(lv level) string {
	rows := make([][]string, 0, len(lv.entities))
	for _, e := range lv.entities {
		rows = append(rows, []string{
			e.String(),
			fmt.Sprintf("%.0f", e.Bounds.X),
			fmt.Sprintf("%.0f", e.Bounds.Y),
			fmt.Sprintf("%.0f×%.0f", e.Bounds.Width, e.Bounds.Height),
			fmt.Sprint(m.out[e.ID]),
			fmt.Sprint(m.in[e.ID]),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Entity", "X", "Y", "Size", "Out", "In").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	if m.Width > 0 {
		t = t.Width(min(m.Width, 100))
	}
	return t.Render()
}
