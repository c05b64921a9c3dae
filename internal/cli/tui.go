package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/corank/pkg/parcons"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	matrixCellStyle = lipgloss.NewStyle().Width(7).Align(lipgloss.Right)
)

var kindStyles = map[parcons.Kind]lipgloss.Style{
	parcons.Singleton:  lipgloss.NewStyle().Foreground(colorGray),
	parcons.TiedBlock:  lipgloss.NewStyle().Foreground(colorGreen),
	parcons.SubProblem: lipgloss.NewStyle().Foreground(colorCyan),
}

// matrixLimit is the largest component whose cost matrix is drawn.
const matrixLimit = 8

// ComponentBrowser is the bubbletea model behind `corank inspect`: a list of
// components in emission order with a detail view per component.
type ComponentBrowser struct {
	Decomp  *parcons.Decomposition
	Reports []parcons.Report // optional, set when the dataset was solved

	Cursor   int
	Offset   int
	Height   int
	Detail   bool
	HideTiny bool // hide singletons

	visible []int // indexes into Decomp.Components
}

// NewComponentBrowser creates a browser over d. reports may be nil.
func NewComponentBrowser(d *parcons.Decomposition, reports []parcons.Report) ComponentBrowser {
	m := ComponentBrowser{Decomp: d, Reports: reports, Height: 15}
	m.filter()
	return m
}

func (m *ComponentBrowser) filter() {
	m.visible = m.visible[:0]
	for i, c := range m.Decomp.Components {
		if m.HideTiny && c.Kind == parcons.Singleton {
			continue
		}
		m.visible = append(m.visible, i)
	}
	m.Cursor, m.Offset = 0, 0
}

func (m ComponentBrowser) Init() tea.Cmd {
	return nil
}

func (m ComponentBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if !m.Detail {
				return m, tea.Quit
			}
			m.Detail = false
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.visible) > 0 {
				m.Detail = !m.Detail
			}
		case "s":
			m.HideTiny = !m.HideTiny
			m.Detail = false
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// Selected returns the component under the cursor.
func (m ComponentBrowser) Selected() (parcons.Component, bool) {
	if len(m.visible) == 0 {
		return parcons.Component{}, false
	}
	return m.Decomp.Components[m.visible[m.Cursor]], true
}

func (m ComponentBrowser) View() string {
	if m.Detail {
		return m.detailView()
	}
	var b strings.Builder
	d := m.Decomp
	b.WriteString(StyleTitle.Render("Decomposition"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d elements · %d rankings · %d singletons · %d tied blocks · %d sub-problems",
		d.Index.N(), d.Index.M(), d.Count(parcons.Singleton), d.Count(parcons.TiedBlock), d.Count(parcons.SubProblem))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  s toggle singletons  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := d.Components[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		route, method := "", ""
		if rep, ok := m.report(c.Index); ok {
			route, method = rep.Route.String(), rep.Method
		}
		rows = append(rows, []string{cursor, fmt.Sprint(c.Index), c.Kind.String(), fmt.Sprint(c.Size()),
			dash(route), dash(method), preview(d, c, 40)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Kind", "Size", "Route", "Method", "Elements").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			style := kindStyles[d.Components[m.visible[idx]].Kind]
			if idx == m.Cursor {
				style = style.Bold(true)
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.visible)), len(m.visible))))
	return b.String()
}

func (m ComponentBrowser) detailView() string {
	c, _ := m.Selected()
	d := m.Decomp
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Component %d", c.Index)))
	b.WriteString(" " + kindStyles[c.Kind].Render(c.Kind.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎/esc back  q quit"))
	b.WriteString("\n\n")

	if rep, ok := m.report(c.Index); ok {
		fmt.Fprintf(&b, "%s %s via %s in %s\n", StyleDim.Render("solved"),
			rep.Route, dash(rep.Method), rep.Duration.Round(time.Microsecond))
		if rep.PrimaryErr != nil {
			fmt.Fprintf(&b, "%s %v\n", StyleWarning.Render("primary failed:"), rep.PrimaryErr)
		}
		names := make([]string, len(rep.Buckets))
		for i, bucket := range rep.Buckets {
			names[i] = fmt.Sprint(bucket)
		}
		fmt.Fprintf(&b, "%s %s\n\n", StyleDim.Render("order"), strings.Join(names, " "))
	}

	if c.Size() > matrixLimit {
		b.WriteString(preview(d, c, 400))
		b.WriteString("\n\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("cost matrix omitted above %d elements", matrixLimit)))
		return b.String()
	}
	b.WriteString(costMatrix(d, c))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("row before column (tied in parentheses)"))
	return b.String()
}

// costMatrix renders the before costs of every ordered pair in c with the
// tied cost alongside.
func costMatrix(d *parcons.Decomposition, c parcons.Component) string {
	var b strings.Builder
	b.WriteString(matrixCellStyle.Render(""))
	for _, id := range c.IDs {
		b.WriteString(matrixCellStyle.Render(truncate(string(d.Index.Element(id)), 6)))
	}
	b.WriteString("\n")
	for _, row := range c.IDs {
		b.WriteString(matrixCellStyle.Render(truncate(string(d.Index.Element(row)), 6)))
		for _, col := range c.IDs {
			cell := "·"
			if row != col {
				cost := d.Costs.At(row, col)
				cell = fmt.Sprintf("%g(%g)", cost.Before, cost.Tied)
			}
			b.WriteString(matrixCellStyle.Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ComponentBrowser) report(index int) (parcons.Report, bool) {
	if index < len(m.Reports) {
		return m.Reports[index], true
	}
	return parcons.Report{}, false
}

// preview lists a component's elements, cut to about limit characters.
func preview(d *parcons.Decomposition, c parcons.Component, limit int) string {
	names := make([]string, len(c.IDs))
	for i, id := range c.IDs {
		names[i] = string(d.Index.Element(id))
	}
	return truncate(strings.Join(names, ", "), limit)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
