package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/corank/pkg/store"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, optimal
	colorYellow = lipgloss.Color("220") // warnings, heuristic
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleBucket   = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// formatConsensus renders buckets one per line, numbered from 1, with tied
// elements joined by " = ".
func formatConsensus(buckets [][]string) string {
	var b strings.Builder
	width := len(fmt.Sprint(len(buckets)))
	for i, bucket := range buckets {
		fmt.Fprintf(&b, "%s %s\n",
			StyleDim.Render(fmt.Sprintf("%*d.", width, i+1)),
			styleBucket.Render(strings.Join(bucket, " = ")))
	}
	return b.String()
}

// formatStats renders a one-line summary of a run.
func formatStats(run *store.Run, cached bool) string {
	elements := 0
	for _, c := range run.Components {
		elements += c.Size
	}
	parts := []string{
		fmt.Sprintf("%d elements", elements),
		fmt.Sprintf("%d rankings", len(run.Rankings)),
		fmt.Sprintf("%d components", len(run.Components)),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line + StyleDim.Render(" · ") + statusStyle.Render(status)
}

// componentTable renders the non-trivial components of a run. Singletons
// are summarized in a footer line.
func componentTable(comps []store.ComponentSummary) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := [][]string{}
	singletons := 0
	for _, c := range comps {
		if c.Kind == "singleton" {
			singletons++
			continue
		}
		rows = append(rows, []string{
			fmt.Sprint(c.Index), c.Kind, fmt.Sprint(c.Size), c.Route, dash(c.Method),
			(time.Duration(c.DurationUS) * time.Microsecond).String(),
		})
	}
	if len(rows) == 0 {
		return StyleDim.Render(fmt.Sprintf("  %d singleton components", singletons))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Kind", "Size", "Route", "Method", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && rows[row][3] == "heuristic" {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})
	return t.Render() + "\n" + StyleDim.Render(fmt.Sprintf("  + %d singleton components", singletons))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
