package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackforge/pkg/feature"
	"github.com/matzehuels/stackforge/pkg/resolver"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for refusals and failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconOn      = "●"
	iconOff     = "○"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints catalog statistics on a single line.
func printStats(features, edges, languages, frameworks int) {
	parts := []string{
		fmt.Sprintf("%d features", features),
		fmt.Sprintf("%d requirements", edges),
		fmt.Sprintf("%d languages", languages),
		fmt.Sprintf("%d frameworks", frameworks),
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// =============================================================================
// Resolution Output
// =============================================================================

// printResult reports the outcome of a mutation: the refusal, or every
// forced change with its reason.
func printResult(m resolver.Mutation, res resolver.Result) {
	if res.Rejected() {
		printError("%s", StyleError.Render(res.Rejection.String()))
		return
	}
	printSuccess("%s", m)
	for _, c := range res.Changes {
		printChange(c)
	}
	if s := res.Summary(); s != "" {
		printDetail("%s", s)
	}
}

func printChange(c resolver.Change) {
	icon, style := iconOff, StyleWarning
	if c.To {
		icon, style = iconOn, StyleSuccess
	}
	fmt.Println("  " + style.Render(icon) + " " + StyleValue.Render(string(c.Feature)) + " " + StyleDim.Render(c.Reason()))
}

// =============================================================================
// Tables
// =============================================================================

// featureRow is one line of the feature table.
type featureRow struct {
	Info      feature.Info
	Requires  []feature.Key
	Supported *bool // nil when no target was given
	Enabled   *bool // nil when no project was given
}

// renderFeatureTable renders rows as a bordered table. Support and state
// columns only appear when the rows carry them.
func renderFeatureTable(rows []featureRow) string {
	withSupport := len(rows) > 0 && rows[0].Supported != nil
	withState := len(rows) > 0 && rows[0].Enabled != nil

	headers := []string{}
	if withState {
		headers = append(headers, "")
	}
	headers = append(headers, "Feature", "Label", "Category", "Requires")
	if withSupport {
		headers = append(headers, "Supported")
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		var line []string
		if withState {
			line = append(line, onOffIcon(*r.Enabled))
		}
		line = append(line, string(r.Info.Key), r.Info.Label, r.Info.Category, joinKeys(r.Requires, "—"))
		if withSupport {
			line = append(line, yesNo(*r.Supported))
		}
		data = append(data, line)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			r := rows[row]
			if r.Supported != nil && !*r.Supported {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if r.Enabled != nil && *r.Enabled {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func joinKeys(keys []feature.Key, empty string) string {
	if len(keys) == 0 {
		return empty
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func onOffIcon(on bool) string {
	if on {
		return iconOn
	}
	return iconOff
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
