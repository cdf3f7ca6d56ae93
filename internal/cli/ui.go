package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/partstack/partstack/pkg/part"
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

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
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

	styleInStock    = lipgloss.NewStyle().Foreground(colorGreen)
	styleOutOfStock = lipgloss.NewStyle().Foreground(colorRed)
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

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Part Display
// =============================================================================

// formatPartLine renders one search result as a single aligned line.
func formatPartLine(p part.NormalizedPart) string {
	stockStyle := styleInStock
	if p.Stock == 0 {
		stockStyle = styleOutOfStock
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("%-14s", p.PartNumber)))
	b.WriteString(StyleValue.Render(fmt.Sprintf(" %-28s", truncate(p.MfrPartNumber, 28))))
	b.WriteString(StyleDim.Render(fmt.Sprintf(" %-20s", truncate(p.Manufacturer, 20))))
	b.WriteString(stockStyle.Render(fmt.Sprintf(" %8d", p.Stock)))
	if p.Price != nil {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  $%.4f", *p.Price)))
	}
	return b.String()
}

// printPartDetail renders a full part record as key/value lines.
func printPartDetail(p *part.NormalizedPart) {
	fmt.Println(StyleTitle.Render(p.PartNumber))
	printKeyValue("mpn", p.MfrPartNumber)
	printKeyValue("manufacturer", p.Manufacturer)
	printKeyValue("description", p.Description)
	if p.Category != "" {
		printKeyValue("category", p.Category)
	}
	printKeyValue("stock", fmt.Sprintf("%d", p.Stock))
	if p.Price != nil {
		printKeyValue("price", fmt.Sprintf("$%.4f %s", *p.Price, p.Currency))
	}
	if p.Lifecycle != "" {
		printKeyValue("lifecycle", p.Lifecycle)
	}
	if p.DatasheetURL != "" {
		fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleLink.Render(p.DatasheetURL))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
