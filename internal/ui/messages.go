// Package ui provides message printing utilities.
package ui

import (
	"fmt"
	"strings"
)

// Println prints an empty line.
func Println() {
	fmt.Println()
}

// PrintSuccess prints a success message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(SuccessStyle.Render("✓ " + msg))
}

// PrintError prints an error message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(ErrorStyle.Render("✗ " + msg))
}

// PrintWarning prints a warning message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(WarningStyle.Render("⚠ " + msg))
}

// PrintInfo prints an informational message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(InfoStyle.Render(msg))
}

// PrintDim prints a dimmed message.
//
// Parameters:
//   - format: Printf format string
//   - args: Printf arguments
func PrintDim(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(DimStyle.Render(msg))
}

// PrintLink prints a labeled URL.
//
// Parameters:
//   - label: The link label
//   - url: The URL
func PrintLink(label, url string) {
	fmt.Printf("%s %s\n", DimStyle.Render(label+":"), LinkStyle.Render(url))
}

// PrintTableHeader prints a table header row.
//
// Parameters:
//   - columns: Column names
func PrintTableHeader(columns ...string) {
	var cells []string
	for _, col := range columns {
		cells = append(cells, TableHeaderStyle.Render(col))
	}
	fmt.Println(strings.Join(cells, ""))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 60)))
}

// PrintTableRow prints a table data row.
//
// Parameters:
//   - values: Cell values
func PrintTableRow(values ...string) {
	var cells []string
	for _, val := range values {
		cells = append(cells, TableCellStyle.Render(val))
	}
	fmt.Println(strings.Join(cells, ""))
}
