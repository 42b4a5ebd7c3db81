package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout is where status output goes. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings and highlight titles.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders the focused element.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

// status is one kind of status line: a coloured marker and the message.
type status struct {
	marker string
	style  lipgloss.Style
}

var (
	statusOK    = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusFail  = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusInfo  = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
	spinnerMark = lipgloss.NewStyle().Foreground(colorCyan)

	cacheHitStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	cacheMissStyle = lipgloss.NewStyle().Foreground(colorGray)
	commandStyle   = lipgloss.NewStyle().Foreground(colorBlue)
	keyStyle       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

func (s status) print(format string, args ...any) {
	fmt.Fprintln(stdout, s.style.Render(s.marker)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusOK.print(format, args...) }
func printError(format string, args ...any)   { statusFail.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the location of a written file or uploaded object.
func printFile(location string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(location))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints the network size and whether the result came from the
// cache, e.g. "12 nodes · 30 links · cached".
func printStats(nodes, links int, cached bool) {
	var parts []string
	if nodes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodes)))
	}
	if links > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d links", links)))
	}
	if cached {
		parts = append(parts, cacheHitStyle.Render("cached"))
	} else {
		parts = append(parts, cacheMissStyle.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+commandStyle.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }
