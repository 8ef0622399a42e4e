package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/protocomposer/pkg/version"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Release Channels
// =============================================================================

// channel classifies a release for display in tables and the picker.
type channel int

const (
	channelStable channel = iota
	channelPreRelease
	channelLatest
)

func channelOf(v version.Spec, latest *version.Spec) channel {
	switch {
	case latest != nil && v.Version != nil && v.Version.Equal(latest.Version):
		return channelLatest
	case !v.IsStable():
		return channelPreRelease
	}
	return channelStable
}

func (c channel) label() string {
	switch c {
	case channelLatest:
		return version.LatestAlias
	case channelPreRelease:
		return "pre-release"
	}
	return "stable"
}

func (c channel) style() lipgloss.Style {
	switch c {
	case channelLatest:
		return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	case channelPreRelease:
		return lipgloss.NewStyle().Foreground(colorYellow)
	}
	return lipgloss.NewStyle().Foreground(colorWhite)
}

// =============================================================================
// Status Output
// =============================================================================

// stdout receives human-facing status lines. Logs go to stderr.
var stdout io.Writer = os.Stdout

type status struct {
	icon  string
	color lipgloss.Color
}

var (
	statusSuccess = status{"✓", colorGreen}
	statusError   = status{"✗", colorRed}
	statusInfo    = status{"›", colorGray}
)

func (s status) print(format string, args ...any) {
	icon := lipgloss.NewStyle().Foreground(s.color).Render(s.icon)
	fmt.Fprintln(stdout, icon+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a file the command wrote.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}
