package cmd

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const logoRaw = `


███████╗███████╗ █████╗ ██╗     ███████╗██████╗
██╔════╝██╔════╝██╔══██╗██║     ██╔════╝██╔══██╗
███████╗█████╗  ███████║██║     █████╗  ██████╔╝
╚════██║██╔══╝  ██╔══██║██║     ██╔══╝  ██╔══██╗
███████║███████╗██║  ██║███████╗███████╗██║  ██║
╚══════╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═╝
`

var (
	gradientStart = "#00c2a8" // teal
	gradientEnd   = "#3d5afe" // indigo
)

func renderLogo() string {
	lines := strings.Split(strings.TrimPrefix(logoRaw, "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}

	// Widest line in runes; the block characters are multi-byte
	maxWidth := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxWidth {
			maxWidth = n
		}
	}

	startColor, _ := colorful.Hex(gradientStart)
	endColor, _ := colorful.Hex(gradientEnd)

	var result strings.Builder
	for _, line := range lines {
		col := 0
		for _, char := range line {
			i := col
			col++
			if char == ' ' {
				result.WriteRune(char)
				continue
			}
			// Calculate gradient position based on horizontal position
			t := float64(i) / float64(maxWidth)
			c := startColor.BlendLuv(endColor, t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
			result.WriteString(style.Render(string(char)))
		}
		result.WriteString("\n")
	}

	return result.String()
}

// logo is rendered once at startup
var logo = renderLogo()
