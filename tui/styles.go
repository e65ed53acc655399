package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type styles struct {
	header  lipgloss.Style
	pending lipgloss.Style
	body    lipgloss.Style
	author  lipgloss.Style
	empty   lipgloss.Style
	help    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("63")).Padding(0, 1),
		pending: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("63")).Padding(0, 1),
		body:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		author:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(2),
		empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (s styles) status(level zerolog.Level) lipgloss.Style {
	switch level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return s.err
	case zerolog.WarnLevel:
		return s.warn
	default:
		return s.help
	}
}
