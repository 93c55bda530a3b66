// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	HostIcon    = "🎙️"
	PlayerIcon  = "🙂"
	MeIcon      = "⭐"
	CorrectIcon = "✅"
	WrongIcon   = "❌"
)

// AnswerKeys 选项按键，与选项顺序一一对应
var AnswerKeys = []string{"A", "B", "C", "D"}

// Lipgloss Styles
var (
	DocStyle       = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle    = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	CorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	SelectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	CountdownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)
