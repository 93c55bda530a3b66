// Package ui provides the main entry point for the UI.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/quiz-party/internal/ui/model"
)

// NewOnlineModel creates a new OnlineModel connected to one room.
func NewOnlineModel(serverURL string) *model.OnlineModel {
	return model.NewOnlineModel(serverURL)
}

// Run 启动终端界面，阻塞直到退出
func Run(serverURL string) error {
	p := tea.NewProgram(NewOnlineModel(serverURL), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
