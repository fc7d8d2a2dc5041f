package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// Session identifies the signed-in user. Every service call is scoped to OwnerID.
type Session struct {
	OwnerID uuid.UUID
	Name    string
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
