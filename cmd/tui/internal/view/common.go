package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// chromeHeight is the space taken by the title, help line, status line and padding.
const chromeHeight = 10

// CommonModel tracks the terminal size for the screens that embed it.
type CommonModel struct {
	Width  int
	Height int
}

// Resize records the new terminal size.
func (c *CommonModel) Resize(msg tea.WindowSizeMsg) {
	c.Width, c.Height = msg.Width, msg.Height
}

// BodyHeight is the number of lines left for a screen's content, never less than floor.
func (c CommonModel) BodyHeight(floor int) int {
	return max(c.Height-chromeHeight, floor)
}

// BackMsg returns to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
