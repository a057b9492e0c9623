package view

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestCommonModel_BodyHeight(t *testing.T) {
	var c CommonModel

	assert.Equal(t, 5, c.BodyHeight(5))

	c.Resize(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, c.Width)
	assert.Equal(t, 30, c.BodyHeight(5))

	c.Resize(tea.WindowSizeMsg{Width: 80, Height: 12})
	assert.Equal(t, 5, c.BodyHeight(5))
}
