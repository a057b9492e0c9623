package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const storeTimeout = 15 * time.Second

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders whole currency units with thousands separators, e.g. -500,000.
func FormatAmount(n int64) string {
	return amountPrinter.Sprintf("%d", n)
}

// FormatOptionalAmount renders a missing amount as a dash.
func FormatOptionalAmount(n *int64) string {
	if n == nil {
		return "-"
	}

	return FormatAmount(*n)
}

// FormatDate formats a time into YYYY-MM-DD; nil and zero times render empty.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}

// StoreCtx returns a context with a standard timeout for engine calls. Sheet-backed stores
// can be slow, and a transition also waits out its claim window.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}

func okStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(s)
}
