package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

// SummaryModel shows dashboard totals and status counts.
type SummaryModel struct {
	CommonModel
	engine *workflow.Engine

	summary workflow.Summary
	loading bool
	err     error
}

func NewSummaryModel(engine *workflow.Engine) SummaryModel {
	return SummaryModel{engine: engine, loading: true}
}

func (m SummaryModel) Title() string     { return "Summary" }
func (m SummaryModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	case loadSummaryMsg:
		m.loading = false
		m.summary = msg.summary
		m.err = msg.err
	}

	return m, nil
}

func (m SummaryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	c := m.summary.Counts

	var b strings.Builder

	if t := m.summary.Totals; t != nil {
		fmt.Fprintf(&b, "Income          %15s\n", FormatAmount(t.Income))
		fmt.Fprintf(&b, "Expense         %15s\n", FormatAmount(t.Expense))
		fmt.Fprintf(&b, "Issued pending  %15s\n", FormatAmount(t.IssuedPending))
		fmt.Fprintf(&b, "Available       %15s\n\n", activeStyle(FormatAmount(t.Available)))
	}

	fmt.Fprintf(&b, "Requests %d: %d pending, %d approved, %d declined, %d issued, %d liquidated\n\n",
		c.Total, c.Pending, c.Approved, c.Declined, c.Issued, c.Liquidated)

	for _, s := range record.Stages {
		fmt.Fprintf(&b, "  %-22s %d\n", stageTitle(s), c.ByStage[s])
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

type loadSummaryMsg struct {
	summary workflow.Summary
	err     error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		summary, err := m.engine.Summarize(ctx, "")

		return loadSummaryMsg{summary: summary, err: err}
	}
}
