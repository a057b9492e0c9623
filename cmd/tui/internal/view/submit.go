package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

// SubmitModel is the new payment request form.
type SubmitModel struct {
	CommonModel
	engine *workflow.Engine

	form   *huh.Form
	status string

	txType    record.Type
	requester string
	project   string
	category  string
	purpose   string
	detail    string
	amount    string
}

func NewSubmitModel(engine *workflow.Engine, requester string) SubmitModel {
	m := SubmitModel{
		engine:    engine,
		txType:    record.TypeExpense,
		requester: requester,
	}
	m.form = m.newForm()

	return m
}

func (m *SubmitModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[record.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", record.TypeExpense),
					huh.NewOption("Income", record.TypeIncome),
				).
				Value(&m.txType),
			huh.NewInput().Key("requester").Title("Requester").Value(&m.requester).Validate(required("requester")),
			huh.NewInput().Key("project").Title("Project").Value(&m.project).Validate(required("project")),
			huh.NewInput().Key("category").Title("Category").Value(&m.category),
		),
		huh.NewGroup(
			huh.NewInput().Key("purpose").Title("Purpose").Value(&m.purpose).Validate(required("purpose")),
			huh.NewText().Key("detail").Title("Detail").Value(&m.detail),
			huh.NewInput().
				Key("amount").
				Title("Requested amount").
				Description("Expenses are negative, incomes positive").
				Value(&m.amount).
				Validate(func(s string) error {
					_, err := schema.ParseAmount(s)
					return err
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m SubmitModel) Title() string     { return "New Request" }
func (m SubmitModel) ShortHelp() string { return "Tab: next field | Esc: back" }

func (m SubmitModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m SubmitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	case submitResultMsg:
		if msg.err != nil {
			m.status = errorStyle(msg.err.Error())
		} else {
			m.status = okStyle(fmt.Sprintf("Submitted %s", msg.record.ID))
		}

		// Keep the header fields for the next request.
		m.txType, _ = m.form.Get("type").(record.Type)
		m.requester = m.form.GetString("requester")
		m.project = m.form.GetString("project")
		m.category = m.form.GetString("category")
		m.purpose, m.detail, m.amount = "", "", ""
		m.form = m.newForm()

		return m, m.form.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.submitCmd()
}

func (m SubmitModel) View() string {
	content := m.form.View()
	if m.status != "" {
		content = m.status + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type submitResultMsg struct {
	record record.Record
	err    error
}

func (m SubmitModel) submitCmd() tea.Cmd {
	// Fields write through pointers into the model the form was built from, so read them
	// back from the form.
	txType, _ := m.form.Get("type").(record.Type)
	amount, _ := schema.ParseAmount(m.form.GetString("amount"))
	draft := workflow.Draft{
		Type:            txType,
		Category:        m.form.GetString("category"),
		Requester:       m.form.GetString("requester"),
		Project:         m.form.GetString("project"),
		Purpose:         m.form.GetString("purpose"),
		Detail:          m.form.GetString("detail"),
		RequestedAmount: amount,
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		r, err := m.engine.Submit(ctx, draft)

		return submitResultMsg{record: r, err: err}
	}
}
