package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type queueState int

const (
	queueStateBrowse queueState = iota
	queueStatePayment
	queueStateLiquidation
)

// QueueModel is the approver console: records filtered by stage with the lifecycle actions
// bound to single keys.
type QueueModel struct {
	CommonModel
	engine *workflow.Engine

	state   queueState
	table   table.Model
	records []record.Record
	form    *huh.Form

	// 0 is "all", otherwise record.Stages[stageIdx-1].
	stageIdx int

	methods []string
	loading bool
	err     error
	status  string

	// Form bindings
	formMethod  string
	formAmount  string
	formInvoice string
}

func NewQueueModel(engine *workflow.Engine, methods []string) QueueModel {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Stage", Width: 22},
		{Title: "Requester", Width: 18},
		{Title: "Project", Width: 16},
		{Title: "Purpose", Width: 28},
		{Title: "Requested", Width: 12},
		{Title: "Liquidated", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return QueueModel{
		engine:   engine,
		table:    t,
		methods:  methods,
		stageIdx: 1,
		loading:  true,
	}
}

func (m QueueModel) Title() string { return "Approval Queue" }

func (m QueueModel) ShortHelp() string {
	if m.state != queueStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | s: stage | a: approve | x: decline | p: pay | l: liquidate | r: refresh"
}

func (m QueueModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m QueueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadQueueMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.records = msg.records
			m.refreshTable()
		}

		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = errorStyle(msg.err.Error())
		} else {
			m.status = okStyle(fmt.Sprintf("%s %s: %s", msg.action, msg.record.ID, msg.record.Stage()))
		}

		m.state = queueStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Resize(msg)
		m.table.SetHeight(m.BodyHeight(5))

		return m, nil
	}

	if m.state == queueStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m QueueModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.stageIdx = (m.stageIdx + 1) % (len(record.Stages) + 1)
			return m, m.loadCmd()
		case "a":
			return m, m.actionCmd("Approved", m.engine.Approve)
		case "x":
			return m, m.actionCmd("Declined", m.engine.Decline)
		case "p":
			return m.enterPayment()
		case "l":
			return m.enterLiquidation()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m QueueModel) selected() (record.Record, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return record.Record{}, false
	}

	return m.records[idx], true
}

func (m QueueModel) enterPayment() (tea.Model, tea.Cmd) {
	if _, ok := m.selected(); !ok {
		return m, nil
	}

	m.formMethod = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("method").
				Title("Payment method").
				Suggestions(m.methods).
				Value(&m.formMethod).
				Validate(required("payment method")),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = queueStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m QueueModel) enterLiquidation() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.formAmount = strconv.FormatInt(r.RequestedAmount, 10)
	m.formInvoice = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Liquidated amount").
				Description(fmt.Sprintf("Requested %s", FormatAmount(r.RequestedAmount))).
				Value(&m.formAmount).
				Validate(func(s string) error {
					_, err := schema.ParseAmount(s)
					return err
				}),

			huh.NewInput().
				Key("invoice").
				Title("Invoices").
				Placeholder("INV-001, INV-002").
				Value(&m.formInvoice),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = queueStateLiquidation
	m.table.Blur()

	return m, m.form.Init()
}

func (m QueueModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = queueStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case queueStatePayment:
		method := m.form.GetString("method")

		return m, m.actionCmd("Paid", func(ctx context.Context, id string) (record.Record, error) {
			return m.engine.IssuePayment(ctx, id, method)
		})
	case queueStateLiquidation:
		amount, _ := schema.ParseAmount(m.form.GetString("amount"))
		invoice := m.form.GetString("invoice")

		return m, m.actionCmd("Liquidated", func(ctx context.Context, id string) (record.Record, error) {
			return m.engine.Liquidate(ctx, id, amount, invoice)
		})
	}

	return m, cmd
}

func (m QueueModel) stage() *record.Stage {
	if m.stageIdx == 0 {
		return nil
	}

	s := record.Stages[m.stageIdx-1]

	return &s
}

func (m QueueModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading records...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	stageLabel := "All"
	if s := m.stage(); s != nil {
		stageLabel = stageTitle(*s)
	}

	header := fmt.Sprintf("Filter: [s] Stage: %s | %d records", activeStyle(stageLabel), len(m.records))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != queueStateBrowse && m.form != nil {
		r, _ := m.selected()

		title := "Issue Payment"
		if m.state == queueStateLiquidation {
			title = "Liquidate"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s %s\n\n%s\n\n%s", title, r.ID, r.Purpose, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *QueueModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, table.Row{
			r.ID,
			stageTitle(r.Stage()),
			r.Requester,
			r.Project,
			r.Purpose,
			FormatAmount(r.RequestedAmount),
			FormatOptionalAmount(r.Liquidation.Amount),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func stageTitle(s record.Stage) string {
	words := strings.Split(string(s), "_")
	if len(words) > 0 && words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}

	return strings.Join(words, " ")
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}

		return nil
	}
}

// Messages

type loadQueueMsg struct {
	records []record.Record
	err     error
}

func (m QueueModel) loadCmd() tea.Cmd {
	filter := workflow.ListFilter{Stage: m.stage()}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		records, err := m.engine.List(ctx, filter)

		return loadQueueMsg{records: records, err: err}
	}
}

type actionMsg struct {
	action string
	record record.Record
	err    error
}

func (m QueueModel) actionCmd(action string, apply func(ctx context.Context, id string) (record.Record, error)) tea.Cmd {
	r, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		updated, err := apply(ctx, r.ID)

		return actionMsg{action: action, record: updated, err: err}
	}
}
