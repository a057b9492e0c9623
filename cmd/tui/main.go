package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fundflow/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/fundflow/internal/app"
	"github.com/MrJamesThe3rd/fundflow/internal/config"
	"github.com/MrJamesThe3rd/fundflow/internal/export"
	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type model struct {
	engine        *workflow.Engine
	importService *importer.Service
	exportService *export.Service
	methods       []string
	actor         string

	currentView View

	queueView   view.QueueModel
	submitView  view.SubmitModel
	summaryView view.SummaryModel
	importView  view.ImportModel
	exportView  view.ExportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewQueue   View = 1
	ViewSubmit  View = 2
	ViewSummary View = 3
	ViewImport  View = 4
	ViewExport  View = 5
)

func initialModel(engine *workflow.Engine, impSvc *importer.Service, expSvc *export.Service, cfg *config.Config) model {
	actor := os.Getenv("USER")

	return model{
		engine:        engine,
		importService: impSvc,
		exportService: expSvc,
		methods:       cfg.App.PaymentMethods,
		actor:         actor,
		currentView:   ViewMenu,
		queueView:     view.NewQueueModel(engine, cfg.App.PaymentMethods),
		submitView:    view.NewSubmitModel(engine, actor),
		summaryView:   view.NewSummaryModel(engine),
		importView:    view.NewImportModel(engine, impSvc),
		exportView:    view.NewExportModel(expSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewQueue
				m.queueView = view.NewQueueModel(m.engine, m.methods)

				return m, m.queueView.Init()
			case "2":
				m.currentView = ViewSubmit
				m.submitView = view.NewSubmitModel(m.engine, m.actor)

				return m, m.submitView.Init()
			case "3":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.engine)

				return m, m.summaryView.Init()
			case "4":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewQueue:
		var newModel tea.Model
		newModel, cmd = m.queueView.Update(msg)
		m.queueView = newModel.(view.QueueModel)
	case ViewSubmit:
		var newModel tea.Model
		newModel, cmd = m.submitView.Update(msg)
		m.submitView = newModel.(view.SubmitModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"FundFlow\n\n" +
				"1. Approval Queue\n" +
				"2. New Request\n" +
				"3. Summary\n" +
				"4. Import Sheet Export\n" +
				"5. Export Records\n\n" +
				"q. Quit",
		)
	case ViewQueue:
		current = m.queueView
	case ViewSubmit:
		current = m.submitView
	case ViewSummary:
		current = m.summaryView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The screen belongs to the program; engine logs go to a file instead.
	if f, err := tea.LogToFile("fundflow-tui.log", ""); err == nil {
		defer f.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	}

	ctx := context.Background()

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open row store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	engine, closeEngine, err := app.NewEngine(ctx, cfg, store)
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer closeEngine()

	loc, _ := cfg.Location()
	codec := schema.NewCodec(loc)

	p := tea.NewProgram(initialModel(engine, importer.NewService(codec), export.NewService(engine, codec), cfg))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
