package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fundflow/internal/export"
	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

// allStages is the stage option meaning no stage filter.
const allStages record.Stage = ""

// ExportModel writes records to a CSV or XLSX file in the legacy sheet layout.
type ExportModel struct {
	CommonModel
	exportService *export.Service

	state   exportState
	form    *huh.Form
	spinner spinner.Model

	format importer.Format
	stage  record.Stage
	path   string

	written int
	dest    string
	err     error
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		exportService: svc,
		spinner:       s,
		format:        importer.FormatCSV,
		path:          "transactions.csv",
	}
	m.form = m.newForm()

	return m
}

func (m *ExportModel) newForm() *huh.Form {
	stages := []huh.Option[record.Stage]{huh.NewOption("All stages", allStages)}
	for _, s := range record.Stages {
		stages = append(stages, huh.NewOption(stageTitle(s), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Format]().
				Key("format").
				Title("Format").
				Options(
					huh.NewOption("CSV", importer.FormatCSV),
					huh.NewOption("Excel workbook", importer.FormatXLSX),
				).
				Value(&m.format),
			huh.NewSelect[record.Stage]().
				Key("stage").
				Title("Stage").
				Options(stages...).
				Value(&m.stage),
			huh.NewInput().
				Key("path").
				Title("Output file").
				Description("The extension follows the chosen format").
				Value(&m.path).
				Validate(required("output file")),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) Title() string { return "Export Records" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateExporting:
		return "Exporting..."
	case exportStateResult:
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		if result, ok := msg.(exportResultMsg); ok {
			m.state = exportStateResult
			m.written, m.dest, m.err = result.written, result.dest, result.err

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	format, _ := m.form.Get("format").(importer.Format)
	stage, _ := m.form.Get("stage").(record.Stage)

	m.state = exportStateExporting

	return m, tea.Batch(m.spinner.Tick, m.exportCmd(format, stage, m.form.GetString("path")))
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(fmt.Sprintf("%s Exporting records...", m.spinner.View()))
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		okStyle(fmt.Sprintf("Exported %d records to %s", m.written, m.dest)),
	)
}

type exportResultMsg struct {
	written int
	dest    string
	err     error
}

// exportPath gives path the extension of format, replacing a different one.
func exportPath(path string, format importer.Format) string {
	path = strings.TrimSpace(path)

	ext := filepath.Ext(path)
	if strings.EqualFold(ext, "."+string(format)) {
		return path
	}

	return strings.TrimSuffix(path, ext) + "." + string(format)
}

func (m ExportModel) exportCmd(format importer.Format, stage record.Stage, path string) tea.Cmd {
	dest := exportPath(path, format)

	filter := workflow.ListFilter{}
	if stage != allStages {
		filter.Stage = &stage
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		f, err := os.Create(dest)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("creating %s: %w", dest, err)}
		}

		n, err := m.exportService.Export(ctx, filter, format, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}

		return exportResultMsg{written: n, dest: dest, err: err}
	}
}
