package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	engine        *workflow.Engine
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	newRecords   []record.Record
	conflicts    []workflow.Conflict
	conflictList list.Model

	status string
	err    error
}

func NewImportModel(engine *workflow.Engine, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		engine:        engine,
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Sheet Export" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Enter: import the new records only | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg)
		m.filePicker.SetHeight(m.BodyHeight(5))

		if m.state == importStateConflicts {
			m.conflictList.SetSize(max(m.Width, 40), m.BodyHeight(5))
		}

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		m.state = importStateResult

		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.status = fmt.Sprintf("Imported %d records.", len(msg.result.Imported))
			return m, nil
		}

		m.newRecords = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c}
		}

		width, height := 80, 20
		if m.Height > 0 {
			width, height = max(m.Width, 40), m.BodyHeight(5)
		}

		m.conflictList = list.New(items, conflictDelegate{}, width, height)
		m.conflictList.Title = fmt.Sprintf("%d ids already taken, %d new records", len(m.conflicts), len(m.newRecords))
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult, importStateConflicts:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.conflicts = nil
		m.newRecords = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %d records...", len(m.newRecords))

		return m, m.importRecordsCmd(m.newRecords)
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CSV or XLSX export to import:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		status := okStyle(m.status)
		if m.err != nil {
			status = errorStyle(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type importResultMsg struct {
	result *workflow.ImportResult
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		records, err := m.importService.Import(importer.FormatOf(path), f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.engine.Import(ctx, records)

		return importResultMsg{result: result, err: err}
	}
}

func (m ImportModel) importRecordsCmd(records []record.Record) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.engine.Import(ctx, records)

		return importResultMsg{result: result, err: err}
	}
}

// Conflict list item

type conflictItem struct {
	conflict workflow.Conflict
}

func (i conflictItem) Title() string       { return i.conflict.Incoming.ID }
func (i conflictItem) Description() string { return i.conflict.Incoming.Purpose }
func (i conflictItem) FilterValue() string { return i.conflict.Incoming.ID }

type conflictDelegate struct{}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s  %s  %s  %s",
		cursor,
		incoming.ID,
		FormatAmount(incoming.RequestedAmount),
		incoming.Requester,
		incoming.Purpose,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s  %s [%s]",
		FormatAmount(existing.RequestedAmount),
		existing.Requester,
		existing.Purpose,
		stageTitle(existing.Stage()),
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
