package tui

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ndmitriev/docsweep/internal/models"
)

// mode represents the current UI interaction mode.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilterEntity
)

const defaultTableHeight = 15

// Model is the top-level Bubble Tea model for the dashboard TUI.
type Model struct {
	// Data (immutable after init)
	statuses   []models.Status
	allReports []models.Report

	// UI state
	table           table.Model
	searchInput     textinput.Model
	filteredReports []models.Report
	filters         filterState
	sortBy          sortField
	mode            mode
	entityChoices   []string
	entityCursor    int
	width           int
	height          int
	statusMsg       string
	// clipboard is captured here for testing instead of writing to stdout
	clipboard string
}

// New creates a new TUI model from status and report data. Reports are
// expected newest first, the order the store returns them in.
func New(statuses []models.Status, reports []models.Report) Model {
	all := make([]models.Report, len(reports))
	copy(all, reports)

	sortReports(all, sortByTime)
	rows := buildRows(all)
	t := newTable(rows, defaultTableHeight)

	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 64

	return Model{
		statuses:        statuses,
		allReports:      all,
		filteredReports: all,
		table:           t,
		searchInput:     ti,
		sortBy:          sortByTime,
		mode:            modeNormal,
		entityChoices:   uniqueEntities(all),
		width:           80,
		height:          24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		tableH := msg.Height - headerHeight - detailHeight - 3
		if tableH < 3 {
			tableH = 3
		}
		m.table.SetHeight(tableH)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	default:
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilterEntity:
		return m.handleFilterEntityKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.FilterEntity):
		m.mode = modeFilterEntity
		m.entityCursor = 0
		return m, nil
	case key.Matches(msg, keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.rebuildTable()
		m.statusMsg = fmt.Sprintf("Sort: %s", sortFieldName(m.sortBy))
		return m, nil
	case key.Matches(msg, keys.Copy):
		m.copySelectedReport()
		return m, nil
	case key.Matches(msg, keys.ClearFilter):
		m.filters = filterState{}
		m.statusMsg = ""
		m.rebuildTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.SearchText = m.searchInput.Value()
		m.mode = modeNormal
		m.searchInput.Blur()
		m.rebuildTable()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterEntityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.entityCursor > 0 {
			m.entityCursor--
		}
	case "down", "j":
		if m.entityCursor < len(m.entityChoices) {
			m.entityCursor++
		}
	case "enter":
		if m.entityCursor == 0 {
			m.filters.Entity = ""
		} else if m.entityCursor <= len(m.entityChoices) {
			m.filters.Entity = m.entityChoices[m.entityCursor-1]
		}
		m.mode = modeNormal
		m.rebuildTable()
		if m.filters.Entity != "" {
			m.statusMsg = fmt.Sprintf("Filter: %s", m.filters.Entity)
		} else {
			m.statusMsg = ""
		}
	case "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) rebuildTable() {
	filtered := applyFilters(m.allReports, m.filters)
	sortReports(filtered, m.sortBy)
	m.filteredReports = filtered
	m.table.SetRows(buildRows(filtered))
}

func (m *Model) selectedReport() *models.Report {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filteredReports) {
		return nil
	}
	return &m.filteredReports[cursor]
}

// copySelectedReport writes the selected report summary to clipboard via OSC 52.
func (m *Model) copySelectedReport() {
	report := m.selectedReport()
	if report == nil {
		m.statusMsg = "Nothing to copy"
		return
	}
	text := fmt.Sprintf("[%s] %s: %d docs, %d found, %d repaired, %d deleted",
		verdictLabel(report.Resolved()), report.EntityType,
		report.TotalDocuments, report.InconsistenciesFound,
		report.RepairsApplied, report.DocumentsDeleted)
	m.clipboard = text
	m.statusMsg = "Copied!"
	// OSC 52 clipboard escape: works in most modern terminals
	fmt.Printf("\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m.statuses, m.allReports, m.width))
	b.WriteString("\n")

	// Search bar overlay
	if m.mode == modeSearch {
		b.WriteString(styleSearchPrompt.Render("/ "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	// Entity filter overlay
	if m.mode == modeFilterEntity {
		b.WriteString(m.renderEntityFilter())
		b.WriteString("\n")
	}

	// Table
	b.WriteString(m.table.View())
	b.WriteString("\n")

	// Detail panel
	b.WriteString(renderDetail(m.selectedReport(), m.width))
	b.WriteString("\n")

	// Footer
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderEntityFilter() string {
	var b strings.Builder
	b.WriteString("Filter by entity type:\n")

	options := append([]string{"All"}, m.entityChoices...)
	for i, opt := range options {
		cursor := "  "
		if i == m.entityCursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, opt))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	left := "q:quit  /:search  e:entity  s:sort  c:copy  esc:clear"
	right := fmt.Sprintf("%d/%d reports", len(m.filteredReports), len(m.allReports))

	if m.statusMsg != "" {
		right = m.statusMsg + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the Bubble Tea program. Called from the dashboard command.
func Run(statuses []models.Status, reports []models.Report) error {
	m := New(statuses, reports)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
