// Package historyui provides the Bubble Tea browser for recorded runs.
package historyui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/subcrack/internal/model"
)

const (
	tabRuns = iota
	tabDetail
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// RunLister loads recorded runs, newest first.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	store RunLister
	limit int

	runs     []model.RunRecord
	filtered []model.RunRecord
	query    string
	errMsg   string

	tabs      []string
	activeTab int
	runTable  table.Model
	detail    viewport.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
}

// NewModel constructs a history browser over the newest limit runs. A limit of
// 0 loads every run.
func NewModel(st RunLister, limit int) *Model {
	m := &Model{
		store:  st,
		limit:  limit,
		tabs:   []string{"Runs", "Detail"},
		detail: viewport.New(0, 0),
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Filter: "
	m.filterInput.Placeholder = "text in ciphertext or plaintext"
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
	m.runTable = table.New(
		table.WithColumns(runColumns()),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.runTable.SetStyles(runTableStyles())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, nil
		case "right", "l":
			m.moveTab(1)
			return m, nil
		case "enter":
			if m.activeTab == tabRuns {
				m.moveTab(1)
			}
			return m, nil
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.query)
			return m, m.filterInput.Focus()
		case "g", "home":
			if m.activeTab == tabRuns {
				m.runTable.GotoTop()
				m.renderDetail()
			} else {
				m.detail.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRuns {
				m.runTable.GotoBottom()
				m.renderDetail()
			} else {
				m.detail.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabRuns {
				m.runTable, cmd = m.runTable.Update(msg)
				m.renderDetail()
				return m, cmd
			}
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Selected returns the run under the table cursor.
func (m *Model) Selected() (model.RunRecord, bool) {
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.filtered) {
		return model.RunRecord{}, false
	}
	return m.filtered[idx], true
}

func (m *Model) refresh() {
	runs, err := m.store.ListRuns(context.Background(), m.limit)
	if err != nil {
		m.errMsg = err.Error()
		m.runs = nil
	} else {
		m.errMsg = ""
		m.runs = runs
	}
	m.applyQuery()
}

func (m *Model) applyQuery() {
	q := strings.ToLower(strings.TrimSpace(m.query))
	m.filtered = m.filtered[:0]
	for _, run := range m.runs {
		if q == "" ||
			strings.Contains(strings.ToLower(run.Ciphertext), q) ||
			strings.Contains(strings.ToLower(run.Plaintext), q) {
			m.filtered = append(m.filtered, run)
		}
	}
	m.runTable.SetRows(runRows(m.filtered))
	m.runTable.GotoTop()
	m.renderDetail()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.query = m.filterInput.Value()
		m.applyQuery()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.detail.Width = m.width
	m.detail.Height = bodyHeight
	m.runTable.SetWidth(m.width)
	m.runTable.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = maxInt(10, m.width-promptWidth-2)
	m.renderDetail()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabRuns {
		m.runTable.Focus()
	} else {
		m.runTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	if m.filterMode {
		return tabs + "\n" + m.filterInput.View()
	}
	query := m.query
	if query == "" {
		query = "none"
	}
	limit := "all"
	if m.limit > 0 {
		limit = fmt.Sprintf("%d", m.limit)
	}
	summary := fmt.Sprintf("Runs: %d of %d  limit=%s  filter=%s", len(m.filtered), len(m.runs), limit, query)
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.activeTab == tabRuns {
		if len(m.filtered) == 0 {
			return "No runs found."
		}
		return tableMutedStyle.Render(m.runTable.View())
	}
	return m.detail.View()
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Move: up/down  Open: enter  Filter: /  Quit: q"
	if m.filterMode {
		help = "enter: apply  esc: cancel"
	}
	if !m.filterMode && m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderDetail() {
	run, ok := m.Selected()
	if !ok {
		m.detail.SetContent("No run selected.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(width)
	sections := []string{
		labelStyle.Render(fmt.Sprintf("Run %d  %s  reference=%s  letters=%d  score=%.3f",
			run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.Reference, run.Letters, run.Score)),
		"",
		labelStyle.Render("Ciphertext:"),
		wrap.Render(run.Ciphertext),
		"",
		labelStyle.Render("Mapping:"),
		wrap.Render(run.Mapping),
		"",
		labelStyle.Render("Plaintext:"),
		wrap.Render(run.Plaintext),
	}
	m.detail.SetContent(strings.Join(sections, "\n"))
	m.detail.GotoTop()
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "When", Width: 16},
		{Title: "Letters", Width: 7},
		{Title: "Ref", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Plaintext", Width: 40},
	}
}

func runRows(runs []model.RunRecord) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Letters),
			run.Reference,
			fmt.Sprintf("%.3f", run.Score),
			strings.Join(strings.Fields(run.Plaintext), " "),
		})
	}
	return rows
}

func runTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
