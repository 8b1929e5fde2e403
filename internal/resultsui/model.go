// Package resultsui provides the Bubble Tea browser for stored evaluations.
package resultsui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/layscore/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	detailStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	detailTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea ranking browser.
type Model struct {
	store  *store.Store
	filter store.ListFilter

	evaluations []store.Evaluation
	detailCache map[int64][]store.MetricRow
	errMsg      string

	rankTable table.Model
	detail    viewport.Model

	width  int
	height int
}

// NewModel constructs a ranking browser over stored evaluations.
func NewModel(st *store.Store, filter store.ListFilter) *Model {
	m := &Model{
		store:       st,
		filter:      filter,
		detailCache: map[int64][]store.MetricRow{},
	}
	m.rankTable = buildRankTable(nil, 0, 1)
	m.detail = viewport.New(0, 0)
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
		m.renderDetail()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "g", "home":
			m.rankTable.GotoTop()
		case "G", "end":
			m.rankTable.GotoBottom()
		case "r":
			m.refresh()
			return m, nil
		default:
			var cmd tea.Cmd
			m.rankTable, cmd = m.rankTable.Update(msg)
			m.renderDetail()
			return m, cmd
		}
		m.renderDetail()
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	parts := []string{tableMutedStyle.Render(m.rankTable.View())}
	parts = append(parts, detailStyle.Width(maxInt(1, m.width-2)).Render(m.detail.View()))
	footer := headerStyle.Render("Scroll: up/down  Top/Bottom: g/G  Reload: r  Quit: q/esc")
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	parts = append(parts, footer)
	return strings.Join(parts, "\n")
}

func (m *Model) refresh() {
	evaluations, err := m.store.ListEvaluations(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.evaluations = evaluations
	m.detailCache = map[int64][]store.MetricRow{}
	m.updateLayout()
	m.renderDetail()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	tableHeight := maxInt(3, m.height/2)
	detailHeight := maxInt(1, m.height-tableHeight-4)
	m.rankTable = buildRankTable(m.evaluations, m.width, tableHeight)
	m.detail.Width = maxInt(1, m.width-4)
	m.detail.Height = detailHeight
}

func (m *Model) renderDetail() {
	idx := m.rankTable.Cursor()
	if idx < 0 || idx >= len(m.evaluations) {
		m.detail.SetContent("No evaluations stored.")
		return
	}
	ev := m.evaluations[idx]
	rows, ok := m.detailCache[ev.ID]
	if !ok {
		loaded, err := m.store.ListEvaluationMetrics(context.Background(), ev.ID)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.detailCache[ev.ID] = loaded
		rows = loaded
	}

	lines := []string{detailTitleStyle.Render(fmt.Sprintf("%s  (corpus %s, total %.4f)", ev.Layout, ev.Corpus, ev.Total))}
	for _, mr := range rows {
		lines = append(lines, fmt.Sprintf("%-38s %-8s raw %10.4f  norm %10.4f  weighted %10.4f",
			mr.Metric, mr.Class, mr.Raw, mr.Normalized, mr.Weighted))
	}
	m.detail.SetContent(strings.Join(lines, "\n"))
}

func buildRankTable(evaluations []store.Evaluation, width, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Layout", Width: 24},
		{Title: "Corpus", Width: 18},
		{Title: "Total", Width: 12},
		{Title: "Evaluated", Width: 19},
	}
	rows := make([]table.Row, 0, len(evaluations))
	for i, ev := range evaluations {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			ev.Layout,
			ev.Corpus,
			fmt.Sprintf("%.4f", ev.Total),
			ev.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	t.SetStyles(rankTableStyles())
	return t
}

func rankTableStyles() table.Styles {
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
