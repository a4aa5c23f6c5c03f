// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/swish/internal/model"
	"github.com/verte-zerg/swish/internal/stats"
	"github.com/verte-zerg/swish/internal/store"
)

const (
	tabOverview = iota
	tabClassTable
	tabClassCurves
)

const (
	plotHeight = 10
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
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report      stats.Report
	errMsg      string
	classErrMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	classTable  table.Model
	classLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	classSelection       []int
	classSelectionCustom bool
	classPerSession      map[int64]map[int]model.ClassAggregate

	labelInputMode  bool
	labelInput      textinput.Model
	labelInputError string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Class Table", "Class Curves"},
	}
	m.classSelection = parseLabels(cfg.Labels)
	if len(m.classSelection) > 0 {
		m.classSelectionCustom = true
	}
	m.initInputs()
	m.initLabelInput()
	m.initClassTable()
	m.initViewports()
	m.refreshReport()
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabClassTable {
			m.classTable.Focus()
		} else {
			m.classTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.labelInputMode {
			return m.updateLabelInput(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabClassCurves {
				return m.startLabelInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabClassTable {
				m.classTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabClassTable {
				m.classTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabClassTable {
				var cmd tea.Cmd
				m.classTable, cmd = m.classTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
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
	if m.labelInputMode {
		return fitLines(m.renderLabelModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initClassTable() {
	m.classTable = buildClassTable(nil, nil, 0, 1)
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

func (m *Model) initLabelInput() {
	m.labelInput = newFilterInput("Classes: ")
	m.labelInput.Prompt = "Classes: "
	m.labelInput.Placeholder = "1,2,3"
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	if m.cfg.Since != nil {
		m.filterInputs[0].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[1].SetValue("")
	}
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setClassTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
	promptWidth := lipgloss.Width(m.labelInput.Prompt)
	m.labelInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
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
	if m.activeTab == tabClassTable {
		m.classTable.Focus()
	} else {
		m.classTable.Blur()
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
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: since=%s  last=%s  window=%d", since, last, m.cfg.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabClassCurves {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Edit classes: enter  Window: -/=  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: q")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabClassTable {
		switch {
		case len(m.report.Sessions) == 0:
			return fitLines("No sessions found.", m.width, height)
		case len(m.report.ClassAggsAll) == 0:
			return fitLines("No class stats found.", m.width, height)
		default:
			view := tableMutedStyle.Render(m.classTable.View())
			return fitLines(view, m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.classErrMsg = ""
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if !m.classSelectionCustom {
		m.classSelection = stats.TopClassesByPredictions(m.report.ClassAggsAll, 5)
	}
	m.loadClassPerSession()
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	applyClassTable(m, m.report.Sessions, m.report.ClassAggsAll, width, bodyHeight, true)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report.Sessions, m.cfg.CurveWindow, width))
	m.viewports[tabClassCurves].SetContent(renderClassCurves(m.report.Sessions, m.classSelection, m.classPerSession, m.cfg.CurveWindow, width, m.classErrMsg))
}

func renderOverview(sessions []model.SessionAggregate, window, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	summary := renderSummaryCards(sessions, width)
	curves := renderCurves(sessions, window, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var totalPerMin, totalAccept float64
	totalPredictions := 0
	bestAccept := 0.0
	for _, s := range sessions {
		perMin, _, accept := stats.SessionMetrics(s.Predictions, s.Rejected, s.DurationMs)
		totalPerMin += perMin
		totalAccept += accept
		totalPredictions += s.Predictions
		if accept > bestAccept {
			bestAccept = accept
		}
	}
	count := float64(len(sessions))
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Predictions", fmt.Sprintf("%d", totalPredictions)),
		metricCard("Avg Pred/min", fmt.Sprintf("%.1f", totalPerMin/count)),
		metricCard("Avg Accept", fmt.Sprintf("%.1f%%", (totalAccept/count)*100)),
		metricCard("Best Accept", fmt.Sprintf("%.1f%%", bestAccept*100)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(sessions []model.SessionAggregate, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, sessions, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildClassTable(sessions []model.SessionAggregate, aggs []model.ClassAggregate, width, height int) table.Model {
	cols, rows := buildClassTableData(sessions, aggs)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	styles := classTableStyles()
	t.SetStyles(styles)
	return t
}

func applyClassTable(m *Model, sessions []model.SessionAggregate, aggs []model.ClassAggregate, width, height int, force bool) {
	cols, rows := buildClassTableData(sessions, aggs)
	viewportHeight := maxInt(1, height-1)
	if !force &&
		m.classLayout.width == width &&
		m.classLayout.height == viewportHeight &&
		m.classLayout.rowCount == len(rows) &&
		m.classLayout.colCount == len(cols) {
		return
	}
	m.classTable.SetColumns(cols)
	m.classTable.SetRows(rows)
	m.classLayout.rowCount = len(rows)
	m.classLayout.colCount = len(cols)
	m.setClassTableSize(width, height)
}

func (m *Model) setClassTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.classLayout.width == width && m.classLayout.height == viewportHeight {
		return
	}
	m.classLayout.width = width
	m.classLayout.height = viewportHeight
	m.classTable.SetWidth(width)
	m.classTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustClassTableHeight(height)
	if m.classLayout.height != viewportHeight {
		m.classLayout.height = viewportHeight
		m.classTable.SetHeight(viewportHeight)
	}
}

func classTableStyles() table.Styles {
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

func (m *Model) adjustClassTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.classTable.Height()
	viewHeight := lipgloss.Height(m.classTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.classTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.classTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func buildClassTableData(sessions []model.SessionAggregate, aggs []model.ClassAggregate) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Class", Width: 5},
		{Title: "Predictions", Width: 11},
		{Title: "Avg Cost", Width: 9},
		{Title: "Avg Likelihood", Width: 14},
	}
	rows := make([]table.Row, 0, len(aggs))
	if len(sessions) == 0 || len(aggs) == 0 {
		return columns, rows
	}
	sorted := sortClassAggsByPredictions(aggs)
	for _, agg := range sorted {
		cost := 0.0
		likelihood := 0.0
		if agg.Predictions > 0 {
			cost = agg.CostSum / float64(agg.Predictions)
			likelihood = agg.LikelihoodSum / float64(agg.Predictions)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", agg.Label),
			fmt.Sprintf("%d", agg.Predictions),
			fmt.Sprintf("%.3f", cost),
			fmt.Sprintf("%.3f", likelihood),
		})
	}
	return columns, rows
}

func renderClassCurves(sessions []model.SessionAggregate, labels []int, perSession map[int64]map[int]model.ClassAggregate, window, width int, errMsg string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	if errMsg != "" {
		return fmt.Sprintf("Failed to load class curves: %s", errMsg)
	}
	if len(labels) == 0 {
		return "No classes selected. Press Enter to set classes."
	}
	header := headerStyle.Render(fmt.Sprintf("Classes: %s", joinLabels(labels)))
	var buf bytes.Buffer
	if err := stats.RenderClassCurvesWithSize(&buf, sessions, perSession, labels, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render class curves: %v", err)
	}
	return strings.TrimRight(header+"\n"+buf.String(), "\n")
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) startLabelInput() (tea.Model, tea.Cmd) {
	m.labelInputMode = true
	m.labelInputError = ""
	m.labelInput.SetValue(joinLabels(m.classSelection))
	return m, m.labelInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) updateLabelInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.labelInputMode = false
		m.labelInputError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyLabelInput(); err != nil {
			m.labelInputError = err.Error()
			return m, nil
		}
		m.labelInputMode = false
		m.labelInputError = ""
		m.loadClassPerSession()
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.labelInput, cmd = m.labelInput.Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	sinceInput := strings.TrimSpace(m.filterInputs[0].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[1].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[2].Value())
	window := 0
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil {
			return fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg = model.StatsConfig{
		Since:       since,
		Last:        last,
		CurveWindow: window,
		Labels:      m.cfg.Labels,
	}
	return nil
}

func (m *Model) applyLabelInput() error {
	raw := strings.TrimSpace(m.labelInput.Value())
	if raw == "" {
		m.classSelectionCustom = false
		m.classSelection = stats.TopClassesByPredictions(m.report.ClassAggsAll, 5)
		return nil
	}
	labels, err := parseLabelList(raw)
	if err != nil {
		return err
	}
	m.classSelectionCustom = true
	m.classSelection = labels
	return nil
}

func (m *Model) renderLabelModal() string {
	title := cardValueStyle.Render("Select Classes")
	body := []string{
		title,
		m.labelInput.View(),
		headerStyle.Render("Comma-separated class labels, e.g. 1,2,3."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.labelInputError != "" {
		body = append(body, errorStyle.Render(m.labelInputError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) loadClassPerSession() {
	m.classErrMsg = ""
	m.classPerSession = nil
	if len(m.report.Sessions) == 0 || len(m.classSelection) == 0 {
		return
	}
	perSession, err := m.store.ListClassStatsForSessions(context.Background(), sessionIDs(m.report.Sessions), m.classSelection)
	if err != nil {
		m.classErrMsg = err.Error()
		return
	}
	m.classPerSession = perSession
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

// parseLabels parses a best-effort label list from config, dropping
// anything that is not a positive integer.
func parseLabels(input string) []int {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, err := strconv.Atoi(part)
		if err != nil || label < 1 {
			continue
		}
		out = append(out, label)
	}
	return dedupeLabels(out)
}

// parseLabelList parses user input strictly, rejecting invalid entries.
func parseLabelList(input string) ([]int, error) {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		label, err := strconv.Atoi(part)
		if err != nil || label < 1 {
			return nil, fmt.Errorf("invalid class label %q (use positive integers)", part)
		}
		out = append(out, label)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no class labels provided")
	}
	return dedupeLabels(out), nil
}

func dedupeLabels(labels []int) []int {
	seen := make(map[int]bool, len(labels))
	out := make([]int, 0, len(labels))
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

func joinLabels(labels []int) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = strconv.Itoa(label)
	}
	return strings.Join(parts, ",")
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func sortClassAggsByPredictions(aggs []model.ClassAggregate) []model.ClassAggregate {
	out := append([]model.ClassAggregate(nil), aggs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Predictions == out[j].Predictions {
			return out[i].Label < out[j].Label
		}
		return out[i].Predictions > out[j].Predictions
	})
	return out
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
