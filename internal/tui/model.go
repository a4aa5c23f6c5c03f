// Package tui provides the Bubble Tea gesture trainer interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/swish/internal/dtw"
	"github.com/verte-zerg/swish/internal/gesture"
	"github.com/verte-zerg/swish/internal/model"
	statsPkg "github.com/verte-zerg/swish/internal/stats"
	"github.com/verte-zerg/swish/internal/store"
)

const (
	defaultSampleRate = 30
	historySeconds    = 5
	plotHeight        = 8
	sideWidth         = 26
	heatmapWidth      = 22
	heatmapHeight     = 5
)

// tickMsg drives one capture frame.
type tickMsg time.Time

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	recordingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	traceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FC3F7"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type classCounter struct {
	predictions   int
	costSum       float64
	likelihoodSum float64
}

// session accumulates prediction stats between a successful training and
// the next retrain or quit.
type session struct {
	startedAt   time.Time
	predictions int
	rejected    int
	classes     map[int]*classCounter
}

// Model implements the Bubble Tea gesture trainer UI.
type Model struct {
	config     model.Config
	store      *store.Store
	classifier *dtw.Classifier
	dataset    *gesture.Dataset

	width  int
	height int

	mouseX    int
	mouseY    int
	haveMouse bool

	recording       bool
	activeLabel     int
	recordingSeries gesture.Timeseries

	infoText string

	prediction        gesture.Prediction
	havePrediction    bool
	labelHistory      []float64
	likelihoodHistory [][]float64

	session *session
}

// NewModel constructs a trainer TUI model.
func NewModel(cfg model.Config, st *store.Store, classifier *dtw.Classifier, dataset *gesture.Dataset) *Model {
	return &Model{
		config:      cfg,
		store:       st,
		classifier:  classifier,
		dataset:     dataset,
		activeLabel: 1,
		infoText:    "Record gestures with 'r', then train with 't'",
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) sampleRate() int {
	if m.config.SampleRate > 0 {
		return m.config.SampleRate
	}
	return defaultSampleRate
}

func (m *Model) tick() tea.Cmd {
	interval := time.Second / time.Duration(m.sampleRate())
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.MouseMsg:
		m.mouseX = msg.X
		m.mouseY = msg.Y
		m.haveMouse = true
		return m, nil
	case tickMsg:
		m.handleTick()
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

// handleTick samples the mouse once per frame, feeding the recording and,
// once trained, the streaming prediction.
func (m *Model) handleTick() {
	if !m.haveMouse {
		return
	}
	sample := gesture.Sample{float64(m.mouseX), float64(m.mouseY)}
	if m.recording {
		m.recordingSeries = append(m.recordingSeries, sample)
		return
	}
	if !m.classifier.Trained() {
		return
	}
	pred, err := m.classifier.PredictSample(sample)
	if err != nil {
		m.infoText = fmt.Sprintf("WARNING: prediction failed: %v", err)
		return
	}
	m.prediction = pred
	m.havePrediction = true
	m.pushHistory(pred)
	m.trackPrediction(pred)
}

func (m *Model) historyLen() int {
	return m.sampleRate() * historySeconds
}

func (m *Model) pushHistory(pred gesture.Prediction) {
	limit := m.historyLen()
	m.labelHistory = appendCapped(m.labelHistory, float64(pred.Label), limit)
	if len(m.likelihoodHistory) != len(pred.Likelihoods) {
		m.likelihoodHistory = make([][]float64, len(pred.Likelihoods))
	}
	for i, v := range pred.Likelihoods {
		m.likelihoodHistory[i] = appendCapped(m.likelihoodHistory[i], v, limit)
	}
}

func appendCapped(values []float64, v float64, limit int) []float64 {
	values = append(values, v)
	if overflow := len(values) - limit; overflow > 0 {
		values = values[overflow:]
	}
	return values
}

func (m *Model) trackPrediction(pred gesture.Prediction) {
	if m.session == nil {
		return
	}
	m.session.predictions++
	if pred.Label == gesture.NullLabel {
		m.session.rejected++
		return
	}
	counter, ok := m.session.classes[pred.Label]
	if !ok {
		counter = &classCounter{}
		m.session.classes[pred.Label] = counter
	}
	counter.predictions++
	for i, label := range pred.Labels {
		if label == pred.Label {
			counter.costSum += pred.Costs[i]
			counter.likelihoodSum += pred.Likelihoods[i]
			break
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.finishSession()
		return m, tea.Quit
	case "r":
		m.toggleRecording()
	case "[":
		m.infoText = ""
		if m.activeLabel > 1 {
			m.activeLabel--
		}
	case "]":
		m.infoText = ""
		m.activeLabel++
	case "t":
		m.train()
	case "s":
		m.saveDataset()
	case "l":
		m.loadDataset()
	case "c":
		m.dataset.Clear()
		m.infoText = "Training data cleared"
	default:
		if label, err := strconv.Atoi(key); err == nil && label >= 1 && label <= 9 {
			m.activeLabel = label
			m.infoText = ""
		}
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	m.infoText = ""
	if !m.recording {
		m.recording = true
		m.recordingSeries = nil
		return
	}
	m.recording = false
	if len(m.recordingSeries) == 0 {
		m.infoText = "WARNING: nothing was recorded"
		return
	}
	if err := m.dataset.Add(m.activeLabel, m.recordingSeries); err != nil {
		m.infoText = fmt.Sprintf("WARNING: failed to add example: %v", err)
	} else {
		m.infoText = fmt.Sprintf("Added example for class %d (%d samples)", m.activeLabel, len(m.recordingSeries))
	}
	m.recordingSeries = nil
}

// train fits a new model. A failed training leaves the previous model and
// the current session untouched; a successful one closes the running
// session and starts a fresh one.
func (m *Model) train() {
	if err := m.classifier.Train(m.dataset); err != nil {
		m.infoText = fmt.Sprintf("WARNING: failed to train classifier: %v", err)
		return
	}
	m.finishSession()
	m.session = &session{startedAt: time.Now(), classes: map[int]*classCounter{}}
	m.labelHistory = nil
	m.likelihoodHistory = nil
	m.havePrediction = false
	m.infoText = "Classifier trained"
}

func (m *Model) saveDataset() {
	if err := m.dataset.Save(m.config.DatasetPath); err != nil {
		m.infoText = fmt.Sprintf("WARNING: failed to save training data: %v", err)
		return
	}
	m.infoText = "Training data saved to file"
}

func (m *Model) loadDataset() {
	ds, err := gesture.Load(m.config.DatasetPath)
	if err != nil {
		m.infoText = fmt.Sprintf("WARNING: failed to load training data: %v", err)
		return
	}
	m.dataset = ds
	m.infoText = fmt.Sprintf("Training data loaded from file (%d examples)", ds.NumExamples())
}

func (m *Model) finishSession() {
	if m.session == nil || m.session.predictions == 0 {
		m.session = nil
		return
	}
	endedAt := time.Now()
	stats := model.SessionStats{
		StartedAt:   m.session.startedAt,
		EndedAt:     endedAt,
		DatasetPath: m.config.DatasetPath,
		NumExamples: m.dataset.NumExamples(),
		Predictions: m.session.predictions,
		Rejected:    m.session.rejected,
		DurationMs:  endedAt.Sub(m.session.startedAt).Milliseconds(),
	}
	var classStats []model.ClassStats
	if trained := m.classifier.Model(); trained != nil {
		stats.NumClasses = len(trained.Templates)
		for _, tpl := range trained.Templates {
			counter, ok := m.session.classes[tpl.Label]
			if !ok {
				continue
			}
			classStats = append(classStats, model.ClassStats{
				Label:         tpl.Label,
				Predictions:   counter.predictions,
				CostSum:       counter.costSum,
				LikelihoodSum: counter.likelihoodSum,
			})
		}
	}
	if _, err := m.store.InsertSession(context.Background(), stats, classStats); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
	m.session = nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	footer := footerStyle.Render(m.helpText())
	plot := m.renderPlot()

	headerHeight := lipgloss.Height(header)
	footerHeight := 1
	plotHeightUsed := 0
	if plot != "" {
		plotHeightUsed = lipgloss.Height(plot)
	}
	traceHeight := m.height - headerHeight - plotHeightUsed - footerHeight
	if traceHeight < 1 {
		traceHeight = 1
	}
	body := m.renderBody(traceHeight, headerHeight)

	sections := []string{header, body}
	if plot != "" {
		sections = append(sections, plot)
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (m *Model) helpText() string {
	return "r record  [/] class -/+  1-9 set class  t train  s save  l load  c clear  q quit"
}

func (m *Model) renderHeader() string {
	lines := []string{titleStyle.Render("------------------- Training Info -------------------")}
	if m.recording {
		lines = append(lines, recordingStyle.Render("RECORDING"))
	} else {
		lines = append(lines, titleStyle.Render("Not Recording"))
	}
	lines = append(lines,
		labelStyle.Render(fmt.Sprintf("TrainingClassLabel: %d", m.activeLabel)),
		titleStyle.Render(fmt.Sprintf("NumTrainingExamples: %d", m.dataset.NumExamples())),
		titleStyle.Render("------------------- Prediction Info -------------------"),
	)
	if m.classifier.Trained() {
		lines = append(lines, titleStyle.Render("Model Trained: YES"))
		if m.havePrediction {
			lines = append(lines,
				titleStyle.Render(fmt.Sprintf("PredictedClassLabel: %d", m.prediction.Label)),
				titleStyle.Render(fmt.Sprintf("Likelihood: %.3f", m.prediction.Likelihood)),
			)
		}
	} else {
		lines = append(lines, titleStyle.Render("Model Trained: NO"))
	}
	lines = append(lines,
		titleStyle.Render(fmt.Sprintf("SampleRate: %d", m.sampleRate())),
		infoStyle.Render("InfoText: "+m.infoText),
	)
	return strings.Join(lines, "\n")
}

// renderBody draws the gesture trace with a diagnostic side column: the
// per-class distance matrices once trained, the recorded examples before.
func (m *Model) renderBody(height, topOffset int) string {
	side := m.renderSide(height)
	traceWidth := m.width
	if side != "" {
		traceWidth = m.width - sideWidth
	}
	if traceWidth < 10 {
		traceWidth = m.width
		side = ""
	}

	var series gesture.Timeseries
	style := traceStyle
	if m.recording {
		series = m.recordingSeries
		style = recordingStyle
	} else if m.classifier.Trained() {
		series = m.classifier.InputBuffer()
	}
	trace := style.Render(renderTrace(series, traceWidth, height, topOffset))
	if side == "" {
		return trace
	}
	sideBlock := lipgloss.NewStyle().Width(sideWidth).Render(side)
	return lipgloss.JoinHorizontal(lipgloss.Top, trace, sideBlock)
}

func (m *Model) renderSide(height int) string {
	if m.classifier.Trained() {
		return m.renderDistanceMatrices(height)
	}
	return m.renderTrainingExamples(height)
}

// renderDistanceMatrices shows the DTW cost matrix of the latest
// prediction for each class, scaled into a small heatmap.
func (m *Model) renderDistanceMatrices(height int) string {
	matrices := m.classifier.DistanceMatrices()
	trained := m.classifier.Model()
	if len(matrices) == 0 || trained == nil {
		return ""
	}
	lines := []string{infoStyle.Render("Distance Matrix")}
	for i, matrix := range matrices {
		if len(lines)+heatmapHeight+1 > height {
			break
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("Class %d", trained.Templates[i].Label)))
		lines = append(lines, statsPkg.HeatmapLines(matrix, heatmapWidth, heatmapHeight)...)
	}
	return strings.Join(lines, "\n")
}

// renderTrainingExamples lists per-class example counts with a sparkline
// of the most recent recording for each class.
func (m *Model) renderTrainingExamples(height int) string {
	if m.dataset.NumExamples() == 0 {
		return ""
	}
	lines := []string{infoStyle.Render("Training Examples")}
	latest := map[int]gesture.Timeseries{}
	for _, ex := range m.dataset.Examples() {
		latest[ex.Label] = ex.Series
	}
	for _, label := range m.dataset.Labels() {
		if len(lines)+2 > height {
			break
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("Class %d: %d", label, m.dataset.CountForLabel(label))))
		lines = append(lines, infoStyle.Render(statsPkg.Sparkline(firstDimension(latest[label], heatmapWidth))))
	}
	return strings.Join(lines, "\n")
}

// firstDimension resamples the series' first feature to width values.
func firstDimension(series gesture.Timeseries, width int) []float64 {
	resampled := gesture.Resample(series, width)
	out := make([]float64, 0, len(resampled))
	for _, s := range resampled {
		if len(s) == 0 {
			continue
		}
		out = append(out, s[0])
	}
	return out
}

// renderPlot shows the predicted label and per-class likelihood history
// once the classifier is trained and has produced predictions.
func (m *Model) renderPlot() string {
	if !m.classifier.Trained() || len(m.labelHistory) == 0 {
		return ""
	}
	trained := m.classifier.Model()
	series := []statsPkg.Series{{Name: "predicted", Values: m.labelHistory}}
	for i, history := range m.likelihoodHistory {
		if i >= len(trained.Templates) {
			break
		}
		series = append(series, statsPkg.Series{
			Name:   fmt.Sprintf("class %d", trained.Templates[i].Label),
			Values: history,
		})
	}
	var buf bytes.Buffer
	if err := statsPkg.PlotSeries(&buf, "", series, statsPkg.PlotWidthFor(m.width), plotHeight); err != nil {
		return infoStyle.Render(fmt.Sprintf("failed to render plot: %v", err))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
