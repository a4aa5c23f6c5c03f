package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/swish/internal/dtw"
	"github.com/verte-zerg/swish/internal/gesture"
	"github.com/verte-zerg/swish/internal/model"
)

func newTestModel() *Model {
	return NewModel(model.Config{SampleRate: 30}, nil, dtw.New(dtw.DefaultOptions()), gesture.NewDataset(2))
}

func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func TestRenderHeaderFormats(t *testing.T) {
	m := newTestModel()
	out := m.renderHeader()
	if !containsAll(out, []string{"Training Info", "Not Recording", "TrainingClassLabel: 1", "NumTrainingExamples: 0", "Model Trained: NO", "SampleRate: 30"}) {
		t.Fatalf("header missing expected segments: %s", out)
	}
}

func TestHandleKeyClassSelection(t *testing.T) {
	m := newTestModel()
	m.handleKey(keyMsg("]"))
	m.handleKey(keyMsg("]"))
	if m.activeLabel != 3 {
		t.Fatalf("expected label 3 after two increments, got %d", m.activeLabel)
	}
	m.handleKey(keyMsg("["))
	if m.activeLabel != 2 {
		t.Fatalf("expected label 2 after decrement, got %d", m.activeLabel)
	}
	m.handleKey(keyMsg("7"))
	if m.activeLabel != 7 {
		t.Fatalf("expected label 7 after digit key, got %d", m.activeLabel)
	}
	m.activeLabel = 1
	m.handleKey(keyMsg("["))
	if m.activeLabel != 1 {
		t.Fatalf("expected label to stay at 1, got %d", m.activeLabel)
	}
}

func TestRecordingAddsExample(t *testing.T) {
	m := newTestModel()
	m.handleKey(keyMsg("r"))
	if !m.recording {
		t.Fatalf("expected recording to start")
	}
	m.haveMouse = true
	for i := 0; i < 5; i++ {
		m.mouseX = 10 + i*3
		m.mouseY = 5 + i
		m.handleTick()
	}
	m.handleKey(keyMsg("r"))
	if m.recording {
		t.Fatalf("expected recording to stop")
	}
	if got := m.dataset.NumExamples(); got != 1 {
		t.Fatalf("expected 1 example after recording, got %d", got)
	}
	if got := m.dataset.CountForLabel(1); got != 1 {
		t.Fatalf("expected example under class 1, got %d", got)
	}
}

func TestRecordingEmptyIsRejected(t *testing.T) {
	m := newTestModel()
	m.handleKey(keyMsg("r"))
	m.handleKey(keyMsg("r"))
	if got := m.dataset.NumExamples(); got != 0 {
		t.Fatalf("expected no examples, got %d", got)
	}
	if !strings.Contains(m.infoText, "WARNING") {
		t.Fatalf("expected warning info text, got %q", m.infoText)
	}
}

func TestTrainFailureKeepsInfoText(t *testing.T) {
	m := newTestModel()
	m.handleKey(keyMsg("t"))
	if !strings.Contains(m.infoText, "WARNING: failed to train classifier") {
		t.Fatalf("expected training warning, got %q", m.infoText)
	}
	if m.classifier.Trained() {
		t.Fatalf("expected classifier to stay untrained")
	}
}

func TestRenderTraceDrawsStroke(t *testing.T) {
	series := gesture.Timeseries{
		{0, 0},
		{4, 2},
		{8, 4},
	}
	out := renderTrace(series, 10, 5, 0)
	if strings.TrimSpace(strings.ReplaceAll(out, "⠀", "")) == "" {
		t.Fatalf("expected trace to contain plotted dots: %q", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
