package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"

	"facestudio"
	"facestudio/config"
	"facestudio/element"
	"facestudio/preview"
	"facestudio/surface"
)

// opTimeout bounds artwork fetches triggered from the keyboard.
const opTimeout = 15 * time.Second

type model struct {
	cfg    config.Config
	studio *facestudio.Studio
	scene  *surface.Scene
	sched  *teaScheduler
	path   string

	width  int
	height int
	cursor int
	help   bool

	successMessage string
	errorMessage   string
}

func newModel(ctx context.Context, cfg config.Config, path string) (model, error) {
	sched := &teaScheduler{}
	studio, err := facestudio.New(cfg, facestudio.WithScheduler(sched))
	if err != nil {
		return model{}, err
	}
	scene := surface.NewScene(cfg.Canvas.Width, cfg.Canvas.Height,
		surface.WithScheduler(sched),
		surface.WithBackground(cfg.Canvas.Background))
	if err := studio.Attach(scene); err != nil {
		return model{}, err
	}
	m := model{cfg: cfg, studio: studio, scene: scene, sched: sched, path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m.successMessage = "New design " + filepath.Base(path)
	case err != nil:
		return model{}, fmt.Errorf("read design: %w", err)
	default:
		report, err := studio.LoadDocument(ctx, data)
		if err != nil {
			return model{}, err
		}
		m.successMessage = fmt.Sprintf("Loaded %d elements", len(report.Loaded))
		if n := len(report.Skipped) + len(report.Failed); n > 0 {
			m.errorMessage = fmt.Sprintf("%d elements skipped or failed", n)
		}
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

// layers lists element ids front to back, the order the list is shown in.
func (m model) layers() []string {
	ids := m.studio.Layers()
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

func (m model) selectedID() string {
	ids := m.layers()
	if m.cursor < 0 || m.cursor >= len(ids) {
		return ""
	}
	return ids[m.cursor]
}

func (m model) object(id string) *surface.Object {
	for _, o := range m.scene.Objects() {
		if o.ID() == id {
			return o
		}
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.sched.drain()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case wakeMsg:
	case tea.KeyMsg:
		m.successMessage, m.errorMessage = "", ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.studio.Close()
		return m, tea.Quit
	case "?":
		m.help = !m.help
	case "j", "down":
		if m.cursor < len(m.layers())-1 {
			m.cursor++
		}
		m.selectCursor()
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		m.selectCursor()
	case "]":
		m.reorder(facestudio.Forward)
	case "[":
		m.reorder(facestudio.Backward)
	case "+", "=":
		m.adjust(1)
	case "-", "_":
		m.adjust(-1)
	case "d":
		m.remove()
	case "c":
		m.copyElement()
	case "v":
		m.pasteElement()
	case "u", "ctrl+z":
		if !m.studio.Undo() {
			m.errorMessage = "Nothing to undo"
		}
	case "r", "ctrl+y":
		if !m.studio.Redo() {
			m.errorMessage = "Nothing to redo"
		}
	case "s":
		m.save()
	case "p":
		m.exportPNG()
	case "t":
		if m.studio.TimeUpdatesRunning() {
			m.studio.StopTimeUpdates()
			m.successMessage = "Time updates off"
		} else {
			m.studio.StartTimeUpdates()
			m.successMessage = "Time updates on"
		}
	}
	return m, nil
}

func (m *model) selectCursor() {
	if id := m.selectedID(); id != "" {
		m.report(m.studio.Select(id), "")
	}
}

func (m *model) report(err error, success string) {
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	if success != "" {
		m.successMessage = success
	}
}

func (m *model) reorder(move facestudio.Move) {
	id := m.selectedID()
	if id == "" {
		return
	}
	m.report(m.studio.Reorder(id, move), "")
	for i, other := range m.layers() {
		if other == id {
			m.cursor = i
		}
	}
}

// adjust steps the level or progress of the selected gauge.
func (m *model) adjust(dir float64) {
	id := m.selectedID()
	o := m.object(id)
	if o == nil {
		return
	}
	var (
		key        string
		step, high float64
	)
	switch element.EleType(o.EleType()) {
	case element.TypeBattery:
		key, step, high = "level", 0.1, 1
	case element.TypeMoveBar:
		key, step, high = "level", 1, 5
	case element.TypeGoalBar, element.TypeGoalArc:
		key, step, high = "progress", 0.1, 1
	default:
		m.errorMessage = o.EleType() + " has no adjustable value"
		return
	}
	v := o.Float(key) + dir*step
	v = max(0, min(high, v))
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	m.report(m.studio.UpdateElement(ctx, id, element.Patch{key: v}), fmt.Sprintf("%s %s = %.2g", o.EleType(), key, v))
}

func (m *model) remove() {
	id := m.selectedID()
	if id == "" {
		return
	}
	m.report(m.studio.RemoveElement(id), "Deleted")
	if n := len(m.layers()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
}

func (m *model) copyElement() {
	o := m.object(m.selectedID())
	if o == nil {
		return
	}
	cfg, err := m.studio.Registry().Encode(o)
	if err != nil {
		m.report(err, "")
		return
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		m.report(err, "")
		return
	}
	m.report(writeClipboardText(string(data)), "Copied "+o.EleType())
}

// pasteElement adds a copy of the element config on the clipboard, offset so
// it does not cover the original.
func (m *model) pasteElement() {
	text, err := readClipboardText()
	if err != nil {
		m.report(err, "")
		return
	}
	var cfg element.Config
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &cfg); err != nil {
		m.errorMessage = "Clipboard does not hold an element"
		return
	}
	cfg.ID = ""
	cfg.Left += 10
	cfg.Top += 10
	p, err := m.studio.Registry().Decode(cfg)
	if err != nil {
		m.report(err, "")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	live, err := m.studio.AddElement(ctx, p)
	if err != nil {
		m.report(err, "")
		return
	}
	m.cursor = 0
	m.successMessage = "Pasted " + string(live.Type)
}

func (m *model) save() {
	data, err := m.studio.DocumentJSON()
	if err != nil {
		m.report(err, "")
		return
	}
	path, err := m.cfg.SavePath(m.path)
	if err != nil {
		m.report(err, "")
		return
	}
	m.report(os.WriteFile(path, data, 0o644), "Saved "+path)
}

func (m *model) exportPNG() {
	opts := preview.Options{
		Width:      int(m.cfg.Canvas.Width),
		Height:     int(m.cfg.Canvas.Height),
		Background: m.scene.Background(),
		Faces:      m.studio.Fonts(),
	}
	if f := m.studio.Fetcher(); f != nil {
		opts.Images = f
	}
	r, err := preview.New(opts)
	if err != nil {
		m.report(err, "")
		return
	}
	path, err := m.cfg.SavePath(strings.TrimSuffix(m.path, filepath.Ext(m.path)) + ".png")
	if err != nil {
		m.report(err, "")
		return
	}
	m.report(r.SavePNG(path, m.scene.Objects()), "Exported "+path)
}
