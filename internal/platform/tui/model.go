package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matthewharwood/arenic-replay/internal/playback"
	"github.com/matthewharwood/arenic-replay/internal/recorder"
	"github.com/matthewharwood/arenic-replay/internal/screen"
	"github.com/matthewharwood/arenic-replay/internal/session"
	"github.com/matthewharwood/arenic-replay/internal/sim"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

// Options configures the watch model.
type Options struct {
	FrameRate  int    // render frames per second; <= 0 selects 60
	Actor      string // actor name for recordings started from the UI
	CycleTicks sim.Tick
	EndPolicy  playback.EndPolicy
	Spawn      sim.GridPoint // spawn cell for recordings and ghosts
}

// Model is the Bubble Tea model for watching and steering a session.
type Model struct {
	mgr   *session.Manager
	store *storage.Store
	scr   *screen.Screen
	keys  *KeyMapper
	opts  Options

	input     recorder.RawInput // input gathered since the last frame
	lastFrame time.Time
	status    string
	quitting  bool
}

// NewModel creates a watch model for the given session.
func NewModel(mgr *session.Manager, store *storage.Store, opts Options) Model {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	if opts.Actor == "" {
		opts.Actor = "local"
	}
	return Model{
		mgr:   mgr,
		store: store,
		scr:   screen.NewScreen(80, 24),
		keys:  NewKeyMapper(),
		opts:  opts,
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.opts.FrameRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.scr.Resize(msg.Width, msg.Height)
		return m, nil

	case FrameMsg:
		return m.handleFrame(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.MapKey(msg) {
	case ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case ActionPause:
		if m.mgr.Paused() {
			m.mgr.Resume()
			m.status = "resumed"
		} else {
			m.mgr.Pause()
			m.status = fmt.Sprintf("paused at tick %d", m.mgr.Tick())
		}
		return m, nil

	case ActionCycleFocus:
		m.cycleFocus()
		return m, nil

	case ActionRecord:
		if _, err := m.mgr.StartRecording(m.mgr.Focus(), m.opts.Actor, "hunter", m.opts.Spawn); err != nil {
			m.status = err.Error()
		} else {
			m.status = fmt.Sprintf("recording %d ticks in arena %d", m.opts.CycleTicks, m.mgr.Focus())
		}
		return m, nil

	case ActionSpawnGhost:
		m.spawnLatestGhost()
		return m, nil
	}

	// Simulation input; held until the next frame consumes it
	m.keys.MapKeyToInput(msg, &m.input)
	return m, nil
}

// cycleFocus moves live input to the next arena in ascending order.
func (m *Model) cycleFocus() {
	ids := m.mgr.Arenas()
	for i, id := range ids {
		if id == m.mgr.Focus() {
			next := ids[(i+1)%len(ids)]
			//nolint:errcheck // next comes from the manager's own arena list
			m.mgr.SwitchFocus(next)
			m.status = fmt.Sprintf("watching arena %d", next)
			return
		}
	}
}

// spawnLatestGhost loads the most recent stored timeline and attaches it
// to the focused arena.
func (m *Model) spawnLatestGhost() {
	if m.store == nil {
		m.status = "no timeline store attached"
		return
	}
	entries, err := m.store.ListTimelines()
	if err != nil || len(entries) == 0 {
		m.status = "no stored timelines"
		return
	}
	t, err := m.store.LoadTimeline(entries[0].ID)
	if err != nil {
		m.status = err.Error()
		return
	}
	id, err := m.mgr.SpawnGhost(m.mgr.Focus(), t, m.opts.Spawn, m.opts.EndPolicy)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("ghost %d replaying %s in arena %d", id, entries[0].Actor, m.mgr.Focus())
}

// handleFrame advances the simulation by the elapsed wall time and
// persists any timeline sealed during the frame.
func (m Model) handleFrame(now time.Time) (tea.Model, tea.Cmd) {
	delta := time.Second / time.Duration(m.opts.FrameRate)
	if !m.lastFrame.IsZero() {
		delta = now.Sub(m.lastFrame)
	}
	m.lastFrame = now

	report, err := m.mgr.Advance(delta, m.input)
	if err != nil {
		m.status = err.Error()
	}
	m.input = recorder.RawInput{}

	for _, sealed := range report.Sealed {
		if m.store == nil {
			m.status = fmt.Sprintf("cycle complete in arena %d (not persisted)", sealed.Arena)
			continue
		}
		id, saveErr := m.store.SaveTimeline(sealed.Timeline)
		if saveErr != nil {
			m.status = saveErr.Error()
			continue
		}
		m.status = fmt.Sprintf("timeline #%d sealed (%d commands)", id, len(sealed.Timeline.Commands()))
	}

	return m, frameCmd(m.opts.FrameRate)
}

// View renders the focused arena and the session HUD.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.drawSession()
	return RenderScreen(m.scr)
}

// Run starts the Bubble Tea program with the given model.
func Run(mgr *session.Manager, store *storage.Store, opts Options) error {
	model := NewModel(mgr, store, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
