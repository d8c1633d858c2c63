package tui

import (
	"fmt"

	"github.com/matthewharwood/arenic-replay/internal/screen"
	"github.com/matthewharwood/arenic-replay/internal/session"
)

// drawSession paints the HUD and the focused arena grid into the screen
// buffer. The grid origin sits inside a box border, so cell (0,0) maps to
// screen (gridX+1, gridY+1).
func (m Model) drawSession() {
	m.scr.Clear()
	snap := m.mgr.Snapshot()

	m.drawHeader(snap)

	for _, a := range snap.Arenas {
		if a.ID == snap.Focus {
			m.drawArena(a, 0, 2)
			break
		}
	}

	footerY := m.scr.Height() - 1
	m.scr.DrawTextColored(0, footerY,
		"arrows/wasd move · 1-8 cast · tab focus · space pause · r record · g ghost · q quit",
		screen.ColorGray)
	if m.status != "" {
		m.scr.DrawTextColored(0, footerY-1, m.status, screen.ColorYellow)
	}
}

// drawHeader paints the session status line: tick, focus, pause state and
// per-arena occupancy.
func (m Model) drawHeader(snap session.Snapshot) {
	state := "running"
	if snap.Paused {
		state = "paused"
	}
	m.scr.DrawTextColored(0, 0,
		fmt.Sprintf("tick %d · %s · arena %d", snap.Tick, state, snap.Focus),
		screen.ColorBrightWhite)

	x := 0
	for _, a := range snap.Arenas {
		label := fmt.Sprintf("[%d: %d ghosts]", a.ID, len(a.Ghosts))
		color := screen.ColorGray
		if a.ID == snap.Focus {
			color = screen.ColorBrightCyan
		}
		m.scr.DrawTextColored(x, 1, label, color)
		x += len(label) + 1
	}
}

// drawArena paints one arena's bounds and entities at the given screen
// offset.
func (m Model) drawArena(a session.ArenaSnapshot, x, y int) {
	w := int(a.Bounds.W) + 2
	h := int(a.Bounds.H) + 2
	m.scr.DrawBox(x, y, w, h, screen.ColorGray)

	for _, g := range a.Ghosts {
		color := screen.ColorCyan
		if g.Despawned {
			color = screen.ColorGray
		}
		m.scr.SetColored(x+1+int(g.Pos.X), y+1+int(g.Pos.Y), 'g', color)
	}

	if a.Live != nil {
		m.scr.SetColored(x+1+int(a.Live.Pos.X), y+1+int(a.Live.Pos.Y), '@', screen.ColorBrightGreen)
	}
}
