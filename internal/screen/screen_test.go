package screen

import (
	"strings"
	"testing"
)

func TestNewScreenClears(t *testing.T) {
	s := NewScreen(10, 4)
	if s.Width() != 10 || s.Height() != 4 {
		t.Fatalf("dimensions = %dx%d, want 10x4", s.Width(), s.Height())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 10; x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("cell (%d,%d) = %q, want space", x, y, s.Get(x, y))
			}
		}
	}
}

func TestSetAndGetColored(t *testing.T) {
	s := NewScreen(10, 4)
	s.SetColored(3, 2, '@', ColorBrightGreen)

	cell := s.GetCell(3, 2)
	if cell.Rune != '@' || cell.Color != ColorBrightGreen {
		t.Errorf("cell = %+v, want @ in bright green", cell)
	}
}

func TestOutOfBoundsIgnored(t *testing.T) {
	s := NewScreen(5, 5)
	s.Set(-1, 0, 'x')
	s.Set(0, -1, 'x')
	s.Set(5, 0, 'x')
	s.Set(0, 5, 'x')

	if s.Get(-1, 0) != ' ' || s.Get(5, 0) != ' ' {
		t.Error("out-of-bounds Get should return space")
	}
	if strings.ContainsRune(s.String(), 'x') {
		t.Error("out-of-bounds Set leaked into the buffer")
	}
}

func TestDrawText(t *testing.T) {
	s := NewScreen(10, 3)
	s.DrawText(2, 1, "tick")
	if got := s.Row(1); got != "  tick    " {
		t.Errorf("Row(1) = %q", got)
	}

	// Clipped at the right edge
	s.DrawText(8, 0, "long")
	if got := s.Row(0); got != "        lo" {
		t.Errorf("Row(0) = %q", got)
	}
}

func TestDrawBox(t *testing.T) {
	s := NewScreen(6, 4)
	s.DrawBox(0, 0, 6, 4, ColorDefault)

	want := "┌────┐\n│    │\n│    │\n└────┘"
	if got := s.String(); got != want {
		t.Errorf("box =\n%s\nwant\n%s", got, want)
	}
}

func TestResizePreservesContent(t *testing.T) {
	s := NewScreen(10, 4)
	s.DrawText(0, 0, "keep")

	s.Resize(6, 2)
	if got := s.Row(0); got != "keep  " {
		t.Errorf("Row(0) after shrink = %q", got)
	}

	s.Resize(12, 3)
	if got := s.Row(0); got != "keep        " {
		t.Errorf("Row(0) after grow = %q", got)
	}
}

func TestStringShape(t *testing.T) {
	s := NewScreen(3, 2)
	out := s.String()
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("String() produced %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if len([]rune(l)) != 3 {
			t.Errorf("line %q has %d runes, want 3", l, len([]rune(l)))
		}
	}
}
