package tui

import "testing"

func TestOpenAnimationGrowsToFullHeight(t *testing.T) {
	t.Parallel()

	anim := newOpenAnimation()
	if got := anim.rows(20); got != 20 {
		t.Fatalf("idle rows = %d, want 20", got)
	}

	if cmd := anim.start(); cmd == nil {
		t.Fatal("start should schedule a frame")
	}
	if got := anim.rows(20); got != 1 {
		t.Fatalf("rows at start = %d, want 1", got)
	}

	previous := 0
	frames := 0
	for anim.step(openFrameMsg{seq: anim.seq}) != nil {
		frames++
		if frames > 600 {
			t.Fatal("spring did not settle")
		}
		rows := anim.rows(20)
		if rows < previous {
			t.Fatalf("frame %d rows = %d shrank from %d", frames, rows, previous)
		}
		previous = rows
	}

	if anim.running {
		t.Fatal("animation should stop once settled")
	}
	if got := anim.rows(20); got != 20 {
		t.Fatalf("settled rows = %d, want 20", got)
	}
}

func TestOpenAnimationIgnoresStaleFrames(t *testing.T) {
	t.Parallel()

	anim := newOpenAnimation()
	anim.start()
	stale := anim.seq
	anim.start()

	if cmd := anim.step(openFrameMsg{seq: stale}); cmd != nil {
		t.Fatal("stale frame should not schedule another frame")
	}
	if anim.position != 0 {
		t.Fatalf("position = %v, want untouched 0", anim.position)
	}

	anim.stop()
	if cmd := anim.step(openFrameMsg{seq: anim.seq}); cmd != nil {
		t.Fatal("stopped animation should ignore frames")
	}
}
