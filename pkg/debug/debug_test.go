package debug

import (
	"sync"
	"testing"
)

func TestBoard_Updates(t *testing.T) {
	b := NewBoard("Segmented Dimmer is paused.")
	if got := b.Snapshot().Label; got != "Segmented Dimmer is paused." {
		t.Fatalf("initial label = %q", got)
	}

	var seen []Snapshot
	b.OnChange(func(s Snapshot) { seen = append(seen, s) })

	b.SetDimmerLabel("Cube dimmer is activated!")
	b.SetDebugText("  Average luminance in bounding box: 0.5\n")

	snap := b.Snapshot()
	if snap.Label != "Cube dimmer is activated!" {
		t.Errorf("label = %q", snap.Label)
	}
	if snap.Text != "  Average luminance in bounding box: 0.5\n" {
		t.Errorf("text = %q", snap.Text)
	}
	if snap.Updated.IsZero() {
		t.Error("updated not set")
	}
	if len(seen) != 2 {
		t.Fatalf("listener calls = %d, want 2", len(seen))
	}
	if seen[1].Label != snap.Label {
		t.Errorf("listener saw label %q", seen[1].Label)
	}
}

func TestBoard_Concurrent(t *testing.T) {
	b := NewBoard("")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.SetDebugText("x")
				_ = b.Snapshot()
			}
		}()
	}
	wg.Wait()
	if b.Snapshot().Text != "x" {
		t.Error("text lost")
	}
}
