package widgets

import (
	"testing"

	"gitlab.com/tinyland/lab/procgraph/history"
)

func TestRenderSparkline_Ascending(t *testing.T) {
	result := RenderSparkline(Floats{1, 2, 3, 4, 5, 6, 7, 8}, SparklineConfig{})

	runes := []rune(result)
	if len(runes) != 8 {
		t.Fatalf("expected 8 characters, got %d: %q", len(runes), result)
	}
	for i := 1; i < len(runes); i++ {
		if runes[i] < runes[i-1] {
			t.Errorf("rune at %d (%c) < rune at %d (%c)", i, runes[i], i-1, runes[i-1])
		}
	}
	if runes[0] != sparkBlocks[0] || runes[7] != sparkBlocks[7] {
		t.Errorf("auto-scale endpoints = %c..%c, want %c..%c", runes[0], runes[7], sparkBlocks[0], sparkBlocks[7])
	}
}

func TestRenderSparkline_Empty(t *testing.T) {
	if got := RenderSparkline(Floats{}, SparklineConfig{}); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestRenderSparkline_AllEqual(t *testing.T) {
	runes := []rune(RenderSparkline(Floats{5, 5, 5}, SparklineConfig{}))
	mid := sparkBlocks[len(sparkBlocks)/2]
	for i, r := range runes {
		if r != mid {
			t.Errorf("position %d: got %c, want mid block %c", i, r, mid)
		}
	}
}

func TestRenderSparkline_ManualScale(t *testing.T) {
	runes := []rune(RenderSparkline(Floats{50}, SparklineConfig{Min: 0, Max: 100}))
	if len(runes) != 1 {
		t.Fatalf("expected 1 character, got %d", len(runes))
	}
	if want := sparkBlocks[int(0.5*float64(len(sparkBlocks)-1))]; runes[0] != want {
		t.Errorf("got %c for 50/100, want %c", runes[0], want)
	}
}

func TestRenderSparkline_TruncatesToNewest(t *testing.T) {
	runes := []rune(RenderSparkline(Floats{100, 0, 0, 0, 1, 2}, SparklineConfig{Width: 3, Min: 0, Max: 2}))
	if len(runes) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(runes))
	}
	if runes[0] != sparkBlocks[0] || runes[2] != sparkBlocks[7] {
		t.Errorf("expected the newest three samples, got %q", string(runes))
	}
}

func TestRenderSparkline_Padding(t *testing.T) {
	runes := []rune(RenderSparkline(Floats{1, 2, 3}, SparklineConfig{Width: 6}))
	if len(runes) != 6 {
		t.Fatalf("expected 6 characters, got %d", len(runes))
	}
	for i := 0; i < 3; i++ {
		if runes[i] != ' ' {
			t.Errorf("expected space at %d, got %c", i, runes[i])
		}
	}
}

func TestRenderSparkline_ReadsRingInLogicalOrder(t *testing.T) {
	r, err := history.New([]float64{0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{1, 2, 3, 4, 5, 6} {
		r.Push(v)
	}

	got := RenderSparkline(r, SparklineConfig{Min: 3, Max: 6})
	want := RenderSparkline(Floats{3, 4, 5, 6}, SparklineConfig{Min: 3, Max: 6})
	if got != want {
		t.Errorf("ring sparkline = %q, want %q", got, want)
	}
}

func TestBounds(t *testing.T) {
	min, max := Bounds(Floats{4, -2, 9, 1}, 0)
	if min != -2 || max != 9 {
		t.Errorf("Bounds = %f,%f, want -2,9", min, max)
	}
	min, max = Bounds(Floats{4, -2, 9, 1}, 3)
	if min != 1 || max != 1 {
		t.Errorf("Bounds from 3 = %f,%f, want 1,1", min, max)
	}
	if min, max = Bounds(Floats{1}, 5); min != 0 || max != 0 {
		t.Errorf("Bounds past end = %f,%f, want 0,0", min, max)
	}
}

func TestEighth(t *testing.T) {
	if Eighth(1) != '▁' || Eighth(8) != '█' {
		t.Errorf("Eighth endpoints = %c,%c", Eighth(1), Eighth(8))
	}
	if Eighth(0) != '▁' || Eighth(12) != '█' {
		t.Error("Eighth should clamp out-of-range input")
	}
}
