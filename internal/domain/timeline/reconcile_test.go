package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/forPelevin/narrashort/internal/types"
)

func TestPlan_LoopCount(t *testing.T) {
	tests := []struct {
		name         string
		video, audio float64
		want         int
	}{
		{"audio shorter", 10, 5, 0},
		{"equal", 10, 10, 0},
		{"within tolerance", 10, 9.999, 0},
		{"tiny audio", 10, 0.0005, 0},
		{"two and a half clips", 10, 25, 2},
		{"exact triple", 10, 30, 2},
		{"just over triple", 10, 30.01, 3},
		{"short clip", 3, 10, 3},
		{"fractional clip", 7.5, 60, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Plan(tt.video, tt.audio)
			if err != nil {
				t.Fatal(err)
			}
			if p.LoopCount != tt.want {
				t.Fatalf("Plan(%v, %v).LoopCount = %d, want %d", tt.video, tt.audio, p.LoopCount, tt.want)
			}
			if p.TruncateAtSeconds != tt.audio {
				t.Fatalf("truncate = %v, want %v", p.TruncateAtSeconds, tt.audio)
			}
		})
	}
}

func TestPlan_CoversAudioMinimally(t *testing.T) {
	for _, v := range []float64{0.5, 1, 2.37, 10, 59.94} {
		for a := 0.1; a < 200; a += 0.73 {
			p, err := Plan(v, a)
			if err != nil {
				t.Fatal(err)
			}
			if float64(p.LoopCount+1)*v < a-Epsilon-1e-9 {
				t.Fatalf("Plan(%v, %v): %d loops do not cover audio", v, a, p.LoopCount)
			}
			if p.LoopCount > 0 && float64(p.LoopCount)*v > a-Epsilon+1e-9 {
				t.Fatalf("Plan(%v, %v): %d loops is not minimal", v, a, p.LoopCount)
			}
			if p.TruncateAtSeconds != a {
				t.Fatalf("truncate must equal audio duration")
			}
		}
	}
}

func TestPlan_Preconditions(t *testing.T) {
	tests := []struct {
		name         string
		video, audio float64
	}{
		{"zero video", 0, 10},
		{"negative video", -1, 10},
		{"near zero video", Epsilon / 2, 10},
		{"nan video", math.NaN(), 10},
		{"inf video", math.Inf(1), 10},
		{"zero audio", 10, 0},
		{"negative audio", 10, -3},
		{"nan audio", 10, math.NaN()},
		{"inf audio", 10, math.Inf(1)},
		{"absurd loop count", 0.002, 1e12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.video, tt.audio)
			if !errors.Is(err, types.ErrPrecondition) {
				t.Fatalf("expected ErrPrecondition, got %v", err)
			}
		})
	}
}

func TestRenderParams(t *testing.T) {
	p, err := Plan(10, 25)
	if err != nil {
		t.Fatal(err)
	}
	rp := RenderParams(p, "bg.mp4", "voice.mp3", "subs.ass", "final.mp4")
	want := types.RenderParams{
		VideoPath:    "bg.mp4",
		AudioPath:    "voice.mp3",
		SubtitlePath: "subs.ass",
		LoopCount:    2,
		TruncateAt:   25,
		OutputPath:   "final.mp4",
	}
	if rp != want {
		t.Fatalf("RenderParams = %+v, want %+v", rp, want)
	}
}
