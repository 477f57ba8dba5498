package subtitles

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/narrashort/internal/types"
)

// ErrNoSubtitles is returned when a transcript produces no dialogue lines.
var ErrNoSubtitles = fmt.Errorf("%w: no transcribed words for subtitles", types.ErrMissingInput)

const header = `[Script Info]
Title: Narrated Short
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Ubuntu,16,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,6,1,2,70,70,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// Track is the result of building subtitles from one transcript.
type Track struct {
	Events      []types.SubtitleEvent
	Diagnostics []Diagnostic
}

// Diagnostic records a word that was clamped or skipped.
type Diagnostic struct {
	Index   int
	Word    string
	Reason  string
	Skipped bool
}

func (d Diagnostic) Err() error {
	return fmt.Errorf("%w: word %d %q: %s", types.ErrMalformedWord, d.Index, d.Word, d.Reason)
}

// Build converts a word-level transcript into one karaoke event per spoken word.
// Malformed words never abort the track; they are clamped or skipped and
// reported through Track.Diagnostics.
func Build(tr *types.Transcript) (Track, error) {
	if tr == nil || len(tr.Words) == 0 {
		return Track{}, ErrNoSubtitles
	}
	var t Track
	for i, w := range tr.Words {
		if !w.IsWord() {
			continue
		}
		ev, reason, ok := buildEvent(w)
		if reason != "" {
			t.Diagnostics = append(t.Diagnostics, Diagnostic{Index: i, Word: w.Text, Reason: reason, Skipped: !ok})
		}
		if ok {
			t.Events = append(t.Events, ev)
		}
	}
	if len(t.Events) == 0 {
		return t, ErrNoSubtitles
	}
	return t, nil
}

func buildEvent(w types.TranscriptWord) (types.SubtitleEvent, string, bool) {
	if w.MissingTimes {
		return types.SubtitleEvent{}, "missing timestamp", false
	}
	if !finite(w.Start) || !finite(w.End) {
		return types.SubtitleEvent{}, "non-finite timestamp", false
	}
	var reasons []string
	start, end := w.Start, w.End
	if start < 0 {
		start = 0
		reasons = append(reasons, "negative start clamped to 0")
	}
	if end < start {
		end = start
		reasons = append(reasons, "end before start clamped")
	}
	ev := types.SubtitleEvent{
		Start:           start,
		End:             end,
		StartTime:       Timecode(start),
		EndTime:         Timecode(end),
		HighlightCentis: highlightCentis(w.Start, w.End),
		Text:            strings.ReplaceAll(w.Text, ",", ""),
	}
	return ev, strings.Join(reasons, "; "), true
}

// highlightCentis uses the word's own timing, so a clamped start does not
// shorten the highlight. Inverted words highlight for zero centiseconds.
func highlightCentis(start, end float64) int {
	cs := int(math.Round((end - start) * 100))
	if cs < 0 {
		return 0
	}
	return cs
}

// Markup renders the ASS document. Output is deterministic for a given track.
func (t Track) Markup() string {
	var b strings.Builder
	b.WriteString(header)
	for _, ev := range t.Events {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,{\\k%d}%s\n", ev.StartTime, ev.EndTime, ev.HighlightCentis, ev.Text)
	}
	return b.String()
}

// Timecode formats seconds as H:MM:SS.CC. Rounding happens on the total
// centisecond count so a carry never yields a seconds field of 60.
func Timecode(sec float64) string {
	if !finite(sec) || sec < 0 {
		sec = 0
	}
	cs := int64(math.Round(sec * 100))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
