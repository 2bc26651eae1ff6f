package widgets

import (
	"math"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Block characters for sparkline rendering (8 levels).
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const sparkFailed = '×'

type sample struct {
	d      time.Duration
	failed bool
}

// Sparkline renders a 1-row history of refresh latencies. Failed refreshes
// are drawn as a red cross instead of a bar.
type Sparkline struct {
	samples []sample
	head    int
	count   int
}

// NewSparkline creates a Sparkline with the given ring buffer capacity.
func NewSparkline(capacity int) *Sparkline {
	return &Sparkline{
		samples: make([]sample, capacity),
	}
}

// Push records the latency of one refresh.
func (sl *Sparkline) Push(d time.Duration, failed bool) {
	sl.samples[sl.head] = sample{d: d, failed: failed}
	sl.head = (sl.head + 1) % len(sl.samples)
	if sl.count < len(sl.samples) {
		sl.count++
	}
}

// Count returns the number of samples currently stored.
func (sl *Sparkline) Count() int {
	return sl.count
}

// Last returns the most recent sample, if any.
func (sl *Sparkline) Last() (time.Duration, bool, bool) {
	if sl.count == 0 {
		return 0, false, false
	}
	s := sl.samples[(sl.head-1+len(sl.samples))%len(sl.samples)]
	return s.d, s.failed, true
}

// ordered returns the stored samples in chronological order.
func (sl *Sparkline) ordered() []sample {
	if sl.count == 0 {
		return nil
	}
	out := make([]sample, sl.count)
	start := (sl.head - sl.count + len(sl.samples)) % len(sl.samples)
	for i := 0; i < sl.count; i++ {
		out[i] = sl.samples[(start+i)%len(sl.samples)]
	}
	return out
}

// Draw renders the sparkline as a single row, newest sample on the right.
func (sl *Sparkline) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, sl)

	vals := sl.ordered()
	if len(vals) == 0 {
		return s, nil
	}

	width := int(ctx.Max.Width)
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}

	// Scale over successful samples only.
	minV, maxV := time.Duration(math.MaxInt64), time.Duration(0)
	for _, v := range vals {
		if v.failed {
			continue
		}
		minV = min(minV, v.d)
		maxV = max(maxV, v.d)
	}

	for i, v := range vals {
		ch := sparkFailed
		style := vaxis.Style{Foreground: vaxis.IndexColor(1)} // red
		if !v.failed {
			level := 0
			if maxV > minV {
				level = int(math.Round(float64(v.d-minV) / float64(maxV-minV) * 7))
				level = min(level, 7)
			} else if maxV > 0 {
				level = 4 // flat non-zero line
			}
			ch = sparkBlocks[level]
			style = vaxis.Style{Foreground: vaxis.IndexColor(6)} // cyan
		}
		for _, c := range ctx.Characters(string(ch)) {
			s.WriteCell(uint16(i), 0, vaxis.Cell{Character: c, Style: style})
		}
	}

	return s, nil
}
