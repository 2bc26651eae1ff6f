package widgets

import (
	"strconv"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Tab is one entry of a TabBar. Count is shown after the label when >= 0.
type Tab struct {
	Label string
	Count int
}

// TabBar selects one sign side when only one fits on screen.
type TabBar struct {
	tabs   []Tab
	active int
}

// NewTabBar creates a TabBar with the given labels and no counts. Active defaults to 0.
func NewTabBar(labels []string) *TabBar {
	tabs := make([]Tab, len(labels))
	for i, l := range labels {
		tabs[i] = Tab{Label: l, Count: -1}
	}
	return &TabBar{tabs: tabs}
}

// Active returns the currently active tab index.
func (tb *TabBar) Active() int {
	return tb.active
}

// SetActive sets the active tab index. Out-of-range values are ignored.
func (tb *TabBar) SetActive(i int) {
	if i >= 0 && i < len(tb.tabs) {
		tb.active = i
	}
}

// SetCount updates the count shown on tab i. Out-of-range values are ignored.
func (tb *TabBar) SetCount(i, count int) {
	if i >= 0 && i < len(tb.tabs) {
		tb.tabs[i].Count = count
	}
}

// Next advances to the next tab, wrapping around.
func (tb *TabBar) Next() {
	tb.active = (tb.active + 1) % len(tb.tabs)
}

// Prev moves to the previous tab, wrapping around.
func (tb *TabBar) Prev() {
	tb.active = (tb.active - 1 + len(tb.tabs)) % len(tb.tabs)
}

// Draw renders the tabs as a single row: " Forbes Ave (3) | Fifth Ave (5) ".
// The active tab is rendered with reverse video.
func (tb *TabBar) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, tb)

	col := uint16(0)
	for i, tab := range tb.tabs {
		if i > 0 {
			col = WriteText(&s, col, 0, int(ctx.Max.Width)-int(col), " | ", vaxis.Style{Attribute: vaxis.AttrDim}, AlignLeft)
		}

		style := vaxis.Style{}
		if i == tb.active {
			style.Attribute |= vaxis.AttrReverse
		}

		text := " " + tab.Label
		if tab.Count >= 0 {
			text += " (" + strconv.Itoa(tab.Count) + ")"
		}
		text += " "
		col = WriteText(&s, col, 0, int(ctx.Max.Width)-int(col), text, style, AlignLeft)
	}

	return s, nil
}
