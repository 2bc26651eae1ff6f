package views

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/transit-sign/board"
	"github.com/deevus/transit-sign/widgets"
)

// MinSplitWidth is the narrowest surface that shows both sides at once.
// Below it the board shows one side, selected with SetSide.
const MinSplitWidth = 60

const badgeWidth = 5

// BoardViewParams holds configuration for creating a BoardView.
type BoardViewParams struct {
	Store  *board.Store
	Labels [2]string
}

// BoardView draws the committed board as two columns, one per stop.
type BoardView struct {
	store  *board.Store
	labels [2]string
	side   int
}

// NewBoardView creates a BoardView reading from p.Store.
func NewBoardView(p BoardViewParams) *BoardView {
	return &BoardView{
		store:  p.Store,
		labels: p.Labels,
	}
}

// Loaded reports whether a board has been committed.
func (bv *BoardView) Loaded() bool {
	return bv.store.Snapshot().Updated()
}

// Side returns the side shown in narrow mode.
func (bv *BoardView) Side() int {
	return bv.side
}

// SetSide selects the side shown in narrow mode. Values other than 0 and 1 are ignored.
func (bv *BoardView) SetSide(i int) {
	if i == 0 || i == 1 {
		bv.side = i
	}
}

// Counts returns how many routes each side currently lists.
func (bv *BoardView) Counts() (a, b int) {
	v := bv.store.Snapshot()
	return len(v.EntriesA), len(v.EntriesB)
}

// Draw renders both columns side by side, or the selected side when the
// surface is narrower than MinSplitWidth.
func (bv *BoardView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !bv.Loaded() {
		return drawLoadingState(ctx, bv)
	}
	v := bv.store.Snapshot()

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, bv)
	colA, colB := board.Columns(v)
	cols := [2]*columnWidget{
		{title: bv.labels[0], entries: colA},
		{title: bv.labels[1], entries: colB},
	}

	if ctx.Max.Width < MinSplitWidth {
		surf, err := cols[bv.side].Draw(ctx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, 0, surf)
		return s, nil
	}

	leftWidth := (ctx.Max.Width - 1) / 2
	rightWidth := ctx.Max.Width - leftWidth - 1

	left, err := cols[0].Draw(ctx.WithMax(vxfw.Size{Width: leftWidth, Height: ctx.Max.Height}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, left)

	sep := vaxis.Style{Foreground: vaxis.IndexColor(8)}
	for row := uint16(0); row < ctx.Max.Height; row++ {
		widgets.WriteText(&s, leftWidth, row, 1, "│", sep, widgets.AlignLeft)
	}

	right, err := cols[1].Draw(ctx.WithMax(vxfw.Size{Width: rightWidth, Height: ctx.Max.Height}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(int(leftWidth)+1, 0, right)

	return s, nil
}

// PaddingCells converts a density's padding to terminal cells: horizontal
// indent and blank rows after each entry.
func PaddingCells(d board.Density) (x, y int) {
	return (d.PaddingX + 7) / 8, d.PaddingY / 12
}

// EntryRows returns the rows one entry occupies including its padding.
func EntryRows(e board.Entry) int {
	_, y := PaddingCells(e.Padding)
	if e.Placeholder {
		return 1 + y
	}
	return 2 + y
}

// columnWidget renders one side: a title row followed by its entries.
type columnWidget struct {
	title   string
	entries []board.Entry
}

func (c *columnWidget) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, c)
	width := int(ctx.Max.Width)
	height := int(ctx.Max.Height)
	if height == 0 {
		return s, nil
	}

	widgets.WriteText(&s, 1, 0, width-1, c.title, vaxis.Style{Attribute: vaxis.AttrBold}, widgets.AlignLeft)
	row := 2

	for _, e := range c.entries {
		if row >= height {
			break
		}
		padX, _ := PaddingCells(e.Padding)
		inner := width - 2*padX
		if inner <= 0 {
			break
		}
		if e.Placeholder {
			drawPlaceholder(&s, uint16(padX), uint16(row), inner, e)
		} else {
			if err := drawEntry(ctx, &s, padX, row, inner, e); err != nil {
				return vxfw.Surface{}, err
			}
		}
		row += EntryRows(e)
	}
	return s, nil
}

func drawPlaceholder(s *vxfw.Surface, col, row uint16, width int, e board.Entry) {
	widgets.WriteText(s, col, row, width, e.Route, vaxis.Style{Attribute: vaxis.AttrDim}, widgets.AlignLeft)
}

// drawEntry renders two rows:
//
//	[61A] Downtown            Approaching
//	      Empty             Next: 9, 14 min
func drawEntry(ctx vxfw.DrawContext, s *vxfw.Surface, col, row, width int, e board.Entry) error {
	badge := &widgets.Badge{Text: e.Route, Background: e.Badge, MinWidth: badgeWidth}
	badgeSurf, err := badge.Draw(ctx.WithMax(vxfw.Size{Width: uint16(width), Height: 1}))
	if err != nil {
		return err
	}
	s.AddChild(col, row, badgeSurf)
	textCol := col + int(badgeSurf.Size.Width) + 1

	countdownStyle := vaxis.Style{Attribute: vaxis.AttrBold}
	if e.Countdown.Approaching {
		countdownStyle = vaxis.Style{
			Foreground: vaxis.IndexColor(0),
			Background: vaxis.IndexColor(3),
			Attribute:  vaxis.AttrBold,
		}
	}
	countdown := " " + e.Countdown.Text + " "
	cdWidth := widgets.TextWidth(countdown)
	right := col + width
	cdCol := max(right-cdWidth, textCol)

	widgets.WriteText(s, uint16(textCol), uint16(row), cdCol-textCol-1, e.Destination, vaxis.Style{}, widgets.AlignLeft)
	widgets.WriteText(s, uint16(cdCol), uint16(row), right-cdCol, countdown, countdownStyle, widgets.AlignRight)

	next := uint16(row + 1)
	if int(next) >= int(ctx.Max.Height) {
		return nil
	}
	capEnd := textCol
	if e.HasCapacity {
		capEnd = int(widgets.WriteText(s, uint16(textCol), next, right-textCol, e.Capacity.Label,
			vaxis.Style{Foreground: e.Capacity.Color}, widgets.AlignLeft))
	}
	if e.Secondary != "" {
		// Ends one cell short of the edge to line up with the countdown text.
		secCol := max(right-1-widgets.TextWidth(e.Secondary), capEnd+1)
		widgets.WriteText(s, uint16(secCol), next, right-1-secCol, e.Secondary, vaxis.Style{Attribute: vaxis.AttrDim}, widgets.AlignLeft)
	}
	return nil
}
