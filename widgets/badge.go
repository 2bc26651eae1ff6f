package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Badge renders a route label on its route colour:
//
//	[ 61A ]
type Badge struct {
	Text       string
	Background vaxis.Color
	MinWidth   int // pad narrow labels so badges line up in a column
}

// Width returns the number of cells the badge occupies.
func (b *Badge) Width() int {
	return max(TextWidth(b.Text)+2, b.MinWidth)
}

// Draw renders the badge as a single row, centred within its width.
func (b *Badge) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	w := min(b.Width(), int(ctx.Max.Width))
	s := vxfw.NewSurface(uint16(w), 1, b)
	style := vaxis.Style{
		Foreground: vaxis.IndexColor(15),
		Background: b.Background,
		Attribute:  vaxis.AttrBold,
	}
	Fill(&s, 0, 0, w, style)
	WriteText(&s, 0, 0, w, b.Text, style, AlignCenter)
	return s, nil
}
