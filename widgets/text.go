package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Align positions text inside a fixed-width cell run.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// TextWidth returns the display width of s in terminal cells.
func TextWidth(s string) int {
	w := 0
	for _, ch := range vaxis.Characters(s) {
		w += ch.Width
	}
	return w
}

// WriteText writes s into surf at (col, row) within maxWidth cells and
// returns the column just past the last cell written. Text that does not
// fit is cut at a grapheme boundary.
func WriteText(surf *vxfw.Surface, col, row uint16, maxWidth int, s string, style vaxis.Style, align Align) uint16 {
	if maxWidth <= 0 {
		return col
	}
	chars := vaxis.Characters(s)

	displayWidth := 0
	for _, ch := range chars {
		displayWidth += ch.Width
	}

	offset := 0
	if displayWidth < maxWidth {
		switch align {
		case AlignRight:
			offset = maxWidth - displayWidth
		case AlignCenter:
			offset = (maxWidth - displayWidth) / 2
		}
	}

	pos := offset
	for _, ch := range chars {
		if pos+ch.Width > maxWidth {
			break
		}
		surf.WriteCell(col+uint16(pos), row, vaxis.Cell{
			Character: ch,
			Style:     style,
		})
		pos += ch.Width
	}
	return col + uint16(pos)
}

// Fill paints width cells starting at (col, row) with blanks in style.
func Fill(surf *vxfw.Surface, col, row uint16, width int, style vaxis.Style) {
	for i := 0; i < width; i++ {
		surf.WriteCell(col+uint16(i), row, vaxis.Cell{
			Character: vaxis.Character{Grapheme: " ", Width: 1},
			Style:     style,
		})
	}
}
