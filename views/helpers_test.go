package views_test

import (
	"strings"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

func testDrawContext(w, h uint16) vxfw.DrawContext {
	return vxfw.DrawContext{
		Max: vxfw.Size{Width: w, Height: h},
		Min: vxfw.Size{},
		Characters: func(s string) []vaxis.Character {
			chars := make([]vaxis.Character, 0, len(s))
			for _, r := range s {
				chars = append(chars, vaxis.Character{Grapheme: string(r), Width: 1})
			}
			return chars
		},
	}
}

// surfaceText flattens a surface and its children into lines of text, one
// per buffer row, so tests can look for rendered strings.
func surfaceText(s vxfw.Surface) string {
	var b strings.Builder
	w := int(s.Size.Width)
	if w > 0 {
		for i, c := range s.Buffer {
			g := c.Character.Grapheme
			if g == "" {
				g = " "
			}
			b.WriteString(g)
			if (i+1)%w == 0 {
				b.WriteByte('\n')
			}
		}
	}
	for _, child := range s.Children {
		b.WriteString(surfaceText(child.Surface))
	}
	return b.String()
}
