package chip8

import "strings"

// Display is the monochrome frame buffer.
type Display struct {
	Pix [Height][Width]bool

	// Changed is set whenever the buffer is cleared or drawn to.
	// A renderer clears it once it has consumed the frame.
	Changed bool
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.Pix = [Height][Width]bool{}
	d.Changed = true
}

// On reports whether the pixel at (x, y) is lit.
// Coordinates outside the display are never lit.
func (d *Display) On(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.Pix[y][x]
}

// Draw XORs sprite onto the display with its top-left corner at (x, y),
// one byte per row with the most significant bit leftmost.
// The starting position wraps around the display edges; pixels that then
// fall past the right or bottom edge are clipped.
// Draw reports whether any lit pixel was turned off.
func (d *Display) Draw(x, y byte, sprite []byte) (collision bool) {
	x0, y0 := int(x)%Width, int(y)%Height
	for row, b := range sprite {
		py := y0 + row
		if py >= Height {
			break
		}
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) == 0 {
				continue
			}
			px := x0 + bit
			if px >= Width {
				break
			}
			if d.Pix[py][px] {
				collision = true
			}
			d.Pix[py][px] = !d.Pix[py][px]
		}
	}
	d.Changed = true
	return collision
}

func (d *Display) String() string {
	var b strings.Builder
	for y := range d.Pix {
		for _, on := range d.Pix[y] {
			if on {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
