// Package image1bit provides a 1-bit image format for Sharp memory-in-pixel displays.
package image1bit

import (
	"image"
	"image/color"
)

// Bit is a 1-bit color. Dark is a set bit.
type Bit bool

const (
	// Light is a reflective (white) pixel.
	Light Bit = false
	// Dark is an absorbing (black) pixel.
	Dark Bit = true
)

// RGBA implements color.Color.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0, 0, 0, 0xFFFF
	}
	return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "Dark"
	}
	return "Light"
}

// toBit converts any color.Color to Bit.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Light
	}
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y < 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// HorizontalLSB is a 1-bit image packed as one continuous bit stream in
// raster order, 8 pixels per byte, the first pixel in the least significant
// bit. Pixel (x, y) is bit y*width + x; rows are not padded, so a row only
// starts on a byte boundary when the width is a multiple of 8.
type HorizontalLSB struct {
	Pix  []byte          // Pixel data, ceil(width*height/8) bytes
	Rect image.Rectangle // Image bounds
}

// NewHorizontalLSB creates a new HorizontalLSB image with the specified bounds.
func NewHorizontalLSB(r image.Rectangle) *HorizontalLSB {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &HorizontalLSB{Rect: r}
	}
	return &HorizontalLSB{
		Pix:  make([]byte, (w*h+7)/8),
		Rect: r,
	}
}

// ColorModel returns the color model of the image.
func (p *HorizontalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *HorizontalLSB) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *HorizontalLSB) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit at (x, y), Light when out of bounds.
func (p *HorizontalLSB) BitAt(x, y int) Bit {
	b, _ := p.Lookup(x, y)
	return b
}

// Lookup returns the Bit at (x, y). ok is false when the point is out of
// bounds.
func (p *HorizontalLSB) Lookup(x, y int) (b Bit, ok bool) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Light, false
	}
	offset, mask := p.pixOffset(x, y)
	return p.Pix[offset]&mask != 0, true
}

// Set implements draw.Image.
func (p *HorizontalLSB) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the Bit at (x, y). Points out of bounds are ignored.
func (p *HorizontalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.pixOffset(x, y)
	if b {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// Clear sets every pixel to Light.
func (p *HorizontalLSB) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0
	}
}

// RowBytes returns the number of bytes needed to send one row, ceil(width/8).
func (p *HorizontalLSB) RowBytes() int {
	return (p.Rect.Dx() + 7) / 8
}

// RowByte returns byte i of row y in wire form: pixel 8*i + k of the row in
// bit k. Bits past the right edge, and rows or bytes out of bounds, are
// Light.
func (p *HorizontalLSB) RowByte(y, i int) byte {
	w := p.Rect.Dx()
	if y < p.Rect.Min.Y || y >= p.Rect.Max.Y || i < 0 || i*8 >= w {
		return 0
	}
	if w%8 == 0 {
		return p.Pix[(y-p.Rect.Min.Y)*(w/8)+i]
	}
	var b byte
	x := p.Rect.Min.X + i*8
	for k := 0; k < 8; k++ {
		if p.BitAt(x+k, y) {
			b |= 1 << k
		}
	}
	return b
}

// SetRowByte is the inverse of RowByte. Bits past the right edge are
// ignored.
func (p *HorizontalLSB) SetRowByte(y, i int, b byte) {
	w := p.Rect.Dx()
	if y < p.Rect.Min.Y || y >= p.Rect.Max.Y || i < 0 || i*8 >= w {
		return
	}
	if w%8 == 0 {
		p.Pix[(y-p.Rect.Min.Y)*(w/8)+i] = b
		return
	}
	x := p.Rect.Min.X + i*8
	for k := 0; k < 8; k++ {
		p.SetBit(x+k, y, b&(1<<k) != 0)
	}
}

// pixOffset returns the byte offset and bit mask for the pixel at (x, y).
func (p *HorizontalLSB) pixOffset(x, y int) (offset int, mask byte) {
	index := (y-p.Rect.Min.Y)*p.Rect.Dx() + (x - p.Rect.Min.X)
	return index / 8, 1 << uint(index%8)
}
