package sharpmem

import (
	"math/bits"

	"github.com/flavioheleno/sharpmem/image1bit"
)

// encoder turns the frame buffer into the wire format of a Protocol and
// owns the VCOM polarity.
type encoder struct {
	p         Protocol
	vcom      bool
	invert    bool
	lineBytes int    // wire bytes per row, padding included
	frame     []byte // payload of the write command, reused across refreshes
}

func newEncoder(p Protocol, rowBytes, height, lineAlign int, invert bool) *encoder {
	lineBytes := rowBytes
	if lineAlign > 1 {
		lineBytes = (rowBytes + lineAlign - 1) / lineAlign * lineAlign
	}
	return &encoder{
		p:         p,
		vcom:      true,
		invert:    invert,
		lineBytes: lineBytes,
		frame:     make([]byte, 0, frameSize(p.Framing, lineBytes, height)),
	}
}

// frameSize returns the payload length following the write command.
func frameSize(f Framing, lineBytes, height int) int {
	if f == Addressed {
		// index, line, terminator per row; trailer
		return height*(lineBytes+2) + 1
	}
	return height*(lineBytes+1) + 1
}

// command returns the command byte for op and flips the polarity used by the
// next one. The flip happens whether or not the byte makes it to the panel.
func (e *encoder) command(op byte) byte {
	cmd := op
	if e.vcom {
		cmd |= e.p.VCOM
	}
	e.vcom = !e.vcom
	return cmd
}

// encode returns the write command payload for img. The result aliases
// e.frame and is only valid until the next call.
func (e *encoder) encode(img *image1bit.HorizontalLSB) []byte {
	if e.p.Framing == Addressed {
		return e.encodeAddressed(img)
	}
	return e.encodeSequential(img)
}

func (e *encoder) encodeAddressed(img *image1bit.HorizontalLSB) []byte {
	f := e.frame[:0]
	height := img.Rect.Dy()
	for y := 0; y < height; y++ {
		f = append(f, e.wire(byte(y+1)))
		for x := 0; x < e.lineBytes; x++ {
			f = append(f, e.lineByte(img, y, x))
		}
		f = append(f, 0x00)
	}
	return append(f, 0x00)
}

// encodeSequential emits the rows as one stream and inserts a terminator
// every lineBytes bytes.
func (e *encoder) encodeSequential(img *image1bit.HorizontalLSB) []byte {
	f := e.frame[:0]
	total := img.Rect.Dy() * e.lineBytes
	count := 0
	for i := 0; i < total; i++ {
		f = append(f, e.lineByte(img, i/e.lineBytes, i%e.lineBytes))
		count++
		if count == e.lineBytes {
			f = append(f, 0x00)
			count = 0
		}
	}
	return append(f, 0x00)
}

// lineByte returns wire byte x of row y. Bytes past the row are alignment
// padding and carry light pixels.
func (e *encoder) lineByte(img *image1bit.HorizontalLSB, y, x int) byte {
	b := img.RowByte(img.Rect.Min.Y+y, x)
	if e.invert {
		b = ^b
	}
	return e.wire(b)
}

// wire converts a byte to the protocol bit order.
func (e *encoder) wire(b byte) byte {
	if e.p.BitOrder == MSBFirst {
		return bits.Reverse8(b)
	}
	return b
}
