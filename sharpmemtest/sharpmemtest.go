// Package sharpmemtest implements a Sharp memory LCD emulator.
//
// Panel sits on both ends of a sharpmem.Dev: it is the bus the bytes are
// written to and the chip select line delimiting transactions. It decodes
// every transaction the way the panel controller would and keeps the
// resulting image, so that tests and demos can run without hardware.
package sharpmemtest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/bits"
	"sync"

	"github.com/flavioheleno/sharpmem"
	"github.com/flavioheleno/sharpmem/image1bit"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Colors used by Render.
var (
	Ink   = color.NRGBA{0x20, 0x20, 0x28, 0xFF}
	Paper = color.NRGBA{0xC8, 0xC8, 0xC0, 0xFF}
)

// Panel emulates a memory LCD. It implements conn.Conn, conn.Limits and
// sharpmem.ChipSelect.
//
// The first protocol violation is kept and returned by Err; decoding
// continues so that later transactions still update the image.
type Panel struct {
	mu sync.Mutex

	opts      sharpmem.Opts
	lineBytes int
	active    gpio.Level

	selected bool
	pending  []byte

	img   *image1bit.HorizontalLSB
	cmds  []byte
	txs   int
	vcom  bool
	first bool
	err   error

	w       io.Writer
	palette *ansi256.Palette
	buf     bytes.Buffer
}

// New returns a Panel matching opts. opts can be nil to use the
// LS013B7DH05 preset; a zero Protocol means sharpmem.ProtocolLSB.
func New(opts *sharpmem.Opts) *Panel {
	o := sharpmem.LS013B7DH05
	if opts != nil {
		o = *opts
	}
	if o.Protocol == (sharpmem.Protocol{}) {
		o.Protocol = sharpmem.ProtocolLSB
	}
	img := image1bit.NewHorizontalLSB(image.Rect(0, 0, o.W, o.H))
	lineBytes := img.RowBytes()
	if o.LineAlign > 1 {
		lineBytes = (lineBytes + o.LineAlign - 1) / o.LineAlign * o.LineAlign
	}
	p := &Panel{
		opts:      o,
		lineBytes: lineBytes,
		active:    gpio.High,
		img:       img,
		first:     true,
		palette:   ansi256.Default,
	}
	if o.CSActiveLow {
		p.active = gpio.Low
	}
	return p
}

// NewTerminal returns a Panel that draws itself on stdout after every
// transaction changing the image.
func NewTerminal(opts *sharpmem.Opts) *Panel {
	p := New(opts)
	p.w = colorable.NewColorableStdout()
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("sharpmemtest.Panel{%dx%d, %s}", p.opts.W, p.opts.H, p.opts.Protocol.Name)
}

// Duplex implements conn.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// MaxTxSize implements conn.Limits. It returns Opts.MaxTxSize, 0 meaning
// no limit.
func (p *Panel) MaxTxSize() int {
	return p.opts.MaxTxSize
}

// Tx implements conn.Conn. Bytes written while chip select is released are
// ignored by the panel and recorded as a violation.
func (p *Panel) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("sharpmemtest: reads are not supported")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.selected {
		p.violation("%d bytes written with chip select released", len(w))
		return nil
	}
	p.pending = append(p.pending, w...)
	return nil
}

// Out implements sharpmem.ChipSelect. Releasing chip select ends the
// transaction and decodes it.
func (p *Panel) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	asserted := l == p.active
	switch {
	case asserted && !p.selected:
		p.selected = true
		p.pending = p.pending[:0]
	case !asserted && p.selected:
		p.selected = false
		p.txs++
		if p.decode(p.pending) && p.w != nil {
			p.buf.Reset()
			_, _ = p.buf.WriteString("\033[H")
			p.render(&p.buf)
			_, err := p.buf.WriteTo(p.w)
			return err
		}
	}
	return nil
}

// Image returns a copy of the image shown by the panel.
func (p *Panel) Image() *image1bit.HorizontalLSB {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := *p.img
	img.Pix = append([]byte(nil), p.img.Pix...)
	return &img
}

// Commands returns the command bytes received so far, VCOM bit included.
func (p *Panel) Commands() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.cmds...)
}

// Transactions returns the number of completed chip select cycles.
func (p *Panel) Transactions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.txs
}

// Err returns the first protocol violation, if any.
func (p *Panel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Render draws the panel image to w, one colored block per pixel.
func (p *Panel) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.Reset()
	p.render(&p.buf)
	_, err := p.buf.WriteTo(w)
	return err
}

func (p *Panel) render(buf *bytes.Buffer) {
	for y := 0; y < p.opts.H; y++ {
		for x := 0; x < p.opts.W; x++ {
			c := Paper
			if p.img.BitAt(x, y) {
				c = Ink
			}
			_, _ = buf.WriteString(p.palette.Block(c))
		}
		_, _ = buf.WriteString("\033[0m\n")
	}
}

func (p *Panel) violation(format string, a ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("sharpmemtest: "+format, a...)
	}
}

// decode applies one transaction. It reports whether the image changed.
func (p *Panel) decode(b []byte) bool {
	if len(b) == 0 {
		p.violation("transaction %d is empty", p.txs)
		return false
	}
	pr := p.opts.Protocol
	cmd := b[0]
	p.cmds = append(p.cmds, cmd)
	vcom := cmd&pr.VCOM != 0
	if !p.first && vcom == p.vcom {
		p.violation("transaction %d: VCOM did not alternate (command 0x%02X)", p.txs, cmd)
	}
	p.first = false
	p.vcom = vcom

	rest := b[1:]
	switch cmd &^ pr.VCOM {
	case pr.Clear:
		p.trailer(rest, "clear")
		p.img.Clear()
		return true
	case pr.Hold:
		p.trailer(rest, "hold")
		return false
	case pr.Write:
		if pr.Framing == sharpmem.Addressed {
			p.decodeAddressed(rest)
		} else {
			p.decodeSequential(rest)
		}
		return true
	default:
		p.violation("transaction %d: unknown command 0x%02X", p.txs, cmd)
		return false
	}
}

func (p *Panel) trailer(b []byte, what string) {
	if len(b) != 1 || b[0] != 0x00 {
		p.violation("transaction %d: %s must end with a single 0x00, got % X", p.txs, what, b)
	}
}

func (p *Panel) decodeAddressed(b []byte) {
	for len(b) >= p.lineBytes+2 {
		idx := int(p.unwire(b[0]))
		if idx < 1 || idx > p.opts.H {
			p.violation("transaction %d: row index %d out of range", p.txs, idx)
		} else {
			p.storeRow(idx-1, b[1:1+p.lineBytes])
		}
		if b[1+p.lineBytes] != 0x00 {
			p.violation("transaction %d: row %d is not terminated", p.txs, idx)
		}
		b = b[p.lineBytes+2:]
	}
	p.trailer(b, "write")
}

func (p *Panel) decodeSequential(b []byte) {
	y := 0
	for ; len(b) >= p.lineBytes+1; y++ {
		if y < p.opts.H {
			p.storeRow(y, b[:p.lineBytes])
		}
		if b[p.lineBytes] != 0x00 {
			p.violation("transaction %d: row %d is not terminated", p.txs, y+1)
		}
		b = b[p.lineBytes+1:]
	}
	if y > p.opts.H {
		p.violation("transaction %d: %d rows sent to a %d rows panel", p.txs, y, p.opts.H)
	}
	p.trailer(b, "write")
}

// storeRow stores the visible bytes of one wire row; alignment padding is
// dropped.
func (p *Panel) storeRow(y int, line []byte) {
	for i := 0; i < p.img.RowBytes(); i++ {
		v := p.unwire(line[i])
		if p.opts.Invert {
			v = ^v
		}
		p.img.SetRowByte(y, i, v)
	}
}

func (p *Panel) unwire(b byte) byte {
	if p.opts.Protocol.BitOrder == sharpmem.MSBFirst {
		return bits.Reverse8(b)
	}
	return b
}

var _ conn.Conn = &Panel{}
var _ conn.Limits = &Panel{}
var _ sharpmem.ChipSelect = &Panel{}
