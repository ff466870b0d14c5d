// Package sharpmem controls a Sharp memory-in-pixel LCD via SPI.
//
// The LS0xx panels are 1-bit reflective LCDs addressed one row at a time.
// Common resolutions are 144x168, 128x128 and 400x240.
package sharpmem

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/sharpmem/image1bit"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var (
	// ErrBus is wrapped by errors caused by a failed bus write.
	ErrBus = errors.New("sharpmem: bus write failed")
	// ErrChipSelect is wrapped by errors caused by the chip select line.
	ErrChipSelect = errors.New("sharpmem: chip select failed")

	errHalted = errors.New("sharpmem: halted")
)

// ChipSelect is the digital output driving the panel SCS line.
//
// gpio.PinOut implements it.
type ChipSelect interface {
	Out(l gpio.Level) error
}

// Opts is the configuration for the display.
type Opts struct {
	// Display dimensions in pixels
	W int
	H int

	// Protocol defaults to ProtocolLSB.
	Protocol Protocol

	// LineAlign pads every wire row to a multiple of this many bytes. Some
	// panels need 16 bit aligned rows. 0 and 1 mean no padding.
	LineAlign int

	// Invert sends dark pixels as 0 bits. The LS0xx panels show 1 bits as
	// white, so all presets set it.
	Invert bool

	// CSActiveLow asserts chip select low. Sharp panels use an active high
	// SCS line.
	CSActiveLow bool

	// MaxTxSize caps a single Tx call. When 0, conn.Limits is queried, with
	// a fallback of 4096 bytes.
	MaxTxSize int

	// Speed is the SPI clock used by NewSPI (default: 1MHz).
	Speed physic.Frequency

	// Optional DISP pin, driven high once the panel is cleared and low on
	// Halt.
	DISP gpio.PinOut
}

// Panel presets.
var (
	// LS013B7DH05 is the 1.26" 144x168 panel.
	LS013B7DH05 = Opts{W: 144, H: 168, Protocol: ProtocolLSB, Invert: true}
	// LS013B4DN04 is the 1.35" 96x96 panel.
	LS013B4DN04 = Opts{W: 96, H: 96, Protocol: ProtocolLSB, Invert: true}
	// LS013B7DH03 is the 1.28" 128x128 panel.
	LS013B7DH03 = Opts{W: 128, H: 128, Protocol: ProtocolLSB, Invert: true}
	// LS011B7DH03 is the 1.08" 160x68 panel.
	LS011B7DH03 = Opts{W: 160, H: 68, Protocol: ProtocolLSB, Invert: true}
	// LS012B7DD01 is the 1.19" 184x38 panel; its rows are 16 bit aligned.
	LS012B7DD01 = Opts{W: 184, H: 38, Protocol: ProtocolLSB, LineAlign: 2, Invert: true}
	// LS027B7DH01 is the 2.7" 400x240 panel.
	LS027B7DH01 = Opts{W: 400, H: 240, Protocol: ProtocolLSB, Invert: true}
)

const defaultMaxTxSize = 4096

// Dev is the device handle for the display.
//
// Dev is not safe for concurrent use.
type Dev struct {
	// Communication
	c         conn.Conn
	cs        ChipSelect
	disp      gpio.PinOut
	csActive  gpio.Level
	csIdle    gpio.Level
	maxTxSize int

	opts   Opts
	buffer *image1bit.HorizontalLSB
	enc    *encoder
	cmd    [1]byte
	zero   [1]byte

	halted bool
}

// resolveOpts applies defaults and validates the options.
func resolveOpts(opts *Opts) (Opts, error) {
	if opts == nil {
		return LS013B7DH05, nil
	}
	o := *opts
	if o.Protocol == (Protocol{}) {
		o.Protocol = ProtocolLSB
	}
	if o.W <= 0 {
		return o, errors.New("sharpmem: width must be > 0")
	}
	if o.H <= 0 {
		return o, errors.New("sharpmem: height must be > 0")
	}
	if o.LineAlign < 0 {
		return o, errors.New("sharpmem: line alignment must be >= 0")
	}
	if o.MaxTxSize < 0 {
		return o, errors.New("sharpmem: max transfer size must be >= 0")
	}
	if err := o.Protocol.validate(); err != nil {
		return o, err
	}
	if o.Protocol.Framing == Addressed && o.H > 255 {
		return o, errors.New("sharpmem: height must be <= 255 with addressed framing")
	}
	return o, nil
}

// NewSPI connects to the display on an SPI port.
//
// The port is configured for Mode0 without hardware chip select, 8-bit
// transfers, least significant bit first for LSBFirst protocols.
//
// opts can be nil to use the LS013B7DH05 preset.
func NewSPI(p spi.Port, cs ChipSelect, opts *Opts) (*Dev, error) {
	o, err := resolveOpts(opts)
	if err != nil {
		return nil, err
	}
	speed := o.Speed
	if speed == 0 {
		speed = physic.MegaHertz
	}
	mode := spi.Mode0 | spi.NoCS
	if o.Protocol.BitOrder == LSBFirst {
		mode |= spi.LSBFirst
	}
	c, err := p.Connect(speed, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("sharpmem: connect: %w", err)
	}
	return New(c, cs, &o)
}

// New returns a Dev using an already connected bus.
//
// It takes ownership of c and cs, drives chip select to its idle level and
// clears the display.
func New(c conn.Conn, cs ChipSelect, opts *Opts) (*Dev, error) {
	o, err := resolveOpts(opts)
	if err != nil {
		return nil, err
	}

	maxTxSize := o.MaxTxSize
	if maxTxSize == 0 {
		if l, ok := c.(conn.Limits); ok {
			maxTxSize = l.MaxTxSize()
		}
	}
	if maxTxSize <= 0 {
		maxTxSize = defaultMaxTxSize
	}

	buffer := image1bit.NewHorizontalLSB(image.Rect(0, 0, o.W, o.H))
	d := &Dev{
		c:         c,
		cs:        cs,
		disp:      o.DISP,
		csActive:  gpio.High,
		csIdle:    gpio.Low,
		maxTxSize: maxTxSize,
		opts:      o,
		buffer:    buffer,
		enc:       newEncoder(o.Protocol, buffer.RowBytes(), o.H, o.LineAlign, o.Invert),
	}
	if o.CSActiveLow {
		d.csActive, d.csIdle = gpio.Low, gpio.High
	}

	if err := d.cs.Out(d.csIdle); err != nil {
		return nil, fmt.Errorf("%w: idle: %w", ErrChipSelect, err)
	}
	if err := d.Clear(); err != nil {
		return nil, err
	}
	if d.disp != nil {
		if err := d.disp.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("sharpmem: failed to drive DISP high: %w", err)
		}
	}
	return d, nil
}

// transact runs one bus transaction: chip select asserted, the command byte
// for op, the payload, chip select released.
//
// A bus failure stops the transfer. Chip select is released whenever it was
// asserted; a bus error is reported in preference to a release error.
func (d *Dev) transact(op byte, payload []byte) error {
	if err := d.cs.Out(d.csActive); err != nil {
		return fmt.Errorf("%w: assert: %w", ErrChipSelect, err)
	}
	err := d.send(op, payload)
	if cerr := d.cs.Out(d.csIdle); cerr != nil && err == nil {
		err = fmt.Errorf("%w: release: %w", ErrChipSelect, cerr)
	}
	return err
}

// send writes the command byte on its own, then the payload in chunks of at
// most maxTxSize bytes.
func (d *Dev) send(op byte, payload []byte) error {
	d.cmd[0] = d.enc.command(op)
	if err := d.c.Tx(d.cmd[:], nil); err != nil {
		return fmt.Errorf("%w: command: %w", ErrBus, err)
	}
	for len(payload) > 0 {
		n := min(len(payload), d.maxTxSize)
		if err := d.c.Tx(payload[:n], nil); err != nil {
			return fmt.Errorf("%w: %w", ErrBus, err)
		}
		payload = payload[n:]
	}
	return nil
}

// Clear clears the frame buffer and the display.
func (d *Dev) Clear() error {
	if d.halted {
		return errHalted
	}
	d.buffer.Clear()
	return d.transact(d.opts.Protocol.Clear, d.zero[:])
}

// Refresh sends the whole frame buffer to the display.
//
// The panel only needs a refresh when the content changed, but VCOM must
// still be flipped at least once per second; see Hold.
func (d *Dev) Refresh() error {
	if d.halted {
		return errHalted
	}
	return d.transact(d.opts.Protocol.Write, d.enc.encode(d.buffer))
}

// Hold flips VCOM without changing the displayed content.
//
// Call it periodically (1Hz or faster) when the content is static.
func (d *Dev) Hold() error {
	if d.halted {
		return errHalted
	}
	return d.transact(d.opts.Protocol.Hold, d.zero[:])
}

// SetPixel sets the pixel at (x, y) in the frame buffer. Out of range
// coordinates are ignored.
func (d *Dev) SetPixel(x, y int, dark bool) {
	d.buffer.SetBit(x, y, image1bit.Bit(dark))
}

// Pixel returns the pixel at (x, y) in the frame buffer. ok is false when
// the coordinates are out of range.
func (d *Dev) Pixel(x, y int) (dark, ok bool) {
	b, ok := d.buffer.Lookup(x, y)
	return bool(b), ok
}

// ClearBuffer clears the frame buffer only. The display is not updated.
func (d *Dev) ClearBuffer() {
	d.buffer.Clear()
}

// Buffer returns the frame buffer. Changes show up on the next Refresh.
func (d *Dev) Buffer() *image1bit.HorizontalLSB {
	return d.buffer
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.buffer.Rect
}

// Write replaces the frame buffer with raw HorizontalLSB pixel data and
// refreshes the display. The data must be exactly ceil(W*H/8) bytes, the
// length of Buffer().Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errHalted
	}
	if len(pixels) != len(d.buffer.Pix) {
		return 0, errors.New("sharpmem: invalid buffer size")
	}
	copy(d.buffer.Pix, pixels)
	if err := d.Refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws src into the frame buffer and refreshes the whole display.
// Colors are reduced to 1 bit with image1bit.BitModel.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errHalted
	}

	// draw.Draw clips dst itself and shifts sp to match.
	if dst.Intersect(d.buffer.Rect).Empty() {
		return nil
	}
	draw.Draw(d.buffer, dst, src, sp, draw.Src)
	return d.Refresh()
}

// Halt clears the display and turns it off through DISP when present.
// After calling Halt, the device does not accept further operations.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	err := d.Clear()
	if d.disp != nil {
		if derr := d.disp.Out(gpio.Low); derr != nil && err == nil {
			err = fmt.Errorf("sharpmem: failed to drive DISP low: %w", derr)
		}
	}
	d.halted = true
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("sharpmem.Dev{%dx%d, %s}", d.opts.W, d.opts.H, d.opts.Protocol.Name)
}

var _ display.Drawer = &Dev{}
