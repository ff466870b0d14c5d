// Package linepin drives a GPIO line through the Linux GPIO character
// device (/dev/gpiochipN).
//
// Boards where periph's sysfs or memory mapped drivers cannot reach a pin
// (gpiochip numbering on the Raspberry Pi 5, USB GPIO expanders) can still
// provide the SCS and DISP lines of a sharpmem.Dev this way.
package linepin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Consumer is the label shown by gpioinfo for requested lines.
const Consumer = "sharpmem"

// line is the subset of *gpiocdev.Line used by Pin.
type line interface {
	SetValue(value int) error
	Close() error
}

// requestLine is replaced in tests.
var requestLine = func(chip string, offset int, opts ...gpiocdev.LineReqOption) (line, error) {
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Pin is an output line. It implements gpio.PinOut.
type Pin struct {
	chip   string
	offset int

	mu     sync.Mutex
	l      line
	closed bool
}

// Open requests line offset of chip (e.g. "gpiochip0") as an output driven
// low. With activeLow, the kernel inverts the line so that gpio.High drives
// the wire low.
func Open(chip string, offset int, activeLow bool) (*Pin, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(Consumer), gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	l, err := requestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("linepin: request %s/%d: %w", chip, offset, err)
	}
	return &Pin{chip: chip, offset: offset, l: l}, nil
}

func (p *Pin) String() string {
	return fmt.Sprintf("%s/%d", p.chip, p.offset)
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return p.String()
}

// Number implements pin.Pin. It returns the line offset.
func (p *Pin) Number() int {
	return p.offset
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return "Out"
}

// Halt drives the line low.
func (p *Pin) Halt() error {
	return p.Out(gpio.Low)
}

// Out sets the line level.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("linepin: %s is closed", p)
	}
	v := 0
	if l {
		v = 1
	}
	if err := p.l.SetValue(v); err != nil {
		return fmt.Errorf("linepin: %s: %w", p, err)
	}
	return nil
}

// PWM is not supported on character device lines.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("linepin: PWM is not supported")
}

// Close releases the line. Closing twice is a no-op.
func (p *Pin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.l.Close()
}

var _ gpio.PinOut = &Pin{}
