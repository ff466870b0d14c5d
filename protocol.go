package sharpmem

import (
	"errors"
	"fmt"
)

// Framing is the byte layout of a write-lines command.
type Framing int

const (
	// Addressed frames every row as: 1-based row index, row bytes, 0x00.
	// A final 0x00 follows the last row.
	Addressed Framing = iota
	// Sequential sends all rows in raster order without indices, with a 0x00
	// after each row and a final 0x00.
	Sequential
)

func (f Framing) String() string {
	switch f {
	case Addressed:
		return "Addressed"
	case Sequential:
		return "Sequential"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}

// BitOrder is the order in which the panel expects the bits of each byte.
type BitOrder int

const (
	// LSBFirst sends bit 0 first. The SPI port must be connected with
	// spi.LSBFirst; buffer bytes are sent as-is.
	LSBFirst BitOrder = iota
	// MSBFirst keeps the default SPI bit order; row indices and pixel bytes
	// are bit reversed before being sent.
	MSBFirst
)

func (b BitOrder) String() string {
	switch b {
	case LSBFirst:
		return "LSBFirst"
	case MSBFirst:
		return "MSBFirst"
	default:
		return fmt.Sprintf("BitOrder(%d)", int(b))
	}
}

// Protocol describes one controller generation: its opcodes and VCOM mask
// as they appear on the wire, and its framing.
type Protocol struct {
	Name     string
	Write    byte // Write lines
	Clear    byte // All clear
	Hold     byte // Display mode, no data
	VCOM     byte // VCOM polarity mask
	Framing  Framing
	BitOrder BitOrder
}

var (
	// ProtocolLSB is the native LS0xx command set, sent least significant
	// bit first.
	ProtocolLSB = Protocol{
		Name:     "lsb",
		Write:    0x01,
		Clear:    0x04,
		Hold:     0x00,
		VCOM:     0x02,
		Framing:  Addressed,
		BitOrder: LSBFirst,
	}

	// ProtocolMSB is the same command set expressed for an SPI port that
	// only supports most significant bit first.
	ProtocolMSB = Protocol{
		Name:     "msb",
		Write:    0x80,
		Clear:    0x20,
		Hold:     0x00,
		VCOM:     0x40,
		Framing:  Addressed,
		BitOrder: MSBFirst,
	}

	// ProtocolSequential is for controllers that auto-increment the row
	// address and take no row index.
	ProtocolSequential = Protocol{
		Name:     "sequential",
		Write:    0x01,
		Clear:    0x04,
		Hold:     0x00,
		VCOM:     0x02,
		Framing:  Sequential,
		BitOrder: LSBFirst,
	}
)

func (p *Protocol) validate() error {
	if p.Framing != Addressed && p.Framing != Sequential {
		return fmt.Errorf("sharpmem: unknown framing %v", p.Framing)
	}
	if p.BitOrder != LSBFirst && p.BitOrder != MSBFirst {
		return fmt.Errorf("sharpmem: unknown bit order %v", p.BitOrder)
	}
	if p.VCOM == 0 {
		return errors.New("sharpmem: VCOM mask must be non-zero")
	}
	if p.Write == p.Clear || p.Write == p.Hold || p.Clear == p.Hold {
		return errors.New("sharpmem: opcodes must be distinct")
	}
	if (p.Write|p.Clear|p.Hold)&p.VCOM != 0 {
		return errors.New("sharpmem: VCOM mask overlaps an opcode")
	}
	return nil
}
