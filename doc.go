// Package sharpmem controls a Sharp memory-in-pixel LCD via SPI.
//
// The LS0xx memory LCDs are 1-bit reflective panels. Every pixel holds its
// state in its own memory cell, so the panel only needs data when the image
// changes. The liquid crystal must however be driven with an alternating
// polarity (VCOM) to avoid a DC bias across the cell; the driver flips the
// VCOM bit in every command it sends.
//
// This driver implements the display.Drawer interface from periph.io.
//
// # Display Characteristics
//
// - 1 bit per pixel, 1 = dark in the frame buffer
// - Whole-frame updates, one chip select delimited transaction per refresh
// - Active high chip select (SCS), separate from the SPI controller's CE lines
// - Optional DISP pin to blank the panel
//
// # Hardware Connection
//
// Connect the display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VIN         → 3.3V (or 5V depending on breakout)
//	SCLK        → SPI Clock (SCLK)
//	SI          → SPI Data (MOSI)
//	SCS         → GPIO (any available pin)
//	DISP        → Optional: GPIO, or tied high
//	EXTCOMIN    → GND (software VCOM is used)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"github.com/flavioheleno/sharpmem"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		cs := gpioreg.ByName("GPIO8")
//
//		dev, _ := sharpmem.NewSPI(spiBus, cs, &sharpmem.LS013B7DH05)
//		defer dev.Halt()
//
//		for x := 0; x < 144; x++ {
//			dev.SetPixel(x, x, true)
//		}
//		dev.Refresh()
//	}
//
// # Protocols
//
// The panels in this family share one command set but differ in how the
// bytes must be framed and in which bit order the host can send them. A
// Protocol value describes one such variant:
//
//	sharpmem.ProtocolLSB        // opcodes 0x01/0x04, VCOM 0x02, row addressed
//	sharpmem.ProtocolMSB        // same commands for MSB-first SPI hosts
//	sharpmem.ProtocolSequential // no row indices, rows auto-increment
//
// With addressed framing a write command is followed, for every row, by the
// 1-based row index, the row bytes and a 0x00 terminator, and a final 0x00.
// With sequential framing the row index is omitted.
//
// # VCOM
//
// A static image must still see a VCOM flip at least once per second. Call
// Hold periodically when the content does not change:
//
//	t := time.NewTicker(time.Second)
//	for range t.C {
//		dev.Hold()
//	}
//
// # Concurrency
//
// Dev is not safe for concurrent use. Issue all operations from one
// goroutine.
//
// # Datasheet
//
// https://www.sharpsde.com/products/displays/model/ls013b7dh05/
package sharpmem
