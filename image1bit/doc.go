// Package image1bit provides a 1-bit image format for Sharp memory-in-pixel displays.
//
// Pixels are packed as one continuous bit stream in raster order, 8 pixels
// per byte, bit 0 of each byte being the first pixel. Pixel (x, y) is bit
// y*width + x, so a W x H image takes exactly ceil(W*H/8) bytes. A set bit
// is a dark pixel.
//
// Memory layout example for a 10x2 image (3 bytes, row 1 starts at bit 10):
//
//	Bits:   0 1 2 3 4 5 6 7 | 8 9 10 11 12 ...
//	Pixel:  row 0, x=0..7   | row 0 x=8,9, row 1 x=0..
//	Values: D L L L L L L D | L D L  D  L
//	Bytes:  0x81            | 0x0A
//
// Memory LCDs are written one byte aligned row at a time; RowByte and
// SetRowByte convert between the bit stream and those wire rows.
//
// This package provides:
//
// - Bit: the color type (Dark or Light)
// - BitModel: a color model converting standard Go colors to Bit
// - HorizontalLSB: an image.Image and draw.Image backed by the packed bytes
// - RowByte/SetRowByte: byte aligned access to rows
//
// Example usage:
//
//	img := image1bit.NewHorizontalLSB(image.Rect(0, 0, 144, 168))
//	img.SetBit(10, 20, image1bit.Dark)
//	if b, ok := img.Lookup(10, 20); ok && b == image1bit.Dark {
//		// ...
//	}
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
package image1bit
