// Package mono prepares images for 1-bit displays.
//
// Photos and drawings are scaled to the panel, then dithered to black and
// white; text and SVG icons are rendered on a white canvas. The results can
// be passed to sharpmem.Dev.Draw.
package mono

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/makeworld-the-better-one/dither"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
)

// Palette is the two color palette of the panel, white first.
var Palette = color.Palette{color.White, color.Black}

// Margin is the horizontal space left on each side of rendered text.
const Margin = 4

var regular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// Fit rotates src by angle degrees counter-clockwise, scales it to fit
// within size and centers it on a white canvas of that size.
func Fit(src image.Image, size image.Point, angle float64) *image.NRGBA {
	if angle != 0 {
		src = imaging.Rotate(src, angle, color.White)
	}
	fit := imaging.Fit(src, size.X, size.Y, imaging.Lanczos)
	return imaging.PasteCenter(imaging.New(size.X, size.Y, color.White), fit)
}

// Dither reduces src to Palette with serpentine Floyd-Steinberg error
// diffusion.
func Dither(src image.Image) *image.Paletted {
	d := dither.NewDitherer(Palette)
	d.Matrix = dither.FloydSteinberg
	d.Serpentine = true
	if p := d.DitherPaletted(src); p != nil {
		return p
	}
	// src only holds palette colors.
	p := image.NewPaletted(src.Bounds(), Palette)
	draw.Draw(p, p.Rect, src, src.Bounds().Min, draw.Src)
	return p
}

// Text renders s in black Go Regular at the given point size, wrapped and
// centered on a white canvas of size.
func Text(s string, size image.Point, points float64) (image.Image, error) {
	font, err := regular()
	if err != nil {
		return nil, fmt.Errorf("mono: font: %w", err)
	}
	face := truetype.NewFace(font, &truetype.Options{Size: points})
	defer face.Close()

	dc := gg.NewContextForImage(imaging.New(size.X, size.Y, color.White))
	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	w, h := float64(size.X), float64(size.Y)
	dc.DrawStringWrapped(s, w/2, h/2, 0.5, 0.5, w-2*Margin, 1.0, gg.AlignCenter)
	return dc.Image(), nil
}

// SVG rasterizes the SVG document read from r on a white canvas of size.
// The aspect ratio of the view box is kept and the drawing centered.
func SVG(r io.Reader, size image.Point) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("mono: svg: %w", err)
	}

	// Without a view box the document is drawn in pixel units.
	if vb := icon.ViewBox; vb.W > 0 && vb.H > 0 {
		w, h := float64(size.X), float64(size.Y)
		scale := min(w/vb.W, h/vb.H)
		tw, th := vb.W*scale, vb.H*scale
		icon.SetTarget((w-tw)/2, (h-th)/2, tw, th)
	}

	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(img, img.Rect, image.White, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size.X, size.Y, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size.X, size.Y, scanner), 1.0)
	return img, nil
}
