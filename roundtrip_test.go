package sharpmem_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/flavioheleno/sharpmem"
	"github.com/flavioheleno/sharpmem/sharpmemtest"
	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts sharpmem.Opts
	}{
		{"LS013B7DH05", sharpmem.LS013B7DH05},
		{"LS013B4DN04", sharpmem.LS013B4DN04},
		{"LS011B7DH03", sharpmem.LS011B7DH03},
		{"LS012B7DD01", sharpmem.LS012B7DD01},
		{"LS027B7DH01", sharpmem.LS027B7DH01},
		{"msb", sharpmem.Opts{W: 60, H: 20, Protocol: sharpmem.ProtocolMSB}},
		{"msb inverted", sharpmem.Opts{W: 60, H: 20, Protocol: sharpmem.ProtocolMSB, Invert: true}},
		{"sequential", sharpmem.Opts{W: 37, H: 300, Protocol: sharpmem.ProtocolSequential, Invert: true}},
		{"sequential aligned", sharpmem.Opts{W: 37, H: 9, Protocol: sharpmem.ProtocolSequential, LineAlign: 4}},
		{"small transfers", sharpmem.Opts{W: 32, H: 16, MaxTxSize: 7, Invert: true}},
		{"chip select active low", sharpmem.Opts{W: 16, H: 4, CSActiveLow: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			panel := sharpmemtest.New(&tc.opts)
			dev, err := sharpmem.New(panel, panel, &tc.opts)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			rng := rand.New(rand.NewSource(1))
			for frame := 0; frame < 3; frame++ {
				for y := 0; y < tc.opts.H; y++ {
					for x := 0; x < tc.opts.W; x++ {
						dev.SetPixel(x, y, rng.Intn(2) == 0)
					}
				}
				if err := dev.Refresh(); err != nil {
					t.Fatalf("Refresh() failed: %v", err)
				}
				if diff := cmp.Diff(panel.Image().Pix, dev.Buffer().Pix); diff != "" {
					t.Fatalf("frame %d: panel difference (-panel +buffer):\n%s", frame, diff)
				}
				if err := dev.Hold(); err != nil {
					t.Fatalf("Hold() failed: %v", err)
				}
			}

			if err := dev.Clear(); err != nil {
				t.Fatalf("Clear() failed: %v", err)
			}
			if diff := cmp.Diff(panel.Image().Pix, make([]byte, len(dev.Buffer().Pix))); diff != "" {
				t.Errorf("panel not cleared (-got +want):\n%s", diff)
			}
			if err := dev.Halt(); err != nil {
				t.Fatalf("Halt() failed: %v", err)
			}

			// New's clear, 3 refreshes, 3 holds, clear, halt.
			if got := panel.Transactions(); got != 9 {
				t.Errorf("Transactions() = %d, want 9", got)
			}
			if err := panel.Err(); err != nil {
				t.Errorf("panel reported a protocol violation: %v", err)
			}
		})
	}
}

func TestRoundTripAllDark(t *testing.T) {
	opts := sharpmem.Opts{W: 4, H: 8, Invert: true}
	panel := sharpmemtest.New(&opts)
	dev, err := sharpmem.New(panel, panel, &opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			dev.SetPixel(x, y, true)
		}
	}
	if err := dev.Refresh(); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	img := panel.Image()
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			if !img.BitAt(x, y) {
				t.Errorf("panel pixel (%d, %d) is light", x, y)
			}
		}
	}

	if err := dev.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	img = panel.Image()
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			if img.BitAt(x, y) {
				t.Errorf("panel pixel (%d, %d) is dark after Clear", x, y)
			}
		}
	}
	if err := panel.Err(); err != nil {
		t.Errorf("panel reported a protocol violation: %v", err)
	}
}

func BenchmarkRefresh(b *testing.B) {
	for _, opts := range []sharpmem.Opts{sharpmem.LS013B7DH05, sharpmem.LS027B7DH01} {
		b.Run(fmt.Sprintf("%dx%d", opts.W, opts.H), func(b *testing.B) {
			panel := sharpmemtest.New(&opts)
			dev, err := sharpmem.New(panel, panel, &opts)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := dev.Refresh(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
