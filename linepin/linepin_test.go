package linepin

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
)

type fakeLine struct {
	values []int
	closed int
	err    error
}

func (f *fakeLine) SetValue(v int) error {
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, v)
	return nil
}

func (f *fakeLine) Close() error {
	f.closed++
	return nil
}

// withFakeLine makes Open return f and records the request.
func withFakeLine(t *testing.T, f *fakeLine, err error) *request {
	t.Helper()
	req := &request{}
	old := requestLine
	requestLine = func(chip string, offset int, opts ...gpiocdev.LineReqOption) (line, error) {
		req.chip, req.offset, req.opts = chip, offset, len(opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	t.Cleanup(func() { requestLine = old })
	return req
}

type request struct {
	chip   string
	offset int
	opts   int
}

func TestOpen(t *testing.T) {
	for _, tc := range []struct {
		name      string
		activeLow bool
		want      request
	}{
		{"active high", false, request{"gpiochip0", 8, 2}},
		{"active low", true, request{"gpiochip0", 8, 3}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := withFakeLine(t, &fakeLine{}, nil)
			p, err := Open("gpiochip0", 8, tc.activeLow)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			if diff := cmp.Diff(*req, tc.want, cmp.AllowUnexported(request{})); diff != "" {
				t.Errorf("request difference (-got +want):\n%s", diff)
			}
			if got, want := p.String(), "gpiochip0/8"; got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}
			if p.Name() != p.String() {
				t.Errorf("Name() = %q, want %q", p.Name(), p.String())
			}
			if p.Number() != 8 {
				t.Errorf("Number() = %d, want 8", p.Number())
			}
			if p.Function() != "Out" {
				t.Errorf("Function() = %q, want Out", p.Function())
			}
		})
	}
}

func TestOpenError(t *testing.T) {
	errBusy := errors.New("device or resource busy")
	withFakeLine(t, nil, errBusy)
	_, err := Open("gpiochip4", 17, false)
	if !errors.Is(err, errBusy) {
		t.Fatalf("Open() = %v, want %v", err, errBusy)
	}
	if got, want := err.Error(), "linepin: request gpiochip4/17: device or resource busy"; got != want {
		t.Errorf("Open() = %q, want %q", got, want)
	}
}

func TestOut(t *testing.T) {
	f := &fakeLine{}
	withFakeLine(t, f, nil)
	p, err := Open("gpiochip0", 8, false)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := p.Out(l); err != nil {
			t.Fatalf("Out(%v) failed: %v", l, err)
		}
	}
	if err := p.Halt(); err != nil {
		t.Fatalf("Halt() failed: %v", err)
	}
	if diff := cmp.Diff(f.values, []int{1, 0, 1, 0}); diff != "" {
		t.Errorf("values difference (-got +want):\n%s", diff)
	}

	f.err = errors.New("bad file descriptor")
	if err := p.Out(gpio.High); !errors.Is(err, f.err) {
		t.Errorf("Out() = %v, want %v", err, f.err)
	}
}

func TestClose(t *testing.T) {
	f := &fakeLine{}
	withFakeLine(t, f, nil)
	p, err := Open("gpiochip0", 8, false)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
	if f.closed != 1 {
		t.Errorf("line closed %d times, want 1", f.closed)
	}
	if err := p.Out(gpio.High); err == nil {
		t.Error("Out() on a closed pin should fail")
	}
	if len(f.values) != 0 {
		t.Errorf("closed pin wrote %v", f.values)
	}
}

func TestPWM(t *testing.T) {
	withFakeLine(t, &fakeLine{}, nil)
	p, err := Open("gpiochip0", 8, false)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := p.PWM(gpio.DutyHalf, 0); err == nil {
		t.Error("PWM() should fail")
	}
}
