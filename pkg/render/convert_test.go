package render

import (
	"context"
	"testing"

	"github.com/matzehuels/tidytree/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><circle cx="5" cy="5" r="4"/></svg>`

func TestToPDF(t *testing.T) {
	if !Available() {
		_, err := ToPDF(context.Background(), []byte(tinySVG))
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Fatalf("ToPDF without rsvg-convert = %v, want UNSUPPORTED", err)
		}
		t.Skip("rsvg-convert not installed")
	}

	pdf, err := ToPDF(context.Background(), []byte(tinySVG))
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Errorf("ToPDF output does not start with %%PDF")
	}
}

func TestToPNG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}

	png, err := ToPNG(context.Background(), []byte(tinySVG), 2)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("ToPNG output is not a PNG")
	}
}
