package uihelpers

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/iafilius/DoggiesWorld/src/analysis"
	"github.com/iafilius/DoggiesWorld/src/dogapi"
	"github.com/iafilius/DoggiesWorld/src/dogworld"
)

func TestFitPicture(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{740, 500, 370, 250},   // landscape: width bound
		{1000, 1000, 370, 370}, // square
		{300, 600, 233, 465},   // tall: height bound
		{370, 465, 370, 465},   // exact fit
		{10, 5, 370, 185},      // small images are upscaled
	}
	for _, c := range cases {
		w, h := FitPicture(c.w, c.h, 370, 465)
		if w != c.wantW || h != c.wantH {
			t.Fatalf("FitPicture(%d,%d) = %dx%d want %dx%d", c.w, c.h, w, h, c.wantW, c.wantH)
		}
		if w > 370 || h > 465 {
			t.Fatalf("FitPicture(%d,%d) exceeds bounds: %dx%d", c.w, c.h, w, h)
		}
	}
	if w, h := FitPicture(0, 10, 370, 465); w != 0 || h != 0 {
		t.Fatalf("degenerate input => %dx%d", w, h)
	}
}

func TestScaleImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	got := ScaleImage(src, 370, 185)
	if b := got.Bounds(); b.Dx() != 370 || b.Dy() != 185 {
		t.Fatalf("scaled bounds %v", b)
	}
}

func TestComputeChartDimensions(t *testing.T) {
	cases := []struct {
		in    int
		wantW int
	}{
		{100, 640},
		{700, 700},
		{2000, 900},
	}
	for _, c := range cases {
		w, h := ComputeChartDimensions(c.in)
		if w != c.wantW {
			t.Fatalf("input %d => width %d want %d", c.in, w, c.wantW)
		}
		if h < 440 || h > 600 {
			t.Fatalf("height clamp violated for input %d => h=%d", c.in, h)
		}
	}
}

func TestPlaceholderDrawsText(t *testing.T) {
	img := Placeholder(200, 60, DataUnavailable)
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 60 {
		t.Fatalf("bounds %v", b)
	}
	dark := 0
	for x := 0; x < 200; x++ {
		r, _, _, _ := img.At(x, 28).RGBA()
		if r < 0xffff {
			dark++
		}
	}
	if dark == 0 {
		t.Fatalf("expected text pixels on the baseline row")
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{analysis.ErrNoData, "Average Value was not calculated because of empty database"},
		{fmt.Errorf("x: %w", dogapi.ErrConnection), "Average Value was not calculated because of connection issues"},
		{&dogapi.StatusError{StatusCode: 500}, "Average Value was not calculated because of connection issues"},
		{dogworld.ErrUnidentifiedImage, "Average Value was not calculated because the image could not be read"},
	}
	for _, c := range cases {
		if got := FailureStatus("Average Value was not calculated", c.err); got != c.want {
			t.Fatalf("FailureStatus(%v) = %q want %q", c.err, got, c.want)
		}
	}
	if AverageStatus("Life Span") != "Average Life Span was displayed" {
		t.Fatalf("unexpected average status")
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	c, err := ParseHexColor("#A8A8A8")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != (color.NRGBA{R: 0xa8, G: 0xa8, B: 0xa8, A: 0xff}) {
		t.Fatalf("parsed %v", c)
	}
	if HexColor(c) != "#a8a8a8" {
		t.Fatalf("hex = %s", HexColor(c))
	}
	// translucent picks keep their hue instead of darkening
	if got := HexColor(color.NRGBA{R: 0xa8, G: 0x40, B: 0x10, A: 0x80}); got != "#a84010" {
		t.Fatalf("translucent hex = %s", got)
	}
	if _, err := ParseHexColor("zzz"); err == nil {
		t.Fatalf("expected error")
	}
}
