package uihelpers

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iafilius/DoggiesWorld/src/dogworld"
)

// Status bar texts.
const (
	StatusReady         = "Ready"
	StatusFilled        = "Database was filled in"
	StatusUpdated       = "Database was updated"
	StatusNotUpdated    = "Database wasn't updated"
	StatusCleared       = "Database Cleared"
	StatusChartShown    = "A Bar Chart was displayed"
	StatusPictureShown  = "A Dog Picture was displayed"
	StatusThemeChanged  = "Color theme changed"
	StatusExported      = "Breeds were exported"
	StatusChartExported = "Chart was exported"

	DataUnavailable    = "Data is not available!"
	PictureUnavailable = "Picture is not available!"
)

// FitPicture scales (srcW, srcH) to maxW wide, keeping the aspect ratio. When the
// result is taller than maxH it is fitted to maxH high instead.
func FitPicture(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	aspect := float64(srcW) / float64(srcH)
	w := maxW
	h := int(math.Round(float64(w) / aspect))
	if h > maxH {
		h = maxH
		w = int(math.Round(float64(h) * aspect))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// ScaleImage resamples img to w x h.
func ScaleImage(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// ComputeChartDimensions clamps the chart panel to the space left of the picture panel.
func ComputeChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 640 {
		w = 640
	}
	if w > 900 {
		w = 900
	}
	h := int(float32(w) * 0.68)
	if h < 440 {
		h = 440
	}
	if h > 600 {
		h = 600
	}
	return w, h
}

// Placeholder is a white w x h image with text centred in it.
func Placeholder(w, h int, text string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.White, image.Point{}, xdraw.Src)
	face := basicfont.Face7x13
	tw := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 90}),
		Face: face,
		Dot:  fixed.P((w-tw)/2, h/2),
	}
	d.DrawString(text)
	return img
}

// AverageStatus is the status text after an average was shown.
func AverageStatus(name string) string {
	return fmt.Sprintf("Average %s was displayed", name)
}

// FailureStatus explains why subject (e.g. "Average Value was not calculated") failed.
func FailureStatus(subject string, err error) string {
	switch {
	case dogworld.IsEmpty(err):
		return subject + " because of empty database"
	case dogworld.IsConnection(err):
		return subject + " because of connection issues"
	case errors.Is(err, dogworld.ErrUnidentifiedImage), errors.Is(err, dogworld.ErrNoImage):
		return subject + " because the image could not be read"
	case errors.Is(err, dogworld.ErrChartMissing):
		return subject + " because the chart file is missing"
	default:
		return subject + " because of an unexpected error"
	}
}

// HexColor renders the straight (non-premultiplied) channels of c as "#rrggbb".
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// ParseHexColor accepts "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
