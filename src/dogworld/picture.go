package dogworld

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/iafilius/DoggiesWorld/src/analysis"
	"github.com/iafilius/DoggiesWorld/src/applog"
	"github.com/iafilius/DoggiesWorld/src/metrics"
)

var (
	// ErrUnidentifiedImage means downloaded bytes are not a known image format.
	ErrUnidentifiedImage = errors.New("cannot identify image")
	// ErrNoImage means the picked breed has no reference image.
	ErrNoImage = errors.New("breed has no image")
)

// Picture is a decoded breed photo.
type Picture struct {
	Breed    string
	ImageURL string
	Format   string
	Image    image.Image
}

// Picture picks one random breed and downloads its photo.
func (s *Service) Picture(ctx context.Context) (Picture, error) {
	s.Metrics.IncAction("picture")
	p, ok, err := analysis.SampleOnePicture(ctx, s.Store)
	if err != nil {
		return Picture{}, err
	}
	if !ok {
		return Picture{}, analysis.ErrNoData
	}
	out := Picture{Breed: p.Breed, ImageURL: p.ImageURL}
	if p.Empty() {
		return out, fmt.Errorf("%w: %s", ErrNoImage, p.Breed)
	}
	raw, err := s.Client.FetchImage(ctx, p.ImageURL)
	if err != nil {
		s.Metrics.IncError(metrics.ErrorKind(err))
		return out, err
	}
	img, format, err := DecodeImage(raw)
	if err != nil {
		s.Metrics.IncError("image")
		return out, err
	}
	out.Image, out.Format = img, format
	applog.Debugf("picture %s (%s %dx%d)", p.Breed, format, img.Bounds().Dx(), img.Bounds().Dy())
	return out, nil
}

// DecodeImage decodes JPEG, PNG, GIF or WebP bytes.
func DecodeImage(b []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnidentifiedImage, err)
	}
	return img, format, nil
}
