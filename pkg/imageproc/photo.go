// Package imageproc normalizes inline student photos.
package imageproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrMalformed is returned when the input is not a base64 data URL.
	ErrMalformed = errors.New("photo must be a base64 data URL")
	// ErrTooLarge is returned when the decoded image exceeds the byte limit.
	ErrTooLarge = errors.New("photo exceeds the maximum upload size")
	// ErrUnsupported is returned for anything other than JPEG, PNG or GIF.
	ErrUnsupported = errors.New("photo must be a JPEG, PNG or GIF image")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Options bounds photo processing.
type Options struct {
	MaxBytes     int64
	MaxDimension int
	JPEGQuality  int
}

// PhotoProcessor turns uploaded data URLs into bounded JPEG data URLs.
type PhotoProcessor struct {
	opts Options
}

// NewPhotoProcessor builds a processor, filling zero options with defaults.
func NewPhotoProcessor(opts Options) *PhotoProcessor {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2 << 20
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = 512
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 85
	}
	return &PhotoProcessor{opts: opts}
}

// Normalize validates the data URL and returns a JPEG data URL whose longest
// side is at most MaxDimension. A JPEG that already fits is returned as given.
func (p *PhotoProcessor) Normalize(dataURL string) (string, error) {
	payload, err := splitDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > p.opts.MaxBytes+2 {
		return "", ErrTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrMalformed
	}
	if int64(len(raw)) > p.opts.MaxBytes {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(raw)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return "", ErrUnsupported
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	bounds := img.Bounds()
	fits := bounds.Dx() <= p.opts.MaxDimension && bounds.Dy() <= p.opts.MaxDimension
	if fits && mtype.Is("image/jpeg") {
		return encodeDataURL(raw), nil
	}

	var out image.Image = img
	if !fits {
		out = imaging.Fit(img, p.opts.MaxDimension, p.opts.MaxDimension, imaging.Lanczos)
	}

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, out, imaging.JPEG, imaging.JPEGQuality(p.opts.JPEGQuality)); err != nil {
		return "", fmt.Errorf("encode photo: %w", err)
	}
	return encodeDataURL(buf.Bytes()), nil
}

func splitDataURL(dataURL string) (string, error) {
	s := strings.TrimSpace(dataURL)
	if !strings.HasPrefix(s, "data:") {
		return "", ErrMalformed
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") || payload == "" {
		return "", ErrMalformed
	}
	return payload, nil
}

func encodeDataURL(jpegBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
}
