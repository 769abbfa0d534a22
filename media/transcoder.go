package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Canonical output format. Every accepted upload is re-encoded to JPEG at a
// fixed quality regardless of its input format.
const (
	CanonicalContentType = "image/jpeg"
	CanonicalExtension   = ".jpg"
)

// ProcessedImage is the result of one transcode: canonical-format bytes plus
// the output dimensions.
type ProcessedImage struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

// Transcoder normalizes an accepted image for storage and web delivery:
// decode, optionally bake in EXIF orientation, shrink to fit inside
// MaxDimension x MaxDimension (never enlarging), re-encode as JPEG.
type Transcoder struct {
	MaxDimension int
	Quality      int
	// AutoRotate applies the stored EXIF orientation before resizing so the
	// orientation is baked into pixels. Some call sites want the raw pixel
	// grid preserved, so this is a policy flag rather than always-on.
	AutoRotate bool
}

func NewTranscoder(maxDimension, quality int, autoRotate bool) *Transcoder {
	return &Transcoder{MaxDimension: maxDimension, Quality: quality, AutoRotate: autoRotate}
}

// Transcode reads the full (already validated) image and returns its
// canonical-format rendition. Output dimensions are always <= input
// dimensions on both axes. A corrupt or unparsable file yields a
// *TranscodeError; it is not retried.
func (t *Transcoder) Transcode(filename string, r io.Reader) (*ProcessedImage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &TranscodeError{Filename: filename, Err: fmt.Errorf("reading upload: %w", err)}
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &TranscodeError{Filename: filename, Err: fmt.Errorf("decoding image: %w", err)}
	}

	if t.AutoRotate {
		img = applyExifOrientation(img, raw)
	}

	// Fit only ever scales down; an image already inside the bounding box is
	// returned unchanged
	img = imaging.Fit(img, t.MaxDimension, t.MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(t.Quality))
	if err != nil {
		return nil, &TranscodeError{Filename: filename, Err: fmt.Errorf("encoding jpeg: %w", err)}
	}

	bounds := img.Bounds()
	return &ProcessedImage{
		Data:        buf.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: CanonicalContentType,
	}, nil
}

// applyExifOrientation transforms img according to the EXIF Orientation tag
// found in raw, if any. Files without EXIF data (PNG, stripped JPEG) are
// returned untouched.
func applyExifOrientation(img image.Image, raw []byte) image.Image {
	exifData, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		// most non-JPEG uploads land here; nothing to do
		return img
	}
	tag, err := exifData.Get(exif.Orientation)
	if err != nil || tag == nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		if orientation != 1 {
			log.Printf("media: ignoring unknown EXIF orientation %d", orientation)
		}
		return img
	}
}
