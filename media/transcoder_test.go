package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

// twoToneJpeg encodes an image whose left half is red and right half is
// blue, so orientation transforms can be verified by pixel position.
func twoToneJpeg(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

// withExifOrientation splices a minimal EXIF APP1 segment carrying just the
// Orientation tag in behind the SOI marker of an encoded JPEG.
func withExifOrientation(t *testing.T, jpegData []byte, orientation uint16) []byte {
	t.Helper()
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		t.Fatal("input is not a jpeg stream")
	}
	tiff := []byte{
		'I', 'I', 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // IFD0 offset
		0x01, 0x00, // one entry
		0x12, 0x01, // Orientation
		0x03, 0x00, // SHORT
		0x01, 0x00, 0x00, 0x00, // count
		byte(orientation), byte(orientation >> 8), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := []byte{0xFF, 0xE1, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}
	segment = append(segment, payload...)

	out := make([]byte, 0, len(jpegData)+len(segment))
	out = append(out, jpegData[:2]...)
	out = append(out, segment...)
	out = append(out, jpegData[2:]...)
	return out
}

// redAt reports whether the decoded pixel is clearly red rather than blue.
// JPEG is lossy, so the halves are compared, not exact values.
func redAt(t *testing.T, data []byte, x, y int) bool {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding transcoder output: %v", err)
	}
	r, _, b, _ := img.At(x, y).RGBA()
	return r > b
}

func decodeDims(t *testing.T, data []byte) (string, int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding transcoder output: %v", err)
	}
	return format, cfg.Width, cfg.Height
}

func TestTranscodeShrinksToFitBoundingBox(t *testing.T) {
	tr := NewTranscoder(100, 80, false)
	out, err := tr.Transcode("big.jpg", bytes.NewReader(jpegBytes(t, 200, 100)))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.Width != 100 || out.Height != 50 {
		t.Fatalf("expected 100x50 output, got %dx%d", out.Width, out.Height)
	}
	format, w, h := decodeDims(t, out.Data)
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	if w != out.Width || h != out.Height {
		t.Fatalf("reported dimensions %dx%d do not match encoded %dx%d", out.Width, out.Height, w, h)
	}
}

func TestTranscodeNeverEnlarges(t *testing.T) {
	tr := NewTranscoder(100, 80, false)
	out, err := tr.Transcode("small.jpg", bytes.NewReader(jpegBytes(t, 50, 40)))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.Width != 50 || out.Height != 40 {
		t.Fatalf("image below the bound must keep its dimensions, got %dx%d", out.Width, out.Height)
	}
}

func TestTranscodeNormalizesFormat(t *testing.T) {
	tr := NewTranscoder(100, 80, false)
	out, err := tr.Transcode("shot.png", bytes.NewReader(pngBytes(t, 60, 60)))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.ContentType != CanonicalContentType {
		t.Fatalf("expected content type %s, got %s", CanonicalContentType, out.ContentType)
	}
	format, _, _ := decodeDims(t, out.Data)
	if format != "jpeg" {
		t.Fatalf("png input should re-encode as jpeg, got %s", format)
	}
}

func TestTranscodeCorruptInput(t *testing.T) {
	tr := NewTranscoder(100, 80, false)
	truncated := jpegBytes(t, 60, 60)[:20]
	_, err := tr.Transcode("broken.jpg", bytes.NewReader(truncated))
	if err == nil {
		t.Fatal("expected error for truncated jpeg")
	}
	var transErr *TranscodeError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected *TranscodeError, got %T", err)
	}
	if transErr.Filename != "broken.jpg" {
		t.Fatalf("error should name the file, got %q", transErr.Filename)
	}
}

func TestTranscodeAutoRotateWithoutExifIsNoop(t *testing.T) {
	tr := NewTranscoder(100, 80, true)
	out, err := tr.Transcode("plain.png", bytes.NewReader(pngBytes(t, 80, 40)))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.Width != 80 || out.Height != 40 {
		t.Fatalf("exif-less image must keep its orientation, got %dx%d", out.Width, out.Height)
	}
}

func TestTranscodeAutoRotateBakesInOrientation(t *testing.T) {
	tr := NewTranscoder(100, 80, true)
	// orientation 6: camera held sideways, needs a 90 degree clockwise turn
	src := withExifOrientation(t, twoToneJpeg(t, 80, 40), 6)

	out, err := tr.Transcode("sideways.jpg", bytes.NewReader(src))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.Width != 40 || out.Height != 80 {
		t.Fatalf("orientation 6 must swap dimensions, got %dx%d", out.Width, out.Height)
	}
	// the red left half of the source rotates onto the top half
	if !redAt(t, out.Data, 20, 20) {
		t.Fatal("expected the rotated top half to be red")
	}
	if redAt(t, out.Data, 20, 60) {
		t.Fatal("expected the rotated bottom half to be blue")
	}
}

func TestTranscodeAutoRotateUpsideDown(t *testing.T) {
	tr := NewTranscoder(100, 80, true)
	// orientation 3: upside down, dimensions stay put but halves swap sides
	src := withExifOrientation(t, twoToneJpeg(t, 80, 40), 3)

	out, err := tr.Transcode("upsidedown.jpg", bytes.NewReader(src))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.Width != 80 || out.Height != 40 {
		t.Fatalf("orientation 3 must keep dimensions, got %dx%d", out.Width, out.Height)
	}
	if redAt(t, out.Data, 20, 20) {
		t.Fatal("expected the rotated left half to be blue")
	}
	if !redAt(t, out.Data, 60, 20) {
		t.Fatal("expected the rotated right half to be red")
	}
}

func TestTranscodeAutoRotateDisabledIgnoresExif(t *testing.T) {
	tr := NewTranscoder(100, 80, false)
	src := withExifOrientation(t, twoToneJpeg(t, 80, 40), 6)

	out, err := tr.Transcode("sideways.jpg", bytes.NewReader(src))
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	if out.Width != 80 || out.Height != 40 {
		t.Fatalf("orientation must not be applied when disabled, got %dx%d", out.Width, out.Height)
	}
}

func TestObjectNameIsUniqueAndSanitized(t *testing.T) {
	a := ObjectName("My Vacation Photo.JPG")
	b := ObjectName("My Vacation Photo.JPG")
	if a == b {
		t.Fatal("object names for repeated uploads must differ")
	}
	if !strings.HasSuffix(a, CanonicalExtension) {
		t.Fatalf("object name should carry the canonical extension, got %q", a)
	}
	if strings.ContainsAny(a, " /\\") {
		t.Fatalf("object name should be sanitized, got %q", a)
	}
}
