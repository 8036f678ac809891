package wonderfloyd

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTranscoder(t *testing.T) (*Transcoder, string) {
	t.Helper()
	dir := t.TempDir()
	return NewTranscoder(dir, "/public/uploads"), dir
}

// testImageJPEG returns encoded JPEG bytes of a solid w x h image.
func testImageJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

// testImagePNG returns encoded PNG bytes with an alpha channel.
func testImagePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: uint8((x + y) % 255)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cfg.Width, cfg.Height
}

func TestEncodeCoverHeroExactDimensions(t *testing.T) {
	tc, dir := setupTranscoder(t)

	cases := []struct {
		name string
		w, h int
	}{
		{"landscape", 3000, 1200},
		{"portrait", 1200, 3000},
		{"square", 2000, 2000},
		{"smaller-than-target", 800, 500},
	}
	for _, c := range cases {
		slug := "cover-" + c.name
		url, err := tc.EncodeCover(testImageJPEG(t, c.w, c.h), "photo.jpg", slug)
		if err != nil {
			t.Fatalf("%s: EncodeCover failed: %v", c.name, err)
		}
		if url != "/public/uploads/"+slug+"/hero.jpg" {
			t.Errorf("%s: hero URL = %q", c.name, url)
		}
		w, h := decodeDims(t, filepath.Join(dir, slug, "hero.jpg"))
		if w != 1920 || h != 1080 {
			t.Errorf("%s: hero = %dx%d, cover-fit must yield exactly 1920x1080", c.name, w, h)
		}
	}
}

func TestEncodeCoverThumbBoundingBox(t *testing.T) {
	tc, dir := setupTranscoder(t)

	// Wide source: bounded by width, aspect preserved.
	if _, err := tc.EncodeCover(testImageJPEG(t, 2000, 1000), "photo.jpg", "wide"); err != nil {
		t.Fatalf("EncodeCover failed: %v", err)
	}
	w, h := decodeDims(t, filepath.Join(dir, "wide", "thumb.jpg"))
	if w != 600 || h != 300 {
		t.Errorf("wide thumb = %dx%d, want 600x300", w, h)
	}

	// Small source: never upscaled.
	if _, err := tc.EncodeCover(testImageJPEG(t, 300, 200), "photo.jpg", "small"); err != nil {
		t.Fatalf("EncodeCover failed: %v", err)
	}
	w, h = decodeDims(t, filepath.Join(dir, "small", "thumb.jpg"))
	if w != 300 || h != 200 {
		t.Errorf("small thumb = %dx%d, bounding-box fit must not upscale", w, h)
	}
}

func TestEncodeCoverOverwritesPriorArtifacts(t *testing.T) {
	tc, dir := setupTranscoder(t)

	if _, err := tc.EncodeCover(testImageJPEG(t, 2400, 1400), "a.jpg", "same-slug"); err != nil {
		t.Fatalf("first EncodeCover failed: %v", err)
	}
	first, err := os.Stat(filepath.Join(dir, "same-slug", "hero.jpg"))
	if err != nil {
		t.Fatalf("stat hero: %v", err)
	}
	if _, err := tc.EncodeCover(testImageJPEG(t, 500, 500), "b.jpg", "same-slug"); err != nil {
		t.Fatalf("second EncodeCover failed: %v", err)
	}
	second, err := os.Stat(filepath.Join(dir, "same-slug", "hero.jpg"))
	if err != nil {
		t.Fatalf("stat hero after re-upload: %v", err)
	}
	if first.Size() == second.Size() {
		t.Error("re-uploading a cover for the same slug should replace the artifact")
	}
}

func TestEncodeCoverRejectsBadInput(t *testing.T) {
	tc, _ := setupTranscoder(t)

	if _, err := tc.EncodeCover(testImageJPEG(t, 100, 100), "notes.txt", "s"); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("bad extension: got err %v, want ErrUnsupportedMedia", err)
	}
	if _, err := tc.EncodeCover([]byte("definitely not pixels"), "fake.png", "s"); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("corrupt bytes: got err %v, want ErrUnsupportedMedia", err)
	}
}

func TestEncodeInline(t *testing.T) {
	tc, dir := setupTranscoder(t)

	// Large source fits within 1600x1600.
	url, err := tc.EncodeInline(testImageJPEG(t, 3200, 1600))
	if err != nil {
		t.Fatalf("EncodeInline failed: %v", err)
	}
	if !strings.HasPrefix(url, "/public/uploads/inline/") || !strings.HasSuffix(url, ".jpg") {
		t.Errorf("inline URL = %q", url)
	}
	name := strings.TrimPrefix(url, "/public/uploads/inline/")
	w, h := decodeDims(t, filepath.Join(dir, "inline", name))
	if w != 1600 || h != 800 {
		t.Errorf("inline variant = %dx%d, want 1600x800", w, h)
	}

	// Small source stays at its native size.
	url2, err := tc.EncodeInline(testImagePNG(t, 400, 300))
	if err != nil {
		t.Fatalf("EncodeInline(png) failed: %v", err)
	}
	if url2 == url {
		t.Error("inline uploads must get distinct names")
	}
	name2 := strings.TrimPrefix(url2, "/public/uploads/inline/")
	w, h = decodeDims(t, filepath.Join(dir, "inline", name2))
	if w != 400 || h != 300 {
		t.Errorf("small inline variant = %dx%d, must not upscale", w, h)
	}

	if _, err := tc.EncodeInline([]byte{0x00, 0x01}); !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("invalid payload: got err %v, want ErrUnsupportedMedia", err)
	}
}

func TestRemoveCover(t *testing.T) {
	tc, dir := setupTranscoder(t)
	if _, err := tc.EncodeCover(testImageJPEG(t, 2000, 1200), "a.jpg", "gone"); err != nil {
		t.Fatalf("EncodeCover failed: %v", err)
	}
	if err := tc.RemoveCover("gone"); err != nil {
		t.Fatalf("RemoveCover failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone")); !os.IsNotExist(err) {
		t.Errorf("cover dir still present: %v", err)
	}
	// Unknown slug is a no-op, and an empty slug never touches the root.
	if err := tc.RemoveCover("never-existed"); err != nil {
		t.Errorf("RemoveCover(unknown) = %v", err)
	}
	if err := tc.RemoveCover(""); err != nil {
		t.Errorf("RemoveCover(empty) = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("uploads root removed: %v", err)
	}
}
