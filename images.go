package wonderfloyd

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	heroWidth   = 1920
	heroHeight  = 1080
	heroQuality = 82

	thumbMaxWidth  = 600
	thumbMaxHeight = 400
	thumbQuality   = 80

	inlineMaxSize = 1600
	inlineQuality = 82

	maxUploadSize = 10 << 20 // 10MB
)

// Transcoder derives the stored image artifacts: a cover-fit hero and a
// bounding-box thumb for cover uploads, and a bounding-box variant for
// images embedded in post bodies. Everything is re-encoded as JPEG with
// alpha flattened onto white.
type Transcoder struct {
	uploadsDir string // filesystem root for derived files
	publicPath string // public URL prefix the static server exposes
}

// NewTranscoder creates a Transcoder writing under uploadsDir and returning
// URLs below publicPath (e.g. "/public/uploads").
func NewTranscoder(uploadsDir, publicPath string) *Transcoder {
	return &Transcoder{
		uploadsDir: uploadsDir,
		publicPath: strings.TrimRight(publicPath, "/"),
	}
}

// AllowedExtension reports whether the declared filename carries an
// extension on the upload allow-list. This is only a pre-check; decoding
// validates the actual pixel data.
func AllowedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// decodeImage validates and decodes raw image bytes. The declared extension
// is never trusted for decoding.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}
	return img, nil
}

// flatten composites img over an opaque white background so alpha and
// palette images survive JPEG encoding.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeCover derives both cover artifacts for the post identified by slug:
// hero.jpg, a cover-fit crop to exactly 1920x1080, and thumb.jpg, a
// bounding-box fit within 600x400 that never upscales. Re-uploading a cover
// for the same slug overwrites the prior artifacts. The returned URL points
// at the hero variant.
func (t *Transcoder) EncodeCover(data []byte, originalName, slug string) (string, error) {
	if !AllowedExtension(originalName) {
		return "", fmt.Errorf("%w: file type not allowed (jpg, jpeg, png, webp)", ErrUnsupportedMedia)
	}
	img, err := decodeImage(data)
	if err != nil {
		return "", err
	}

	hero := imaging.Fill(img, heroWidth, heroHeight, imaging.Center, imaging.Lanczos)
	thumb := imaging.Fit(img, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)

	dir := filepath.Join(t.uploadsDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cover dir: %w", err)
	}
	if err := t.writeVariant(filepath.Join(dir, "hero.jpg"), hero, heroQuality); err != nil {
		return "", err
	}
	if err := t.writeVariant(filepath.Join(dir, "thumb.jpg"), thumb, thumbQuality); err != nil {
		return "", err
	}
	return path.Join(t.publicPath, slug, "hero.jpg"), nil
}

// EncodeInline derives the stored variant of an image embedded in post
// content: bounding-box fit within 1600x1600, written under a random name
// that is never overwritten.
func (t *Transcoder) EncodeInline(data []byte) (string, error) {
	img, err := decodeImage(data)
	if err != nil {
		return "", err
	}

	fitted := imaging.Fit(img, inlineMaxSize, inlineMaxSize, imaging.Lanczos)

	dir := filepath.Join(t.uploadsDir, "inline")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create inline dir: %w", err)
	}
	name := uuid.NewString() + ".jpg"
	if err := t.writeVariant(filepath.Join(dir, name), fitted, inlineQuality); err != nil {
		return "", err
	}
	return path.Join(t.publicPath, "inline", name), nil
}

// RemoveCover deletes the derived cover artifacts for slug. Used when a
// post is deleted so hero/thumb files do not pile up as orphans.
func (t *Transcoder) RemoveCover(slug string) error {
	if slug == "" {
		return nil
	}
	return os.RemoveAll(filepath.Join(t.uploadsDir, slug))
}

func (t *Transcoder) writeVariant(dst string, img image.Image, quality int) error {
	data, err := encodeJPEG(img, quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
