package wonderfloyd

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/labstack/gommon/log"
)

// dataURIPattern matches an embedded base64 image payload inside rich text.
// Case-insensitive, and the payload class includes whitespace because
// editors are known to wrap long base64 streams across lines.
var dataURIPattern = regexp.MustCompile(`(?i)data:image/(?:png|jpe?g|webp|gif);base64,[A-Za-z0-9+/=\s]+`)

// Rewriter extracts embedded data-URI images from rich-text HTML, stores
// them through the Transcoder's inline path, and swaps each data URI for
// the stored file's URL.
type Rewriter struct {
	transcoder *Transcoder
}

// NewRewriter creates a Rewriter backed by the given Transcoder.
func NewRewriter(t *Transcoder) *Rewriter {
	return &Rewriter{transcoder: t}
}

// Rewrite replaces every decodable embedded image in body with a stored
// file URL in a single pass. Occurrences that fail base64 decoding or image
// validation are left exactly as they were; everything outside the matches
// is preserved byte-for-byte. Text with no embedded images comes back
// unchanged, so re-running on already-rewritten content is a no-op.
// Filesystem failures while storing a variant abort the whole rewrite.
func (r *Rewriter) Rewrite(body string) (string, error) {
	var writeErr error
	rewritten := dataURIPattern.ReplaceAllStringFunc(body, func(match string) string {
		payload := match[strings.Index(match, ",")+1:]
		raw, err := base64.StdEncoding.DecodeString(stripSpace(payload))
		if err != nil {
			log.Warnf("inline image: skip undecodable base64 payload: %v", err)
			return match
		}
		url, err := r.transcoder.EncodeInline(raw)
		if errors.Is(err, ErrUnsupportedMedia) {
			log.Warnf("inline image: skip invalid embedded image: %v", err)
			return match
		}
		if err != nil {
			if writeErr == nil {
				writeErr = err
			}
			return match
		}
		return url
	})
	if writeErr != nil {
		return "", writeErr
	}
	return rewritten, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
