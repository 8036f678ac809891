package wonderfloyd

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/FurkanCLL/wonderfloyd/views"
)

// PlaceholderCover is the static fallback used when a submission carries
// neither an uploaded cover file nor an external image URL.
const PlaceholderCover = "/public/img/placeholder-cover.jpg"

// SourceEntry is one submitted label/URL citation row, in form order.
type SourceEntry struct {
	Label string
	URL   string
}

// PostSubmission is an already-validated authoring submission. The form
// layer type-checks it before the service runs.
type PostSubmission struct {
	Title    string
	Subtitle string
	Body     string

	ImageURL  string // optional external cover URL
	ImageData []byte // optional uploaded cover file
	ImageName string // uploaded file's original name, for the extension pre-check

	CategoryIDs []int64
	Sources     []SourceEntry
}

// ContentService turns validated submissions into persisted post state:
// slug derivation, cover resolution, inline-image rewriting, source
// reconciliation, and the atomic write.
type ContentService struct {
	store      *Store
	transcoder *Transcoder
	rewriter   *Rewriter
}

// NewContentService wires a ContentService from its collaborators.
func NewContentService(store *Store, transcoder *Transcoder, rewriter *Rewriter) *ContentService {
	return &ContentService{store: store, transcoder: transcoder, rewriter: rewriter}
}

// Create persists a new post authored by author. Any image-pipeline failure
// aborts the whole operation before the database is touched.
func (c *ContentService) Create(sub PostSubmission, author views.User) (views.Post, error) {
	slug := Slugify(sub.Title)

	imageURL, err := c.resolveCover(sub, slug)
	if err != nil {
		return views.Post{}, err
	}
	body, err := c.rewriter.Rewrite(sub.Body)
	if err != nil {
		return views.Post{}, err
	}

	post := views.Post{
		Title:    sub.Title,
		Subtitle: sub.Subtitle,
		Date:     DisplayDate(time.Now()),
		Body:     body,
		ImageURL: imageURL,
		Slug:     slug,
		Author:   author,
		Sources:  reconcileSources(sub.Sources),
	}
	if err := c.store.CreatePost(&post, sub.CategoryIDs); err != nil {
		return views.Post{}, err
	}
	post.Link = "/" + post.Slug + "/"
	return c.store.GetPostByID(post.ID)
}

// Update rewrites an existing post from the submission. The slug is never
// re-derived, preserving published permalinks across title edits. Existing
// source rows are fully replaced, not diffed.
func (c *ContentService) Update(id int64, sub PostSubmission) (views.Post, error) {
	existing, err := c.store.GetPostByID(id)
	if err != nil {
		return views.Post{}, err
	}

	imageURL, err := c.resolveCoverForEdit(sub, existing)
	if err != nil {
		return views.Post{}, err
	}
	body, err := c.rewriter.Rewrite(sub.Body)
	if err != nil {
		return views.Post{}, err
	}

	post := views.Post{
		ID:       id,
		Title:    sub.Title,
		Subtitle: sub.Subtitle,
		Date:     existing.Date,
		Body:     body,
		ImageURL: imageURL,
		Slug:     existing.Slug,
		Author:   existing.Author,
		Sources:  reconcileSources(sub.Sources),
	}
	if err := c.store.UpdatePost(&post, sub.CategoryIDs); err != nil {
		return views.Post{}, err
	}
	return c.store.GetPostByID(id)
}

// Delete removes the post and its derived cover artifacts. Inline images
// are left behind: nothing tracks which bodies still reference them.
func (c *ContentService) Delete(id int64) error {
	slug, err := c.store.DeletePost(id)
	if err != nil {
		return err
	}
	if err := c.transcoder.RemoveCover(slug); err != nil {
		log.Warnf("delete post %d: remove cover artifacts: %v", id, err)
	}
	return nil
}

// resolveCover picks the cover image URL for a new post. Exactly one of
// three outcomes applies, in priority order: a processed upload, the
// supplied external URL, or the static placeholder.
func (c *ContentService) resolveCover(sub PostSubmission, slug string) (string, error) {
	if len(sub.ImageData) > 0 {
		return c.transcoder.EncodeCover(sub.ImageData, sub.ImageName, slug)
	}
	if url := strings.TrimSpace(sub.ImageURL); url != "" {
		return url, nil
	}
	return PlaceholderCover, nil
}

// resolveCoverForEdit behaves like resolveCover but keyed by the post's
// existing slug, and falls back to the current cover before the placeholder
// so an edit without image fields does not discard the cover.
func (c *ContentService) resolveCoverForEdit(sub PostSubmission, existing views.Post) (string, error) {
	if len(sub.ImageData) > 0 {
		return c.transcoder.EncodeCover(sub.ImageData, sub.ImageName, existing.Slug)
	}
	if url := strings.TrimSpace(sub.ImageURL); url != "" {
		return url, nil
	}
	if existing.ImageURL != "" {
		return existing.ImageURL, nil
	}
	return PlaceholderCover, nil
}

// reconcileSources keeps submitted rows with a non-empty label, in
// submission order, assigning a dense zero-based position. Blank rows are
// skipped entirely, never stored.
func reconcileSources(entries []SourceEntry) []views.Source {
	var out []views.Source
	for _, e := range entries {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			continue
		}
		out = append(out, views.Source{
			Position: len(out),
			Label:    label,
			URL:      strings.TrimSpace(e.URL),
		})
	}
	return out
}
