package views

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// component wraps a buffer-writing render function as a templ.Component,
// the same pattern the body renderer uses.
func component(render func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		render(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}

// layout writes the shared document frame: head with SEO/OpenGraph metadata,
// navigation, and footer. body fills in the page content.
func layout(buf *bytes.Buffer, cfg SiteConfig, meta PageMeta, isAdmin bool, body func(buf *bytes.Buffer)) {
	title := meta.Title
	if title == "" {
		title = cfg.Name
	}
	desc := meta.Description
	if desc == "" {
		desc = cfg.Description
	}
	ogType := meta.OGType
	if ogType == "" {
		ogType = "website"
	}

	buf.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	buf.WriteString(`<meta charset="utf-8"/>`)
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	buf.WriteString(`<title>` + esc(title) + `</title>`)
	buf.WriteString(`<meta name="description" content="` + esc(desc) + `"/>`)
	if meta.URL != "" {
		buf.WriteString(`<link rel="canonical" href="` + esc(meta.URL) + `"/>`)
		buf.WriteString(`<meta property="og:url" content="` + esc(meta.URL) + `"/>`)
	}
	buf.WriteString(`<meta property="og:title" content="` + esc(title) + `"/>`)
	buf.WriteString(`<meta property="og:description" content="` + esc(desc) + `"/>`)
	buf.WriteString(`<meta property="og:type" content="` + esc(ogType) + `"/>`)
	buf.WriteString(`<meta property="og:site_name" content="` + esc(cfg.Name) + `"/>`)
	buf.WriteString(`<script type="application/ld+json">` + WebsiteJsonLD(cfg) + `</script>`)
	buf.WriteString(`<link rel="stylesheet" href="/public/css/styles.css"/>`)
	buf.WriteString(`</head><body>`)

	buf.WriteString(`<nav class="site-nav"><a class="brand" href="/">` + esc(cfg.Name) + `</a>`)
	buf.WriteString(`<div class="nav-links">`)
	buf.WriteString(`<a href="/">Home</a><a href="/about/">About</a><a href="/contact/">Contact</a>`)
	if isAdmin {
		buf.WriteString(`<a href="/new-post/">New Post</a>`)
		buf.WriteString(`<a href="/logout/">Log Out</a>`)
	}
	buf.WriteString(`</div></nav><main>`)

	body(buf)

	buf.WriteString(`</main><footer class="site-footer"><p>&copy; ` +
		strconv.Itoa(time.Now().Year()) + ` ` + esc(cfg.Name) + `</p></footer>`)
	buf.WriteString(`<script src="/public/js/scripts.js"></script>`)
	buf.WriteString(`</body></html>`)
}

// Home renders the landing page: header, category filter pills, and the first
// page of post cards with a load-more control when more pages remain.
func Home(cfg SiteConfig, posts []Post, categories []Category, activeCategory string, hasMore bool, isAdmin bool) templ.Component {
	return component(func(buf *bytes.Buffer) {
		meta := PageMeta{
			Title:       cfg.Name,
			Description: cfg.Description,
			URL:         buildURL(cfg.URL),
			OGType:      "website",
		}
		layout(buf, cfg, meta, isAdmin, func(buf *bytes.Buffer) {
			buf.WriteString(`<header class="site-header"><h1>` + esc(cfg.Name) + `</h1>`)
			if cfg.Description != "" {
				buf.WriteString(`<p class="subheading">` + esc(cfg.Description) + `</p>`)
			}
			buf.WriteString(`</header>`)

			buf.WriteString(`<div class="category-filter">`)
			writeCategoryPill(buf, "all", "All", activeCategory == "" || activeCategory == "all")
			for _, c := range categories {
				writeCategoryPill(buf, c.Name, c.Name, activeCategory == c.Name)
			}
			buf.WriteString(`</div>`)

			buf.WriteString(`<section id="post-list" class="post-list" data-category="` + esc(activeCategoryOrAll(activeCategory)) + `">`)
			writePostCards(buf, posts, isAdmin)
			buf.WriteString(`</section>`)

			if hasMore {
				buf.WriteString(`<div class="load-more-wrap"><button id="load-more" data-offset="` +
					strconv.Itoa(len(posts)) + `">Load more</button></div>`)
			}
		})
	})
}

func activeCategoryOrAll(c string) string {
	if c == "" {
		return "all"
	}
	return c
}

func writeCategoryPill(buf *bytes.Buffer, value, label string, active bool) {
	cls := "category-pill"
	if active {
		cls += " active"
	}
	buf.WriteString(`<a class="` + cls + `" href="/?category=` + PathEscape(value) + `">` + esc(label) + `</a>`)
}

// PostCards renders post summary cards only, with no surrounding page. The
// paginated fragment endpoint serializes this component into its JSON reply.
func PostCards(posts []Post, isAdmin bool) templ.Component {
	return component(func(buf *bytes.Buffer) {
		writePostCards(buf, posts, isAdmin)
	})
}

func writePostCards(buf *bytes.Buffer, posts []Post, isAdmin bool) {
	for _, p := range posts {
		buf.WriteString(`<article class="post-card">`)
		buf.WriteString(`<a href="` + esc(p.Link) + `"><img class="post-card-img" src="` + esc(p.ImageURL) +
			`" alt="` + esc(p.Title) + `" loading="lazy"/></a>`)
		buf.WriteString(`<div class="post-card-body">`)
		buf.WriteString(`<h2><a href="` + esc(p.Link) + `">` + esc(p.Title) + `</a></h2>`)
		buf.WriteString(`<p class="post-subtitle">` + esc(p.Subtitle) + `</p>`)
		buf.WriteString(`<p class="post-meta">` + esc(p.Author.Name) + ` · ` + esc(p.Date) + `</p>`)
		if len(p.Categories) > 0 {
			buf.WriteString(`<div class="post-categories">`)
			for _, c := range p.Categories {
				buf.WriteString(`<a class="category-pill" href="/?category=` + PathEscape(c.Name) + `">` + esc(c.Name) + `</a>`)
			}
			buf.WriteString(`</div>`)
		}
		if isAdmin {
			buf.WriteString(`<div class="admin-actions">`)
			buf.WriteString(`<a href="/edit-post/` + strconv.FormatInt(p.ID, 10) + `/">Edit</a>`)
			buf.WriteString(`</div>`)
		}
		buf.WriteString(`</div></article>`)
	}
}

// PostPage renders a single post: hero cover, body HTML, and ordered sources.
// The body was sanitized and rewritten at save time and is emitted as-is.
func PostPage(cfg SiteConfig, post Post, isAdmin bool, csrfToken string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		meta := PageMeta{
			Title:       post.Title + " — " + cfg.Name,
			Description: post.Subtitle,
			URL:         buildURL(cfg.URL, post.Slug),
			OGType:      "article",
		}
		layout(buf, cfg, meta, isAdmin, func(buf *bytes.Buffer) {
			buf.WriteString(`<script type="application/ld+json">` + BlogPostingJsonLD(cfg, post) + `</script>`)
			buf.WriteString(`<article class="post">`)
			buf.WriteString(`<div class="post-hero"><img src="` + esc(post.ImageURL) + `" alt="` + esc(post.Title) + `" fetchpriority="high"/></div>`)
			buf.WriteString(`<header><h1>` + esc(post.Title) + `</h1>`)
			buf.WriteString(`<p class="post-subtitle">` + esc(post.Subtitle) + `</p>`)
			buf.WriteString(`<p class="post-meta">` + esc(post.Author.Name) + ` · ` + esc(post.Date) + `</p>`)
			buf.WriteString(`</header>`)
			buf.WriteString(`<div class="post-body">`)
			buf.WriteString(post.Body)
			buf.WriteString(`</div>`)
			if len(post.Sources) > 0 {
				buf.WriteString(`<section class="post-sources"><h2>Sources</h2><ol>`)
				for _, s := range post.Sources {
					buf.WriteString(`<li>`)
					if s.URL != "" {
						buf.WriteString(`<a href="` + esc(s.URL) + `" target="_blank" rel="noopener noreferrer">` + esc(s.Label) + `</a>`)
					} else {
						buf.WriteString(esc(s.Label))
					}
					buf.WriteString(`</li>`)
				}
				buf.WriteString(`</ol></section>`)
			}
			if isAdmin {
				buf.WriteString(`<div class="admin-actions">`)
				buf.WriteString(`<a href="/edit-post/` + strconv.FormatInt(post.ID, 10) + `/">Edit Post</a>`)
				buf.WriteString(`<form method="post" action="/delete/` + strconv.FormatInt(post.ID, 10) + `/" onsubmit="return confirm('Delete this post?')">`)
				writeCsrf(buf, csrfToken)
				buf.WriteString(`<button type="submit" class="danger">Delete</button></form>`)
				buf.WriteString(`</div>`)
			}
			buf.WriteString(`</article>`)
		})
	})
}

// About renders the static about page.
func About(cfg SiteConfig, isAdmin bool) templ.Component {
	return component(func(buf *bytes.Buffer) {
		meta := PageMeta{
			Title: "About — " + cfg.Name,
			URL:   buildURL(cfg.URL, "about"),
		}
		layout(buf, cfg, meta, isAdmin, func(buf *bytes.Buffer) {
			buf.WriteString(`<section class="page"><h1>About</h1>`)
			buf.WriteString(`<p>` + esc(cfg.Description) + `</p>`)
			if cfg.Author != "" {
				buf.WriteString(`<p>Written and maintained by ` + esc(cfg.Author) + `.</p>`)
			}
			buf.WriteString(`</section>`)
		})
	})
}

// ContactState carries the contact form's round-trip values and outcome.
type ContactState struct {
	Name    string
	Email   string
	Message string
	Errors  map[string]string
	Sent    bool
	Failed  bool
}

// Contact renders the contact form, including the hidden honeypot field.
func Contact(cfg SiteConfig, state ContactState, isAdmin bool, csrfToken string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		meta := PageMeta{
			Title: "Contact — " + cfg.Name,
			URL:   buildURL(cfg.URL, "contact"),
		}
		layout(buf, cfg, meta, isAdmin, func(buf *bytes.Buffer) {
			buf.WriteString(`<section class="page"><h1>Contact</h1>`)
			if state.Sent {
				buf.WriteString(`<p class="flash success">Thanks for reaching out! A confirmation has been sent to your address.</p>`)
			}
			if state.Failed {
				buf.WriteString(`<p class="flash error">Your message could not be delivered. Please try again later.</p>`)
			}
			buf.WriteString(`<form method="post" action="/contact/" class="contact-form">`)
			writeCsrf(buf, csrfToken)
			writeField(buf, "text", "name", "Name", state.Name, state.Errors["name"])
			writeField(buf, "email", "email", "Email", state.Email, state.Errors["email"])
			buf.WriteString(`<label for="message">Message</label>`)
			if msg := state.Errors["message"]; msg != "" {
				buf.WriteString(`<p class="field-error">` + esc(msg) + `</p>`)
			}
			buf.WriteString(`<textarea id="message" name="message" rows="8">` + esc(state.Message) + `</textarea>`)
			// Honeypot: hidden from humans, bots fill it in.
			buf.WriteString(`<div class="hp-field" aria-hidden="true"><label for="website">Website</label>` +
				`<input type="text" id="website" name="website" tabindex="-1" autocomplete="off"/></div>`)
			buf.WriteString(`<button type="submit">Send Message</button></form></section>`)
		})
	})
}

func writeField(buf *bytes.Buffer, inputType, name, label, value, fieldErr string) {
	buf.WriteString(`<label for="` + name + `">` + esc(label) + `</label>`)
	if fieldErr != "" {
		buf.WriteString(`<p class="field-error">` + esc(fieldErr) + `</p>`)
	}
	buf.WriteString(`<input type="` + inputType + `" id="` + name + `" name="` + name + `" value="` + esc(value) + `"/>`)
}

func writeCsrf(buf *bytes.Buffer, token string) {
	buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(token) + `"/>`)
}

// NotFound renders the styled 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return errorPage(cfg, "404", "This page seems to have wandered off.")
}

// ServerError renders the styled 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return errorPage(cfg, "500", "Something went wrong on our side.")
}

func errorPage(cfg SiteConfig, code, message string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		meta := PageMeta{Title: fmt.Sprintf("%s — %s", code, cfg.Name)}
		layout(buf, cfg, meta, false, func(buf *bytes.Buffer) {
			buf.WriteString(`<section class="page error-page"><h1>` + esc(code) + `</h1>`)
			buf.WriteString(`<p>` + esc(message) + `</p>`)
			buf.WriteString(`<p><a href="/">Back to the homepage</a></p></section>`)
		})
	})
}
