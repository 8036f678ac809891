package views

import (
	"bytes"
	"strconv"

	"github.com/a-h/templ"
)

// Login renders the hidden admin login form.
func Login(cfg SiteConfig, showError bool, csrfToken string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		meta := PageMeta{Title: "Log In — " + cfg.Name}
		layout(buf, cfg, meta, false, func(buf *bytes.Buffer) {
			buf.WriteString(`<section class="page login-page"><h1>Log In</h1>`)
			if showError {
				buf.WriteString(`<p class="flash error">Invalid login information.</p>`)
			}
			buf.WriteString(`<form method="post" action="/secret-login">`)
			writeCsrf(buf, csrfToken)
			writeField(buf, "email", "email", "Email", "", "")
			writeField(buf, "password", "password", "Password", "", "")
			buf.WriteString(`<button type="submit">Let Me In</button></form></section>`)
		})
	})
}

// PostFormState carries a post form's round-trip values into the editor view.
type PostFormState struct {
	Post       Post
	Categories []Category // all known categories, for the checkbox set
	IsEdit     bool
	ErrMsg     string
}

// PostEditor renders the create/edit form: title, subtitle, cover image
// (file upload or external URL), category checkboxes, rich-text body, and
// the ordered source rows.
func PostEditor(cfg SiteConfig, state PostFormState, csrfToken string) templ.Component {
	return component(func(buf *bytes.Buffer) {
		heading := "New Post"
		action := "/new-post/"
		if state.IsEdit {
			heading = "Edit Post"
			action = "/edit-post/" + strconv.FormatInt(state.Post.ID, 10) + "/"
		}
		meta := PageMeta{Title: heading + " — " + cfg.Name}
		layout(buf, cfg, meta, true, func(buf *bytes.Buffer) {
			buf.WriteString(`<section class="page editor-page"><h1>` + esc(heading) + `</h1>`)
			if state.ErrMsg != "" {
				buf.WriteString(`<p class="flash error">` + esc(state.ErrMsg) + `</p>`)
			}
			buf.WriteString(`<form method="post" action="` + action + `" enctype="multipart/form-data" class="post-form">`)
			writeCsrf(buf, csrfToken)

			writeField(buf, "text", "title", "Blog Post Title", state.Post.Title, "")
			writeField(buf, "text", "subtitle", "Subtitle", state.Post.Subtitle, "")

			buf.WriteString(`<label for="image">Cover Image</label>`)
			buf.WriteString(`<input type="file" id="image" name="image" accept=".jpg,.jpeg,.png,.webp"/>`)
			writeField(buf, "url", "img_url", "Or an external image URL", state.Post.ImageURL, "")

			buf.WriteString(`<fieldset class="category-set"><legend>Categories</legend>`)
			for _, c := range state.Categories {
				id := strconv.FormatInt(c.ID, 10)
				checked := ""
				if HasCategory(state.Post, c.ID) {
					checked = ` checked`
				}
				buf.WriteString(`<label class="checkbox"><input type="checkbox" name="categories" value="` +
					id + `"` + checked + `/> ` + esc(c.Name) + `</label>`)
			}
			buf.WriteString(`</fieldset>`)

			buf.WriteString(`<label for="body">Blog Content</label>`)
			buf.WriteString(`<textarea id="body" name="body" class="rich-editor" rows="20">` + esc(state.Post.Body) + `</textarea>`)

			buf.WriteString(`<fieldset class="source-set"><legend>Sources</legend><div id="source-rows">`)
			rows := state.Post.Sources
			// Always offer a few blank trailing rows; empty labels are skipped on save.
			for i := 0; i < len(rows)+3; i++ {
				var label, url string
				if i < len(rows) {
					label, url = rows[i].Label, rows[i].URL
				}
				buf.WriteString(`<div class="source-row">`)
				buf.WriteString(`<input type="text" name="source_label" placeholder="Label" value="` + esc(label) + `"/>`)
				buf.WriteString(`<input type="url" name="source_url" placeholder="URL (optional)" value="` + esc(url) + `"/>`)
				buf.WriteString(`</div>`)
			}
			buf.WriteString(`</div></fieldset>`)

			buf.WriteString(`<button type="submit">Submit Post</button></form></section>`)
		})
	})
}
