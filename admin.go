package wonderfloyd

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/FurkanCLL/wonderfloyd/views"
)

func (a *App) handleLogin(c echo.Context) error {
	if a.isAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, views.Login(a.Config.Site, false, CsrfToken(c)))
}

func (a *App) handleLoginSubmit(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	user, err := a.Store.GetUserByEmail(email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	}
	if err != nil {
		return Render(c, views.Login(a.Config.Site, true, CsrfToken(c)))
	}
	if err := setUserSession(c, user.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleNewPost(c echo.Context) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	state := views.PostFormState{Categories: categories}
	return Render(c, views.PostEditor(a.Config.Site, state, CsrfToken(c)))
}

func (a *App) handleNewPostSubmit(c echo.Context) error {
	form, sub, err := a.postSubmission(c)
	if err != nil {
		return err
	}
	if verr := form.Validate(); verr != nil {
		return a.renderEditorError(c, form, sub, 0, false, firstError(FieldErrors(verr)))
	}

	user := a.currentUser(c)
	if _, err := a.Content.Create(sub, user); err != nil {
		if userFacing(err) {
			return a.renderEditorError(c, form, sub, 0, false, err.Error())
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleEditPost(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	post, err := a.Store.GetPostByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	state := views.PostFormState{Post: post, Categories: categories, IsEdit: true}
	return Render(c, views.PostEditor(a.Config.Site, state, CsrfToken(c)))
}

func (a *App) handleEditPostSubmit(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	form, sub, err := a.postSubmission(c)
	if err != nil {
		return err
	}
	if verr := form.Validate(); verr != nil {
		return a.renderEditorError(c, form, sub, id, true, firstError(FieldErrors(verr)))
	}

	post, err := a.Content.Update(id, sub)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		if userFacing(err) {
			return a.renderEditorError(c, form, sub, id, true, err.Error())
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, post.Link)
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err := a.Content.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// handleInlineImageUpload stores an editor-embedded image and replies with
// {"url": ...} on success or {"error": {"message": ...}} on a bad upload.
func (a *App) handleInlineImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return uploadError(c, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return uploadError(c, "File too large (max 10MB)")
	}
	if !AllowedExtension(file.Filename) {
		return uploadError(c, "File type not allowed (jpg, jpeg, png, webp)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	url, err := a.Transcoder.EncodeInline(data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedMedia) {
			return uploadError(c, "Invalid image: "+err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func uploadError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"error": map[string]string{"message": message},
	})
}

// postSubmission parses the editor form, including the optional multipart
// cover file, into the validated-form/submission pair.
func (a *App) postSubmission(c echo.Context) (PostForm, PostSubmission, error) {
	if err := c.Request().ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		return PostForm{}, PostSubmission{}, err
	}

	form := PostForm{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Subtitle:     strings.TrimSpace(c.FormValue("subtitle")),
		Body:         c.FormValue("body"),
		ImageURL:     strings.TrimSpace(c.FormValue("img_url")),
		SourceLabels: formValues(c, "source_label"),
		SourceURLs:   formValues(c, "source_url"),
	}
	for _, raw := range formValues(c, "categories") {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			form.CategoryIDs = append(form.CategoryIDs, id)
		}
	}

	sub := PostSubmission{
		Title:       form.Title,
		Subtitle:    form.Subtitle,
		Body:        form.Body,
		ImageURL:    form.ImageURL,
		CategoryIDs: form.CategoryIDs,
	}
	for i, label := range form.SourceLabels {
		entry := SourceEntry{Label: label}
		if i < len(form.SourceURLs) {
			entry.URL = form.SourceURLs[i]
		}
		sub.Sources = append(sub.Sources, entry)
	}

	if file, err := c.FormFile("image"); err == nil && file.Size > 0 {
		if file.Size > maxUploadSize {
			return form, sub, echo.NewHTTPError(http.StatusBadRequest, "cover image too large (max 10MB)")
		}
		src, err := file.Open()
		if err != nil {
			return form, sub, err
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			return form, sub, err
		}
		sub.ImageData = data
		sub.ImageName = file.Filename
	}
	return form, sub, nil
}

func formValues(c echo.Context, name string) []string {
	form, err := c.FormParams()
	if err != nil {
		return nil
	}
	return form[name]
}

func (a *App) renderEditorError(c echo.Context, form PostForm, sub PostSubmission, id int64, isEdit bool, msg string) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	post := views.Post{
		ID:       id,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImageURL: form.ImageURL,
	}
	for _, cid := range form.CategoryIDs {
		post.Categories = append(post.Categories, views.Category{ID: cid})
	}
	for _, e := range sub.Sources {
		post.Sources = append(post.Sources, views.Source{Label: e.Label, URL: e.URL})
	}
	state := views.PostFormState{Post: post, Categories: categories, IsEdit: isEdit, ErrMsg: msg}
	return RenderStatus(c, http.StatusBadRequest, views.PostEditor(a.Config.Site, state, CsrfToken(c)))
}

// userFacing reports whether err should be shown to the submitter on the
// form rather than escalated as a server error.
func userFacing(err error) bool {
	return errors.Is(err, ErrUnsupportedMedia) || errors.Is(err, ErrDuplicateTitle)
}

// firstError picks one message to show on the editor banner. Form field
// order first, then alphabetical, so identical submissions always surface
// the same message.
func firstError(fields map[string]string) string {
	for _, field := range []string{"title", "subtitle", "body", "imageurl", "sourceurls"} {
		if msg, ok := fields[field]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return fields[keys[0]]
	}
	return "invalid submission"
}
