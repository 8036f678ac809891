package wonderfloyd

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/FurkanCLL/wonderfloyd/views"
)

const (
	defaultOffset = 0
	defaultLimit  = 10
)

// parsePage extracts offset/limit query parameters. Malformed or negative
// values never raise; they silently fall back to the (0, 10) defaults.
func parsePage(c echo.Context) (offset, limit int) {
	offset, limit = defaultOffset, defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v >= 0 {
		limit = v
	}
	return offset, limit
}

// HasMorePages reports whether another page exists past the current one.
func HasMorePages(offset, limit, total int) bool {
	return offset+limit < total
}

func (a *App) handleHome(c echo.Context) error {
	category := c.QueryParam("category")
	posts, total, err := a.Store.ListPosts(defaultOffset, defaultLimit, category)
	if err != nil {
		return err
	}
	categories, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	hasMore := HasMorePages(defaultOffset, defaultLimit, total)
	return Render(c, views.Home(a.Config.Site, posts, categories, category, hasMore, a.isAdmin(c)))
}

// handlePostsFragment serves the incremental pagination endpoint: a JSON
// body carrying the rendered post cards plus whether more pages remain.
func (a *App) handlePostsFragment(c echo.Context) error {
	offset, limit := parsePage(c)
	category := c.QueryParam("category")
	posts, total, err := a.Store.ListPosts(offset, limit, category)
	if err != nil {
		return err
	}
	html, err := RenderString(c.Request().Context(), views.PostCards(posts, a.isAdmin(c)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"html":    html,
		"hasMore": HasMorePages(offset, limit, total),
	})
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Store.GetPostBySlug(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
		}
		return err
	}
	return Render(c, views.PostPage(a.Config.Site, post, a.isAdmin(c), CsrfToken(c)))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, views.About(a.Config.Site, a.isAdmin(c)))
}

func (a *App) handleContact(c echo.Context) error {
	return Render(c, views.Contact(a.Config.Site, views.ContactState{}, a.isAdmin(c), CsrfToken(c)))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	form := ContactForm{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Message: strings.TrimSpace(c.FormValue("message")),
		Website: c.FormValue("website"),
	}

	// Honeypot tripped: pretend success, deliver nothing.
	if form.Website != "" {
		log.Infof("contact form: honeypot tripped, dropping submission")
		return Render(c, views.Contact(a.Config.Site, views.ContactState{Sent: true}, a.isAdmin(c), CsrfToken(c)))
	}

	if err := form.Validate(); err != nil {
		state := views.ContactState{
			Name:    form.Name,
			Email:   form.Email,
			Message: form.Message,
			Errors:  FieldErrors(err),
		}
		return RenderStatus(c, http.StatusBadRequest, views.Contact(a.Config.Site, state, a.isAdmin(c), CsrfToken(c)))
	}

	if err := a.Mailer.SendContact(form.Name, form.Email, form.Message); err != nil {
		log.Errorf("contact form: %v", err)
		state := views.ContactState{
			Name:    form.Name,
			Email:   form.Email,
			Message: form.Message,
			Failed:  true,
		}
		return Render(c, views.Contact(a.Config.Site, state, a.isAdmin(c), CsrfToken(c)))
	}
	return Render(c, views.Contact(a.Config.Site, views.ContactState{Sent: true}, a.isAdmin(c), CsrfToken(c)))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.Config.Site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
