package wonderfloyd

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.Site.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "about")},
		{Loc: BuildURL(base, "contact")},
	}
	// Walk the full post list in pages so the query path stays the same
	// one the site serves.
	offset := 0
	for {
		posts, total, err := a.Store.ListPosts(offset, defaultLimit, CategoryFilterAll)
		if err != nil {
			return err
		}
		for _, p := range posts {
			urls = append(urls, sitemapURL{Loc: BuildURL(base, p.Slug)})
		}
		offset += defaultLimit
		if !HasMorePages(offset-defaultLimit, defaultLimit, total) {
			break
		}
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\n" +
		"Disallow: /secret-login\n" +
		"Disallow: /new-post/\n" +
		"Disallow: /edit-post/\n" +
		"Disallow: /admin/\n" +
		"\nSitemap: " + a.Config.Site.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}
