// Package wonderfloyd is a server-rendered blog/CMS built with Go, Echo, and
// templ. A single admin authors rich-text posts with categories, cover
// images, and ordered source citations; visitors read them via slug URLs
// with incremental pagination, category filtering, a contact form, and
// sitemap/robots endpoints.
package wonderfloyd

import (
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// App is the central application. It wires together the store, content
// service, media transcoder, mailer, middleware, and routes.
type App struct {
	Config     Config
	Echo       *echo.Echo
	Store      *Store
	Transcoder *Transcoder
	Rewriter   *Rewriter
	Content    *ContentService
	Mailer     *Mailer

	customRoutes []func(*App)
}

// New creates a new App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start initializes the database, seeds the admin account, wires the
// middleware and routes, and starts the server.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("wonderfloyd: SessionSecret is required")
	}
	if a.Config.AdminEmail == "" || a.Config.AdminPasswordHash == "" {
		return fmt.Errorf("wonderfloyd: AdminEmail and AdminPasswordHash are required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("wonderfloyd: init store: %w", err)
	}
	a.Store = store

	if err := store.SeedAdmin(a.Config.AdminEmail, a.Config.AdminName, a.Config.AdminPasswordHash); err != nil {
		return fmt.Errorf("wonderfloyd: seed admin: %w", err)
	}

	a.Transcoder = NewTranscoder(a.Config.UploadsDir, path.Join("/public", "uploads"))
	a.Rewriter = NewRewriter(a.Transcoder)
	a.Content = NewContentService(store, a.Transcoder, a.Rewriter)
	a.Mailer = NewMailer(
		a.Config.SMTPHost, a.Config.SMTPPort,
		a.Config.SMTPUsername, a.Config.SMTPPassword,
		a.Config.MailFrom, a.Config.ContactTo,
		a.Config.Site.Name,
	)
	if a.Config.SMTPHost == "" {
		log.Warn("no SMTP host configured; contact form delivery is disabled")
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Static assets, including the derived media under /public/uploads.
	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public pages.
	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handlePostsFragment)
	e.GET("/about/", a.handleAbout)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)

	// Auth.
	e.GET("/secret-login", a.handleLogin)
	e.POST("/secret-login", a.handleLoginSubmit)
	e.GET("/logout/", a.handleLogout)

	// Authoring, gated by the Role capability check.
	e.GET("/new-post/", a.handleNewPost, a.requireAdmin)
	e.POST("/new-post/", a.handleNewPostSubmit, a.requireAdmin)
	e.GET("/edit-post/:id/", a.handleEditPost, a.requireAdmin)
	e.POST("/edit-post/:id/", a.handleEditPostSubmit, a.requireAdmin)
	e.POST("/delete/:id/", a.handleDeletePost, a.requireAdmin)
	e.POST("/admin/images/upload", a.handleInlineImageUpload, a.requireAdmin)

	// Slug-addressed post pages; registered last so static routes win.
	e.GET("/:slug/", a.handlePost)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("wonderfloyd: required environment variable %s is not set", key)
	}
	return v
}
