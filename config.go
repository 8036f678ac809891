package wonderfloyd

import "github.com/FurkanCLL/wonderfloyd/views"

// Config holds all configuration for a WonderFloyd site.
type Config struct {
	Site views.SiteConfig // site branding used by templates and feeds

	Addr         string // Listen address (default ":5001")
	DatabasePath string // SQLite path (default "data/posts.db")
	UploadsDir   string // Directory for derived media (default "public/uploads")
	StaticDir    string // User static assets served under /public (default "public")

	// Single admin account, seeded on first start. AdminPasswordHash is a
	// bcrypt hash; the plaintext never appears in configuration.
	AdminEmail        string
	AdminName         string
	AdminPasswordHash string

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	// Outbound mail for the contact form. Empty SMTPHost disables delivery.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ContactTo    string // recipient for contact submissions (default AdminEmail)
}

func (c *Config) setDefaults() {
	if c.Site.Name == "" {
		c.Site.Name = "WonderFloyd"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:5001"
	}
	if c.Addr == "" {
		c.Addr = ":5001"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/posts.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public/uploads"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.ContactTo == "" {
		c.ContactTo = c.AdminEmail
	}
	if c.MailFrom == "" {
		c.MailFrom = c.SMTPUsername
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
