// Command wonderfloyd runs the blog server. All configuration comes from
// environment variables, optionally loaded from a .env file.
package main

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/FurkanCLL/wonderfloyd"
	"github.com/FurkanCLL/wonderfloyd/views"
)

func main() {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg := wonderfloyd.Config{
		Site: views.SiteConfig{
			Name:        wonderfloyd.EnvOr("SITE_NAME", "WonderFloyd"),
			URL:         wonderfloyd.EnvOr("SITE_URL", "http://localhost:5001"),
			Description: wonderfloyd.EnvOr("SITE_DESCRIPTION", ""),
			Author:      wonderfloyd.EnvOr("SITE_AUTHOR", ""),
		},

		Addr:         wonderfloyd.EnvOr("ADDR", ":5001"),
		DatabasePath: wonderfloyd.EnvOr("DB_PATH", "data/posts.db"),
		UploadsDir:   wonderfloyd.EnvOr("UPLOADS_DIR", "public/uploads"),
		StaticDir:    wonderfloyd.EnvOr("STATIC_DIR", "public"),

		AdminEmail:        wonderfloyd.MustEnv("ADMIN_EMAIL"),
		AdminName:         wonderfloyd.EnvOr("ADMIN_NAME", "Admin"),
		AdminPasswordHash: wonderfloyd.MustEnv("ADMIN_PASSWORD_HASH"),

		SessionSecret: wonderfloyd.MustEnv("SESSION_SECRET"),
		CookieSecure:  wonderfloyd.EnvOr("COOKIE_SECURE", "") != "",

		SMTPHost:     wonderfloyd.EnvOr("SMTP_HOST", ""),
		SMTPPort:     wonderfloyd.EnvOr("SMTP_PORT", "587"),
		SMTPUsername: wonderfloyd.EnvOr("SMTP_USERNAME", ""),
		SMTPPassword: wonderfloyd.EnvOr("SMTP_PASSWORD", ""),
		MailFrom:     wonderfloyd.EnvOr("MAIL_FROM", ""),
		ContactTo:    wonderfloyd.EnvOr("CONTACT_TO", ""),
	}

	app := wonderfloyd.New(cfg, wonderfloyd.WithCustomRoutes(seedCategories))
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// seedCategories creates any categories named in the CATEGORIES environment
// variable (comma-separated) that do not exist yet.
func seedCategories(a *wonderfloyd.App) {
	raw := wonderfloyd.EnvOr("CATEGORIES", "")
	if raw == "" {
		return
	}
	if err := a.Store.SeedCategories(strings.Split(raw, ",")); err != nil {
		log.Fatalf("seed categories: %v", err)
	}
}
