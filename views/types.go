package views

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "WonderFloyd")
	URL         string // SITE_URL   (default "http://localhost:5001")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Role distinguishes the administrative identity from everyone else.
type Role int

const (
	RoleReader Role = iota
	RoleAdmin
)

// User is the authoring identity. Only a single admin account exists.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

// CanManageContent reports whether the user may author, edit, or delete posts.
func (u User) CanManageContent() bool {
	return u.Role == RoleAdmin
}

// Category is a unique label posts can be filed under (many-to-many).
type Category struct {
	ID   int64
	Name string
}

// Source is one ordered citation row belonging to a post. Position is a
// dense zero-based sequence per post.
type Source struct {
	ID       int64
	PostID   int64
	Position int
	Label    string
	URL      string
}

// Post is the core content type stored in SQLite and rendered by templates.
// Date is a display string, not a sort key; listing order is id descending.
type Post struct {
	ID         int64
	Title      string
	Subtitle   string
	Date       string
	Body       string // rich HTML, inline images already rewritten to stored URLs
	ImageURL   string // hero cover image
	Slug       string
	Link       string
	Author     User
	Categories []Category
	Sources    []Source
}

// CategoryNames returns the post's category names in stored order.
func (p Post) CategoryNames() []string {
	names := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		names[i] = c.Name
	}
	return names
}
