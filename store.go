package wonderfloyd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/FurkanCLL/wonderfloyd/views"
)

// Store wraps a SQLite database and provides persistence for posts,
// categories, sources, and the admin user.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and turn
	// foreign keys on so deleting a post cascades to its join rows and
	// sources inside the same transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    name TEXT NOT NULL,
    role INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    author_id INTEGER NOT NULL REFERENCES users(id),
    title TEXT NOT NULL UNIQUE,
    subtitle TEXT NOT NULL,
    date TEXT NOT NULL,
    body TEXT NOT NULL,
    img_url TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS post_categories (
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    PRIMARY KEY (post_id, category_id)
);

CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sources_post ON sources(post_id, position);
CREATE INDEX IF NOT EXISTS idx_post_categories_category ON post_categories(category_id);
`)
	return err
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// SeedAdmin inserts the single admin account if no users exist yet.
func (s *Store) SeedAdmin(email, name, passwordHash string) error {
	if email == "" || passwordHash == "" {
		return nil
	}
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO users (email, password, name, role) VALUES (?, ?, ?, ?)`,
		email, passwordHash, name, int(views.RoleAdmin))
	return err
}

// SeedCategories inserts any of the given category names that do not exist yet.
func (s *Store) SeedCategories(names []string) error {
	for _, name := range FilterEmpty(names) {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			return err
		}
	}
	return nil
}

// GetUserByEmail returns the user with the given email address.
func (s *Store) GetUserByEmail(email string) (views.User, error) {
	var u views.User
	var role int
	err := s.db.QueryRow(`SELECT id, email, password, name, role FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role)
	if err == sql.ErrNoRows {
		return views.User{}, ErrNotFound
	}
	if err != nil {
		return views.User{}, err
	}
	u.Role = views.Role(role)
	return u, nil
}

// GetUserByID returns the user with the given id.
func (s *Store) GetUserByID(id int64) (views.User, error) {
	var u views.User
	var role int
	err := s.db.QueryRow(`SELECT id, email, password, name, role FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role)
	if err == sql.ErrNoRows {
		return views.User{}, ErrNotFound
	}
	if err != nil {
		return views.User{}, err
	}
	u.Role = views.Role(role)
	return u, nil
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories() ([]views.Category, error) {
	rows, err := s.db.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []views.Category
	for rows.Next() {
		var c views.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoryFilterAll is the sentinel that disables category filtering.
const CategoryFilterAll = "all"

// ListPosts returns one page of posts ordered by descending id (newest
// first) together with the total number of posts matching the filter.
// category equal to the "all" sentinel (or empty) disables filtering;
// otherwise an inner join restricts results to that category. Author and
// category associations are eager-loaded for every returned post.
func (s *Store) ListPosts(offset, limit int, category string) ([]views.Post, int, error) {
	filtered := category != "" && category != CategoryFilterAll

	var total int
	if filtered {
		err := s.db.QueryRow(`
			SELECT COUNT(DISTINCT p.id) FROM posts p
			JOIN post_categories pc ON pc.post_id = p.id
			JOIN categories c ON c.id = pc.category_id
			WHERE c.name = ?`, category).Scan(&total)
		if err != nil {
			return nil, 0, err
		}
	} else {
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	var rows *sql.Rows
	var err error
	if filtered {
		rows, err = s.db.Query(`
			SELECT DISTINCT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.slug,
			       u.id, u.email, u.name, u.role
			FROM posts p
			JOIN users u ON u.id = p.author_id
			JOIN post_categories pc ON pc.post_id = p.id
			JOIN categories c ON c.id = pc.category_id
			WHERE c.name = ?
			ORDER BY p.id DESC LIMIT ? OFFSET ?`, category, limit, offset)
	} else {
		rows, err = s.db.Query(`
			SELECT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.slug,
			       u.id, u.email, u.name, u.role
			FROM posts p
			JOIN users u ON u.id = p.author_id
			ORDER BY p.id DESC LIMIT ? OFFSET ?`, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := s.loadCategories(posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func scanPosts(rows *sql.Rows) ([]views.Post, error) {
	var posts []views.Post
	for rows.Next() {
		var p views.Post
		var role int
		if err := rows.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImageURL, &p.Slug,
			&p.Author.ID, &p.Author.Email, &p.Author.Name, &role); err != nil {
			return nil, err
		}
		p.Author.Role = views.Role(role)
		p.Link = "/" + p.Slug + "/"
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// loadCategories fills the Categories slice for every post in one query.
func (s *Store) loadCategories(posts []views.Post) error {
	if len(posts) == 0 {
		return nil
	}
	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	index := make(map[int64]*views.Post, len(posts))
	for i := range posts {
		placeholders[i] = "?"
		args[i] = posts[i].ID
		index[posts[i].ID] = &posts[i]
	}
	query := fmt.Sprintf(`
		SELECT pc.post_id, c.id, c.name
		FROM post_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id IN (%s)
		ORDER BY c.name`, strings.Join(placeholders, ","))
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var c views.Category
		if err := rows.Scan(&postID, &c.ID, &c.Name); err != nil {
			return err
		}
		if p, ok := index[postID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	return rows.Err()
}

func (s *Store) loadSources(p *views.Post) error {
	rows, err := s.db.Query(`SELECT id, post_id, position, label, url FROM sources WHERE post_id = ? ORDER BY position`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var src views.Source
		if err := rows.Scan(&src.ID, &src.PostID, &src.Position, &src.Label, &src.URL); err != nil {
			return err
		}
		p.Sources = append(p.Sources, src)
	}
	return rows.Err()
}

func (s *Store) getPost(where string, arg any) (views.Post, error) {
	row := s.db.QueryRow(`
		SELECT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.slug,
		       u.id, u.email, u.name, u.role
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE `+where, arg)

	var p views.Post
	var role int
	err := row.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImageURL, &p.Slug,
		&p.Author.ID, &p.Author.Email, &p.Author.Name, &role)
	if err == sql.ErrNoRows {
		return views.Post{}, ErrNotFound
	}
	if err != nil {
		return views.Post{}, err
	}
	p.Author.Role = views.Role(role)
	p.Link = "/" + p.Slug + "/"

	single := []views.Post{p}
	if err := s.loadCategories(single); err != nil {
		return views.Post{}, err
	}
	p = single[0]
	if err := s.loadSources(&p); err != nil {
		return views.Post{}, err
	}
	return p, nil
}

// GetPostBySlug returns a single post with its author, categories, and sources.
func (s *Store) GetPostBySlug(slug string) (views.Post, error) {
	return s.getPost("p.slug = ?", slug)
}

// GetPostByID returns a single post with its author, categories, and sources.
func (s *Store) GetPostByID(id int64) (views.Post, error) {
	return s.getPost("p.id = ?", id)
}

// CreatePost inserts the post, its category associations, and its source rows
// in one transaction. Unknown category ids are silently dropped. On success
// p.ID is populated.
func (s *Store) CreatePost(p *views.Post, categoryIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO posts (author_id, title, subtitle, date, body, img_url, slug) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Author.ID, p.Title, p.Subtitle, p.Date, p.Body, p.ImageURL, p.Slug)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateTitle
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id

	if err := insertAssociations(tx, p, categoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdatePost rewrites the post row and fully replaces its category
// associations and source rows in one transaction. The slug is left
// untouched so published permalinks survive title edits.
func (s *Store) UpdatePost(p *views.Post, categoryIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE posts SET title = ?, subtitle = ?, body = ?, img_url = ? WHERE id = ?`,
		p.Title, p.Subtitle, p.Body, p.ImageURL, p.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateTitle
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM post_categories WHERE post_id = ?`, p.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sources WHERE post_id = ?`, p.ID); err != nil {
		return err
	}
	if err := insertAssociations(tx, p, categoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// insertAssociations writes category join rows and source rows for p.
// The category insert selects from categories, so ids that do not exist
// insert nothing rather than failing.
func insertAssociations(tx *sql.Tx, p *views.Post, categoryIDs []int64) error {
	for _, cid := range categoryIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO post_categories (post_id, category_id)
			SELECT ?, id FROM categories WHERE id = ?`, p.ID, cid); err != nil {
			return err
		}
	}
	for _, src := range p.Sources {
		if _, err := tx.Exec(`INSERT INTO sources (post_id, position, label, url) VALUES (?, ?, ?, ?)`,
			p.ID, src.Position, src.Label, src.URL); err != nil {
			return err
		}
	}
	return nil
}

// DeletePost removes a post; join rows and sources cascade. The deleted
// post's slug is returned so the caller can clean up derived media.
func (s *Store) DeletePost(id int64) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var slug string
	err = tx.QueryRow(`SELECT slug FROM posts WHERE id = ?`, id).Scan(&slug)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		return "", err
	}
	return slug, tx.Commit()
}
