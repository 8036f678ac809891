package wonderfloyd

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/FurkanCLL/wonderfloyd/views"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.SeedAdmin("admin@example.com", "Admin", "not-a-real-hash"); err != nil {
		t.Fatalf("SeedAdmin failed: %v", err)
	}
	if err := s.SeedCategories([]string{"Music", "History", "Science"}); err != nil {
		t.Fatalf("SeedCategories failed: %v", err)
	}
	return s
}

func testAdmin(t *testing.T, s *Store) views.User {
	t.Helper()
	u, err := s.GetUserByEmail("admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	return u
}

func categoryIDs(t *testing.T, s *Store, names ...string) []int64 {
	t.Helper()
	all, err := s.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	var ids []int64
	for _, want := range names {
		for _, c := range all {
			if c.Name == want {
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

func makeTestPost(t *testing.T, s *Store, title string, catIDs []int64, sources []views.Source) views.Post {
	t.Helper()
	p := views.Post{
		Title:    title,
		Subtitle: "A subtitle",
		Date:     "January 02, 2026",
		Body:     "<p>body</p>",
		ImageURL: PlaceholderCover,
		Slug:     Slugify(title),
		Author:   testAdmin(t, s),
		Sources:  sources,
	}
	if err := s.CreatePost(&p, catIDs); err != nil {
		t.Fatalf("CreatePost(%q) failed: %v", title, err)
	}
	return p
}

func TestSeedAdmin(t *testing.T) {
	s := setupTestStore(t)

	u := testAdmin(t, s)
	if u.Role != views.RoleAdmin {
		t.Errorf("seeded admin Role = %v, want RoleAdmin", u.Role)
	}
	if !u.CanManageContent() {
		t.Error("seeded admin should be able to manage content")
	}

	// Second seed is a no-op, not a duplicate.
	if err := s.SeedAdmin("other@example.com", "Other", "hash"); err != nil {
		t.Fatalf("second SeedAdmin failed: %v", err)
	}
	if _, err := s.GetUserByEmail("other@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second seed should not insert; got err %v", err)
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	catIDs := categoryIDs(t, s, "Music", "History")
	sources := []views.Source{
		{Position: 0, Label: "First source", URL: "https://example.com/a"},
		{Position: 1, Label: "Second source"},
	}
	created := makeTestPost(t, s, "Echoes of the Past", catIDs, sources)

	if created.ID == 0 {
		t.Fatal("CreatePost should populate the post id")
	}

	got, err := s.GetPostBySlug("echoes-of-the-past")
	if err != nil {
		t.Fatalf("GetPostBySlug failed: %v", err)
	}
	if got.Title != "Echoes of the Past" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Link != "/echoes-of-the-past/" {
		t.Errorf("Link = %q", got.Link)
	}
	if got.Author.Email != "admin@example.com" {
		t.Errorf("Author.Email = %q, eager load broken", got.Author.Email)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("Categories count = %d, want 2", len(got.Categories))
	}
	if len(got.Sources) != 2 {
		t.Fatalf("Sources count = %d, want 2", len(got.Sources))
	}
	if got.Sources[0].Label != "First source" || got.Sources[0].Position != 0 {
		t.Errorf("Sources[0] = %+v", got.Sources[0])
	}
	if got.Sources[1].URL != "" {
		t.Errorf("Sources[1].URL = %q, want empty", got.Sources[1].URL)
	}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	s := setupTestStore(t)
	makeTestPost(t, s, "Same Title", nil, nil)

	p := views.Post{
		Title: "Same Title", Subtitle: "s", Date: "d", Body: "b",
		ImageURL: PlaceholderCover, Slug: "same-title-2", Author: testAdmin(t, s),
	}
	if err := s.CreatePost(&p, nil); !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("duplicate title: got err %v, want ErrDuplicateTitle", err)
	}

	// Slug collisions surface the same way.
	p2 := views.Post{
		Title: "Different Title", Subtitle: "s", Date: "d", Body: "b",
		ImageURL: PlaceholderCover, Slug: "same-title", Author: testAdmin(t, s),
	}
	if err := s.CreatePost(&p2, nil); !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("duplicate slug: got err %v, want ErrDuplicateTitle", err)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPostBySlug("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
	if _, err := s.GetPostByID(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}

func TestListPostsPagination(t *testing.T) {
	s := setupTestStore(t)
	for i := 0; i < 25; i++ {
		makeTestPost(t, s, fmt.Sprintf("Post Number %d", i), nil, nil)
	}

	cases := []struct {
		offset  int
		want    int
		hasMore bool
	}{
		{0, 10, true},
		{10, 10, true},
		{20, 5, false},
	}
	for _, tc := range cases {
		posts, total, err := s.ListPosts(tc.offset, 10, CategoryFilterAll)
		if err != nil {
			t.Fatalf("ListPosts(offset=%d) failed: %v", tc.offset, err)
		}
		if total != 25 {
			t.Errorf("offset %d: total = %d, want 25", tc.offset, total)
		}
		if len(posts) != tc.want {
			t.Errorf("offset %d: page size = %d, want %d", tc.offset, len(posts), tc.want)
		}
		if got := HasMorePages(tc.offset, 10, total); got != tc.hasMore {
			t.Errorf("offset %d: hasMore = %v, want %v", tc.offset, got, tc.hasMore)
		}
	}

	// Newest first: insertion order descending, not date-string order.
	posts, _, err := s.ListPosts(0, 1, CategoryFilterAll)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if posts[0].Title != "Post Number 24" {
		t.Errorf("first post = %q, want the most recently created", posts[0].Title)
	}
}

func TestListPostsCategoryFilter(t *testing.T) {
	s := setupTestStore(t)
	music := categoryIDs(t, s, "Music")
	makeTestPost(t, s, "Music Post One", music, nil)
	makeTestPost(t, s, "Music Post Two", music, nil)
	makeTestPost(t, s, "Uncategorized Post", nil, nil)

	// Sentinel "all" matches the unfiltered count.
	_, allTotal, err := s.ListPosts(0, 10, CategoryFilterAll)
	if err != nil {
		t.Fatalf("ListPosts(all) failed: %v", err)
	}
	_, unfilteredTotal, err := s.ListPosts(0, 10, "")
	if err != nil {
		t.Fatalf("ListPosts(\"\") failed: %v", err)
	}
	if allTotal != unfilteredTotal || allTotal != 3 {
		t.Errorf("all=%d unfiltered=%d, want both 3", allTotal, unfilteredTotal)
	}

	posts, total, err := s.ListPosts(0, 10, "Music")
	if err != nil {
		t.Fatalf("ListPosts(Music) failed: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Errorf("Music: total=%d items=%d, want 2/2", total, len(posts))
	}
	for _, p := range posts {
		if len(p.Categories) == 0 || p.Categories[0].Name != "Music" {
			t.Errorf("post %q categories not eager-loaded: %+v", p.Title, p.Categories)
		}
	}

	// A category with zero posts returns an empty page and zero total.
	posts, total, err = s.ListPosts(0, 10, "Science")
	if err != nil {
		t.Fatalf("ListPosts(Science) failed: %v", err)
	}
	if total != 0 || len(posts) != 0 {
		t.Errorf("Science: total=%d items=%d, want 0/0", total, len(posts))
	}
}

func TestCreatePostUnknownCategoryDropped(t *testing.T) {
	s := setupTestStore(t)
	known := categoryIDs(t, s, "Music")
	ids := append(append([]int64{}, known...), 9999)

	p := makeTestPost(t, s, "Partially Known", ids, nil)
	got, err := s.GetPostByID(p.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if len(got.Categories) != 1 || got.Categories[0].Name != "Music" {
		t.Errorf("Categories = %+v, want only Music", got.Categories)
	}
}

func TestUpdatePostReplacesAssociations(t *testing.T) {
	s := setupTestStore(t)
	catIDs := categoryIDs(t, s, "Music", "History")
	sources := []views.Source{
		{Position: 0, Label: "One"},
		{Position: 1, Label: "Two"},
		{Position: 2, Label: "Three"},
	}
	created := makeTestPost(t, s, "Replace Me", catIDs, sources)

	// One fewer source row; empty category set clears all associations.
	updated := views.Post{
		ID:       created.ID,
		Title:    "Replace Me Edited",
		Subtitle: "new subtitle",
		Body:     "<p>new body</p>",
		ImageURL: created.ImageURL,
		Sources: []views.Source{
			{Position: 0, Label: "Two"},
			{Position: 1, Label: "Three"},
		},
	}
	if err := s.UpdatePost(&updated, nil); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := s.GetPostByID(created.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Title != "Replace Me Edited" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Slug != "replace-me" {
		t.Errorf("Slug = %q; editing the title must not re-derive the slug", got.Slug)
	}
	if len(got.Categories) != 0 {
		t.Errorf("Categories = %+v, want none after clearing", got.Categories)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("Sources count = %d, want 2", len(got.Sources))
	}
	for i, src := range got.Sources {
		if src.Position != i {
			t.Errorf("Sources[%d].Position = %d, order must stay dense", i, src.Position)
		}
	}
	if got.Sources[0].Label != "Two" {
		t.Errorf("Sources[0].Label = %q, want %q", got.Sources[0].Label, "Two")
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)
	p := views.Post{ID: 42, Title: "Ghost", Subtitle: "s", Body: "b", ImageURL: "u"}
	if err := s.UpdatePost(&p, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("got err %v, want ErrNotFound", err)
	}
}

func TestDeletePostCascades(t *testing.T) {
	s := setupTestStore(t)
	catIDs := categoryIDs(t, s, "Music")
	p := makeTestPost(t, s, "Doomed Post", catIDs, []views.Source{{Position: 0, Label: "src"}})

	slug, err := s.DeletePost(p.ID)
	if err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if slug != "doomed-post" {
		t.Errorf("DeletePost slug = %q", slug)
	}
	if _, err := s.GetPostByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("post still present after delete: %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sources WHERE post_id = ?`, p.ID).Scan(&n); err != nil {
		t.Fatalf("count sources: %v", err)
	}
	if n != 0 {
		t.Errorf("source rows left after delete: %d", n)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM post_categories WHERE post_id = ?`, p.ID).Scan(&n); err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if n != 0 {
		t.Errorf("category join rows left after delete: %d", n)
	}

	if _, err := s.DeletePost(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got err %v, want ErrNotFound", err)
	}
}
