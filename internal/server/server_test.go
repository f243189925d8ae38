package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/db"
	"blog/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(models.NewStore(database), "../../web/templates", logger)
	require.NoError(t, err)
	return srv
}

func postForm(t *testing.T, srv *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, srv *Server, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its session cookie: registration
// logs the new user in directly.
func register(t *testing.T, srv *Server, name, email, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"name": {name}, "email": {email}, "password": {password}}
	w := postForm(t, srv, "/register", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == srv.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie after register")
	return nil
}

func createPost(t *testing.T, srv *Server, admin *http.Cookie, title, subtitle, body, imgURL string) {
	t.Helper()
	form := url.Values{
		"title":    {title},
		"subtitle": {subtitle},
		"body":     {body},
		"img_url":  {imgURL},
	}
	w := postForm(t, srv, "/add-post", form, admin)
	require.Equal(t, http.StatusSeeOther, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "a@b.com", "secret")

	form := url.Values{"name": {"mallory"}, "email": {"a@b.com"}, "password": {"other"}}
	w := postForm(t, srv, "/register", form)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// the original account is untouched and still owns the email
	user, err := srv.Store.GetUserByEmail("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, 1, user.ID)
}

func TestPasswordNeverStoredPlaintext(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "a@b.com", "secret")
	user, err := srv.Store.GetUserByEmail("a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", user.Password)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "a@b.com", "secret")

	// wrong password never succeeds
	w := postForm(t, srv, "/login", url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// unknown email redirects back too
	w = postForm(t, srv, "/login", url.Values{"email": {"x@y.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// correct credentials establish a session
	w = postForm(t, srv, "/login", url.Values{"email": {"a@b.com"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t)
	admin := register(t, srv, "alice", "a@b.com", "secret")

	w := get(t, srv, "/logout", admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// the old cookie no longer authenticates
	w = get(t, srv, "/add-post", admin)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "a@b.com", "secret") // id 1, admin
	bob := register(t, srv, "bob", "b@b.com", "secret")

	for _, path := range []string{"/add-post", "/edit-post/1", "/delete/1"} {
		w := get(t, srv, path, bob)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		w = get(t, srv, path)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestCreateAndEditPost(t *testing.T) {
	srv := newTestServer(t)
	admin := register(t, srv, "alice", "a@b.com", "secret")
	createPost(t, srv, admin, "Hello", "World", "<p>x</p>", "https://x/y.png")

	post, err := srv.Store.GetPost(1)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, 1, post.AuthorID)
	created := post.Date
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, created)

	// listing shows the post
	w := get(t, srv, "/posts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello")

	// edit form is pre-filled from the record
	w = get(t, srv, "/edit-post/1", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "World")

	form := url.Values{
		"title":    {"Hello"},
		"subtitle": {"New"},
		"body":     {"<p>x</p>"},
		"img_url":  {"https://x/y.png"},
	}
	w = postForm(t, srv, "/edit-post/1", form, admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/post/1", w.Header().Get("Location"))

	post, err = srv.Store.GetPost(1)
	require.NoError(t, err)
	assert.Equal(t, "New", post.Subtitle)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, created, post.Date, "edit must not touch the date")
}

func TestPostValidation(t *testing.T) {
	srv := newTestServer(t)
	admin := register(t, srv, "alice", "a@b.com", "secret")

	form := url.Values{
		"title":    {""},
		"subtitle": {"sub"},
		"body":     {"text"},
		"img_url":  {"not a url"},
	}
	w := postForm(t, srv, "/add-post", form, admin)
	// validation failures re-render the form rather than redirecting
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Contains(t, w.Body.String(), "Enter a valid URL.")

	posts, err := srv.Store.ListPosts()
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostsOrderedByDateDescending(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice", "a@b.com", "secret")

	for _, p := range []struct{ title, date string }{
		{"oldest", "2023-01-15"},
		{"newest", "2024-06-01"},
		{"middle", "2023-11-30"},
	} {
		err := srv.Store.CreatePost(&models.BlogPost{
			AuthorID: 1, Title: p.title, Subtitle: "s", Date: p.date, Body: "b",
		})
		require.NoError(t, err)
	}

	w := get(t, srv, "/posts")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	newest := strings.Index(body, "newest")
	middle := strings.Index(body, "middle")
	oldest := strings.Index(body, "oldest")
	assert.True(t, newest < middle && middle < oldest, "want newest first, got %d %d %d", newest, middle, oldest)
}

func TestShowPostNotFound(t *testing.T) {
	srv := newTestServer(t)
	w := get(t, srv, "/post/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := register(t, srv, "alice", "a@b.com", "secret")
	createPost(t, srv, admin, "Hello", "World", "<p>x</p>", "https://x/y.png")
	bob := register(t, srv, "bob", "b@b.com", "secret")

	// anonymous visitors are rejected before any side effect
	w := postForm(t, srv, "/post/1/comment", url.Values{"comment_text": {"hi"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// empty comment re-renders the form
	w = postForm(t, srv, "/post/1/comment", url.Values{"comment_text": {""}}, bob)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	w = postForm(t, srv, "/post/1/comment", url.Values{"comment_text": {"<p>nice post</p>"}}, bob)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/post/1", w.Header().Get("Location"))

	w = get(t, srv, "/post/1")
	assert.Contains(t, w.Body.String(), "nice post")
	assert.Contains(t, w.Body.String(), "bob")

	// commenting on a missing post is a 404
	w = postForm(t, srv, "/post/99/comment", url.Values{"comment_text": {"hi"}}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteComment(t *testing.T) {
	srv := newTestServer(t)
	admin := register(t, srv, "alice", "a@b.com", "secret")
	createPost(t, srv, admin, "Hello", "World", "<p>x</p>", "https://x/y.png")
	bob := register(t, srv, "bob", "b@b.com", "secret")
	postForm(t, srv, "/post/1/comment", url.Values{"comment_text": {"mine"}}, bob)

	w := get(t, srv, "/delete/1/1")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// any logged-in user may delete any comment; the post id only picks
	// the redirect target
	w = get(t, srv, "/delete/1/1", admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/post/1", w.Header().Get("Location"))

	comments, err := srv.Store.ListComments(1)
	require.NoError(t, err)
	assert.Empty(t, comments)

	w = get(t, srv, "/delete/1/1", admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostCascades(t *testing.T) {
	srv := newTestServer(t)
	admin := register(t, srv, "alice", "a@b.com", "secret")
	createPost(t, srv, admin, "Hello", "World", "<p>x</p>", "https://x/y.png")
	postForm(t, srv, "/post/1/comment", url.Values{"comment_text": {"one"}}, admin)
	postForm(t, srv, "/post/1/comment", url.Values{"comment_text": {"two"}}, admin)

	w := get(t, srv, "/delete/1", admin)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts", w.Header().Get("Location"))

	_, err := srv.Store.GetPost(1)
	assert.ErrorIs(t, err, models.ErrNotFound)
	comments, err := srv.Store.ListComments(1)
	require.NoError(t, err)
	assert.Empty(t, comments)

	w = get(t, srv, "/post/1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactForm(t *testing.T) {
	srv := newTestServer(t)

	// missing message blocks the submit and persists nothing
	form := url.Values{"name": {"carol"}, "email": {"c@d.com"}, "message": {""}}
	w := postForm(t, srv, "/contact", form)
	assert.Equal(t, http.StatusOK, w.Code)
	emails, err := srv.Store.ListReceivedEmails()
	require.NoError(t, err)
	assert.Empty(t, emails)

	form = url.Values{"name": {"carol"}, "email": {"c@d.com"}, "phone": {"555"}, "message": {"hello there"}}
	w = postForm(t, srv, "/contact", form)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/contact", w.Header().Get("Location"))

	emails, err = srv.Store.ListReceivedEmails()
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "hello there", emails[0].Text)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, emails[0].Date)

	// the confirmation notice shows on the next page
	var flash *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie {
			flash = c
		}
	}
	require.NotNil(t, flash)
	w = get(t, srv, "/contact", flash)
	assert.Contains(t, w.Body.String(), "Your message has been sent.")
}

func TestHomeAndUnknownPath(t *testing.T) {
	srv := newTestServer(t)
	w := get(t, srv, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	w = get(t, srv, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
