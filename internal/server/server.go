package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog/internal/models"
)

// adminID is the fixed identifier of the administrator account: the first
// registered user.
const adminID = 1

const flashCookie = "flash"

type Server struct {
	Store *models.Store
	Log   *slog.Logger

	tmpl map[string]*template.Template

	CookieName string
}

func New(store *models.Store, templateDir string, log *slog.Logger) (*Server, error) {
	funcs := template.FuncMap{
		// post and comment bodies are stored HTML
		"safe": func(s string) template.HTML { return template.HTML(s) },
	}
	templates := map[string]*template.Template{}
	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	return &Server{Store: store, Log: log, tmpl: templates, CookieName: "session_id"}, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /posts", s.handlePosts)
	mux.HandleFunc("GET /post/{id}", s.handleShowPost)
	mux.HandleFunc("/post/{id}/comment", s.requireLogin(s.handleWriteComment))
	mux.HandleFunc("GET /delete/{commentID}/{postID}", s.requireLogin(s.handleDeleteComment))
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("/add-post", s.requireAdmin(s.handleAddPost))
	mux.HandleFunc("/edit-post/{id}", s.requireAdmin(s.handleEditPost))
	mux.HandleFunc("GET /delete/{id}", s.requireAdmin(s.handleDeletePost))
	mux.HandleFunc("/contact", s.handleContact)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = s.currentUser(r)
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string(nil)
	}
	if flash := s.popFlash(w, r); flash != "" {
		data["Flash"] = flash
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		s.Log.Warn("render failed", "template", name, "err", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// access guards

func (s *Server) requireLogin(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r, user)
	}
}

func (s *Server) requireAdmin(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil || user.ID != adminID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r, user)
	}
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil {
		return nil
	}
	sess, err := s.Store.GetSession(cookie.Value)
	if err != nil || sess.RevokedAt != nil || sess.ExpiresAt.Before(time.Now()) {
		return nil
	}
	user, err := s.Store.GetUser(sess.UserID)
	if err != nil {
		return nil
	}
	return user
}

// beginSession establishes a fresh session for the user and sets the cookie.
func (s *Server) beginSession(w http.ResponseWriter, user *models.User) error {
	sid := uuid.NewString()
	expires := time.Now().Add(24 * time.Hour)
	if err := s.Store.CreateSession(user.ID, sid, expires); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{Name: s.CookieName, Value: sid, Path: "/", Expires: expires, HttpOnly: true})
	return nil
}

// flash notices: a one-shot cookie read and cleared on the next render

func (s *Server) setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: url.QueryEscape(msg), Path: "/", HttpOnly: true})
}

func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

// helpers

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
