package server

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"blog/internal/forms"
	"blog/internal/models"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index", nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "register", map[string]any{"Form": &forms.RegisterForm{}})
	case http.MethodPost:
		r.ParseForm()
		form := forms.NewRegisterForm(r.PostForm)
		if errs := form.Validate(); errs != nil {
			s.render(w, r, "register", map[string]any{"Form": form, "Errors": errs})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "error", http.StatusInternalServerError)
			return
		}
		user, err := s.Store.CreateUser(form.Name, form.Email, string(hash))
		if errors.Is(err, models.ErrDuplicateEmail) {
			s.setFlash(w, "That email is already registered. Please log in.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			http.Error(w, "error", http.StatusInternalServerError)
			return
		}
		if err := s.beginSession(w, user); err != nil {
			http.Error(w, "could not create session", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login", map[string]any{"Form": &forms.LoginForm{}})
	case http.MethodPost:
		r.ParseForm()
		form := forms.NewLoginForm(r.PostForm)
		if errs := form.Validate(); errs != nil {
			s.render(w, r, "login", map[string]any{"Form": form, "Errors": errs})
			return
		}
		user, err := s.Store.GetUserByEmail(form.Email)
		if err != nil {
			s.setFlash(w, "No account with that email address.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
			s.setFlash(w, "Incorrect password, please try again.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := s.beginSession(w, user); err != nil {
			http.Error(w, "could not create session", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.CookieName); err == nil {
		if err := s.Store.RevokeSession(cookie.Value); err != nil {
			s.Log.Warn("revoke session", "err", err)
		}
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Store.ListPosts()
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "posts", map[string]any{"Posts": posts})
}

func (s *Server) handleShowPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.Store.GetPost(atoi(r.PathValue("id")))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	comments, _ := s.Store.ListComments(post.ID)
	s.render(w, r, "post", map[string]any{"Post": post, "Comments": comments})
}

func (s *Server) handleAddPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "make-post", map[string]any{"Form": &forms.PostForm{}, "User": user})
	case http.MethodPost:
		r.ParseForm()
		form := forms.NewPostForm(r.PostForm)
		if errs := form.Validate(); errs != nil {
			s.render(w, r, "make-post", map[string]any{"Form": form, "Errors": errs, "User": user})
			return
		}
		post := &models.BlogPost{
			AuthorID: user.ID,
			Title:    form.Title,
			Subtitle: form.Subtitle,
			Date:     today(),
			Body:     form.Body,
			ImgURL:   form.ImgURL,
		}
		if err := s.Store.CreatePost(post); err != nil {
			http.Error(w, "could not create post", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := s.Store.GetPost(atoi(r.PathValue("id")))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		form := &forms.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		}
		s.render(w, r, "make-post", map[string]any{"Form": form, "IsEdit": true, "Post": post, "User": user})
	case http.MethodPost:
		r.ParseForm()
		form := forms.NewPostForm(r.PostForm)
		if errs := form.Validate(); errs != nil {
			s.render(w, r, "make-post", map[string]any{"Form": form, "Errors": errs, "IsEdit": true, "Post": post, "User": user})
			return
		}
		// the original creation date stays untouched on edit
		if err := s.Store.UpdatePost(post.ID, form.Title, form.Subtitle, form.Body, form.ImgURL); err != nil {
			http.Error(w, "could not update post", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/post/"+itoa(post.ID), http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, user *models.User) {
	id := atoi(r.PathValue("id"))
	if err := s.Store.DeletePost(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "could not delete post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (s *Server) handleWriteComment(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := s.Store.GetPost(atoi(r.PathValue("id")))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "write-comment", map[string]any{"Post": post, "Form": &forms.CommentForm{}, "User": user})
	case http.MethodPost:
		r.ParseForm()
		form := forms.NewCommentForm(r.PostForm)
		if errs := form.Validate(); errs != nil {
			s.render(w, r, "write-comment", map[string]any{"Post": post, "Form": form, "Errors": errs, "User": user})
			return
		}
		comment := &models.Comment{
			Text:     form.Text,
			AuthorID: user.ID,
			Date:     today(),
			PostID:   post.ID,
		}
		if err := s.Store.CreateComment(comment); err != nil {
			http.Error(w, "could not create comment", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/post/"+itoa(post.ID), http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDeleteComment removes a comment by id. There is no ownership check:
// any logged-in user can delete any comment, and the post id in the path is
// only the redirect target. Known authorization gap carried over from the
// existing contract.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, user *models.User) {
	if err := s.Store.DeleteComment(atoi(r.PathValue("commentID"))); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "could not delete comment", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/post/"+r.PathValue("postID"), http.StatusSeeOther)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "contact", map[string]any{"Form": &forms.ContactForm{}})
	case http.MethodPost:
		r.ParseForm()
		form := forms.NewContactForm(r.PostForm)
		if errs := form.Validate(); errs != nil {
			s.render(w, r, "contact", map[string]any{"Form": form, "Errors": errs})
			return
		}
		// SMTP settings exist in the environment but nothing is sent;
		// the message is only persisted.
		email := &models.ReceivedEmail{
			Name:  form.Name,
			Email: form.Email,
			Phone: form.Phone,
			Text:  form.Message,
			Date:  now(),
		}
		if err := s.Store.CreateReceivedEmail(email); err != nil {
			http.Error(w, "could not save message", http.StatusInternalServerError)
			return
		}
		s.setFlash(w, "Your message has been sent.")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
