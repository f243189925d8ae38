package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store holds the database handle and exposes one method per query the
// handlers issue. Relationship loading is explicit; nothing is fetched lazily.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(name, email, passwordHash string) (*User, error) {
	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}
	u := &User{Name: name, Email: email, Password: passwordHash}
	if err := s.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUser(id int) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	var u User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) CreatePost(p *BlogPost) error {
	return s.db.Create(p).Error
}

// ListPosts returns every post ordered by the stored date string descending,
// newest id first within a day.
func (s *Store) ListPosts() ([]BlogPost, error) {
	var posts []BlogPost
	err := s.db.Preload("Author").Order("date DESC, id DESC").Find(&posts).Error
	return posts, err
}

func (s *Store) GetPost(id int) (*BlogPost, error) {
	var p BlogPost
	if err := s.db.Preload("Author").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// UpdatePost overwrites the editable fields of a post. Date is deliberately
// not among them.
func (s *Store) UpdatePost(id int, title, subtitle, body, imgURL string) error {
	res := s.db.Model(&BlogPost{}).Where("id = ?", id).Updates(map[string]any{
		"title":    title,
		"subtitle": subtitle,
		"body":     body,
		"img_url":  imgURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes the post and its comments in one transaction.
func (s *Store) DeletePost(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&BlogPost{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) CreateComment(c *Comment) error {
	return s.db.Create(c).Error
}

// ListComments returns a post's comments newest first.
func (s *Store) ListComments(postID int) ([]Comment, error) {
	var comments []Comment
	err := s.db.Preload("Author").Where("post_id = ?", postID).
		Order("date DESC, id DESC").Find(&comments).Error
	return comments, err
}

func (s *Store) DeleteComment(id int) error {
	res := s.db.Delete(&Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateReceivedEmail(e *ReceivedEmail) error {
	return s.db.Create(e).Error
}

func (s *Store) ListReceivedEmails() ([]ReceivedEmail, error) {
	var emails []ReceivedEmail
	err := s.db.Order("id").Find(&emails).Error
	return emails, err
}

// CreateSession revokes the user's live sessions before inserting the new one.
func (s *Store) CreateSession(userID int, sessionID string, expires time.Time) error {
	now := time.Now()
	err := s.db.Model(&Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
	if err != nil {
		return err
	}
	return s.db.Create(&Session{ID: sessionID, UserID: userID, ExpiresAt: expires}).Error
}

func (s *Store) GetSession(id string) (*Session, error) {
	var sess Session
	if err := s.db.First(&sess, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

func (s *Store) RevokeSession(id string) error {
	return s.db.Model(&Session{}).Where("id = ?", id).
		Update("revoked_at", time.Now()).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
