package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey"`
	Name     string `gorm:"size:100;not null"`
	Email    string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:100;not null"`
}

// BlogPost dates are stored as YYYY-MM-DD strings; list ordering relies on
// the format staying fixed-width.
type BlogPost struct {
	ID       int    `gorm:"primaryKey"`
	AuthorID int    `gorm:"not null;index"`
	Author   User   `gorm:"foreignKey:AuthorID"`
	Title    string `gorm:"size:250;not null"`
	Subtitle string `gorm:"size:250;not null"`
	Date     string `gorm:"size:100;not null"`
	Body     string `gorm:"type:text;not null"`
	ImgURL   string `gorm:"size:250"`
}

type Comment struct {
	ID       int    `gorm:"primaryKey"`
	Text     string `gorm:"type:text;not null"`
	AuthorID int    `gorm:"not null;index"`
	Author   User   `gorm:"foreignKey:AuthorID"`
	Date     string `gorm:"size:100;not null"`
	PostID   int    `gorm:"not null;index"`
}

// ReceivedEmail is a contact-form submission. Date carries a full
// YYYY-MM-DD HH:MM:SS timestamp, unlike posts and comments.
type ReceivedEmail struct {
	ID    int    `gorm:"primaryKey"`
	Name  string `gorm:"size:100;not null"`
	Email string `gorm:"size:100;not null"`
	Phone string `gorm:"size:100"`
	Text  string `gorm:"type:text;not null"`
	Date  string `gorm:"size:100;not null"`
}

type Session struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    int    `gorm:"not null;index"`
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
