package store

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Post struct {
	ID          int64
	Title       string
	Category    string
	Description string
	ImageURL    string
	Likes       int64
	CreatedAt   time.Time
}

// PostPatch carries a partial post update; nil fields are left unchanged.
type PostPatch struct {
	Title       *string
	Category    *string
	Description *string
	ImageURL    *string
}

func (p PostPatch) apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Description != nil {
		post.Description = *p.Description
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
}

// Comment is append-only. Position is the zero-based insertion order within
// its post.
type Comment struct {
	ID            int64
	PostID        int64
	Author        string
	AuthorInitial string
	Content       string
	Position      int
	CreatedAt     time.Time
}

type Profile struct {
	Name      string
	Bio       string
	SubBio    string
	ImageURL  string
	UpdatedAt time.Time
}

type JourneyEntry struct {
	ID          int64
	Year        string
	Title       string
	Description string
	CreatedAt   time.Time
}

type Document struct {
	ID          int64
	Title       string
	FileURL     string
	ObjectKey   string
	ContentType string
	CreatedAt   time.Time
}

type FollowRequest struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

type BlockEntry struct {
	Name      string
	BlockedAt time.Time
}
