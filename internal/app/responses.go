package app

import (
	"time"

	"portfolio/api/internal/store"
)

// postBody accepts both imageUrl and the older image_url spelling.
type postBody struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	ImageURLOld *string `json:"image_url"`
}

func (b postBody) image() *string {
	if b.ImageURL != nil {
		return b.ImageURL
	}
	return b.ImageURLOld
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

type postResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Likes       int64     `json:"likes"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPostResponse(post store.Post) postResponse {
	return postResponse{
		ID:          post.ID,
		Title:       post.Title,
		Category:    post.Category,
		Description: post.Description,
		ImageURL:    post.ImageURL,
		Likes:       post.Likes,
		Date:        post.CreatedAt.UTC().Format("2006-01-02"),
		CreatedAt:   post.CreatedAt,
	}
}

type commentResponse struct {
	ID            int64     `json:"id"`
	PostID        int64     `json:"postId"`
	Author        string    `json:"author"`
	AuthorInitial string    `json:"author_initial"`
	Content       string    `json:"content"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toCommentResponse(comment store.Comment) commentResponse {
	return commentResponse{
		ID:            comment.ID,
		PostID:        comment.PostID,
		Author:        comment.Author,
		AuthorInitial: comment.AuthorInitial,
		Content:       comment.Content,
		Position:      comment.Position,
		CreatedAt:     comment.CreatedAt,
	}
}

type profileResponse struct {
	Name      string     `json:"name"`
	Bio       string     `json:"bio"`
	SubBio    string     `json:"subBio"`
	ImageURL  string     `json:"imageUrl"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func toProfileResponse(profile store.Profile) profileResponse {
	resp := profileResponse{
		Name:     profile.Name,
		Bio:      profile.Bio,
		SubBio:   profile.SubBio,
		ImageURL: profile.ImageURL,
	}
	if !profile.UpdatedAt.IsZero() {
		updated := profile.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

type journeyResponse struct {
	ID          int64  `json:"id"`
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func toJourneyResponse(entry store.JourneyEntry) journeyResponse {
	return journeyResponse{
		ID:          entry.ID,
		Year:        entry.Year,
		Title:       entry.Title,
		Description: entry.Description,
	}
}

type documentResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	FileURL     string    `json:"fileUrl"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toDocumentResponse(doc store.Document) documentResponse {
	return documentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		FileURL:     doc.FileURL,
		ContentType: doc.ContentType,
		CreatedAt:   doc.CreatedAt,
	}
}

type followResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFollowResponse(follow store.FollowRequest) followResponse {
	return followResponse{ID: follow.ID, Name: follow.Name, Email: follow.Email, CreatedAt: follow.CreatedAt}
}

type contactResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func toContactResponse(msg store.ContactMessage) contactResponse {
	return contactResponse{ID: msg.ID, Name: msg.Name, Email: msg.Email, Message: msg.Message, CreatedAt: msg.CreatedAt}
}

type blockResponse struct {
	Name      string    `json:"name"`
	BlockedAt time.Time `json:"blockedAt"`
}
